package queue

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/streamcam/backend/internal/otel"
)

var (
	signalsEnqueued metric.Int64Counter
	signalsPolled   metric.Int64Counter
	signalsEvicted  metric.Int64Counter
	peersEvicted    metric.Int64Counter
	roomsEvicted    metric.Int64Counter
	sweepRuns       metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("signaling.queue", intotel.PrefixQueueRelay)

	f.Int64Counter(&signalsEnqueued, "signals.enqueued",
		metric.WithDescription("Signals appended to recipient queues"))

	f.Int64Counter(&signalsPolled, "signals.polled",
		metric.WithDescription("Signals returned to pollers"))

	f.Int64Counter(&signalsEvicted, "evicted.signals",
		metric.WithDescription("Signals discarded by TTL eviction"))

	f.Int64Counter(&peersEvicted, "evicted.peers",
		metric.WithDescription("Peer entries removed after eviction left them empty"))

	f.Int64Counter(&roomsEvicted, "evicted.rooms",
		metric.WithDescription("Rooms removed after losing their last peer entry"))

	f.Int64Counter(&sweepRuns, "sweep.runs",
		metric.WithDescription("Eviction sweep cycles executed"))
}
