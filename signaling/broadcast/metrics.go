package broadcast

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/streamcam/backend/internal/otel"
)

var (
	connectionsActive metric.Int64UpDownCounter
	framesDelivered   metric.Int64Counter
	framesDropped     metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("signaling.broadcast", intotel.PrefixBroadcast)

	f.Int64UpDownCounter(&connectionsActive, "connections.active",
		metric.WithDescription("Open push-transport connections"))

	f.Int64Counter(&framesDelivered, "frames.delivered",
		metric.WithDescription("Frames queued to member connections"))

	f.Int64Counter(&framesDropped, "frames.dropped",
		metric.WithDescription("Frames skipped because a member's buffer was full"))
}
