package service

import (
	"go.opentelemetry.io/otel/metric"

	intotel "github.com/streamcam/backend/internal/otel"
)

var (
	roomsCreated metric.Int64Counter
	roomsDeleted metric.Int64Counter
	liveUpdates  metric.Int64Counter
)

func init() {
	f := intotel.NewFactory("rooms.service", intotel.PrefixRooms)

	f.Int64Counter(&roomsCreated, "created",
		metric.WithDescription("Rooms created"))

	f.Int64Counter(&roomsDeleted, "deleted",
		metric.WithDescription("Rooms deleted"))

	f.Int64Counter(&liveUpdates, "live.updates",
		metric.WithDescription("Live status changes persisted"))
}
