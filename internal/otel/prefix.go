package otel

// Metric prefixes for each subsystem.
// Each package defines its own metric names and uses these prefixes.
const (
	PrefixQueueRelay = "queue_relay"
	PrefixBroadcast  = "broadcast"
	PrefixRooms      = "rooms"
)
