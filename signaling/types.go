// Package signaling routes opaque negotiation messages between peers in a
// room. Two transports provide the same capability: a store-and-forward
// queue polled over plain requests (queue) and a push channel over
// WebSocket (broadcast).
package signaling

import "encoding/json"

// RecipientAll addresses a signal to every known peer in the room.
const RecipientAll = "all"

// Signal is a routed message. Payload is opaque to the relay; Timestamp is
// assigned at enqueue time in unix milliseconds from the relay's clock.
type Signal struct {
	From      string          `json:"from"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

// Transport is the capability both transports realize: route a signal into
// a room and observe which peers the room currently knows.
type Transport interface {
	// Submit routes a signal to a specific peer, or to every known peer
	// except the sender when to is RecipientAll.
	Submit(roomID, from, to string, payload json.RawMessage)

	// Fanout delivers to every known peer; the sender is excluded unless
	// includeSender is set.
	Fanout(roomID, from string, payload json.RawMessage, includeSender bool)

	// Presence lists the peer ids currently known to the room.
	Presence(roomID string) []string
}

// Control command types carried as signal payloads.
const (
	ControlRequestOffer = "request-offer"
	ControlPlaySync     = "play-sync"
)

// Control is the shape of the two control-command payloads.
type Control struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}
