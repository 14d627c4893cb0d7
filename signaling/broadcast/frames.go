package broadcast

import "encoding/json"

// Frame types. join/signal/live arrive from clients; peer-joined, signal
// and live go out to room members.
const (
	frameJoin       = "join"
	frameSignal     = "signal"
	frameLive       = "live"
	framePeerJoined = "peer-joined"
)

type inboundFrame struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId"`
	IsLive  bool            `json:"isLive"`
	Payload json.RawMessage `json:"payload"`
}

type peerJoinedFrame struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type signalFrame struct {
	Type    string          `json:"type"`
	From    string          `json:"from"`
	Payload json.RawMessage `json:"payload"`
}

type liveFrame struct {
	Type   string `json:"type"`
	IsLive bool   `json:"isLive"`
}
