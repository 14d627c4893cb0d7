package transport

import "encoding/json"

// SendSignalRequest is the body for the poll-transport send path
type SendSignalRequest struct {
	RoomID string `json:"roomId" binding:"required,roomid"`
	// To: a peer id, or "all" for every known peer except the sender
	To      string          `json:"to" binding:"required"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// SignalsURI identifies a room from the URL param
type SignalsURI struct {
	RoomID string `uri:"roomId" binding:"required,roomid"`
}

// PollQuery carries the cursor from the previous poll
type PollQuery struct {
	LastSeen int64 `form:"lastSeen" binding:"omitempty,min=0"`
}

// RequestOfferRequest solicits an offer from the room's existing members
type RequestOfferRequest struct {
	RoomID string `json:"roomId" binding:"required,roomid"`
}

// PlaySyncRequest requests synchronized playback across the room
type PlaySyncRequest struct {
	RoomID string `json:"roomId" binding:"required,roomid"`
	URL    string `json:"url" binding:"required,max=2048"`
}
