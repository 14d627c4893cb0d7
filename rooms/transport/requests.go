package transport

// CreateRoomRequest is the body for room creation
type CreateRoomRequest struct {
	// Name: display name, required
	Name string `json:"name" binding:"required,max=100"`
	// Visibility: private (default), friends or public
	Visibility string `json:"visibility,omitempty" binding:"omitempty,visibility"`
}

// RoomURI identifies a room from the URL param
type RoomURI struct {
	RoomID string `uri:"roomId" binding:"required,roomid"`
}

// SetLiveRequest is the body for the direct live-status path
type SetLiveRequest struct {
	IsLive *bool `json:"isLive" binding:"required"`
}
