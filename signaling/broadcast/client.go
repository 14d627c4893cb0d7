package broadcast

const outboundBuffer = 16

// client is one push-transport connection. Frames are queued on out and
// drained by the connection's writer; a full buffer means the member is
// not keeping up and the frame is dropped.
type client struct {
	id     string
	userID string
	out    chan any
}

func newClient(id, userID string) *client {
	return &client{
		id:     id,
		userID: userID,
		out:    make(chan any, outboundBuffer),
	}
}

func (c *client) send(frame any) bool {
	select {
	case c.out <- frame:
		return true
	default:
		return false
	}
}
