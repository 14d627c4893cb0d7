package broadcast

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/streamcam/backend/internal/jwt"
	"github.com/streamcam/backend/internal/log"
)

const (
	pingInterval = 10 * time.Second
	pingTimeout  = 3 * time.Second
	writeTimeout = 3 * time.Second
)

// LiveUpdater persists a room's live flag. The confirmed value reaches
// room members through the manager, so the live frame handler does not
// fan out itself.
type LiveUpdater interface {
	SetLive(ctx context.Context, roomID string, isLive bool) error
}

// Server upgrades authenticated requests to push-transport connections
// and dispatches their frames.
type Server struct {
	manager        *Manager
	auth           jwt.Auth
	live           LiveUpdater
	allowedOrigins []string
	logger         *log.Logger
}

var _ http.Handler = (*Server)(nil)

func NewServer(
	manager *Manager,
	auth jwt.Auth,
	live LiveUpdater,
	allowedOrigins []string,
	logger *log.Logger,
) *Server {
	return &Server{
		manager:        manager,
		auth:           auth,
		live:           live,
		allowedOrigins: allowedOrigins,
		logger:         logger.Module("server"),
	}
}

// ServeHTTP lets the server mount directly on a router or mux.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.HandleWebSocket(w, r)
}

// HandleWebSocket verifies the caller's token, upgrades the connection
// and serves it until the channel closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	payload, err := s.auth.Verify(jwt.BearerToken(r))
	if err != nil {
		s.logger.Info("Connection verification failed",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.allowedOrigins,
	})
	if err != nil {
		s.logger.Error("WebSocket open failed",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		return
	}

	c := newClient(uuid.NewString(), payload.UserID)
	connectionsActive.Add(r.Context(), 1)
	defer connectionsActive.Add(context.Background(), -1)

	s.logger.Info("WebSocket connection established",
		log.String("connId", c.id),
		log.String("userId", c.userID),
		log.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		s.writePump(ctx, wsConn, c)
	}()

	s.readLoop(ctx, wsConn, c)

	s.manager.Remove(c)
	wsConn.Close(websocket.StatusNormalClosure, "bye")
}

// readLoop serves inbound frames until the channel closes. An unparseable
// frame is logged and skipped; only transport errors end the loop.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, c *client) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			s.logger.Debug("Read loop ended",
				log.String("connId", c.id),
				log.Error(err))
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn("Malformed frame",
				log.String("connId", c.id),
				log.Error(err))
			continue
		}
		s.handleFrame(ctx, c, &frame)
	}
}

func (s *Server) writePump(ctx context.Context, conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ping(ctx, conn); err != nil {
				return
			}
		case frame := <-c.out:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, frame)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) ping(ctx context.Context, conn *websocket.Conn) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return conn.Ping(ctx)
}

// handleFrame dispatches one inbound frame. A malformed or unknown frame
// is logged and the channel stays open.
func (s *Server) handleFrame(ctx context.Context, c *client, frame *inboundFrame) {
	switch frame.Type {
	case frameJoin:
		if frame.RoomID == "" {
			s.logger.Warn("Join frame without room id", log.String("connId", c.id))
			return
		}
		prior, ok := s.manager.Join(c, frame.RoomID)
		if !ok {
			s.logger.Debug("Join ignored, already in a room", log.String("connId", c.id))
			return
		}
		s.manager.notifyPeerJoined(frame.RoomID, prior, c.userID)

	case frameSignal:
		roomID, ok := s.manager.RoomOf(c)
		if !ok {
			s.logger.Warn("Signal frame from connection outside any room",
				log.String("connId", c.id))
			return
		}
		s.manager.Fanout(roomID, c.userID, frame.Payload, false)

	case frameLive:
		if frame.RoomID == "" {
			s.logger.Warn("Live frame without room id", log.String("connId", c.id))
			return
		}
		if err := s.live.SetLive(ctx, frame.RoomID, frame.IsLive); err != nil {
			s.logger.Error("Failed to persist live status",
				log.String("roomId", frame.RoomID),
				log.Error(err))
			return
		}

	default:
		s.logger.Warn("Unknown frame type",
			log.String("connId", c.id),
			log.String("type", frame.Type))
	}
}
