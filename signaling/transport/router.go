// Package transport exposes the poll transport over HTTP and mounts the
// push-transport upgrade path.
package transport

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamcam/backend/internal/jwt"
	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/internal/validation"
	"github.com/streamcam/backend/signaling"
)

// PollRelay is the poll-transport capability: the shared transport surface
// plus cursor-based observation.
type PollRelay interface {
	signaling.Transport
	Poll(roomID, peerID string, lastSeen int64) ([]signaling.Signal, int64)
	Clear(roomID, peerID string)
}

type Router struct {
	relay  PollRelay
	ws     http.Handler
	logger *log.Logger
}

// NewRouter wires the poll transport handlers. ws serves the push
// transport upgrade; it may be nil when the push transport is not
// mounted.
func NewRouter(relay PollRelay, ws http.Handler, logger *log.Logger) *Router {
	return &Router{
		relay:  relay,
		ws:     ws,
		logger: logger.Module("transport"),
	}
}

func (r *Router) Register(rg gin.IRouter) {
	rg.POST("/signaling/send", r.sendSignal)
	rg.GET("/signaling/room/:roomId/signals", r.pollSignals)
	rg.DELETE("/signaling/room/:roomId/signals", r.clearSignals)
	rg.GET("/signaling/room/:roomId/users", r.listUsers)
	rg.POST("/signaling/request-offer", r.requestOffer)
	rg.POST("/signaling/play-sync", r.playSync)

	if r.ws != nil {
		rg.GET("/signaling/ws", func(c *gin.Context) {
			r.ws.ServeHTTP(c.Writer, c.Request)
		})
	}
}

func (r *Router) sendSignal(c *gin.Context) {
	var req SendSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	r.relay.Submit(req.RoomID, jwt.UserID(c), req.To, req.Payload)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) pollSignals(c *gin.Context) {
	var uri SignalsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	var query PollQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	signals, lastSeen := r.relay.Poll(uri.RoomID, jwt.UserID(c), query.LastSeen)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"signals":  signals,
		"lastSeen": lastSeen,
	})
}

func (r *Router) clearSignals(c *gin.Context) {
	var uri SignalsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	r.relay.Clear(uri.RoomID, jwt.UserID(c))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (r *Router) listUsers(c *gin.Context) {
	var uri SignalsURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	userIDs := r.relay.Presence(uri.RoomID)
	if userIDs == nil {
		userIDs = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"userIds": userIDs,
	})
}

func (r *Router) requestOffer(c *gin.Context) {
	var req RequestOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	payload, err := json.Marshal(signaling.Control{Type: signaling.ControlRequestOffer})
	if err != nil {
		r.logger.Error("Failed to encode control payload", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to request offer",
		})
		return
	}

	r.relay.Fanout(req.RoomID, jwt.UserID(c), payload, false)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// playSync fans to every known peer, the sender included.
func (r *Router) playSync(c *gin.Context) {
	var req PlaySyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	payload, err := json.Marshal(signaling.Control{Type: signaling.ControlPlaySync, URL: req.URL})
	if err != nil {
		r.logger.Error("Failed to encode control payload", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to request playback",
		})
		return
	}

	r.relay.Fanout(req.RoomID, jwt.UserID(c), payload, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
