package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamcam/backend/internal/jwt"
	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/internal/validation"
	"github.com/streamcam/backend/rooms"
)

type Router struct {
	roomService rooms.RoomService
	logger      *log.Logger
}

func NewRouter(roomService rooms.RoomService, logger *log.Logger) *Router {
	return &Router{
		roomService: roomService,
		logger:      logger.Module("transport"),
	}
}

// Register mounts the room routes on an authenticated group. The POST
// fallbacks exist for clients behind proxies that block PATCH/DELETE.
func (r *Router) Register(rg gin.IRouter) {
	rg.POST("/rooms", r.createRoom)
	rg.GET("/rooms/mine", r.myRooms)
	rg.GET("/rooms/:roomId", r.getRoom)
	rg.GET("/rooms/:roomId/status", r.roomStatus)
	rg.PATCH("/rooms/:roomId/live", r.setLive)
	rg.POST("/rooms/:roomId/live", r.setLive)
	rg.DELETE("/rooms/:roomId", r.deleteRoom)
	rg.POST("/rooms/:roomId/delete", r.deleteRoom)
}

func (r *Router) createRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	room, err := r.roomService.CreateRoom(c.Request.Context(), jwt.UserID(c), req.Name, req.Visibility)
	if err != nil {
		r.logger.Error("Failed to create room", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to create room",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"room":    room,
	})
}

func (r *Router) getRoom(c *gin.Context) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	room, err := r.roomService.FindRoom(c.Request.Context(), uri.RoomID)
	if err != nil {
		r.renderRoomError(c, err, "Failed to get room")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"room":    room,
	})
}

func (r *Router) roomStatus(c *gin.Context) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	room, err := r.roomService.FindRoom(c.Request.Context(), uri.RoomID)
	if err != nil {
		r.renderRoomError(c, err, "Failed to get room status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"isLive":  room.IsLive,
	})
}

func (r *Router) myRooms(c *gin.Context) {
	owned, err := r.roomService.RoomsByOwner(c.Request.Context(), jwt.UserID(c))
	if err != nil {
		r.logger.Error("Failed to list rooms", log.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to list rooms",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rooms":   owned,
	})
}

func (r *Router) setLive(c *gin.Context) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	var req SetLiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	room, err := r.roomService.SetLiveAsOwner(c.Request.Context(), uri.RoomID, jwt.UserID(c), *req.IsLive)
	if err != nil {
		r.renderRoomError(c, err, "Failed to update live status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"room":    room,
	})
}

func (r *Router) deleteRoom(c *gin.Context) {
	var uri RoomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validation.FormatValidationError(err),
		})
		return
	}

	if err := r.roomService.DeleteRoom(c.Request.Context(), uri.RoomID, jwt.UserID(c)); err != nil {
		r.renderRoomError(c, err, "Failed to delete room")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Room deleted",
	})
}

func (r *Router) renderRoomError(c *gin.Context, err error, fallback string) {
	var notFound *rooms.RoomNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	var notOwner *rooms.NotOwnerError
	if errors.As(err, &notOwner) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	r.logger.Error(fallback, log.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"message": fallback,
	})
}
