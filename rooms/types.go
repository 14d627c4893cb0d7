package rooms

import (
	"context"
	"fmt"
	"time"
)

// Visibility values stored on a room. Friendship-based filtering is
// enforced by the social backend, not here; the value rides along as data.
const (
	VisibilityPrivate = "private"
	VisibilityFriends = "friends"
	VisibilityPublic  = "public"
)

// Room is the persistent room record.
type Room struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"ownerId"`
	IsLive     bool      `json:"isLive"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RoomService defines room management operations
type RoomService interface {
	CreateRoom(ctx context.Context, ownerID, name, visibility string) (*Room, error)
	FindRoom(ctx context.Context, roomID string) (*Room, error)
	RoomsByOwner(ctx context.Context, ownerID string) ([]*Room, error)
	DeleteRoom(ctx context.Context, roomID, requesterID string) error

	// SetLive persists the live flag and fans the confirmed value out to
	// connected members. Used by the push transport, which applies no
	// ownership check of its own.
	SetLive(ctx context.Context, roomID string, isLive bool) error

	// SetLiveAsOwner is the direct path: only the room owner may flip the
	// flag.
	SetLiveAsOwner(ctx context.Context, roomID, requesterID string, isLive bool) (*Room, error)
}

// RoomStore persists room records. Get returns nil without error for a
// missing room.
type RoomStore interface {
	Get(ctx context.Context, roomID string) (*Room, error)
	Put(ctx context.Context, room *Room) error
	Delete(ctx context.Context, roomID string) error
	All(ctx context.Context) ([]*Room, error)
}

// LiveNotifier pushes a confirmed live flag to a room's connected members.
type LiveNotifier interface {
	NotifyLive(roomID string, isLive bool)
}

type RoomNotFoundError struct {
	RoomID string
}

func (e *RoomNotFoundError) Error() string {
	return fmt.Sprintf("Room %s not found", e.RoomID)
}

type NotOwnerError struct {
	RoomID string
	UserID string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("User %s is not the owner of room %s", e.UserID, e.RoomID)
}
