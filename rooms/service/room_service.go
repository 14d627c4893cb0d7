// Package service implements room management on top of the store, and
// pushes confirmed live-status changes to connected members.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/rooms"
)

type roomSvcImpl struct {
	store    rooms.RoomStore
	notifier rooms.LiveNotifier
	logger   *log.Logger
}

func NewRoomService(
	store rooms.RoomStore,
	notifier rooms.LiveNotifier,
	logger *log.Logger,
) rooms.RoomService {
	return &roomSvcImpl{
		store:    store,
		notifier: notifier,
		logger:   logger.Module("service"),
	}
}

func (rs *roomSvcImpl) CreateRoom(ctx context.Context, ownerID, name, visibility string) (*rooms.Room, error) {
	if visibility == "" {
		visibility = rooms.VisibilityPrivate
	}

	room := &rooms.Room{
		ID:         uuid.NewString(),
		Name:       name,
		OwnerID:    ownerID,
		Visibility: visibility,
		CreatedAt:  time.Now().UTC(),
	}

	if err := rs.store.Put(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	roomsCreated.Add(ctx, 1)
	rs.logger.Info("Room created",
		log.String("roomId", room.ID),
		log.String("ownerId", ownerID))
	return room, nil
}

func (rs *roomSvcImpl) FindRoom(ctx context.Context, roomID string) (*rooms.Room, error) {
	room, err := rs.store.Get(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	if room == nil {
		return nil, &rooms.RoomNotFoundError{RoomID: roomID}
	}
	return room, nil
}

func (rs *roomSvcImpl) RoomsByOwner(ctx context.Context, ownerID string) ([]*rooms.Room, error) {
	all, err := rs.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	owned := make([]*rooms.Room, 0)
	for _, room := range all {
		if room.OwnerID == ownerID {
			owned = append(owned, room)
		}
	}
	return owned, nil
}

func (rs *roomSvcImpl) DeleteRoom(ctx context.Context, roomID, requesterID string) error {
	room, err := rs.FindRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.OwnerID != requesterID {
		return &rooms.NotOwnerError{RoomID: roomID, UserID: requesterID}
	}

	if err := rs.store.Delete(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}

	roomsDeleted.Add(ctx, 1)
	rs.logger.Info("Room deleted",
		log.String("roomId", roomID),
		log.String("ownerId", requesterID))
	return nil
}

func (rs *roomSvcImpl) SetLive(ctx context.Context, roomID string, isLive bool) error {
	room, err := rs.FindRoom(ctx, roomID)
	if err != nil {
		return err
	}
	_, err = rs.persistLive(ctx, room, isLive)
	return err
}

func (rs *roomSvcImpl) SetLiveAsOwner(ctx context.Context, roomID, requesterID string, isLive bool) (*rooms.Room, error) {
	room, err := rs.FindRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != requesterID {
		return nil, &rooms.NotOwnerError{RoomID: roomID, UserID: requesterID}
	}
	return rs.persistLive(ctx, room, isLive)
}

// persistLive writes the flag and fans the confirmed value out to every
// connected member, the originator included. Concurrent updates are not
// serialized: last write wins.
func (rs *roomSvcImpl) persistLive(ctx context.Context, room *rooms.Room, isLive bool) (*rooms.Room, error) {
	room.IsLive = isLive
	if err := rs.store.Put(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update live status: %w", err)
	}

	liveUpdates.Add(ctx, 1)
	rs.logger.Info("Live status updated",
		log.String("roomId", room.ID),
		log.Bool("isLive", isLive))

	if rs.notifier != nil {
		rs.notifier.NotifyLive(room.ID, isLive)
	}
	return room, nil
}
