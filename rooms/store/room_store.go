// Package store persists room records as JSON values in Redis.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/streamcam/backend/internal/errors"
	"github.com/streamcam/backend/internal/log"
	intredis "github.com/streamcam/backend/internal/redis"
	"github.com/streamcam/backend/rooms"
)

const keyPrefix = "rooms/"

const scanBatch = 100

type roomStoreImpl struct {
	client  redis.UniversalClient
	forever intredis.Forever
	logger  *log.Logger
}

// NewRoomStore creates a Redis-backed room store. Mutations and lookups
// ride the Forever retry wrapper; only All scans with the raw client.
func NewRoomStore(
	client redis.UniversalClient,
	forever intredis.Forever,
	logger *log.Logger,
) rooms.RoomStore {
	return &roomStoreImpl{
		client:  client,
		forever: forever,
		logger:  logger.Module("store"),
	}
}

func roomKey(roomID string) string {
	return keyPrefix + roomID
}

func (s *roomStoreImpl) Get(ctx context.Context, roomID string) (*rooms.Room, error) {
	val, err := s.forever.Get(ctx, roomKey(roomID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room rooms.Room
	if err := json.Unmarshal([]byte(val), &room); err != nil {
		return nil, fmt.Errorf("failed to decode room %s: %w", roomID, err)
	}
	return &room, nil
}

func (s *roomStoreImpl) Put(ctx context.Context, room *rooms.Room) error {
	bs, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room %s: %w", room.ID, err)
	}

	if err := s.forever.Set(ctx, roomKey(room.ID), bs, 0); err != nil {
		return fmt.Errorf("failed to store room %s: %w", room.ID, err)
	}
	return nil
}

func (s *roomStoreImpl) Delete(ctx context.Context, roomID string) error {
	if err := s.forever.Del(ctx, roomKey(roomID)); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomID, err)
	}
	return nil
}

func (s *roomStoreImpl) All(ctx context.Context) ([]*rooms.Room, error) {
	var result []*rooms.Room

	iter := s.client.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		val, err := s.forever.Get(ctx, iter.Val())
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// deleted between scan and get
				continue
			}
			return nil, fmt.Errorf("failed to get room %s: %w", iter.Val(), err)
		}

		var room rooms.Room
		if err := json.Unmarshal([]byte(val), &room); err != nil {
			s.logger.Warn("Skipping malformed room record",
				log.String("key", iter.Val()),
				log.Error(err))
			continue
		}
		result = append(result, &room)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan rooms: %w", err)
	}

	return result, nil
}
