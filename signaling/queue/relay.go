// Package queue is the poll transport: per-room, per-recipient ordered
// signal queues with cursor-based polling and TTL-driven eviction.
package queue

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/streamcam/backend/internal/log"
	intsync "github.com/streamcam/backend/internal/sync"
	"github.com/streamcam/backend/signaling"
)

// room guards the per-recipient queues of one room. dead is set under mu
// by the sweeper just before the room is dropped from the registry, so a
// sender holding a stale pointer retries instead of appending into a room
// nobody can poll anymore.
type room struct {
	mu     sync.Mutex
	dead   bool
	queues map[string][]signaling.Signal
}

func newRoom() *room {
	return &room{
		queues: map[string][]signaling.Signal{},
	}
}

// Relay is the poll-transport implementation. Room state is created lazily
// on first send or poll and reclaimed only by EvictExpired.
type Relay struct {
	rooms  *intsync.Map[string, *room]
	clock  clockwork.Clock
	logger *log.Logger
}

func NewRelay(clock clockwork.Clock, logger *log.Logger) *Relay {
	return &Relay{
		rooms:  intsync.NewMap[string, *room](),
		clock:  clock,
		logger: logger.Module("relay"),
	}
}

// withRoom runs fn with the room's lock held, creating the room if absent.
// A room marked dead has already been removed from the registry; retry the
// lookup to get (or create) a live one.
func (r *Relay) withRoom(roomID string, fn func(*room)) {
	for {
		rm, _ := r.rooms.LoadOrStore(roomID, newRoom())
		rm.mu.Lock()
		if rm.dead {
			rm.mu.Unlock()
			continue
		}
		fn(rm)
		rm.mu.Unlock()
		return
	}
}

// Submit routes a signal to a specific recipient, or to every known peer
// except the sender when to is signaling.RecipientAll. The recipient's
// queue is created on demand; a broadcast with no other peer present
// delivers to no one and still succeeds.
func (r *Relay) Submit(roomID, from, to string, payload json.RawMessage) {
	sig := signaling.Signal{
		From:      from,
		Payload:   payload,
		Timestamp: r.clock.Now().UnixMilli(),
	}

	r.withRoom(roomID, func(rm *room) {
		if to == signaling.RecipientAll {
			for peer := range rm.queues {
				if peer == from {
					continue
				}
				rm.queues[peer] = append(rm.queues[peer], sig)
				signalsEnqueued.Add(context.Background(), 1)
			}
			return
		}
		rm.queues[to] = append(rm.queues[to], sig)
		signalsEnqueued.Add(context.Background(), 1)
	})
}

// Fanout delivers a signal to every currently-known peer in the room,
// excluding the sender unless includeSender is set.
func (r *Relay) Fanout(roomID, from string, payload json.RawMessage, includeSender bool) {
	sig := signaling.Signal{
		From:      from,
		Payload:   payload,
		Timestamp: r.clock.Now().UnixMilli(),
	}

	r.withRoom(roomID, func(rm *room) {
		for peer := range rm.queues {
			if !includeSender && peer == from {
				continue
			}
			rm.queues[peer] = append(rm.queues[peer], sig)
			signalsEnqueued.Add(context.Background(), 1)
		}
	})
}

// Poll returns the peer's pending signals with timestamp strictly greater
// than lastSeen, in stored order, and the cursor to pass on the next call.
// The cursor is the timestamp of the last stored signal when any exist,
// otherwise lastSeen is echoed back. Polling registers the peer as present
// so later Presence calls observe it.
func (r *Relay) Poll(roomID, peerID string, lastSeen int64) ([]signaling.Signal, int64) {
	out := []signaling.Signal{}
	cursor := lastSeen

	r.withRoom(roomID, func(rm *room) {
		q, ok := rm.queues[peerID]
		if !ok {
			rm.queues[peerID] = nil
			return
		}
		for _, sig := range q {
			if sig.Timestamp > lastSeen {
				out = append(out, sig)
			}
		}
		if len(q) > 0 {
			cursor = q[len(q)-1].Timestamp
		}
	})

	signalsPolled.Add(context.Background(), int64(len(out)))
	return out, cursor
}

// Clear removes the peer's queue entirely (explicit leave). A room that
// was never created stays absent.
func (r *Relay) Clear(roomID, peerID string) {
	rm, ok := r.rooms.Load(roomID)
	if !ok {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.dead {
		return
	}
	delete(rm.queues, peerID)
}

// Presence lists the peer ids currently known to the room, sorted for a
// stable order. A peer is known while it holds a queue key, even an empty
// one.
func (r *Relay) Presence(roomID string) []string {
	rm, ok := r.rooms.Load(roomID)
	if !ok {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.dead {
		return nil
	}

	peers := make([]string, 0, len(rm.queues))
	for peer := range rm.queues {
		peers = append(peers, peer)
	}
	sort.Strings(peers)
	return peers
}

// EvictExpired discards every signal with timestamp at or before olderThan,
// removes peer keys left empty, and drops rooms left with no peer keys.
// This is the sole reclamation path. Returns the removal counts.
//
// The sweep runs under the registry write lock, so no room appears or
// vanishes mid-pass. Lock order is registry then room, same as every
// other path, and withRoom never holds a room lock while touching the
// registry.
func (r *Relay) EvictExpired(olderThan time.Time) (signals, peers, rooms int) {
	cutoff := olderThan.UnixMilli()

	r.rooms.WithLock(func(view intsync.View[string, *room]) {
		view.Range(func(roomID string, rm *room) bool {
			rm.mu.Lock()
			defer rm.mu.Unlock()

			for peer, q := range rm.queues {
				kept := q[:0]
				for _, sig := range q {
					if sig.Timestamp > cutoff {
						kept = append(kept, sig)
					}
				}
				signals += len(q) - len(kept)
				if len(kept) == 0 {
					delete(rm.queues, peer)
					peers++
					continue
				}
				rm.queues[peer] = kept
			}
			if len(rm.queues) == 0 {
				rm.dead = true
				rooms++
				view.Delete(roomID)
			}
			return true
		})
	})

	if signals > 0 || peers > 0 || rooms > 0 {
		r.logger.Debug("evicted expired state",
			log.Int("signals", signals),
			log.Int("peers", peers),
			log.Int("rooms", rooms),
		)
	}

	signalsEvicted.Add(context.Background(), int64(signals))
	peersEvicted.Add(context.Background(), int64(peers))
	roomsEvicted.Add(context.Background(), int64(rooms))
	return signals, peers, rooms
}

// Rooms reports the number of rooms currently tracked.
func (r *Relay) Rooms() int {
	return r.rooms.Len()
}
