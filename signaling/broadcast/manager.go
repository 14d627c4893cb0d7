// Package broadcast is the push transport: room members hold persistent
// WebSocket connections and receive signals as they are submitted.
// Fan-out is best-effort; a member whose outbound buffer is full is
// silently skipped.
package broadcast

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/streamcam/backend/internal/log"
	"github.com/streamcam/backend/signaling"
)

// Manager tracks which connections belong to which room and fans frames
// out to room members.
type Manager struct {
	room2clients map[string]map[string]*client // roomId -> connId -> client
	client2room  map[string]string             // connId -> roomId
	mu           sync.RWMutex
	logger       *log.Logger
}

var _ signaling.Transport = (*Manager)(nil)

func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		room2clients: make(map[string]map[string]*client),
		client2room:  make(map[string]string),
		logger:       logger.Module("manager"),
	}
}

// Join tags the connection with a room and returns the members present
// before the join. A connection belongs to at most one room; a second
// join is ignored.
func (m *Manager) Join(c *client, roomID string) (prior []*client, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.client2room[c.id]; exists {
		return nil, false
	}

	room, exists := m.room2clients[roomID]
	if !exists {
		room = make(map[string]*client)
		m.room2clients[roomID] = room
	}
	for _, member := range room {
		prior = append(prior, member)
	}

	room[c.id] = c
	m.client2room[c.id] = roomID

	m.logger.Debug("Client joined",
		log.String("connId", c.id),
		log.String("userId", c.userID),
		log.String("roomId", roomID),
	)
	return prior, true
}

// Remove drops the connection from its room; the room entry disappears
// with its last member. Called on connection close.
func (m *Manager) Remove(c *client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID, ok := m.client2room[c.id]
	if !ok {
		return
	}
	if room, ok := m.room2clients[roomID]; ok {
		delete(room, c.id)
		if len(room) == 0 {
			delete(m.room2clients, roomID)
		}
	}
	delete(m.client2room, c.id)

	m.logger.Debug("Client removed from room",
		log.String("connId", c.id),
		log.String("roomId", roomID),
	)
}

// RoomOf returns the room the connection joined, if any.
func (m *Manager) RoomOf(c *client) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	roomID, ok := m.client2room[c.id]
	return roomID, ok
}

func (m *Manager) members(roomID string) []*client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room := m.room2clients[roomID]
	if room == nil {
		return nil
	}
	members := make([]*client, 0, len(room))
	for _, c := range room {
		members = append(members, c)
	}
	return members
}

func (m *Manager) deliver(roomID string, c *client, frame any) {
	if c.send(frame) {
		framesDelivered.Add(context.Background(), 1)
		return
	}
	framesDropped.Add(context.Background(), 1)
	m.logger.Debug("Member not ready, frame skipped",
		log.String("connId", c.id),
		log.String("roomId", roomID),
	)
}

// Submit routes a signal to a specific peer's connections, or to every
// member except the sender when to is signaling.RecipientAll.
func (m *Manager) Submit(roomID, from, to string, payload json.RawMessage) {
	frame := signalFrame{Type: frameSignal, From: from, Payload: payload}
	for _, c := range m.members(roomID) {
		if to == signaling.RecipientAll {
			if c.userID == from {
				continue
			}
		} else if c.userID != to {
			continue
		}
		m.deliver(roomID, c, frame)
	}
}

// Fanout delivers a signal to every member of the room, excluding the
// sender's connections unless includeSender is set.
func (m *Manager) Fanout(roomID, from string, payload json.RawMessage, includeSender bool) {
	frame := signalFrame{Type: frameSignal, From: from, Payload: payload}
	for _, c := range m.members(roomID) {
		if !includeSender && c.userID == from {
			continue
		}
		m.deliver(roomID, c, frame)
	}
}

// Presence lists the distinct user ids currently connected to the room.
func (m *Manager) Presence(roomID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room := m.room2clients[roomID]
	if room == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(room))
	for _, c := range room {
		seen[c.userID] = struct{}{}
	}
	users := make([]string, 0, len(seen))
	for userID := range seen {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// NotifyLive fans the confirmed live flag to every member of the room,
// the originator included.
func (m *Manager) NotifyLive(roomID string, isLive bool) {
	frame := liveFrame{Type: frameLive, IsLive: isLive}
	for _, c := range m.members(roomID) {
		m.deliver(roomID, c, frame)
	}
}

func (m *Manager) notifyPeerJoined(roomID string, members []*client, userID string) {
	frame := peerJoinedFrame{Type: framePeerJoined, UserID: userID}
	for _, c := range members {
		m.deliver(roomID, c, frame)
	}
}
