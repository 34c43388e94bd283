package pkg

import (
	"fmt"
	"sort"
	"sync"
)

// Outbound is the delivery end of a connection owned by a room. Send must not
// block: implementations make a single bounded attempt and report
// ErrConnectionClosed when the peer is gone or its buffer is exhausted.
type Outbound interface {
	Send(data []byte) error
}

// RoomInfo is a point-in-time view of one room, shaped for the rooms_info response.
type RoomInfo struct {
	CurrentPlayerCount int      `json:"currentPlayerCount"`
	MaxPlayers         int      `json:"maxPlayers"`
	PlayerIDs          []string `json:"playerIds"`
}

type room struct {
	capacity int
	members  map[string]Outbound
}

// Registry owns the room map. Rooms are created lazily on the first join
// targeting them and deleted exactly when their last member leaves.
type Registry struct {
	lock     sync.RWMutex
	capacity int
	rooms    map[string]*room
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		rooms:    make(map[string]*room),
	}
}

// Join inserts the player into the named room, creating the room if needed.
// A join past capacity fails with ErrRoomFull and leaves membership untouched.
func (r *Registry) Join(roomID, playerID string, conn Outbound) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{
			capacity: r.capacity,
			members:  make(map[string]Outbound),
		}
		r.rooms[roomID] = rm
		RoomsGauge.Inc()
	}

	if len(rm.members) >= rm.capacity {
		return fmt.Errorf("join %s in room %s: %w", playerID, roomID, ErrRoomFull)
	}

	rm.members[playerID] = conn
	return nil
}

// Leave removes the player from the room. Removing an absent player is a
// no-op. A room whose membership drops to zero is deleted immediately.
func (r *Registry) Leave(roomID, playerID string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return
	}

	delete(rm.members, playerID)

	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		RoomsGauge.Dec()
	}
}

// SendToPlayer makes a single delivery attempt to the named member. Failures
// are reported to the caller, never retried.
func (r *Registry) SendToPlayer(roomID, playerID string, data []byte) error {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return fmt.Errorf("send to %s in room %s: %w", playerID, roomID, ErrRoomNotFound)
	}

	conn, ok := rm.members[playerID]
	if !ok {
		return fmt.Errorf("send to %s in room %s: %w", playerID, roomID, ErrPlayerNotFound)
	}

	if err := conn.Send(data); err != nil {
		return fmt.Errorf("send to %s in room %s: %w", playerID, roomID, err)
	}

	return nil
}

// Broadcast delivers data to every member of the room, observing a consistent
// membership snapshot for the duration of the fan-out. Per-member failures are
// collected and returned; a missing room broadcasts to nobody.
func (r *Registry) Broadcast(roomID string, data []byte) []error {
	r.lock.RLock()
	defer r.lock.RUnlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	var errs []error
	for playerID, conn := range rm.members {
		if err := conn.Send(data); err != nil {
			errs = append(errs, fmt.Errorf("broadcast to %s in room %s: %w", playerID, roomID, err))
		}
	}

	return errs
}

// Snapshot returns a point-in-time view of every room. Member IDs are sorted
// so that two snapshots of identical state compare equal.
func (r *Registry) Snapshot() map[string]RoomInfo {
	r.lock.RLock()
	defer r.lock.RUnlock()

	info := make(map[string]RoomInfo, len(r.rooms))
	for roomID, rm := range r.rooms {
		ids := make([]string, 0, len(rm.members))
		for playerID := range rm.members {
			ids = append(ids, playerID)
		}
		sort.Strings(ids)

		info[roomID] = RoomInfo{
			CurrentPlayerCount: len(rm.members),
			MaxPlayers:         rm.capacity,
			PlayerIDs:          ids,
		}
	}

	return info
}
