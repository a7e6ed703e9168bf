package collab

import (
	"sort"
	"sync"

	"Alvin/tools/errs"
)

// RoomDirectory tracks which connections occupy which rooms. Both directions
// of the relation mutate under one lock so the room->conn and conn->room
// views can never diverge. It stores conn IDs only; owning records stay in
// the ConnRegistry.
type RoomDirectory struct {
	mu    sync.RWMutex
	rooms map[RoomID]map[string]struct{}
	conns map[string]map[RoomID]struct{}
}

func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{
		rooms: make(map[RoomID]map[string]struct{}),
		conns: make(map[string]map[RoomID]struct{}),
	}
}

// Join adds the connection to the room after the supplied authorization
// check passes. The check runs before the lock is taken: it wraps an
// external call and must not stall other membership changes. A denied check
// mutates nothing. Joining an already-occupied room is idempotent. Returns
// the occupant snapshot after the join, the joiner included.
func (d *RoomDirectory) Join(room RoomID, connID string, allow func() bool) ([]string, error) {
	if allow != nil && !allow() {
		return nil, errs.ErrAccessDenied.WithDetail(string(room))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	occ := d.rooms[room]
	if occ == nil {
		occ = make(map[string]struct{})
		d.rooms[room] = occ
	}
	occ[connID] = struct{}{}

	rs := d.conns[connID]
	if rs == nil {
		rs = make(map[RoomID]struct{})
		d.conns[connID] = rs
	}
	rs[room] = struct{}{}

	return snapshotSet(occ), nil
}

// Leave removes the connection from the room, both directions in the same
// step. No-op if either side was already absent.
func (d *RoomDirectory) Leave(room RoomID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.leaveLocked(room, connID)
}

func (d *RoomDirectory) leaveLocked(room RoomID, connID string) {
	if occ := d.rooms[room]; occ != nil {
		delete(occ, connID)
		if len(occ) == 0 {
			delete(d.rooms, room)
		}
	}
	if rs := d.conns[connID]; rs != nil {
		delete(rs, room)
		if len(rs) == 0 {
			delete(d.conns, connID)
		}
	}
}

// Occupants returns a snapshot of the room's conn IDs. Empty or unknown
// rooms yield an empty slice, never an error.
func (d *RoomDirectory) Occupants(room RoomID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshotSet(d.rooms[room])
}

func (d *RoomDirectory) Contains(room RoomID, connID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[room][connID]
	return ok
}

// Rooms returns the rooms a connection currently occupies.
func (d *RoomDirectory) Rooms(connID string) []RoomID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rs := d.conns[connID]
	out := make([]RoomID, 0, len(rs))
	for room := range rs {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PurgeConnection removes the connection from every room it occupied and
// returns the affected rooms so departure events can be emitted per room.
// Idempotent: purging an unknown connection returns an empty list.
func (d *RoomDirectory) PurgeConnection(connID string) []RoomID {
	d.mu.Lock()
	defer d.mu.Unlock()

	rs := d.conns[connID]
	if len(rs) == 0 {
		delete(d.conns, connID)
		return nil
	}
	out := make([]RoomID, 0, len(rs))
	for room := range rs {
		out = append(out, room)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	for _, room := range out {
		d.leaveLocked(room, connID)
	}
	return out
}

func snapshotSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
