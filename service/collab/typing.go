package collab

import (
	"sync"
	"time"
)

// TypingEntry is the transient "currently typing" state for one user in one
// room.
type TypingEntry struct {
	UserID    string
	Username  string
	SceneID   string
	UpdatedAt time.Time
}

type TypingConf struct {
	TTL        time.Duration    // entry lifetime after the last upsert (default 30s)
	SweepEvery time.Duration    // sweeper period (default 5s)
	Clock      func() time.Time // injectable for tests; nil => time.Now
}

func (c *TypingConf) norm() {
	if c.TTL <= 0 {
		c.TTL = 30 * time.Second
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = 5 * time.Second
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
}

// TypingTracker keeps per-room typing indicators. Entries go away three
// ways: an explicit stopped-typing event, disconnect cleanup, or the TTL
// sweeper, which covers clients that silently stop sending.
type TypingTracker struct {
	mu    sync.Mutex
	rooms map[RoomID]map[string]*TypingEntry // roomID -> userID -> entry

	conf     TypingConf
	onExpire func(room RoomID, entry TypingEntry) // called outside the lock

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewTypingTracker starts the TTL sweeper. onExpire may be nil.
func NewTypingTracker(conf TypingConf, onExpire func(RoomID, TypingEntry)) *TypingTracker {
	conf.norm()
	t := &TypingTracker{
		rooms:    make(map[RoomID]map[string]*TypingEntry),
		conf:     conf,
		onExpire: onExpire,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.sweeper()
	return t
}

// Close stops the sweeper and waits for it to exit, so no expiry callback
// can fire after Close returns.
func (t *TypingTracker) Close() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	<-t.done
}

// Set upserts the typing entry for (room, user).
func (t *TypingTracker) Set(room RoomID, userID, username, sceneID string) TypingEntry {
	now := t.conf.Clock()
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.rooms[room]
	if m == nil {
		m = make(map[string]*TypingEntry)
		t.rooms[room] = m
	}
	e := &TypingEntry{UserID: userID, Username: username, SceneID: sceneID, UpdatedAt: now}
	m[userID] = e
	return *e
}

// Clear removes the entry; reports whether one existed.
func (t *TypingTracker) Clear(room RoomID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clearLocked(room, userID)
}

func (t *TypingTracker) clearLocked(room RoomID, userID string) bool {
	m := t.rooms[room]
	if m == nil {
		return false
	}
	if _, ok := m[userID]; !ok {
		return false
	}
	delete(m, userID)
	if len(m) == 0 {
		delete(t.rooms, room)
	}
	return true
}

// PurgeUser is Clear for the disconnect path; it returns the removed entry
// so the caller can emit a final stopped-typing notice.
func (t *TypingTracker) PurgeUser(room RoomID, userID string) (TypingEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.rooms[room]
	e, ok := m[userID]
	if !ok {
		return TypingEntry{}, false
	}
	out := *e
	t.clearLocked(room, userID)
	return out, true
}

// Snapshot copies the room's current typing entries for late joiners.
func (t *TypingTracker) Snapshot(room RoomID) []TypingEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := t.rooms[room]
	out := make([]TypingEntry, 0, len(m))
	for _, e := range m {
		out = append(out, *e)
	}
	return out
}

func (t *TypingTracker) sweeper() {
	defer close(t.done)
	ticker := time.NewTicker(t.conf.SweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			t.SweepOnce(t.conf.Clock())
		}
	}
}

// SweepOnce expires entries older than TTL. Exported so tests can drive it
// with a fake clock instead of waiting out the ticker.
func (t *TypingTracker) SweepOnce(now time.Time) {
	type expired struct {
		room  RoomID
		entry TypingEntry
	}
	var victims []expired

	t.mu.Lock()
	for room, m := range t.rooms {
		for userID, e := range m {
			if now.Sub(e.UpdatedAt) >= t.conf.TTL {
				victims = append(victims, expired{room: room, entry: *e})
				delete(m, userID)
			}
		}
		if len(m) == 0 {
			delete(t.rooms, room)
		}
	}
	t.mu.Unlock()

	// notify outside the lock
	if t.onExpire != nil {
		for _, v := range victims {
			t.onExpire(v.room, v.entry)
		}
	}
}
