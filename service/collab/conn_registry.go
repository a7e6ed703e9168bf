package collab

import "sync"

// ConnRegistry owns the lifecycle of authenticated connections. It is the
// only place a *Client lives after the connect handshake; every other
// component holds conn IDs and resolves them here at use time.
type ConnRegistry struct {
	mu     sync.RWMutex
	byConn map[string]*Client
	byUser map[string]map[string]*Client // userID -> connID -> client
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		byConn: make(map[string]*Client),
		byUser: make(map[string]map[string]*Client),
	}
}

func (r *ConnRegistry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byConn[c.ConnID] = c
	m := r.byUser[c.UserID]
	if m == nil {
		m = make(map[string]*Client)
		r.byUser[c.UserID] = m
	}
	m[c.ConnID] = c
}

func (r *ConnRegistry) Lookup(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byConn[connID]
	return c, ok
}

// Unregister removes the connection. Idempotent: a second call for the same
// ID reports ok=false and changes nothing, because disconnect handlers may
// race or run twice.
func (r *ConnRegistry) Unregister(connID string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byConn[connID]
	if !ok {
		return nil, false
	}
	delete(r.byConn, connID)
	if m := r.byUser[c.UserID]; m != nil {
		delete(m, connID)
		if len(m) == 0 {
			delete(r.byUser, c.UserID)
		}
	}
	return c, true
}

// Resolve maps conn IDs to live clients, skipping IDs that disconnected
// since the caller snapshotted them. excludeConnID drops the sender from a
// fan-out target list; pass "" to keep everyone.
func (r *ConnRegistry) Resolve(connIDs []string, excludeConnID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(connIDs))
	for _, id := range connIDs {
		if id == excludeConnID {
			continue
		}
		if c, ok := r.byConn[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// UserConnCount reports how many live connections a user has.
func (r *ConnRegistry) UserConnCount(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID])
}

func (r *ConnRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
