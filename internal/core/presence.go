package core

import "sync"

// Presence tracks which users currently hold an active connection.
//
// Entries are keyed by user ID with last-write-wins semantics: a reconnect
// supersedes the earlier connection without closing it. All mutation happens
// on the hub goroutine; the read lock only exists so HTTP handlers can take
// snapshots concurrently.
type Presence struct {
	mu      sync.RWMutex
	entries map[int64]*Client
}

// NewPresence creates an empty presence registry.
func NewPresence() *Presence {
	return &Presence{entries: make(map[int64]*Client)}
}

// Register upserts the client as the canonical connection for its user.
func (p *Presence) Register(c *Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[c.Identity.UserID] = c
}

// Unregister removes the client's entry. It reports whether an entry was
// removed: a stale disconnect racing a fresh reconnect finds a different
// handle under its user ID and must leave it alone.
func (p *Presence) Unregister(c *Client) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	current, ok := p.entries[c.Identity.UserID]
	if !ok || current != c {
		return false
	}
	delete(p.entries, c.Identity.UserID)
	return true
}

// Online returns a snapshot of online identities. A non-zero excluding ID
// is left out, which serves the "who else is online" view.
func (p *Presence) Online(excluding int64) []Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	users := make([]Identity, 0, len(p.entries))
	for _, c := range p.entries {
		if excluding != 0 && c.Identity.UserID == excluding {
			continue
		}
		users = append(users, c.Identity)
	}
	return users
}

// Clients returns a snapshot of the canonical connection handles.
func (p *Presence) Clients() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clients := make([]*Client, 0, len(p.entries))
	for _, c := range p.entries {
		clients = append(clients, c)
	}
	return clients
}
