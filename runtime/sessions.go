// Package runtime owns the shared connection state of the relay: the
// session and group registries and the router that mediates every
// mutation. Transport callbacks never touch registry state directly.
package runtime

import (
	"strings"
	"sync"

	"chat-relay/domain"
)

// SessionRegistry maps connection identity to display name. It is the
// single source of truth for who is online. All mutating operations are
// atomic per registry, which is what keeps a concurrent rename and
// disconnect from losing updates.
type SessionRegistry struct {
	mu    sync.RWMutex
	names map[domain.ConnectionID]string
	order []domain.ConnectionID // registration order, drives ListNames
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{names: make(map[domain.ConnectionID]string)}
}

// RegisterOrRename upserts the display name for a connection. It returns
// the previous name when this is a rename, and whether the stored state
// actually changed. Empty or whitespace-only names are rejected as a
// defensive no-op even though callers validate first.
func (r *SessionRegistry) RegisterOrRename(conn domain.ConnectionID, displayName string) (string, bool) {
	if strings.TrimSpace(displayName) == "" {
		return "", false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.names[conn]
	if exists && old == displayName {
		return old, false
	}
	if !exists {
		r.order = append(r.order, conn)
	}
	r.names[conn] = displayName
	return old, true
}

// Remove deletes the session and returns the name that was registered.
// ok is false when the connection never registered a name.
func (r *SessionRegistry) Remove(conn domain.ConnectionID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.names[conn]
	if !ok {
		return "", false
	}
	delete(r.names, conn)
	for i, c := range r.order {
		if c == conn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return name, true
}

// ListNames returns the current display names in registration order.
// No sorting guarantee is made; UIs re-sort as they see fit.
func (r *SessionRegistry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.order))
	for _, conn := range r.order {
		if name, ok := r.names[conn]; ok {
			names = append(names, name)
		}
	}
	return names
}

// NameOf resolves the display label for a connection. When no name is
// registered the connection's own identity token is the label. This
// fallback is observable behavior, not an error.
func (r *SessionRegistry) NameOf(conn domain.ConnectionID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name, ok := r.names[conn]; ok {
		return name
	}
	return conn.String()
}
