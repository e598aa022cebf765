package runtime

import (
	"sync"

	"chat-relay/domain"
)

type Set map[string]struct{}

// GroupRegistry maps each connection to the set of group names it joined
// and carries the static catalog metadata. Membership in General is never
// removed while the connection is alive; a leave on it is silently
// absorbed here and surfaced (or not) by the router.
type GroupRegistry struct {
	mu      sync.RWMutex
	members map[domain.ConnectionID]Set
	catalog []domain.Group
}

func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{
		members: make(map[domain.ConnectionID]Set),
		catalog: domain.DefaultCatalog(),
	}
}

// Join adds a membership. Joining twice is a no-op, not an error, and
// joining a name outside the catalog implicitly creates the membership
// without catalog metadata.
func (r *GroupRegistry) Join(conn domain.ConnectionID, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[conn]; !ok {
		r.members[conn] = make(Set)
	}
	r.members[conn][group] = struct{}{}
}

// Leave removes a membership if present. Leaving General is dropped.
func (r *GroupRegistry) Leave(conn domain.ConnectionID, group string) {
	if group == domain.GeneralGroup {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if groups, ok := r.members[conn]; ok {
		delete(groups, group)
		if len(groups) == 0 {
			delete(r.members, conn)
		}
	}
}

func (r *GroupRegistry) IsMember(conn domain.ConnectionID, group string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[conn][group]
	return ok
}

// MembershipsOf returns the group names the connection belongs to.
// Order is unspecified.
func (r *GroupRegistry) MembershipsOf(conn domain.ConnectionID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]string, 0, len(r.members[conn]))
	for group := range r.members[conn] {
		groups = append(groups, group)
	}
	return groups
}

// MembersOf returns the connections currently joined to a group. Order is
// unspecified. Returns nil for a group nobody joined.
func (r *GroupRegistry) MembersOf(group string) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []domain.ConnectionID
	for conn, groups := range r.members {
		if _, ok := groups[group]; ok {
			members = append(members, conn)
		}
	}
	return members
}

// RemoveConnection drops every membership of the connection and returns
// the groups it was in, so the caller can emit per-group departure
// notices before discarding them.
func (r *GroupRegistry) RemoveConnection(conn domain.ConnectionID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	groups := make([]string, 0, len(r.members[conn]))
	for group := range r.members[conn] {
		groups = append(groups, group)
	}
	delete(r.members, conn)
	return groups
}

// Catalog returns the static seed list in display order. IsJoined is
// computed per caller at query time, not stored here.
func (r *GroupRegistry) Catalog() []domain.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := make([]domain.Group, len(r.catalog))
	copy(catalog, r.catalog)
	return catalog
}

// Describe resolves catalog metadata for a group name, falling back to an
// empty description for ad-hoc groups.
func (r *GroupRegistry) Describe(group string) domain.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.catalog {
		if g.Name == group {
			return g
		}
	}
	return domain.Group{Name: group}
}
