package runtime

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
)

func TestSessionRegistry_RegisterOrRename(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	conn := domain.ConnectionID(uuid.NewString())

	// When a connection registers for the first time
	old, changed := registry.RegisterOrRename(conn, "alice")

	// Then there is no previous name and the state changed
	req.Empty(old)
	req.True(changed)
	req.Equal("alice", registry.NameOf(conn))

	// When the same name is registered again
	old, changed = registry.RegisterOrRename(conn, "alice")

	// Then nothing changed
	req.Equal("alice", old)
	req.False(changed)

	// When the connection renames
	old, changed = registry.RegisterOrRename(conn, "alicia")

	// Then the previous name is returned
	req.Equal("alice", old)
	req.True(changed)
	req.Equal("alicia", registry.NameOf(conn))
}

func TestSessionRegistry_RejectsBlankNames(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	conn := domain.ConnectionID(uuid.NewString())

	for _, name := range []string{"", "   ", "\t\n"} {
		_, changed := registry.RegisterOrRename(conn, name)
		req.False(changed)
	}
	req.Empty(registry.ListNames())
}

func TestSessionRegistry_ListNames_InsertionOrder(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	a := domain.ConnectionID("conn-a")
	b := domain.ConnectionID("conn-b")
	c := domain.ConnectionID("conn-c")

	registry.RegisterOrRename(a, "alice")
	registry.RegisterOrRename(b, "bob")
	registry.RegisterOrRename(c, "carol")

	// Renaming does not move a connection in the order
	registry.RegisterOrRename(a, "alicia")

	req.Equal([]string{"alicia", "bob", "carol"}, registry.ListNames())
}

func TestSessionRegistry_Remove(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	conn := domain.ConnectionID(uuid.NewString())

	// Removing an unregistered connection reports absence
	name, ok := registry.Remove(conn)
	req.False(ok)
	req.Empty(name)

	registry.RegisterOrRename(conn, "alice")

	name, ok = registry.Remove(conn)
	req.True(ok)
	req.Equal("alice", name)
	req.Empty(registry.ListNames())

	// After removal the identity token is the label again
	req.Equal(conn.String(), registry.NameOf(conn))
}

func TestSessionRegistry_ConcurrentRenameAndRemove(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	conn := domain.ConnectionID(uuid.NewString())
	registry.RegisterOrRename(conn, "alice")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.RegisterOrRename(conn, "alicia")
		}()
		go func() {
			defer wg.Done()
			registry.Remove(conn)
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, the registry is coherent: either
	// the session exists with the new name or it is gone entirely.
	names := registry.ListNames()
	if len(names) == 1 {
		req.Equal("alicia", names[0])
	} else {
		req.Empty(names)
	}
}
