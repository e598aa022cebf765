//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

// EventSink receives outbound events for one connection. Implementations
// must not block the caller beyond their own buffering policy; a full or
// dead sink fails fast so a fan-out never stalls on one recipient.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// ISessionRegistry is the single source of truth for who is online.
type ISessionRegistry interface {
	RegisterOrRename(conn domain.ConnectionID, displayName string) (old string, changed bool)
	Remove(conn domain.ConnectionID) (name string, ok bool)
	ListNames() []string
	NameOf(conn domain.ConnectionID) string
}

// IGroupRegistry tracks group memberships per connection.
type IGroupRegistry interface {
	Join(conn domain.ConnectionID, group string)
	Leave(conn domain.ConnectionID, group string)
	IsMember(conn domain.ConnectionID, group string) bool
	MembershipsOf(conn domain.ConnectionID) []string
	MembersOf(group string) []domain.ConnectionID
	RemoveConnection(conn domain.ConnectionID) []string
	Catalog() []domain.Group
	Describe(group string) domain.Group
}

// MessageValidator is the pluggable accept/reject gate applied to message
// text before any broadcast. A nil return accepts; a rejection explains
// itself through the error. Implementations must not mutate chat state.
type MessageValidator interface {
	Check(ctx context.Context, sender, text string) error
}

// IRouter exposes one method per inbound client call plus the transport
// lifecycle hooks. All registry state is mutated through it.
type IRouter interface {
	Connect(ctx context.Context, conn domain.ConnectionID, sink EventSink)
	Disconnect(ctx context.Context, conn domain.ConnectionID)
	Dispatch(ctx context.Context, conn domain.ConnectionID, op domain.Operation)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
