package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// Router is the behavioral core of the relay. It exposes one method per
// inbound client call, consults the registries, applies the message
// validator, and fans outbound events to one connection, a group, or
// everyone. It owns the connection→sink arena but no other long-lived
// state; registries are injected so tests can substitute doubles.
//
// Each operation is atomic with respect to registry state but not
// transactional across sends: a registry update can succeed while a
// downstream push fails, and such failures are logged, never rolled back.
type Router struct {
	log       *slog.Logger
	sessions  contract.ISessionRegistry
	groups    contract.IGroupRegistry
	validator contract.MessageValidator

	mu    sync.RWMutex
	sinks map[domain.ConnectionID]contract.EventSink
}

func NewRouter(log *slog.Logger, sessions contract.ISessionRegistry,
	groups contract.IGroupRegistry, validator contract.MessageValidator) *Router {
	return &Router{
		log:       log,
		sessions:  sessions,
		groups:    groups,
		validator: validator,
		sinks:     make(map[domain.ConnectionID]contract.EventSink),
	}
}

// Dispatch routes one decoded inbound operation to its handler. The union
// is closed; an operation outside it means a transport bug, surfaced to
// the caller like any other group error.
func (r *Router) Dispatch(ctx context.Context, conn domain.ConnectionID, op domain.Operation) {
	switch o := op.(type) {
	case domain.SendMessage:
		r.SendMessage(ctx, conn, o.DisplayName, o.Text)
	case domain.SendGroupMessage:
		r.SendGroupMessage(ctx, conn, o.DisplayName, o.GroupName, o.Text)
	case domain.JoinGroup:
		r.JoinGroup(ctx, conn, o.GroupName)
	case domain.LeaveGroup:
		r.LeaveGroup(ctx, conn, o.GroupName)
	case domain.GetAvailableGroups:
		r.GetAvailableGroups(ctx, conn)
	case domain.RegisterUsername:
		r.RegisterUsername(ctx, conn, o.DisplayName)
	case domain.Ping:
		r.Ping(ctx, conn)
	default:
		r.log.Warn("Unknown operation", "conn", conn, "target", op.Target())
		r.sendTo(ctx, conn, event.GroupError{Message: errors.ErrUnknownTarget.Error()})
	}
}

// Connect registers the connection's sink, auto-joins General unless the
// connection already belongs to it (guards against duplicate auto-join on
// reconnect with the same id), and announces the arrival to everyone
// else. No display name exists yet, so the connection id is the label.
func (r *Router) Connect(ctx context.Context, conn domain.ConnectionID, sink contract.EventSink) {
	r.mu.Lock()
	r.sinks[conn] = sink
	total := len(r.sinks)
	r.mu.Unlock()

	r.log.Info("Connection established", "conn", conn, "total", total)

	if !r.groups.IsMember(conn, domain.GeneralGroup) {
		r.JoinGroup(ctx, conn, domain.GeneralGroup)
	}
	r.sendToAllExcept(ctx, conn, event.UserConnected{Label: conn.String()})
}

// Disconnect tears the connection down: session removed (capturing the
// resolved label), memberships removed (capturing the prior set), one
// departure notice per prior group, a global presence notice to everyone
// else, then the refreshed name list to everyone remaining. Safe to run
// even while an in-flight send from the same connection races it; the
// registry locks are what prevent corruption, not sequencing.
func (r *Router) Disconnect(ctx context.Context, conn domain.ConnectionID) {
	label := r.sessions.NameOf(conn)
	r.sessions.Remove(conn)
	groups := r.groups.RemoveConnection(conn)

	for _, group := range groups {
		r.sendToGroup(ctx, group, event.UserLeftGroup{User: label, Group: group})
	}
	r.sendToAllExcept(ctx, conn, event.UserDisconnected{Label: label})

	r.mu.Lock()
	delete(r.sinks, conn)
	total := len(r.sinks)
	r.mu.Unlock()

	r.sendToAll(ctx, event.UpdateUserList{Names: r.sessions.ListNames()})
	r.log.Info("Connection closed", "conn", conn, "label", label, "total", total)
}

// SendMessage validates the text, upserts the session when the carried
// display name differs from the stored one (sending is an implicit
// registration/rename), and broadcasts globally. The name list is only
// re-broadcast when the stored list actually changed, which avoids a
// list-broadcast storm on every message once a name is stable.
func (r *Router) SendMessage(ctx context.Context, conn domain.ConnectionID, displayName, text string) {
	if err := r.validator.Check(ctx, displayName, text); err != nil {
		r.log.Warn("Message rejected", "conn", conn, "sender", displayName, "reason", err)
		r.sendTo(ctx, conn, event.GroupError{Message: err.Error()})
		return
	}

	r.upsertSessionIfChanged(ctx, conn, displayName)
	r.sendToAll(ctx, event.ReceiveMessage{User: displayName, Text: text})
}

// SendGroupMessage requires membership, then applies the same validation
// gate before a group-scoped broadcast. Non-members get a caller-only
// error and nothing is sent anywhere else.
func (r *Router) SendGroupMessage(ctx context.Context, conn domain.ConnectionID, displayName, group, text string) {
	if !r.groups.IsMember(conn, group) {
		r.sendTo(ctx, conn, event.GroupError{Message: errors.NotAMember(group).Error()})
		return
	}
	if err := r.validator.Check(ctx, displayName, text); err != nil {
		r.log.Warn("Group message rejected", "conn", conn, "group", group, "reason", err)
		r.sendTo(ctx, conn, event.GroupError{Message: err.Error()})
		return
	}

	r.sendToGroup(ctx, group, event.ReceiveGroupMessage{User: displayName, Group: group, Text: text})
}

// JoinGroup adds the membership (idempotently) and always confirms to the
// caller, notifies the rest of the group with the resolved display name,
// and refreshes the caller's personal group list.
func (r *Router) JoinGroup(ctx context.Context, conn domain.ConnectionID, group string) {
	r.groups.Join(conn, group)

	r.sendTo(ctx, conn, event.JoinedGroup{Group: group})
	r.sendToGroupExcept(ctx, group, conn, event.UserJoinedGroup{User: r.sessions.NameOf(conn), Group: group})
	r.sendUserGroups(ctx, conn)
}

// LeaveGroup is symmetric to JoinGroup. Leaving General is dropped at the
// registry layer, yet the caller still receives a "left" confirmation;
// that mismatch mirrors the original product behavior and is kept as-is.
// The departure notice to other members is only sent when membership
// actually changed.
func (r *Router) LeaveGroup(ctx context.Context, conn domain.ConnectionID, group string) {
	wasMember := r.groups.IsMember(conn, group)
	r.groups.Leave(conn, group)

	r.sendTo(ctx, conn, event.LeftGroup{Group: group})
	if wasMember && group != domain.GeneralGroup {
		r.sendToGroup(ctx, group, event.UserLeftGroup{User: r.sessions.NameOf(conn), Group: group})
	}
	r.sendUserGroups(ctx, conn)
}

// GetAvailableGroups sends the caller the full catalog annotated with the
// caller's current memberships.
func (r *Router) GetAvailableGroups(ctx context.Context, conn domain.ConnectionID) {
	groups := lo.Map(r.groups.Catalog(), func(g domain.Group, _ int) domain.GroupStatus {
		return domain.GroupStatus{
			Name:        g.Name,
			Description: g.Description,
			IsJoined:    r.groups.IsMember(conn, g.Name),
		}
	})
	r.sendTo(ctx, conn, event.AvailableGroups{Groups: groups})
}

// RegisterUsername is the explicit set/rename path. A real rename notifies
// every group the connection belongs to, then everyone gets the refreshed
// name list. Registering the currently-held name is a no-op.
func (r *Router) RegisterUsername(ctx context.Context, conn domain.ConnectionID, displayName string) {
	old, changed := r.sessions.RegisterOrRename(conn, displayName)
	if !changed {
		return
	}

	if old != "" {
		for _, group := range r.groups.MembershipsOf(conn) {
			r.sendToGroup(ctx, group, event.UserRenamedInGroup{OldName: old, NewName: displayName, Group: group})
		}
	}
	r.sendToAll(ctx, event.UpdateUserList{Names: r.sessions.ListNames()})
}

// Ping answers the caller immediately and touches no state.
func (r *Router) Ping(ctx context.Context, conn domain.ConnectionID) {
	r.sendTo(ctx, conn, event.Pong{})
}

// upsertSessionIfChanged is the implicit-registration step of SendMessage,
// kept explicit here rather than hidden in a constructor path.
func (r *Router) upsertSessionIfChanged(ctx context.Context, conn domain.ConnectionID, displayName string) {
	if _, changed := r.sessions.RegisterOrRename(conn, displayName); changed {
		r.sendToAll(ctx, event.UpdateUserList{Names: r.sessions.ListNames()})
	}
}

// sendUserGroups refreshes the caller's personal group list, resolving
// catalog descriptions and falling back to empty ones for ad-hoc groups.
func (r *Router) sendUserGroups(ctx context.Context, conn domain.ConnectionID) {
	groups := lo.Map(r.groups.MembershipsOf(conn), func(name string, _ int) domain.Group {
		return r.groups.Describe(name)
	})
	r.sendTo(ctx, conn, event.UpdateUserGroups{Groups: groups})
}

func (r *Router) sinkOf(conn domain.ConnectionID) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[conn]
	return sink, ok
}

// snapshot copies the current sinks so a fan-out never iterates under the
// arena lock while pushing to possibly slow recipients.
func (r *Router) snapshot() map[domain.ConnectionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sinks := make(map[domain.ConnectionID]contract.EventSink, len(r.sinks))
	for conn, sink := range r.sinks {
		sinks[conn] = sink
	}
	return sinks
}

func (r *Router) sendTo(ctx context.Context, conn domain.ConnectionID, e event.Event) {
	sink, ok := r.sinkOf(conn)
	if !ok {
		return
	}
	r.push(ctx, conn, sink, e)
}

func (r *Router) sendToAll(ctx context.Context, e event.Event) {
	for conn, sink := range r.snapshot() {
		r.push(ctx, conn, sink, e)
	}
}

func (r *Router) sendToAllExcept(ctx context.Context, skip domain.ConnectionID, e event.Event) {
	for conn, sink := range r.snapshot() {
		if conn == skip {
			continue
		}
		r.push(ctx, conn, sink, e)
	}
}

func (r *Router) sendToGroup(ctx context.Context, group string, e event.Event) {
	for _, conn := range r.groups.MembersOf(group) {
		r.sendTo(ctx, conn, e)
	}
}

func (r *Router) sendToGroupExcept(ctx context.Context, group string, skip domain.ConnectionID, e event.Event) {
	for _, conn := range r.groups.MembersOf(group) {
		if conn == skip {
			continue
		}
		r.sendTo(ctx, conn, e)
	}
}

// push delivers one event to one recipient. A failure is that recipient's
// alone: it is logged and the rest of the fan-out continues.
func (r *Router) push(ctx context.Context, conn domain.ConnectionID, sink contract.EventSink, e event.Event) {
	if err := sink.Consume(ctx, e); err != nil {
		r.log.Warn(fmt.Sprintf("Failed to push %s", e.Target()), "conn", conn, "error", err)
	}
}

// Connections lists the currently registered connection ids, for the
// inspect page. Order is unspecified.
func (r *Router) Connections() []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]domain.ConnectionID, 0, len(r.sinks))
	for conn := range r.sinks {
		conns = append(conns, conn)
	}
	return conns
}

// Stats reports live counts for the telemetry worker and debug page.
func (r *Router) Stats() map[string]any {
	r.mu.RLock()
	connections := len(r.sinks)
	r.mu.RUnlock()

	return map[string]any{
		"Connections": connections,
		"Named":       len(r.sessions.ListNames()),
		"Catalog":     len(r.groups.Catalog()),
	}
}
