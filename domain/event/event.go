// Package event defines the closed union of outbound events the router
// pushes to connected clients. Each event maps to one named client method.
package event

import "chat-relay/domain"

// Event is implemented by every outbound push. Target returns the client
// method name used on the wire.
type Event interface {
	Target() string
}

type ReceiveMessage struct {
	User string
	Text string
}

func (ReceiveMessage) Target() string { return "ReceiveMessage" }

type ReceiveGroupMessage struct {
	User  string
	Group string
	Text  string
}

func (ReceiveGroupMessage) Target() string { return "ReceiveGroupMessage" }

// UserConnected carries the connection id as label since no display name
// is registered at connect time.
type UserConnected struct {
	Label string
}

func (UserConnected) Target() string { return "UserConnected" }

type UserDisconnected struct {
	Label string
}

func (UserDisconnected) Target() string { return "UserDisconnected" }

type UpdateUserList struct {
	Names []string
}

func (UpdateUserList) Target() string { return "UpdateUserList" }

type UpdateUserGroups struct {
	Groups []domain.Group
}

func (UpdateUserGroups) Target() string { return "UpdateUserGroups" }

type AvailableGroups struct {
	Groups []domain.GroupStatus
}

func (AvailableGroups) Target() string { return "AvailableGroups" }

type JoinedGroup struct {
	Group string
}

func (JoinedGroup) Target() string { return "JoinedGroup" }

type LeftGroup struct {
	Group string
}

func (LeftGroup) Target() string { return "LeftGroup" }

type UserJoinedGroup struct {
	User  string
	Group string
}

func (UserJoinedGroup) Target() string { return "UserJoinedGroup" }

type UserLeftGroup struct {
	User  string
	Group string
}

func (UserLeftGroup) Target() string { return "UserLeftGroup" }

type UserRenamedInGroup struct {
	OldName string
	NewName string
	Group   string
}

func (UserRenamedInGroup) Target() string { return "UserRenamedInGroup" }

type GroupError struct {
	Message string
}

func (GroupError) Target() string { return "GroupError" }

type Pong struct{}

func (Pong) Target() string { return "Pong" }
