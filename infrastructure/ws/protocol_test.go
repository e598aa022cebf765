package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

func TestDecodeOperation(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		raw      string
		expected domain.Operation
	}{
		{
			name:     "SendMessage",
			raw:      `{"target":"SendMessage","arguments":["alice","hello"]}`,
			expected: domain.SendMessage{DisplayName: "alice", Text: "hello"},
		},
		{
			name:     "SendGroupMessage",
			raw:      `{"target":"SendGroupMessage","arguments":["bob","Technical","yo"]}`,
			expected: domain.SendGroupMessage{DisplayName: "bob", GroupName: "Technical", Text: "yo"},
		},
		{
			name:     "JoinGroup",
			raw:      `{"target":"JoinGroup","arguments":["Random"]}`,
			expected: domain.JoinGroup{GroupName: "Random"},
		},
		{
			name:     "LeaveGroup",
			raw:      `{"target":"LeaveGroup","arguments":["Random"]}`,
			expected: domain.LeaveGroup{GroupName: "Random"},
		},
		{
			name:     "GetAvailableGroups",
			raw:      `{"target":"GetAvailableGroups","arguments":[]}`,
			expected: domain.GetAvailableGroups{},
		},
		{
			name:     "RegisterUsername",
			raw:      `{"target":"RegisterUsername","arguments":["carol"]}`,
			expected: domain.RegisterUsername{DisplayName: "carol"},
		},
		{
			name:     "Ping",
			raw:      `{"target":"Ping","arguments":[]}`,
			expected: domain.Ping{},
		},
		{
			name:     "Echo is an alias for Ping",
			raw:      `{"target":"Echo","arguments":[]}`,
			expected: domain.Ping{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := DecodeOperation([]byte(tt.raw))
			req.NoError(err)
			req.Equal(tt.expected, op)
		})
	}
}

func TestDecodeOperation_Errors(t *testing.T) {
	req := require.New(t)

	// Unknown target
	_, err := DecodeOperation([]byte(`{"target":"DropTables","arguments":[]}`))
	req.ErrorIs(err, errors.ErrUnknownTarget)

	// Missing target fails validation
	_, err = DecodeOperation([]byte(`{"arguments":["alice","hi"]}`))
	req.Error(err)

	// Wrong arity
	_, err = DecodeOperation([]byte(`{"target":"SendMessage","arguments":["alice"]}`))
	req.Error(err)

	// Argument of the wrong type
	_, err = DecodeOperation([]byte(`{"target":"JoinGroup","arguments":[42]}`))
	req.Error(err)

	// Not JSON at all
	_, err = DecodeOperation([]byte(`not json`))
	req.Error(err)
}

func TestEncodeEvent_WireShape(t *testing.T) {
	req := require.New(t)

	// Given a catalog event
	frame, err := EncodeEvent(event.AvailableGroups{Groups: []domain.GroupStatus{
		{Name: "General", Description: "General discussion", IsJoined: true},
		{Name: "Random", Description: "Off-topic chatter", IsJoined: false},
	}})
	req.NoError(err)

	// Then the frame carries one array argument with camelCase keys
	req.Equal("AvailableGroups", frame.Target)
	req.Len(frame.Arguments, 1)

	data, err := json.Marshal(frame)
	req.NoError(err)
	req.JSONEq(`{
		"target": "AvailableGroups",
		"arguments": [[
			{"name":"General","description":"General discussion","isJoined":true},
			{"name":"Random","description":"Off-topic chatter","isJoined":false}
		]]
	}`, string(data))
}

// TestEventRoundTrip crosses the server-side encoder with the client-side
// decoder the tester CLI uses, for the events whose argument shapes differ.
func TestEventRoundTrip(t *testing.T) {
	req := require.New(t)

	events := []event.Event{
		event.ReceiveGroupMessage{User: "alice", Group: "Technical", Text: "hi"},
		event.UpdateUserList{Names: []string{"alice", "bob"}},
		event.UpdateUserGroups{Groups: []domain.Group{{Name: "General", Description: "General discussion"}}},
		event.UserRenamedInGroup{OldName: "alice", NewName: "alicia", Group: "General"},
		event.GroupError{Message: "not a member of group Random"},
		event.Pong{},
	}

	for _, original := range events {
		frame, err := EncodeEvent(original)
		req.NoError(err)

		data, err := json.Marshal(frame)
		req.NoError(err)

		decoded, err := DecodeEvent(data)
		req.NoError(err)
		req.Equal(original, decoded)
	}
}

func TestOperationRoundTrip(t *testing.T) {
	req := require.New(t)

	// The client encoder must produce frames the server decoder accepts
	frame, err := EncodeOperation(domain.SendGroupMessage{DisplayName: "bob", GroupName: "Random", Text: "yo"})
	req.NoError(err)

	data, err := json.Marshal(frame)
	req.NoError(err)

	op, err := DecodeOperation(data)
	req.NoError(err)
	req.Equal(domain.SendGroupMessage{DisplayName: "bob", GroupName: "Random", Text: "yo"}, op)
}

func TestEncodeOperation_PingSpeaksEcho(t *testing.T) {
	req := require.New(t)

	// The liveness probe goes out under its historical wire name
	frame, err := EncodeOperation(domain.Ping{})
	req.NoError(err)
	req.Equal("Echo", frame.Target)

	data, err := json.Marshal(frame)
	req.NoError(err)

	op, err := DecodeOperation(data)
	req.NoError(err)
	req.Equal(domain.Ping{}, op)
}
