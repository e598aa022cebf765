// Package ws is the websocket transport collaborator. It turns inbound
// frames into operations of the closed domain union and outbound events
// back into named-call frames; all chat behavior lives behind the router.
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

var validate = validator.New()

// Frame is the wire envelope in both directions: a named call with
// positional arguments.
type Frame struct {
	Target    string            `json:"target" validate:"required"`
	Arguments []json.RawMessage `json:"arguments"`
}

type wireGroup struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type wireGroupStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsJoined    bool   `json:"isJoined"`
}

// DecodeOperation maps one inbound frame to its operation. The target set
// is closed; anything else is ErrUnknownTarget so the caller can be told.
func DecodeOperation(data []byte) (domain.Operation, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if err := validate.Struct(frame); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	switch frame.Target {
	case "SendMessage":
		args, err := stringArgs(frame, 2)
		if err != nil {
			return nil, err
		}
		return domain.SendMessage{DisplayName: args[0], Text: args[1]}, nil
	case "SendGroupMessage":
		args, err := stringArgs(frame, 3)
		if err != nil {
			return nil, err
		}
		return domain.SendGroupMessage{DisplayName: args[0], GroupName: args[1], Text: args[2]}, nil
	case "JoinGroup":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return domain.JoinGroup{GroupName: args[0]}, nil
	case "LeaveGroup":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return domain.LeaveGroup{GroupName: args[0]}, nil
	case "GetAvailableGroups":
		return domain.GetAvailableGroups{}, nil
	case "RegisterUsername":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return domain.RegisterUsername{DisplayName: args[0]}, nil
	case "Ping", "Echo":
		return domain.Ping{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownTarget, frame.Target)
	}
}

// EncodeEvent maps one outbound event to its frame. The union is closed;
// every event type has exactly one encoding.
func EncodeEvent(e event.Event) (Frame, error) {
	switch evt := e.(type) {
	case event.ReceiveMessage:
		return newFrame(evt.Target(), evt.User, evt.Text)
	case event.ReceiveGroupMessage:
		return newFrame(evt.Target(), evt.User, evt.Group, evt.Text)
	case event.UserConnected:
		return newFrame(evt.Target(), evt.Label)
	case event.UserDisconnected:
		return newFrame(evt.Target(), evt.Label)
	case event.UpdateUserList:
		return newFrame(evt.Target(), evt.Names)
	case event.UpdateUserGroups:
		groups := lo.Map(evt.Groups, func(g domain.Group, _ int) wireGroup {
			return wireGroup{Name: g.Name, Description: g.Description}
		})
		return newFrame(evt.Target(), groups)
	case event.AvailableGroups:
		groups := lo.Map(evt.Groups, func(g domain.GroupStatus, _ int) wireGroupStatus {
			return wireGroupStatus{Name: g.Name, Description: g.Description, IsJoined: g.IsJoined}
		})
		return newFrame(evt.Target(), groups)
	case event.JoinedGroup:
		return newFrame(evt.Target(), evt.Group)
	case event.LeftGroup:
		return newFrame(evt.Target(), evt.Group)
	case event.UserJoinedGroup:
		return newFrame(evt.Target(), evt.User, evt.Group)
	case event.UserLeftGroup:
		return newFrame(evt.Target(), evt.User, evt.Group)
	case event.UserRenamedInGroup:
		return newFrame(evt.Target(), evt.OldName, evt.NewName, evt.Group)
	case event.GroupError:
		return newFrame(evt.Target(), evt.Message)
	case event.Pong:
		return newFrame(evt.Target())
	default:
		return Frame{}, fmt.Errorf("unencodable event %T", e)
	}
}

func newFrame(target string, args ...any) (Frame, error) {
	frame := Frame{Target: target, Arguments: make([]json.RawMessage, 0, len(args))}
	for _, arg := range args {
		raw, err := json.Marshal(arg)
		if err != nil {
			return Frame{}, err
		}
		frame.Arguments = append(frame.Arguments, raw)
	}
	return frame, nil
}

func stringArgs(frame Frame, n int) ([]string, error) {
	if len(frame.Arguments) != n {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", frame.Target, n, len(frame.Arguments))
	}
	args := make([]string, n)
	for i, raw := range frame.Arguments {
		if err := json.Unmarshal(raw, &args[i]); err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", frame.Target, i, err)
		}
	}
	return args, nil
}

// EncodeOperation is the client-side encoder used by the tester CLI and
// the end-to-end tests.
func EncodeOperation(op domain.Operation) (Frame, error) {
	switch o := op.(type) {
	case domain.SendMessage:
		return newFrame(op.Target(), o.DisplayName, o.Text)
	case domain.SendGroupMessage:
		return newFrame(op.Target(), o.DisplayName, o.GroupName, o.Text)
	case domain.JoinGroup:
		return newFrame(op.Target(), o.GroupName)
	case domain.LeaveGroup:
		return newFrame(op.Target(), o.GroupName)
	case domain.GetAvailableGroups:
		return newFrame(op.Target())
	case domain.RegisterUsername:
		return newFrame(op.Target(), o.DisplayName)
	case domain.Ping:
		return newFrame(op.Target())
	default:
		return Frame{}, fmt.Errorf("unencodable operation %T", op)
	}
}

// DecodeEvent is the client-side decoder for pushed frames.
func DecodeEvent(data []byte) (event.Event, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	switch frame.Target {
	case "ReceiveMessage":
		args, err := stringArgs(frame, 2)
		if err != nil {
			return nil, err
		}
		return event.ReceiveMessage{User: args[0], Text: args[1]}, nil
	case "ReceiveGroupMessage":
		args, err := stringArgs(frame, 3)
		if err != nil {
			return nil, err
		}
		return event.ReceiveGroupMessage{User: args[0], Group: args[1], Text: args[2]}, nil
	case "UserConnected":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return event.UserConnected{Label: args[0]}, nil
	case "UserDisconnected":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return event.UserDisconnected{Label: args[0]}, nil
	case "UpdateUserList":
		var names []string
		if err := oneArg(frame, &names); err != nil {
			return nil, err
		}
		return event.UpdateUserList{Names: names}, nil
	case "UpdateUserGroups":
		var groups []wireGroup
		if err := oneArg(frame, &groups); err != nil {
			return nil, err
		}
		return event.UpdateUserGroups{Groups: lo.Map(groups, func(g wireGroup, _ int) domain.Group {
			return domain.Group{Name: g.Name, Description: g.Description}
		})}, nil
	case "AvailableGroups":
		var groups []wireGroupStatus
		if err := oneArg(frame, &groups); err != nil {
			return nil, err
		}
		return event.AvailableGroups{Groups: lo.Map(groups, func(g wireGroupStatus, _ int) domain.GroupStatus {
			return domain.GroupStatus{Name: g.Name, Description: g.Description, IsJoined: g.IsJoined}
		})}, nil
	case "JoinedGroup":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return event.JoinedGroup{Group: args[0]}, nil
	case "LeftGroup":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return event.LeftGroup{Group: args[0]}, nil
	case "UserJoinedGroup":
		args, err := stringArgs(frame, 2)
		if err != nil {
			return nil, err
		}
		return event.UserJoinedGroup{User: args[0], Group: args[1]}, nil
	case "UserLeftGroup":
		args, err := stringArgs(frame, 2)
		if err != nil {
			return nil, err
		}
		return event.UserLeftGroup{User: args[0], Group: args[1]}, nil
	case "UserRenamedInGroup":
		args, err := stringArgs(frame, 3)
		if err != nil {
			return nil, err
		}
		return event.UserRenamedInGroup{OldName: args[0], NewName: args[1], Group: args[2]}, nil
	case "GroupError":
		args, err := stringArgs(frame, 1)
		if err != nil {
			return nil, err
		}
		return event.GroupError{Message: args[0]}, nil
	case "Pong":
		return event.Pong{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownTarget, frame.Target)
	}
}

func oneArg(frame Frame, out any) error {
	if len(frame.Arguments) != 1 {
		return fmt.Errorf("%s expects 1 argument, got %d", frame.Target, len(frame.Arguments))
	}
	return json.Unmarshal(frame.Arguments[0], out)
}
