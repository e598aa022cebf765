// Package sink provides EventSink implementations bridging the router's
// fan-out to transport write loops.
package sink

import (
	"context"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

// ChannelSink buffers outbound events for one connection. The transport's
// write pump drains Events; the router pushes into it without ever
// blocking on a slow consumer.
type ChannelSink struct {
	Events chan event.Event
}

func NewChannelSink(bufferSize int) *ChannelSink {
	return &ChannelSink{Events: make(chan event.Event, bufferSize)}
}

// Consume is called by the router's fan-out. A full buffer fails fast so
// one slow recipient never stalls delivery to the others; the router logs
// the drop and moves on.
func (s *ChannelSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}
