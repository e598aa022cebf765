package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

func TestChannelSink_BuffersUpToCapacity(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s := NewChannelSink(2)

	// When filling the buffer
	req.NoError(s.Consume(ctx, event.Pong{}))
	req.NoError(s.Consume(ctx, event.GroupError{Message: "x"}))

	// Then the next push fails fast instead of blocking
	req.ErrorIs(s.Consume(ctx, event.Pong{}), errors.ErrSinkFull)

	// Draining one slot makes room again
	req.Equal(event.Pong{}, <-s.Events)
	req.NoError(s.Consume(ctx, event.Pong{}))
}

func TestChannelSink_CanceledContext(t *testing.T) {
	req := require.New(t)
	s := NewChannelSink(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// An unbuffered sink with no reader reports the canceled context
	req.ErrorIs(s.Consume(ctx, event.Pong{}), context.Canceled)
}
