package ws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/sink"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second // must be below pongWait
)

// connection pairs one websocket with its sink and drives both pumps.
// The read pump feeds decoded operations into the router; the write pump
// drains the sink into the socket.
type connection struct {
	id             domain.ConnectionID
	conn           *websocket.Conn
	sink           *sink.ChannelSink
	router         contract.IRouter
	log            *slog.Logger
	maxMessageSize int64
}

func (c *connection) readPump(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(c.maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Warn("Failed to set read deadline", "conn", c.id, "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadEnd(err)
			return
		}

		op, err := DecodeOperation(data)
		if err != nil {
			// Caller-only: a bad frame never reaches the router.
			c.log.Warn("Dropping inbound frame", "conn", c.id, "error", err)
			_ = c.sink.Consume(ctx, event.GroupError{Message: err.Error()})
			continue
		}
		c.router.Dispatch(ctx, c.id, op)
	}
}

func (c *connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		case evt := <-c.sink.Events:
			frame, err := EncodeEvent(evt)
			if err != nil {
				c.log.Error("Failed to encode event", "conn", c.id, "error", err)
				continue
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(frame); err != nil {
				c.log.Warn("Failed to write frame", "conn", c.id, "target", frame.Target, "error", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) logReadEnd(err error) {
	switch {
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Info("Client disconnected", "conn", c.id)
	case errors.Is(err, io.EOF):
		c.log.Info("Connection closed", "conn", c.id)
	default:
		c.log.Warn("Read failed", "conn", c.id, "error", err)
	}
}
