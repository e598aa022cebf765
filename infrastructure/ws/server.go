package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/sink"
)

// Server upgrades HTTP requests into relay connections. Each connection
// gets a fresh uuid identity, a buffered sink registered with the router,
// and its own read/write pumps. This is the only place the transport and
// the core touch: Connect on upgrade, Dispatch per frame, Disconnect on
// teardown.
type Server struct {
	log            *slog.Logger
	router         contract.IRouter
	upgrader       websocket.Upgrader
	bufferSize     int
	maxMessageSize int64
}

func NewServer(log *slog.Logger, router contract.IRouter, bufferSize int, maxMessageSize int64) *Server {
	return &Server{
		log:    log,
		router: router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		bufferSize:     bufferSize,
		maxMessageSize: maxMessageSize,
	}
}

func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// handle blocks until the client goes away. Disconnect runs deferred so
// registry cleanup happens for every exit path, including pump panics
// surfaced as closed connections.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	id := domain.ConnectionID(uuid.NewString())
	snk := sink.NewChannelSink(s.bufferSize)
	c := &connection{
		id:             id,
		conn:           conn,
		sink:           snk,
		router:         s.router,
		log:            s.log,
		maxMessageSize: s.maxMessageSize,
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s.router.Connect(ctx, id, snk)
	defer s.router.Disconnect(context.WithoutCancel(ctx), id)

	go c.writePump(ctx)
	c.readPump(ctx, cancel)
}
