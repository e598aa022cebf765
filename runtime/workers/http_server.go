package workers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// HTTPServerWorker runs the relay's HTTP/websocket endpoint under the
// supervisor so a listener crash restarts like any other worker.
type HTTPServerWorker struct {
	log    *slog.Logger
	server *http.Server
}

func NewHTTPServerWorker(log *slog.Logger, server *http.Server) *HTTPServerWorker {
	return &HTTPServerWorker{log: log, server: server}
}

// Run serves until the context is canceled, then drains with a graceful
// shutdown. A clean shutdown returns nil so the supervisor retires the
// worker instead of restarting it.
func (w *HTTPServerWorker) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Serving", "address", w.server.Addr)
		if err := w.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return w.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
