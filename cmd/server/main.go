package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so deferred cleanup always executes and
// the entry point stays testable.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Moderation gate
	words, err := moderation.LoadDefaultWords()
	if err != nil {
		return fmt.Errorf("loading banned words: %w", err)
	}
	log.Info(fmt.Sprintf("%d banned words loaded [%s]",
		len(words.Words), strings.Join(words.Languages, ",")))

	moderator, err := moderation.NewModerator(words.Words, moderation.Policy{
		MaxLength:       config.MaxContentLength,
		BlockedSenders:  config.BlockedSenders,
		DuplicateWindow: config.DuplicateWindow,
	}, log)
	if err != nil {
		return fmt.Errorf("building moderator: %w", err)
	}

	// 3. Registries & Router
	sessions := runtime.NewSessionRegistry()
	groups := runtime.NewGroupRegistry()
	router := runtime.NewRouter(log, sessions, groups, moderator)

	// 4. Transport & Inspect page
	mux := http.NewServeMux()
	relay := ws.NewServer(log, router, config.ConnectionBufferSize, config.MaxMessageSize)
	mux.Handle("/chat", relay.Handler())
	mux.Handle("/inspect", internal.NewInspectHandler(inspectRows(router, sessions, groups), router.Stats))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: mux,
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Supervised workers
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewHTTPServerWorker(log, server))
	sup.Add(workers.NewTelemetryWorker(log, config.TelemetryInterval, router.Stats))

	log.Info("Starting chat relay", "address", server.Addr)
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}

// inspectRows resolves each live connection to its display label and
// memberships for the debug page.
func inspectRows(router *runtime.Router, sessions *runtime.SessionRegistry,
	groups *runtime.GroupRegistry) internal.RowsProvider {
	return func() []internal.InspectRow {
		conns := router.Connections()
		rows := make([]internal.InspectRow, 0, len(conns))
		for _, conn := range conns {
			rows = append(rows, internal.InspectRow{
				Connection: conn.String(),
				Name:       sessions.NameOf(conn),
				Groups:     strings.Join(groups.MembershipsOf(conn), ", "),
			})
		}
		return rows
	}
}
