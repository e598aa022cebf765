package e2e

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/ws"
	"chat-relay/moderation"
	"chat-relay/runtime"
)

const readTimeout = 5 * time.Second

type BaseWsSuite struct {
	suite.Suite
	Config Config

	server  *httptest.Server
	wsURL   string
	ownSrvr bool
}

// SetupSuite loads the environment configuration, then either targets the
// configured relay or assembles a full in-process one: real registries,
// real moderator with the embedded dictionaries, real websocket transport.
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.ServerURL != "" {
		s.wsURL = s.Config.ServerURL
		return
	}

	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	data, err := moderation.LoadDefaultWords()
	s.Require().NoError(err)
	moderator, err := moderation.NewModerator(data.Words, moderation.Policy{
		MaxLength: 500,
	}, log)
	s.Require().NoError(err)

	router := runtime.NewRouter(log, runtime.NewSessionRegistry(), runtime.NewGroupRegistry(), moderator)

	mux := http.NewServeMux()
	mux.Handle("/chat", ws.NewServer(log, router, 64, 4096).Handler())

	s.server = httptest.NewServer(mux)
	s.ownSrvr = true
	s.wsURL = "ws" + strings.TrimPrefix(s.server.URL, "http") + "/chat"
}

func (s *BaseWsSuite) TearDownSuite() {
	if s.ownSrvr {
		s.server.Close()
	}
}

// Dial opens one client connection with a colorized header in the logs.
func (s *BaseWsSuite) Dial(name string) *WsClient {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
	s.Require().NoError(err, "Failed to connect to relay at "+s.wsURL)
	return &WsClient{suite: s, name: name, conn: conn}
}

// WsClient wraps one websocket connection with the frame codec and
// assertion helpers. Reads are deadline-bounded so a missing event fails
// the test instead of hanging it.
type WsClient struct {
	suite *BaseWsSuite
	name  string
	conn  *websocket.Conn
}

func (c *WsClient) Close() {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// Send encodes one operation and writes it.
func (c *WsClient) Send(op domain.Operation) {
	frame, err := ws.EncodeOperation(op)
	c.suite.Require().NoError(err)
	c.logFrame("->", frame)
	c.suite.Require().NoError(c.conn.WriteJSON(frame))
}

// Next reads and decodes one pushed event.
func (c *WsClient) Next() event.Event {
	c.suite.Require().NoError(c.conn.SetReadDeadline(time.Now().Add(readTimeout)))
	_, data, err := c.conn.ReadMessage()
	c.suite.Require().NoError(err, "%s: reading from relay", c.name)

	if c.suite.Config.DebugFrames {
		c.suite.T().Logf("%s <- %s", c.name, data)
	}
	evt, err := ws.DecodeEvent(data)
	c.suite.Require().NoError(err)
	return evt
}

// Expect reads events until one with the wanted target arrives, skipping
// unrelated pushes (presence notices, list refreshes) along the way.
func (c *WsClient) Expect(target string) event.Event {
	for {
		evt := c.Next()
		if evt.Target() == target {
			return evt
		}
		c.suite.T().Logf("%s: skipping %s while waiting for %s", c.name, evt.Target(), target)
	}
}

// CollectUntil reads events up to and including the first one with the
// wanted target and returns everything seen, so callers can assert on what
// must NOT have been delivered in between.
func (c *WsClient) CollectUntil(target string) []event.Event {
	var seen []event.Event
	for {
		evt := c.Next()
		seen = append(seen, evt)
		if evt.Target() == target {
			return seen
		}
	}
}

func (c *WsClient) logFrame(dir string, frame ws.Frame) {
	if !c.suite.Config.DebugFrames {
		return
	}
	data, _ := json.Marshal(frame)
	c.suite.T().Logf("%s %s %s", c.name, dir, data)
}
