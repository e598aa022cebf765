// Command tester is a terminal chat client for exercising a running
// relay: it dials the websocket endpoint, prints pushed events, and maps
// slash commands to the named server calls.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/infrastructure/ws"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:8080/chat"`
	Username  string `env:"CHAT_USERNAME"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Tester error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("dialing %s: %w", config.ServerURL, err)
	}
	defer conn.Close()

	color.Green.Printf("Connected to %s\n", config.ServerURL)

	if config.Username != "" {
		if err := send(conn, domain.RegisterUsername{DisplayName: config.Username}); err != nil {
			return exitRuntime, err
		}
	}

	go receiveLoop(conn)

	username := config.Username
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		op, newName, ok := parseLine(line, username)
		if !ok {
			color.Yellow.Println("Commands: /name N, /join G, /leave G, /g G msg, /groups, /ping, /quit")
			continue
		}
		if op == nil {
			return exitOK, nil // /quit
		}
		username = newName
		if err := send(conn, op); err != nil {
			return exitRuntime, err
		}
	}
	return exitOK, scanner.Err()
}

// parseLine maps one input line to an operation. ok is false on unusable
// input; a nil operation with ok means quit.
func parseLine(line, username string) (domain.Operation, string, bool) {
	if !strings.HasPrefix(line, "/") {
		return domain.SendMessage{DisplayName: username, Text: line}, username, true
	}

	parts := strings.SplitN(line, " ", 3)
	switch parts[0] {
	case "/quit":
		return nil, username, true
	case "/ping":
		return domain.Ping{}, username, true
	case "/groups":
		return domain.GetAvailableGroups{}, username, true
	case "/name":
		if len(parts) < 2 {
			return nil, username, false
		}
		return domain.RegisterUsername{DisplayName: parts[1]}, parts[1], true
	case "/join":
		if len(parts) < 2 {
			return nil, username, false
		}
		return domain.JoinGroup{GroupName: parts[1]}, username, true
	case "/leave":
		if len(parts) < 2 {
			return nil, username, false
		}
		return domain.LeaveGroup{GroupName: parts[1]}, username, true
	case "/g":
		if len(parts) < 3 {
			return nil, username, false
		}
		return domain.SendGroupMessage{DisplayName: username, GroupName: parts[1], Text: parts[2]}, username, true
	default:
		return nil, username, false
	}
}

func send(conn *websocket.Conn, op domain.Operation) error {
	frame, err := ws.EncodeOperation(op)
	if err != nil {
		return err
	}
	return conn.WriteJSON(frame)
}

func receiveLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			color.Red.Printf("Connection lost: %v\n", err)
			os.Exit(exitRuntime)
		}

		evt, err := ws.DecodeEvent(data)
		if err != nil {
			color.Red.Printf("Bad frame: %v\n", err)
			continue
		}
		render(evt)
	}
}

func render(e event.Event) {
	switch evt := e.(type) {
	case event.ReceiveMessage:
		fmt.Printf("%s %s\n", color.Cyan.Render(evt.User+":"), evt.Text)
	case event.ReceiveGroupMessage:
		fmt.Printf("%s %s %s\n", color.Magenta.Render("["+evt.Group+"]"), color.Cyan.Render(evt.User+":"), evt.Text)
	case event.UserConnected:
		color.Gray.Printf("* %s connected\n", evt.Label)
	case event.UserDisconnected:
		color.Gray.Printf("* %s disconnected\n", evt.Label)
	case event.UpdateUserList:
		color.Gray.Printf("* online: %s\n", strings.Join(evt.Names, ", "))
	case event.UpdateUserGroups:
		names := lo.Map(evt.Groups, func(g domain.Group, _ int) string { return g.Name })
		color.Gray.Printf("* your groups: %s\n", strings.Join(names, ", "))
	case event.AvailableGroups:
		renderGroupTable(evt.Groups)
	case event.JoinedGroup:
		color.Green.Printf("* joined %s\n", evt.Group)
	case event.LeftGroup:
		color.Yellow.Printf("* left %s\n", evt.Group)
	case event.UserJoinedGroup:
		color.Gray.Printf("* %s joined %s\n", evt.User, evt.Group)
	case event.UserLeftGroup:
		color.Gray.Printf("* %s left %s\n", evt.User, evt.Group)
	case event.UserRenamedInGroup:
		color.Gray.Printf("* %s is now %s in %s\n", evt.OldName, evt.NewName, evt.Group)
	case event.GroupError:
		color.Red.Printf("! %s\n", evt.Message)
	case event.Pong:
		color.Green.Println("* pong")
	}
}

func renderGroupTable(groups []domain.GroupStatus) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Group", "Description", "Joined"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, g := range groups {
		joined := ""
		if g.IsJoined {
			joined = "yes"
		}
		table.Append([]string{g.Name, g.Description, joined})
	}
	table.Render()
}
