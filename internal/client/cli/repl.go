package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/agentdesk/internal/client/config"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Pipeline() string
	isLoggedIn() bool

	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	NewChat(ctx context.Context) error
	Chats(ctx context.Context) error
	Use(ctx context.Context, arg string) error
	History(ctx context.Context) error
	Draft(ctx context.Context) error
	Export(ctx context.Context) error

	Plan(ctx context.Context) error
	Ask(ctx context.Context) error
	Recent(ctx context.Context) error
}

// helpText lists the commands available in the current state.
func helpText(a execIface) string {
	switch a.Pipeline() {
	case config.PipelinePlanner:
		return "Available commands: plan, recent, exit"
	case config.PipelineResearch:
		return "Available commands: ask, recent, exit"
	}
	if a.isLoggedIn() {
		return "Available commands: new, chats, use N, history, draft, export, logout, exit"
	}
	return "Available commands: signup, login, exit"
}

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The email pipeline has two screens: before login only signup and login
// are accepted; after login the chat commands are. Planner and research
// have a single screen. The loop exits on EOF or on "exit" / "quit".
//
// Handler errors are reported by the handlers themselves and do not stop the
// loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("agentdesk (%s) > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText(a))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !dispatch(ctx, a, cmd, args) {
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	switch a.Pipeline() {
	case config.PipelinePlanner:
		switch cmd {
		case "plan":
			_ = a.Plan(ctx)
		case "recent":
			_ = a.Recent(ctx)
		default:
			return false
		}
		return true

	case config.PipelineResearch:
		switch cmd {
		case "ask":
			_ = a.Ask(ctx)
		case "recent":
			_ = a.Recent(ctx)
		default:
			return false
		}
		return true
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "signup", "register":
			_ = a.Signup(ctx)
		case "login":
			_ = a.Login(ctx)
		case "new", "chats", "use", "history", "draft", "export", "logout":
			printlnFn("Please log in first.")
		default:
			return false
		}
		return true
	}

	switch cmd {
	case "new":
		_ = a.NewChat(ctx)
	case "chats":
		_ = a.Chats(ctx)
	case "use":
		if len(args) == 0 {
			printlnFn("Usage: use <N>")
			return true
		}
		_ = a.Use(ctx, args[0])
	case "history":
		_ = a.History(ctx)
	case "draft":
		_ = a.Draft(ctx)
	case "export":
		_ = a.Export(ctx)
	case "logout":
		_ = a.Logout(ctx)
	case "signup", "login":
		printlnFn("Already logged in; logout first.")
	default:
		return false
	}
	return true
}
