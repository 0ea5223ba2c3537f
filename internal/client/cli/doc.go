// Package cli provides the interactive agentdesk terminal front-end.
//
// One process runs one pipeline, chosen with -p:
//
//   - email: a login screen (signup, login) and, once logged in, a chat
//     screen (new, chats, use N, history, draft, export, logout).
//   - planner: plan, recent.
//   - research: ask, recent.
//
// The services run in-process; see bootstrap.New. The REPL is started via
// App.Run(ctx), which blocks until the user exits. See runREPL for details.
package cli
