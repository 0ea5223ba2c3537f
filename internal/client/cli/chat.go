package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/agentdesk/internal/server/services"
)

// NewChat starts an empty chat and makes it current.
func (a *App) NewChat(ctx context.Context) error {
	session, err := a.deps.Conversations.CreateSession(ctx, a.userName)
	if err != nil {
		return report(err)
	}
	a.session = *session
	printlnFn("Started " + session.Title)
	return nil
}

// Chats lists the user's chats, most recent first, numbered for "use N".
func (a *App) Chats(ctx context.Context) error {
	list, err := a.deps.Conversations.ListSessions(ctx, a.userName)
	if err != nil {
		return report(err)
	}
	a.chats = list

	if len(list) == 0 {
		printlnFn("No chats yet.")
		return nil
	}
	for i, s := range list {
		marker := " "
		if s.ID == a.session.ID {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %d) %s", marker, i+1, s.Title))
	}
	return nil
}

// Use selects chat N from the last "chats" listing.
func (a *App) Use(ctx context.Context, arg string) error {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(a.chats) {
		printlnFn("Usage: use <N>, where N is a number from 'chats'")
		return ErrNoChoice
	}
	a.session = a.chats[n-1]
	printlnFn("Using " + a.session.Title)
	return nil
}

// History prints the messages of the current chat.
func (a *App) History(ctx context.Context) error {
	if a.session.ID == "" {
		printlnFn("No chat selected. Use 'new' or 'chats' and 'use N'.")
		return nil
	}
	msgs, err := a.deps.Conversations.Messages(ctx, a.userName, a.session.ID)
	if err != nil {
		return report(err)
	}
	if len(msgs) == 0 {
		printlnFn("This chat is empty.")
		return nil
	}
	for _, m := range msgs {
		printlnFn(fmt.Sprintf("[%s] %s:\n%s\n", m.CreatedAt.Local().Format("15:04"), m.Role, m.Content))
	}
	return nil
}

// Draft collects the email form and prints the polished draft. Without a
// current chat a new one is started.
func (a *App) Draft(ctx context.Context) error {
	store := a.deps.Templates

	intent, err := getChoice(a.reader, "Email intent", store.Categories(), a.out)
	if err != nil {
		return report(err)
	}
	tone, err := getChoice(a.reader, "Tone", store.Variants(intent), a.out)
	if err != nil {
		return report(err)
	}
	recipient, err := getSimpleText(a.reader, "Recipient name", a.out)
	if err != nil {
		return report(err)
	}
	purpose, err := getSimpleText(a.reader, "Purpose of the email", a.out)
	if err != nil {
		return report(err)
	}

	res, err := a.deps.Email.Draft(ctx, services.EmailRequest{
		Username:  a.userName,
		SessionID: a.session.ID,
		Intent:    intent,
		Recipient: recipient,
		Purpose:   purpose,
		Tone:      tone,
	})
	if err != nil {
		return report(err)
	}

	if res.SessionID != a.session.ID {
		session, err := a.deps.Conversations.Session(ctx, a.userName, res.SessionID)
		if err == nil {
			a.session = *session
		} else {
			a.session.ID = res.SessionID
		}
	}

	printlnFn("Polished email draft:")
	printlnFn(res.Draft)
	warn(res.PersistErr)
	return nil
}

// Export uploads the current chat and prints a download link.
func (a *App) Export(ctx context.Context) error {
	if a.session.ID == "" {
		printlnFn("No chat selected.")
		return nil
	}
	if !a.deps.Export.Enabled() {
		printlnFn("Transcript export is not configured.")
		return nil
	}
	url, err := a.deps.Export.Export(ctx, a.userName, a.session.ID)
	if err != nil {
		return report(err)
	}
	printlnFn("Transcript uploaded. Download link:")
	printlnFn(url)
	return nil
}
