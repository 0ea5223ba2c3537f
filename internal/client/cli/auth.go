package cli

import (
	"context"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/services"
)

// Input helpers behind indirections so tests can script them.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline
var getChoice = GetChoice

func (a *App) readCredentials() (string, []byte, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return userName, password, nil
}

// Signup prompts for a username and password and creates the account.
// The password byte slice is wiped before returning.
func (a *App) Signup(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.deps.Auth.Signup(ctx, userName, string(password)); err != nil {
		return report(err)
	}

	printlnFn("Account created. You can log in now.")
	return nil
}

// Login prompts for credentials and switches to the chat screen on success.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return report(err)
	}
	defer common.WipeByteArray(password)

	if err := a.deps.Auth.Login(ctx, userName, string(password)); err != nil {
		return report(err)
	}

	a.userName = services.NormalizeUserName(userName)
	a.session = models.Session{}
	a.chats = nil
	printlnFn("Welcome, " + a.userName + "!")
	return nil
}

// Logout returns to the login screen.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	a.session = models.Session{}
	a.chats = nil
	printlnFn("Logged out.")
	return nil
}
