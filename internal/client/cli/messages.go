package cli

import (
	"errors"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// describe turns an error into the line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrUserNotFound):
		return "User not found."
	case errors.Is(err, common.ErrBadCredential):
		return "Incorrect password."
	case errors.Is(err, common.ErrDuplicateUser):
		return "Username already exists."
	case errors.Is(err, common.ErrorUnauthorized):
		return "That chat belongs to another user."
	case errors.Is(err, ErrNoChoice):
		return "Please pick one of the listed options."
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrMissingField),
		errors.Is(err, common.ErrUnknownTemplate):
		return "Invalid input: " + err.Error()
	case errors.Is(err, common.ErrService):
		return "The assistant is unavailable right now: " + err.Error()
	case errors.Is(err, common.ErrStoreUnavailable), errors.Is(err, common.ErrStore):
		return "Storage is unavailable, please try again later."
	case errors.Is(err, common.ErrorNotFound):
		return "Not found: " + err.Error()
	}
	return "Error: " + err.Error()
}

// report prints err for the user and returns it.
func report(err error) error {
	printlnFn(describe(err))
	return err
}

// warn prints a persistence warning, if any.
func warn(err error) {
	if err != nil {
		printlnFn("Warning: the result was shown but could not be saved.")
	}
}
