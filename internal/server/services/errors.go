// Package services contains the business logic behind the HTTP API and the
// terminal front-end: AuthGate, the conversation store, the email, planner
// and research pipelines, and transcript export.
package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

// storeErr maps a repository error into the store taxonomy. Domain errors
// raised by repositories (not found, unauthorized, duplicate) pass through.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorNotFound),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrDuplicateUser),
		errors.Is(err, common.ErrStore),
		errors.Is(err, common.ErrStoreUnavailable):
		return err
	case storeUnavailable(err):
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrStore, err)
	}
}

func storeUnavailable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "server selection")
}

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}
