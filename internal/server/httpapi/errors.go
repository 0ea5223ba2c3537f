package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/agentdesk/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrMissingField),
		errors.Is(err, common.ErrUnknownTemplate):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateUser):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, common.ErrUserNotFound):
		return http.StatusUnauthorized, "user not found"
	case errors.Is(err, common.ErrBadCredential):
		return http.StatusUnauthorized, "incorrect password"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusForbidden, "session belongs to another user"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrService):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, common.ErrStoreUnavailable),
		errors.Is(err, common.ErrStore):
		return http.StatusServiceUnavailable, "storage unavailable"
	}
	return http.StatusInternalServerError, "internal error"
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "status", status, "error", err)
	} else {
		s.logger.Info(r.Context(), "request rejected", "status", status, "error", err)
	}
	writeError(w, status, msg)
}

// warning renders a persistence warning for a response body.
func warning(err error) string {
	if err == nil {
		return ""
	}
	return "result was not stored: " + err.Error()
}
