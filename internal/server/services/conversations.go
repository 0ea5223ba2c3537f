package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/tasks"
)

// ConversationService owns chat sessions, their messages and task records.
type ConversationService struct {
	sessions sessions.Repository
	tasks    tasks.Repository
	logger   logging.Logger

	now   func() time.Time
	newID func() string
}

func NewConversationService(sessionRepo sessions.Repository, taskRepo tasks.Repository, logger logging.Logger) *ConversationService {
	return &ConversationService{
		sessions: sessionRepo,
		tasks:    taskRepo,
		logger:   logger.With("module", "conversations"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *ConversationService) newSession(id, username string) *models.Session {
	now := s.now()
	return &models.Session{
		ID:        id,
		UserName:  username,
		Title:     models.SessionTitle(now),
		CreatedAt: now.UTC(),
	}
}

// CreateSession starts an empty session titled after the current time.
func (s *ConversationService) CreateSession(ctx context.Context, username string) (*models.Session, error) {
	if strings.TrimSpace(username) == "" {
		return nil, validationErr("username is required")
	}

	session, err := s.sessions.Create(ctx, s.newSession(s.newID(), username))
	if err != nil {
		s.logger.Error(ctx, "create session failed", "username", username, "error", err)
		return nil, storeErr(err)
	}

	s.logger.Info(ctx, "session created", "username", username, "session_id", session.ID)
	return session, nil
}

// AppendMessage adds a message to a session and returns the session id.
//
// An empty sessionID starts a new session. An id that does not exist yet is
// created for username. An id owned by someone else yields
// common.ErrorUnauthorized and nothing is written.
func (s *ConversationService) AppendMessage(ctx context.Context, username, sessionID string, role models.Role, content string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", validationErr("username is required")
	}
	if !role.Valid() {
		return "", validationErr("unknown role %q", role)
	}
	if strings.TrimSpace(content) == "" {
		return "", validationErr("message content is empty")
	}
	if sessionID == "" {
		sessionID = s.newID()
	}

	msg := &models.Message{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}

	session, err := s.sessions.Append(ctx, s.newSession(sessionID, username), msg)
	if err != nil {
		s.logger.Warn(ctx, "append message failed", "username", username, "session_id", sessionID, "role", role, "error", err)
		return "", storeErr(err)
	}

	s.logger.Debug(ctx, "message appended", "username", username, "session_id", session.ID, "role", role)
	return session.ID, nil
}

// ListSessions returns the user's sessions, most recent first.
func (s *ConversationService) ListSessions(ctx context.Context, username string) ([]models.Session, error) {
	list, err := s.sessions.ListByUser(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "list sessions failed", "username", username, "error", err)
		return nil, storeErr(err)
	}
	return list, nil
}

// Session returns a session owned by username.
func (s *ConversationService) Session(ctx context.Context, username, sessionID string) (*models.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, storeErr(err)
	}
	if session.UserName != username {
		return nil, common.ErrorUnauthorized
	}
	return session, nil
}

// Messages returns the messages of a session owned by username in the order
// they were appended.
func (s *ConversationService) Messages(ctx context.Context, username, sessionID string) ([]models.Message, error) {
	if _, err := s.Session(ctx, username, sessionID); err != nil {
		return nil, err
	}

	msgs, err := s.sessions.Messages(ctx, sessionID)
	if err != nil {
		s.logger.Error(ctx, "load messages failed", "session_id", sessionID, "error", err)
		return nil, storeErr(err)
	}
	return msgs, nil
}

// SaveTask stores a task record, assigning its id and timestamp.
func (s *ConversationService) SaveTask(ctx context.Context, kind models.TaskKind, input string, fields map[string]string) (*models.TaskRecord, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown task kind %q", common.ErrInvalidArgument, kind)
	}

	rec := &models.TaskRecord{
		ID:        s.newID(),
		Kind:      kind,
		Input:     input,
		Fields:    fields,
		CreatedAt: s.now().UTC(),
	}
	if err := s.tasks.Insert(ctx, rec); err != nil {
		s.logger.Warn(ctx, "save task failed", "kind", kind, "error", err)
		return nil, storeErr(err)
	}
	return rec, nil
}

// ListRecent returns up to limit task records of kind, newest first.
func (s *ConversationService) ListRecent(ctx context.Context, kind models.TaskKind, limit int) ([]models.TaskRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", common.ErrInvalidArgument, limit)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown task kind %q", common.ErrInvalidArgument, kind)
	}

	list, err := s.tasks.ListRecent(ctx, kind, limit)
	if err != nil {
		s.logger.Error(ctx, "list recent failed", "kind", kind, "error", err)
		return nil, storeErr(err)
	}
	return list, nil
}
