package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/cryptox"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/users"
)

// AuthService implements signup and login against stored argon2id hashes.
// There is no lockout and no rate limiting.
type AuthService struct {
	users  users.Repository
	logger logging.Logger
	params cryptox.Params
	// dummyHash is verified against when the user does not exist, so both
	// login failures cost one key derivation.
	dummyHash string
}

func NewAuthService(repo users.Repository, logger logging.Logger) *AuthService {
	return newAuthService(repo, logger, cryptox.DefaultParams)
}

func newAuthService(repo users.Repository, logger logging.Logger, params cryptox.Params) *AuthService {
	return &AuthService{
		users:     repo,
		logger:    logger.With("module", "auth"),
		params:    params,
		dummyHash: cryptox.HashPassword(common.GenerateRandByteArray(16), params),
	}
}

// NormalizeUserName returns the stored form of a username. Front-ends use it
// for anything they derive from the name after a successful Signup or Login,
// such as token subjects.
func NormalizeUserName(username string) string {
	return strings.TrimSpace(username)
}

// Signup creates an account. Blank username or password yields
// common.ErrValidation; a taken username yields common.ErrDuplicateUser.
func (s *AuthService) Signup(ctx context.Context, username, password string) error {
	username = NormalizeUserName(username)
	if username == "" || password == "" {
		return validationErr("username and password are required")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		PasswordHash: cryptox.HashPassword([]byte(password), s.params),
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			s.logger.Info(ctx, "signup rejected, username taken", "username", username)
			return common.ErrDuplicateUser
		}
		s.logger.Error(ctx, "signup failed", "username", username, "error", err)
		return storeErr(err)
	}

	s.logger.Info(ctx, "user signed up", "username", username)
	return nil
}

// Login checks credentials. An unknown username yields common.ErrUserNotFound,
// a wrong password common.ErrBadCredential. Both paths run one key derivation.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	username = NormalizeUserName(username)
	if username == "" || password == "" {
		return validationErr("username and password are required")
	}

	user, err := s.users.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = cryptox.VerifyPassword(s.dummyHash, []byte(password))
			s.logger.Info(ctx, "login rejected, unknown user", "username", username)
			return common.ErrUserNotFound
		}
		s.logger.Error(ctx, "login lookup failed", "username", username, "error", err)
		return storeErr(err)
	}

	ok, err := cryptox.VerifyPassword(user.PasswordHash, []byte(password))
	if err != nil {
		s.logger.Error(ctx, "stored hash unreadable", "username", username, "error", err)
		return common.ErrorInternal
	}
	if !ok {
		s.logger.Info(ctx, "login rejected, bad password", "username", username)
		return common.ErrBadCredential
	}

	s.logger.Info(ctx, "user logged in", "username", username)
	return nil
}
