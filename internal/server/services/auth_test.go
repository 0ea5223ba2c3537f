package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/agentdesk/internal/common"
	"github.com/dmitrijs2005/agentdesk/internal/cryptox"
	"github.com/dmitrijs2005/agentdesk/internal/logging"
	"github.com/dmitrijs2005/agentdesk/internal/server/models"
	"github.com/dmitrijs2005/agentdesk/internal/server/repositories/users"
)

var cheapParams = cryptox.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func newAuth(repo users.Repository) *AuthService {
	return newAuthService(repo, logging.Nop(), cheapParams)
}

type brokenUsers struct{ err error }

func (b brokenUsers) Create(context.Context, *models.User) (*models.User, error) { return nil, b.err }
func (b brokenUsers) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, b.err
}

func TestAuthService_SignupThenLogin(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepository()
	s := newAuth(repo)

	require.NoError(t, s.Signup(ctx, "alice", "s3cret"))
	require.NoError(t, s.Login(ctx, "alice", "s3cret"))

	stored, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	assert.NotContains(t, stored.PasswordHash, "s3cret")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	s := newAuth(users.NewMemoryRepository())
	require.NoError(t, s.Signup(ctx, "alice", "right"))

	err := s.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, common.ErrBadCredential)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	s := newAuth(users.NewMemoryRepository())
	err := s.Login(context.Background(), "nobody", "pw")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	assert.NotErrorIs(t, err, common.ErrBadCredential)
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := newAuth(users.NewMemoryRepository())
	require.NoError(t, s.Signup(ctx, "alice", "one"))

	err := s.Signup(ctx, "alice", "two")
	assert.ErrorIs(t, err, common.ErrDuplicateUser)

	// the first password still works
	assert.NoError(t, s.Login(ctx, "alice", "one"))
}

func TestAuthService_Blank(t *testing.T) {
	ctx := context.Background()
	s := newAuth(users.NewMemoryRepository())

	tests := []struct {
		name, user, pass string
	}{
		{"empty user", "", "pw"},
		{"spaces user", "   ", "pw"},
		{"empty password", "alice", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Signup(ctx, tt.user, tt.pass), common.ErrValidation)
			assert.ErrorIs(t, s.Login(ctx, tt.user, tt.pass), common.ErrValidation)
		})
	}
}

func TestAuthService_StoreErrors(t *testing.T) {
	ctx := context.Background()

	s := newAuth(brokenUsers{err: errors.New("db error: dial tcp: connection refused")})
	assert.ErrorIs(t, s.Signup(ctx, "alice", "pw"), common.ErrStoreUnavailable)
	assert.ErrorIs(t, s.Login(ctx, "alice", "pw"), common.ErrStoreUnavailable)

	s = newAuth(brokenUsers{err: errors.New("db error: syntax")})
	assert.ErrorIs(t, s.Signup(ctx, "alice", "pw"), common.ErrStore)
}

func TestAuthService_Login_CorruptHash(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepository()
	_, err := repo.Create(ctx, &models.User{ID: "1", UserName: "alice", PasswordHash: "plain"})
	require.NoError(t, err)

	err = newAuth(repo).Login(ctx, "alice", "plain")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestAuthService_DummyHashReadyAtConstruction(t *testing.T) {
	s := newAuth(users.NewMemoryRepository())

	require.NotEmpty(t, s.dummyHash)
	assert.Contains(t, s.dummyHash, "$m=8192,t=1,p=1$", "dummy hash uses the service cost parameters")

	before := s.dummyHash
	assert.ErrorIs(t, s.Login(context.Background(), "nobody", "pw"), common.ErrUserNotFound)
	assert.Equal(t, before, s.dummyHash, "unknown-user login does not derive a new dummy hash")
}

func TestAuthService_PaddedUserName(t *testing.T) {
	ctx := context.Background()
	repo := users.NewMemoryRepository()
	s := newAuth(repo)

	require.NoError(t, s.Signup(ctx, "  alice ", "pw"))
	_, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err, "stored under the trimmed name")

	assert.NoError(t, s.Login(ctx, " alice ", "pw"))
	assert.ErrorIs(t, s.Signup(ctx, "alice", "other"), common.ErrDuplicateUser)
	assert.Equal(t, "alice", NormalizeUserName("\talice \n"))
}
