package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusrec/achievement-api/internal/models"
	appErrors "github.com/campusrec/achievement-api/pkg/errors"
)

type mockAuthRepo struct {
	users         map[string]*models.User
	tokens        map[string]*models.RefreshToken
	revokedIDs    []string
	revokedUsers  []string
	passwordUsers []string
	auditLogs     []*models.AuditLog
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{users: map[string]*models.User{}, tokens: map[string]*models.RefreshToken{}}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	m.passwordUsers = append(m.passwordUsers, id)
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revokedUsers = append(m.revokedUsers, userID)
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	copy := *token
	m.tokens[token.Token] = &copy
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.tokens[token]; ok {
		copy := *stored
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	for _, stored := range m.tokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "achievement-api",
	}
}

func seedUser(repo *mockAuthRepo, id, email, password string, role models.UserRole, active bool) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	repo.users[id] = &models.User{ID: id, Email: email, PasswordHash: string(hash), Name: "User", Role: role, Active: active}
}

func TestAuthLoginIssuesTokens(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, models.RoleStudent, resp.User.Role)
	assert.Len(t, repo.tokens, 1)
	assert.NotEmpty(t, repo.auditLogs)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, errCode(t, err))
}

func TestAuthLoginRejectsInactiveAccount(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, false)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, errCode(t, err))
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	// the used token cannot be replayed
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}

func TestAuthRefreshRejectsExpiredToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, true)
	repo.tokens["stale"] = &models.RefreshToken{ID: "t1", UserID: "u1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}

func TestAuthLogoutRevokesOwnTokenOnly(t *testing.T) {
	repo := newMockAuthRepo()
	repo.tokens["tok"] = &models.RefreshToken{ID: "t1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.Logout(context.Background(), "tok", "someone-else", models.LoginRequest{})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	err = svc.Logout(context.Background(), "tok", "u1", models.LoginRequest{})
	require.NoError(t, err)
	assert.Contains(t, repo.revokedIDs, "t1")
}

func TestAuthChangePassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret"})
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(t, err))

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "secret1", NewPassword: "newsecret"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, repo.passwordUsers)
	// all sessions are revoked after a password change
	assert.Equal(t, []string{"u1"}, repo.revokedUsers)
}

func TestAuthValidateTokenRejectsForgedToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedUser(repo, "u1", "user@example.com", "secret1", models.RoleStudent, true)
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "secret1"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(login.AccessToken)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errCode(t, err))
}
