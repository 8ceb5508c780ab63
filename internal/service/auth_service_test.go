package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/studyflow-api/internal/models"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
)

type stubUserRepo struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	tokens        map[string]*models.RefreshToken
	created       []*models.User
	revokedTokens []string
	revokedUsers  []string
	lastLogin     map[string]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		usersByEmail: map[string]*models.User{},
		usersByID:    map[string]*models.User{},
		tokens:       map[string]*models.RefreshToken{},
		lastLogin:    map[string]time.Time{},
	}
}

func (r *stubUserRepo) addUser(user *models.User) {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := r.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := r.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	r.created = append(r.created, user)
	r.addUser(user)
	return nil
}

func (r *stubUserRepo) UpdateLastLogin(_ context.Context, id string, ts time.Time) error {
	r.lastLogin[id] = ts
	return nil
}

func (r *stubUserRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	r.revokedUsers = append(r.revokedUsers, userID)
	return nil
}

func (r *stubUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *stubUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := r.tokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	r.revokedTokens = append(r.revokedTokens, id)
	for _, rt := range r.tokens {
		if rt.ID == id {
			rt.Revoked = true
		}
	}
	return nil
}

func authConfigFixture() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "studyflow",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newStubUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "a@b.test", PasswordHash: hashPassword(t, "secret123"), FullName: "Alex", Active: true})
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	resp, err := service.Login(context.Background(), models.LoginRequest{Email: "a@b.test", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.Contains(t, repo.lastLogin, "user-1")

	claims, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "a@b.test", PasswordHash: hashPassword(t, "secret123"), Active: true})
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "a@b.test", Password: "nope-nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "a@b.test", PasswordHash: hashPassword(t, "secret123"), Active: false})
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	_, err := service.Login(context.Background(), models.LoginRequest{Email: "a@b.test", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "a@b.test", Active: true})
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	_, err := service.Register(context.Background(), models.RegisterRequest{Email: "a@b.test", Password: "secret123", FullName: "Alex"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterCreatesUserWithTokens(t *testing.T) {
	repo := newStubUserRepo()
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	resp, err := service.Register(context.Background(), models.RegisterRequest{Email: "new@b.test", Password: "secret123", FullName: "Sam"})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].Active)
	assert.Equal(t, "UTC", repo.created[0].Timezone)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newStubUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "a@b.test", Active: true})
	repo.tokens["old-token"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "old-token",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	resp, err := service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
	assert.Contains(t, repo.revokedTokens, "rt-1")
}

func TestAuthServiceRefreshRejectsExpiredToken(t *testing.T) {
	repo := newStubUserRepo()
	repo.addUser(&models.User{ID: "user-1", Email: "a@b.test", Active: true})
	repo.tokens["stale"] = &models.RefreshToken{
		ID:        "rt-1",
		UserID:    "user-1",
		Token:     "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Hour),
	}
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	_, err := service.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutRejectsForeignToken(t *testing.T) {
	repo := newStubUserRepo()
	repo.tokens["tok"] = &models.RefreshToken{ID: "rt-1", UserID: "user-2", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}
	service := NewAuthService(repo, nil, nil, authConfigFixture())

	err := service.Logout(context.Background(), "tok", "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
