package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/usmanali13/university-timetable-management/internal/models"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
)

type mockUserRepo struct {
	userByEmail  *models.User
	userByID     *models.User
	taken        bool
	regNoTaken   bool
	created      *models.User
	tokens       map[string]*models.RefreshToken
	revokedIDs   []string
	createdToken *models.RefreshToken
}

func (m *mockUserRepo) FindByEmail(_ context.Context, _ string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, _ string) (*models.User, error) {
	if m.userByID == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByID, nil
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(_ context.Context, _, _ string) (bool, error) {
	return m.taken, nil
}

func (m *mockUserRepo) ExistsByRegistrationNumber(_ context.Context, _ string) (bool, error) {
	return m.regNoTaken, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = "u1"
	m.created = user
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	if m.tokens == nil {
		m.tokens = make(map[string]*models.RefreshToken)
	}
	m.tokens[token.Token] = token
	m.createdToken = token
	return nil
}

func (m *mockUserRepo) FindRefreshToken(_ context.Context, token string) (*models.RefreshToken, error) {
	stored, ok := m.tokens[token]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return stored, nil
}

func (m *mockUserRepo) RevokeRefreshToken(_ context.Context, id string, _ time.Time) error {
	m.revokedIDs = append(m.revokedIDs, id)
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
		}
	}
	return nil
}

func newAuthFixture(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "test",
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceRegisterAdmin(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthFixture(repo)

	user, err := svc.RegisterAdmin(context.Background(), RegisterAdminRequest{
		Username: "Admin",
		Email:    "Admin@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.Nil(t, user.RegistrationNumber)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestAuthServiceRegisterStudent(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newAuthFixture(repo)

	user, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Username:           "student",
		Email:              "student@example.com",
		Password:           "secret123",
		RegistrationNumber: "FA21-BCS-001",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.RegistrationNumber)
	assert.Equal(t, "FA21-BCS-001", *user.RegistrationNumber)
}

func TestAuthServiceRegisterStudentDuplicateRegNo(t *testing.T) {
	repo := &mockUserRepo{regNoTaken: true}
	svc := newAuthFixture(repo)

	_, err := svc.RegisterStudent(context.Background(), RegisterStudentRequest{
		Username:           "student",
		Email:              "student@example.com",
		Password:           "secret123",
		RegistrationNumber: "FA21-BCS-001",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrorCode(t, err))
	assert.Nil(t, repo.created)
}

func TestAuthServiceRegisterTakenUsername(t *testing.T) {
	repo := &mockUserRepo{taken: true}
	svc := newAuthFixture(repo)

	_, err := svc.RegisterAdmin(context.Background(), RegisterAdminRequest{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrorCode(t, err))
}

func TestAuthServiceLoginAndValidate(t *testing.T) {
	repo := &mockUserRepo{userByEmail: &models.User{
		ID:           "u1",
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hashPassword(t, "secret123"),
		Role:         models.RoleAdmin,
	}}
	svc := newAuthFixture(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "u1", res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{userByEmail: &models.User{
		ID:           "u1",
		PasswordHash: hashPassword(t, "secret123"),
	}}
	svc := newAuthFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := &mockUserRepo{userByID: &models.User{ID: "u1", Username: "admin", Role: models.RoleAdmin}}
	svc := newAuthFixture(repo)

	original, err := svc.issueRefreshToken(context.Background(), "u1")
	require.NoError(t, err)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: original.Token})
	require.NoError(t, err)
	assert.NotEqual(t, original.Token, res.RefreshToken)
	assert.Contains(t, repo.revokedIDs, original.ID)

	// The used token is revoked and cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: original.Token})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
}

func TestAuthServiceRefreshExpiredToken(t *testing.T) {
	repo := &mockUserRepo{
		userByID: &models.User{ID: "u1"},
		tokens: map[string]*models.RefreshToken{
			"stale": {ID: "rt1", UserID: "u1", Token: "stale", ExpiresAt: time.Now().UTC().Add(-time.Hour)},
		},
	}
	svc := newAuthFixture(repo)

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
}

func TestAuthServiceLogout(t *testing.T) {
	repo := &mockUserRepo{
		tokens: map[string]*models.RefreshToken{
			"tok": {ID: "rt1", UserID: "u1", Token: "tok", ExpiresAt: time.Now().UTC().Add(time.Hour)},
		},
	}
	svc := newAuthFixture(repo)

	require.NoError(t, svc.Logout(context.Background(), "tok", "u1"))
	assert.Contains(t, repo.revokedIDs, "rt1")

	err := svc.Logout(context.Background(), "tok", "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrorCode(t, err))
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture(&mockUserRepo{})

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrorCode(t, err))
}
