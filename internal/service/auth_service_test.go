package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Campus-Management-System/ERP-System/internal/models"
	appErrors "github.com/Campus-Management-System/ERP-System/pkg/errors"
)

type mockUserRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	findByEmailErr   error
	findByIDErr      error
	createErr        error
	created          *models.User
	lastLoginUpdated bool
	newPasswordHash  string
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return m.userByEmail, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = user
	return user, nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id string, name string, department *string) (*models.User, error) {
	user := *m.userByID
	user.Name = name
	if department != nil {
		user.Department = department
	}
	return &user, nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.newPasswordHash = passwordHash
	return nil
}

func testAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "campus-erp",
	})
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:           "user-1",
		Name:         "Test Faculty",
		Email:        "faculty@campus.edu",
		PasswordHash: string(hash),
		Role:         models.RoleFaculty,
		Active:       true,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockUserRepo{userByEmail: activeUser(t, "secret123")}
	svc := testAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "faculty@campus.edu",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-1", result.User.ID)
	assert.True(t, repo.lastLoginUpdated)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockUserRepo{userByEmail: activeUser(t, "secret123")}
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "faculty@campus.edu",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{findByEmailErr: sql.ErrNoRows}
	svc := testAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@campus.edu",
		Password: "whatever",
	})
	require.Error(t, err)
	// Unknown email and wrong password are indistinguishable to the caller.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginDisabledAccount(t *testing.T) {
	user := activeUser(t, "secret123")
	user.Active = false
	svc := testAuthService(&mockUserRepo{userByEmail: user})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "faculty@campus.edu",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccountDisabled.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRoundTrip(t *testing.T) {
	user := activeUser(t, "secret123")
	repo := &mockUserRepo{userByEmail: user, userByID: user}
	svc := testAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "faculty@campus.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleFaculty, claims.Role)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := testAuthService(&mockUserRepo{})

	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthenticated.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenDisabledAccount(t *testing.T) {
	user := activeUser(t, "secret123")
	repo := &mockUserRepo{userByEmail: user, userByID: user}
	svc := testAuthService(repo)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "faculty@campus.edu",
		Password: "secret123",
	})
	require.NoError(t, err)

	user.Active = false
	_, err = svc.ValidateToken(context.Background(), result.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAccountDisabled.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	user := activeUser(t, "secret123")
	repo := &mockUserRepo{userByID: user}
	svc := testAuthService(repo)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newsecret",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.newPasswordHash)
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{createErr: sql.ErrNoRows}
	svc := testAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:      "Someone",
		Email:     "taken@campus.edu",
		Password:  "secret123",
		Role:      models.RoleStudent,
		StudentID: "STU001",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEntry.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterStudentRequiresStudentID(t *testing.T) {
	repo := &mockUserRepo{}
	svc := testAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Someone",
		Email:    "someone@campus.edu",
		Password: "secret123",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestAuthServiceRegisterFacultyRequiresEmployeeID(t *testing.T) {
	repo := &mockUserRepo{}
	svc := testAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Someone",
		Email:    "someone@campus.edu",
		Password: "secret123",
		Role:     models.RoleFaculty,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestAuthServiceRegisterAdminNeedsNoBusinessKey(t *testing.T) {
	repo := &mockUserRepo{}
	svc := testAuthService(repo)

	result, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Root",
		Email:    "root@campus.edu",
		Password: "secret123",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, models.RoleAdmin, repo.created.Role)
}
