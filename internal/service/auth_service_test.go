package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
)

type authArchitectStub struct {
	architects map[string]models.Architect
}

func (s *authArchitectStub) Create(ctx context.Context, architect *models.Architect) error {
	if s.architects == nil {
		s.architects = make(map[string]models.Architect)
	}
	if architect.ID == "" {
		architect.ID = "arch-new"
	}
	s.architects[architect.Email] = *architect
	return nil
}

func (s *authArchitectStub) FindByEmail(ctx context.Context, email string) (*models.Architect, error) {
	if architect, ok := s.architects[email]; ok {
		return &architect, nil
	}
	return nil, sql.ErrNoRows
}

type authAdminStub struct {
	admins map[string]models.Admin
}

func (s *authAdminStub) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if admin, ok := s.admins[email]; ok {
		return &admin, nil
	}
	return nil, sql.ErrNoRows
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newAuthServiceForTest(architects *authArchitectStub, admins *authAdminStub) *AuthService {
	return NewAuthService(architects, admins, nil, nil, AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "arsitekta-test",
	})
}

func TestAuthServiceRegisterArchitect(t *testing.T) {
	architects := &authArchitectStub{}
	svc := newAuthServiceForTest(architects, &authAdminStub{})

	architect, err := svc.RegisterArchitect(context.Background(), dto.RegisterArchitectRequest{
		Email:    "andi@example.com",
		Password: "rahasia123",
		FullName: "Andi",
		City:     "Bandung",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, architect.ID)
	assert.True(t, architect.Active)
	assert.NotEqual(t, "rahasia123", architect.PasswordHash)

	_, err = svc.RegisterArchitect(context.Background(), dto.RegisterArchitectRequest{
		Email:    "andi@example.com",
		Password: "rahasia123",
		FullName: "Andi Kedua",
	})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newAuthServiceForTest(&authArchitectStub{}, &authAdminStub{})

	_, err := svc.RegisterArchitect(context.Background(), dto.RegisterArchitectRequest{Email: "not-an-email", Password: "x", FullName: ""})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginArchitect(t *testing.T) {
	architects := &authArchitectStub{architects: map[string]models.Architect{
		"andi@example.com": {ID: "arch-1", Email: "andi@example.com", PasswordHash: hashPassword(t, "rahasia123"), FullName: "Andi", Active: true},
	}}
	svc := newAuthServiceForTest(architects, &authAdminStub{})

	result, err := svc.LoginArchitect(context.Background(), dto.LoginRequest{Email: "andi@example.com", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.Equal(t, models.RoleArchitect, result.Role)
	assert.NotEmpty(t, result.AccessToken)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "arch-1", claims.UserID)
	assert.Equal(t, models.RoleArchitect, claims.Role)
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	architects := &authArchitectStub{architects: map[string]models.Architect{
		"andi@example.com": {ID: "arch-1", Email: "andi@example.com", PasswordHash: hashPassword(t, "rahasia123"), Active: true},
	}}
	svc := newAuthServiceForTest(architects, &authAdminStub{})

	_, wrongPassword := svc.LoginArchitect(context.Background(), dto.LoginRequest{Email: "andi@example.com", Password: "salah"})
	_, unknownEmail := svc.LoginArchitect(context.Background(), dto.LoginRequest{Email: "ghost@example.com", Password: "rahasia123"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, appErrors.FromError(wrongPassword).Code, appErrors.FromError(unknownEmail).Code)
	assert.Equal(t, 401, appErrors.FromError(wrongPassword).Status)
}

func TestAuthServiceLoginInactiveArchitect(t *testing.T) {
	architects := &authArchitectStub{architects: map[string]models.Architect{
		"andi@example.com": {ID: "arch-1", Email: "andi@example.com", PasswordHash: hashPassword(t, "rahasia123"), Active: false},
	}}
	svc := newAuthServiceForTest(architects, &authAdminStub{})

	_, err := svc.LoginArchitect(context.Background(), dto.LoginRequest{Email: "andi@example.com", Password: "rahasia123"})
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginAdmin(t *testing.T) {
	admins := &authAdminStub{admins: map[string]models.Admin{
		"root@example.com": {ID: "adm-1", Email: "root@example.com", PasswordHash: hashPassword(t, "sangatrahasia")},
	}}
	svc := newAuthServiceForTest(&authArchitectStub{}, admins)

	result, err := svc.LoginAdmin(context.Background(), dto.LoginRequest{Email: "root@example.com", Password: "sangatrahasia"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, result.Role)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthServiceForTest(&authArchitectStub{}, &authAdminStub{})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)

	other := NewAuthService(&authArchitectStub{architects: map[string]models.Architect{
		"andi@example.com": {ID: "arch-1", Email: "andi@example.com", PasswordHash: hashPassword(t, "pw"), Active: true},
	}}, &authAdminStub{}, nil, nil, AuthConfig{Secret: "different-secret", Expiration: time.Hour})
	result, err := other.LoginArchitect(context.Background(), dto.LoginRequest{Email: "andi@example.com", Password: "pw"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}
