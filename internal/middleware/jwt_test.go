package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
)

type tokenValidatorStub struct {
	claims *models.JWTClaims
}

func (s tokenValidatorStub) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	if s.claims == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return s.claims, nil
}

func performWithAuthHeader(t *testing.T, validator tokenValidatorStub, header string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", JWT(validator), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.UserID)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAcceptsBearerToken(t *testing.T) {
	validator := tokenValidatorStub{claims: &models.JWTClaims{UserID: "arch-1", Role: models.RoleArchitect}}
	w := performWithAuthHeader(t, validator, "Bearer valid-token")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "arch-1", w.Body.String())
}

func TestJWTRejectsMissingHeader(t *testing.T) {
	w := performWithAuthHeader(t, tokenValidatorStub{}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsMalformedHeader(t *testing.T) {
	w := performWithAuthHeader(t, tokenValidatorStub{claims: &models.JWTClaims{UserID: "arch-1"}}, "Token abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	w := performWithAuthHeader(t, tokenValidatorStub{}, "Bearer expired")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
