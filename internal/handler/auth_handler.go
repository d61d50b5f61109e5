package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
	"github.com/arsitekta/arsitekta-api/pkg/response"
)

type authService interface {
	RegisterArchitect(ctx context.Context, req dto.RegisterArchitectRequest) (*models.Architect, error)
	LoginArchitect(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	LoginAdmin(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

// AuthHandler manages authentication HTTP endpoints.
type AuthHandler struct {
	service authService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register godoc
// @Summary Register an architect account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.RegisterArchitectRequest true "Account"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterArchitectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration payload"))
		return
	}
	architect, err := h.service.RegisterArchitect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, architect)
}

// Login godoc
// @Summary Authenticate an architect
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid login payload"))
		return
	}
	result, err := h.service.LoginArchitect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// AdminLogin godoc
// @Summary Authenticate an administrator
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid login payload"))
		return
	}
	result, err := h.service.LoginAdmin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
