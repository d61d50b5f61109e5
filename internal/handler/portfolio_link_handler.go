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

type portfolioLinkService interface {
	Create(ctx context.Context, architectID string, req dto.CreatePortfolioLinkRequest) (*models.PortfolioLink, error)
	Get(ctx context.Context, id string) (*models.PortfolioLink, error)
	ListByArchitect(ctx context.Context, architectID string) ([]models.PortfolioLink, error)
	Update(ctx context.Context, linkID, architectID string, req dto.UpdatePortfolioLinkRequest) (*models.PortfolioLink, error)
	Reorder(ctx context.Context, architectID string, orderedIDs []string) ([]models.PortfolioLink, error)
	Delete(ctx context.Context, linkID, architectID string) error
}

// PortfolioLinkHandler manages portfolio link HTTP endpoints.
type PortfolioLinkHandler struct {
	service portfolioLinkService
}

// NewPortfolioLinkHandler constructs the handler.
func NewPortfolioLinkHandler(service portfolioLinkService) *PortfolioLinkHandler {
	return &PortfolioLinkHandler{service: service}
}

// Create godoc
// @Summary Add a portfolio link
// @Tags Portfolio Links
// @Accept json
// @Produce json
// @Param payload body dto.CreatePortfolioLinkRequest true "Link"
// @Success 201 {object} response.Envelope
// @Router /architects/portfolio-links [post]
func (h *PortfolioLinkHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreatePortfolioLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid portfolio link payload"))
		return
	}
	link, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Get godoc
// @Summary Get a portfolio link
// @Tags Portfolio Links
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} response.Envelope
// @Router /architects/portfolio-links/{id} [get]
func (h *PortfolioLinkHandler) Get(c *gin.Context) {
	link, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// ListMine godoc
// @Summary List the authenticated architect's portfolio links
// @Tags Portfolio Links
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /architects/portfolio-links [get]
func (h *PortfolioLinkHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	links, err := h.service.ListByArchitect(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// Update godoc
// @Summary Update a portfolio link
// @Tags Portfolio Links
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param payload body dto.UpdatePortfolioLinkRequest true "Changes"
// @Success 200 {object} response.Envelope
// @Router /architects/portfolio-links/{id} [put]
func (h *PortfolioLinkHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdatePortfolioLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid portfolio link payload"))
		return
	}
	link, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Reorder godoc
// @Summary Reorder portfolio links
// @Tags Portfolio Links
// @Accept json
// @Produce json
// @Param payload body dto.ReorderPortfolioLinksRequest true "Id permutation"
// @Success 200 {object} response.Envelope
// @Router /architects/portfolio-links/reorder [post]
func (h *PortfolioLinkHandler) Reorder(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ReorderPortfolioLinksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid reorder payload"))
		return
	}
	links, err := h.service.Reorder(c.Request.Context(), claims.UserID, req.OrderedIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// Delete godoc
// @Summary Delete a portfolio link
// @Tags Portfolio Links
// @Param id path string true "Link ID"
// @Success 204
// @Router /architects/portfolio-links/{id} [delete]
func (h *PortfolioLinkHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
