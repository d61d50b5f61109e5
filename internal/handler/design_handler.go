package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	"github.com/arsitekta/arsitekta-api/internal/service"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
	"github.com/arsitekta/arsitekta-api/pkg/response"
)

type designService interface {
	Create(ctx context.Context, architectID string, req dto.CreateDesignRequest, fotoBangunan, fotoDenah []service.DesignUpload) (*dto.DesignResponse, error)
	GetByID(ctx context.Context, id string, includeArchitect bool) (*dto.DesignResponse, error)
	List(ctx context.Context, filter models.DesignFilter) ([]dto.DesignResponse, *models.Pagination, error)
	ListByArchitect(ctx context.Context, architectID string, query dto.ListDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error)
	ListByKategori(ctx context.Context, kategori string, query dto.ListDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error)
	ListLatest(ctx context.Context, limit int) ([]dto.DesignResponse, error)
	Search(ctx context.Context, query dto.SearchDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error)
	Update(ctx context.Context, designID, actorID string, policy service.AuthzPolicy, req dto.UpdateDesignRequest, fotoBangunan, fotoDenah []service.DesignUpload) (*dto.DesignResponse, error)
	Delete(ctx context.Context, designID, actorID string, policy service.AuthzPolicy) error
	Statistics(ctx context.Context, architectID string) (*models.DesignStatistics, error)
	Export(ctx context.Context, architectID, format string) (*service.DesignExport, error)
}

// DesignHandler manages design catalog HTTP endpoints.
type DesignHandler struct {
	service designService
}

// NewDesignHandler constructs the handler.
func NewDesignHandler(service designService) *DesignHandler {
	return &DesignHandler{service: service}
}

// Create godoc
// @Summary Create a design
// @Tags Designs
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param kategori formData string false "Category"
// @Param luas_bangunan formData string false "Building area"
// @Param luas_tanah formData string false "Land area"
// @Param foto_bangunan formData file false "Building photos"
// @Param foto_denah formData file false "Floor plan photos"
// @Success 201 {object} response.Envelope
// @Router /architects/designs [post]
func (h *DesignHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateDesignRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid design payload"))
		return
	}

	fotoBangunan, closeBangunan, err := collectUploads(c, "foto_bangunan")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeBangunan()
	fotoDenah, closeDenah, err := collectUploads(c, "foto_denah")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeDenah()

	design, err := h.service.Create(c.Request.Context(), claims.UserID, req, fotoBangunan, fotoDenah)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, design)
}

// Get godoc
// @Summary Get a design
// @Tags Designs
// @Produce json
// @Param id path string true "Design ID"
// @Success 200 {object} response.Envelope
// @Router /designs/{id} [get]
func (h *DesignHandler) Get(c *gin.Context) {
	includeArchitect := c.DefaultQuery("include_architect", "true") != "false"
	design, err := h.service.GetByID(c.Request.Context(), c.Param("id"), includeArchitect)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, design, nil)
}

// List godoc
// @Summary List designs
// @Tags Designs
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param orderBy query string false "Sort column"
// @Success 200 {object} response.Envelope
// @Router /designs [get]
func (h *DesignHandler) List(c *gin.Context) {
	var query dto.ListDesignsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid listing parameters"))
		return
	}
	designs, pagination, err := h.service.List(c.Request.Context(), models.DesignFilter{
		Page:     query.Page,
		PageSize: query.Limit,
		SortBy:   query.OrderBy,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, pagination)
}

// Search godoc
// @Summary Search designs
// @Tags Designs
// @Produce json
// @Param q query string false "Title/description term"
// @Param kategori query string false "Category"
// @Param city query string false "Architect city"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /designs/search [get]
func (h *DesignHandler) Search(c *gin.Context) {
	var query dto.SearchDesignsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid search parameters"))
		return
	}
	designs, pagination, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, pagination)
}

// ListByKategori godoc
// @Summary List designs in a category
// @Tags Designs
// @Produce json
// @Param kategori path string true "Category"
// @Success 200 {object} response.Envelope
// @Router /designs/category/{kategori} [get]
func (h *DesignHandler) ListByKategori(c *gin.Context) {
	var query dto.ListDesignsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid listing parameters"))
		return
	}
	designs, pagination, err := h.service.ListByKategori(c.Request.Context(), c.Param("kategori"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, pagination)
}

// ListLatest godoc
// @Summary List latest designs
// @Tags Designs
// @Produce json
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /designs/latest [get]
func (h *DesignHandler) ListLatest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	designs, err := h.service.ListLatest(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, nil)
}

// ListMine godoc
// @Summary List the authenticated architect's designs
// @Tags Designs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /architects/designs [get]
func (h *DesignHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.ListDesignsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid listing parameters"))
		return
	}
	designs, pagination, err := h.service.ListByArchitect(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, designs, pagination)
}

// Update godoc
// @Summary Update an owned design
// @Tags Designs
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Design ID"
// @Success 200 {object} response.Envelope
// @Router /architects/designs/{id} [put]
func (h *DesignHandler) Update(c *gin.Context) {
	h.update(c, service.AuthzOwnerOnly)
}

// AdminUpdate godoc
// @Summary Update any design (admin)
// @Tags Designs
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Design ID"
// @Success 200 {object} response.Envelope
// @Router /admin/designs/{id} [put]
func (h *DesignHandler) AdminUpdate(c *gin.Context) {
	h.update(c, service.AuthzAdminOverride)
}

func (h *DesignHandler) update(c *gin.Context, policy service.AuthzPolicy) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateDesignRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid design payload"))
		return
	}

	fotoBangunan, closeBangunan, err := collectUploads(c, "foto_bangunan")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeBangunan()
	fotoDenah, closeDenah, err := collectUploads(c, "foto_denah")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeDenah()

	design, err := h.service.Update(c.Request.Context(), c.Param("id"), claims.UserID, policy, req, fotoBangunan, fotoDenah)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, design, nil)
}

// Delete godoc
// @Summary Delete an owned design
// @Tags Designs
// @Param id path string true "Design ID"
// @Success 204
// @Router /architects/designs/{id} [delete]
func (h *DesignHandler) Delete(c *gin.Context) {
	h.delete(c, service.AuthzOwnerOnly)
}

// AdminDelete godoc
// @Summary Delete any design (admin)
// @Tags Designs
// @Param id path string true "Design ID"
// @Success 204
// @Router /admin/designs/{id} [delete]
func (h *DesignHandler) AdminDelete(c *gin.Context) {
	h.delete(c, service.AuthzAdminOverride)
}

func (h *DesignHandler) delete(c *gin.Context, policy service.AuthzPolicy) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims.UserID, policy); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Statistics godoc
// @Summary Catalog statistics for the authenticated architect
// @Tags Designs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /architects/designs/statistics [get]
func (h *DesignHandler) Statistics(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.service.Statistics(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export the authenticated architect's catalog
// @Tags Designs
// @Produce octet-stream
// @Param format query string false "csv or pdf"
// @Success 200 {file} binary
// @Router /architects/designs/export [get]
func (h *DesignHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.service.Export(c.Request.Context(), claims.UserID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.MimeType, result.Content)
}

// collectUploads opens every file submitted under the given multipart field.
// The returned closer releases all opened readers after the service call.
func collectUploads(c *gin.Context, field string) ([]service.DesignUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Non-multipart requests simply carry no uploads.
		return nil, func() {}, nil
	}

	headers := form.File[field]
	uploads := make([]service.DesignUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, file := range opened {
			_ = file.Close()
		}
	}

	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded file")
		}
		opened = append(opened, src)
		uploads = append(uploads, service.DesignUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Content:  src,
		})
	}

	return uploads, closeAll, nil
}
