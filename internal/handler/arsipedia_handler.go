package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
	"github.com/arsitekta/arsitekta-api/pkg/response"
)

type arsipediaService interface {
	Create(ctx context.Context, req dto.CreateArsipediaRequest) (*models.ArsipediaEntry, error)
	GetByID(ctx context.Context, id string) (*models.ArsipediaEntry, error)
	List(ctx context.Context, query dto.ListArsipediaQuery) ([]models.ArsipediaEntry, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateArsipediaRequest) (*models.ArsipediaEntry, error)
	Delete(ctx context.Context, id string) error
}

type arsipediaUploadStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

// ArsipediaHandler manages arsipedia HTTP endpoints. Image uploads are
// persisted here so the service only ever sees stored paths.
type ArsipediaHandler struct {
	service arsipediaService
	storage arsipediaUploadStorage
}

// NewArsipediaHandler constructs the handler.
func NewArsipediaHandler(service arsipediaService, storage arsipediaUploadStorage) *ArsipediaHandler {
	return &ArsipediaHandler{service: service, storage: storage}
}

// Create godoc
// @Summary Create an arsipedia entry
// @Tags Arsipedia
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param tags formData string false "Tags (JSON array or comma separated)"
// @Param image formData file true "Cover image"
// @Success 201 {object} response.Envelope
// @Router /admin/arsipedia [post]
func (h *ArsipediaHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := dto.CreateArsipediaRequest{
		AdminID: claims.UserID,
		Title:   c.PostForm("title"),
	}
	if adminID := strings.TrimSpace(c.PostForm("adminId")); adminID != "" {
		req.AdminID = adminID
	}
	if tags, ok := c.GetPostForm("tags"); ok {
		req.Tags = tags
	}

	imagePath, err := h.saveImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.ImagePath = imagePath

	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Get godoc
// @Summary Get an arsipedia entry
// @Tags Arsipedia
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /arsipedia/{id} [get]
func (h *ArsipediaHandler) Get(c *gin.Context) {
	entry, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// List godoc
// @Summary List arsipedia entries
// @Tags Arsipedia
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /arsipedia [get]
func (h *ArsipediaHandler) List(c *gin.Context) {
	var query dto.ListArsipediaQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid listing parameters"))
		return
	}
	entries, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Update godoc
// @Summary Update an arsipedia entry
// @Tags Arsipedia
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /admin/arsipedia/{id} [put]
func (h *ArsipediaHandler) Update(c *gin.Context) {
	var req dto.UpdateArsipediaRequest
	if title, ok := c.GetPostForm("title"); ok {
		req.Title = &title
	}
	if tags, ok := c.GetPostForm("tags"); ok {
		req.Tags = tags
	}

	imagePath, err := h.saveImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if imagePath != nil {
		req.ImagePath = imagePath
	}

	entry, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete an arsipedia entry
// @Tags Arsipedia
// @Param id path string true "Entry ID"
// @Success 204
// @Router /admin/arsipedia/{id} [delete]
func (h *ArsipediaHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// saveImage stores the "image" multipart file if one was submitted and
// returns its public path. Absent files return nil without error so the
// service can decide whether an image is mandatory.
func (h *ArsipediaHandler) saveImage(c *gin.Context) (*string, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open uploaded image")
	}
	defer src.Close()

	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := fmt.Sprintf("arsipedia/arsipedia_%d_%s%s", time.Now().UnixNano(), hex.EncodeToString(suffix), ext)

	path, err := h.storage.SaveStream(filename, src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store uploaded image")
	}
	return &path, nil
}
