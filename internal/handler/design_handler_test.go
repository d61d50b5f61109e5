package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/middleware"
	"github.com/arsitekta/arsitekta-api/internal/models"
	"github.com/arsitekta/arsitekta-api/internal/service"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
)

type designServiceMock struct {
	getResp    *dto.DesignResponse
	getErr     error
	deleteErr  error
	exportResp *service.DesignExport
	lastPolicy service.AuthzPolicy
	lastActor  string
}

func (m *designServiceMock) Create(ctx context.Context, architectID string, req dto.CreateDesignRequest, fotoBangunan, fotoDenah []service.DesignUpload) (*dto.DesignResponse, error) {
	return &dto.DesignResponse{ID: "d-new", Title: req.Title, ArchitectID: architectID, FotoBangunan: []string{}, FotoDenah: []string{}}, nil
}

func (m *designServiceMock) GetByID(ctx context.Context, id string, includeArchitect bool) (*dto.DesignResponse, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *designServiceMock) List(ctx context.Context, filter models.DesignFilter) ([]dto.DesignResponse, *models.Pagination, error) {
	return []dto.DesignResponse{}, &models.Pagination{Page: 1, PageSize: 12}, nil
}

func (m *designServiceMock) ListByArchitect(ctx context.Context, architectID string, query dto.ListDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error) {
	return []dto.DesignResponse{}, &models.Pagination{Page: 1, PageSize: 12}, nil
}

func (m *designServiceMock) ListByKategori(ctx context.Context, kategori string, query dto.ListDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error) {
	return []dto.DesignResponse{}, &models.Pagination{Page: 1, PageSize: 12}, nil
}

func (m *designServiceMock) ListLatest(ctx context.Context, limit int) ([]dto.DesignResponse, error) {
	return []dto.DesignResponse{}, nil
}

func (m *designServiceMock) Search(ctx context.Context, query dto.SearchDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error) {
	return []dto.DesignResponse{}, &models.Pagination{Page: 1, PageSize: 12}, nil
}

func (m *designServiceMock) Update(ctx context.Context, designID, actorID string, policy service.AuthzPolicy, req dto.UpdateDesignRequest, fotoBangunan, fotoDenah []service.DesignUpload) (*dto.DesignResponse, error) {
	m.lastPolicy = policy
	m.lastActor = actorID
	return &dto.DesignResponse{ID: designID, FotoBangunan: []string{}, FotoDenah: []string{}}, nil
}

func (m *designServiceMock) Delete(ctx context.Context, designID, actorID string, policy service.AuthzPolicy) error {
	m.lastPolicy = policy
	m.lastActor = actorID
	return m.deleteErr
}

func (m *designServiceMock) Statistics(ctx context.Context, architectID string) (*models.DesignStatistics, error) {
	return &models.DesignStatistics{Total: 3}, nil
}

func (m *designServiceMock) Export(ctx context.Context, architectID, format string) (*service.DesignExport, error) {
	return m.exportResp, nil
}

func newDesignTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestDesignHandlerGet(t *testing.T) {
	handler := NewDesignHandler(&designServiceMock{getResp: &dto.DesignResponse{ID: "d1", Title: "Rumah", FotoBangunan: []string{}, FotoDenah: []string{}}})
	c, w := newDesignTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/designs/d1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d1"}}

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.DesignResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "d1", envelope.Data.ID)
}

func TestDesignHandlerGetNotFound(t *testing.T) {
	handler := NewDesignHandler(&designServiceMock{getErr: appErrors.Clone(appErrors.ErrNotFound, "design not found")})
	c, w := newDesignTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/designs/gone", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "gone"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDesignHandlerCreateRequiresClaims(t *testing.T) {
	handler := NewDesignHandler(&designServiceMock{})
	c, w := newDesignTestContext(t)
	req, _ := http.NewRequest(http.MethodPost, "/architects/designs", nil)
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDesignHandlerDeletePolicies(t *testing.T) {
	mock := &designServiceMock{}
	handler := NewDesignHandler(mock)

	c, w := newDesignTestContext(t)
	req, _ := http.NewRequest(http.MethodDelete, "/architects/designs/d1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "arch-1", Role: models.RoleArchitect})
	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, service.AuthzOwnerOnly, mock.lastPolicy)
	assert.Equal(t, "arch-1", mock.lastActor)

	c, w = newDesignTestContext(t)
	req, _ = http.NewRequest(http.MethodDelete, "/admin/designs/d1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "adm-1", Role: models.RoleAdmin})
	handler.AdminDelete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, service.AuthzAdminOverride, mock.lastPolicy)
}

func TestDesignHandlerDeleteForbidden(t *testing.T) {
	mock := &designServiceMock{deleteErr: appErrors.Clone(appErrors.ErrForbidden, "design belongs to another architect")}
	handler := NewDesignHandler(mock)
	c, w := newDesignTestContext(t)
	req, _ := http.NewRequest(http.MethodDelete, "/architects/designs/d1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "arch-2", Role: models.RoleArchitect})

	handler.Delete(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDesignHandlerExportAttachment(t *testing.T) {
	mock := &designServiceMock{exportResp: &service.DesignExport{
		Content:  []byte("No,Title\n1,Rumah\n"),
		MimeType: "text/csv",
		Filename: "design_catalog_20260829.csv",
	}}
	handler := NewDesignHandler(mock)
	c, w := newDesignTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/architects/designs/export?format=csv", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "arch-1", Role: models.RoleArchitect})

	handler.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "design_catalog_20260829.csv")
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
}
