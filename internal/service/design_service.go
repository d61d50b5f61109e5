package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
	"github.com/arsitekta/arsitekta-api/pkg/export"
)

// AuthzPolicy selects how mutation authorization is enforced. Owner routes
// require the acting architect to own the design; admin routes override the
// ownership check entirely.
type AuthzPolicy int

const (
	AuthzOwnerOnly AuthzPolicy = iota
	AuthzAdminOverride
)

type designStore interface {
	Create(ctx context.Context, design *models.Design) error
	GetByID(ctx context.Context, id string) (*models.Design, error)
	GetByIDWithArchitect(ctx context.Context, id string) (*models.DesignWithArchitect, error)
	List(ctx context.Context, filter models.DesignFilter) ([]models.DesignWithArchitect, int, error)
	Update(ctx context.Context, design *models.Design) error
	Delete(ctx context.Context, id string) error
	CountByArchitect(ctx context.Context, architectID string) (int, []models.KategoriCount, error)
}

type designArchitectResolver interface {
	FindByID(ctx context.Context, id string) (*models.Architect, error)
}

type designFileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
	PublicURL(filename string) string
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheLookupObserver interface {
	ObserveCacheLookup(hit bool)
}

// DesignUpload carries one uploaded photo stream.
type DesignUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// DesignExport bundles rendered export bytes with transport metadata.
type DesignExport struct {
	Content  []byte
	MimeType string
	Filename string
}

// DesignServiceConfig tunes catalog behaviour.
type DesignServiceConfig struct {
	CacheTTL    time.Duration
	LatestLimit int
}

// DesignService manages the design catalog: validation, ownership
// authorization, photo file lifecycle and response shaping.
type DesignService struct {
	repo       designStore
	architects designArchitectResolver
	storage    designFileStorage
	cache      catalogCache
	metrics    cacheLookupObserver
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	cfg        DesignServiceConfig
}

// NewDesignService constructs the service with defaults.
func NewDesignService(repo designStore, architects designArchitectResolver, storage designFileStorage, cache catalogCache, metrics cacheLookupObserver, logger *zap.Logger, cfg DesignServiceConfig) *DesignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.LatestLimit <= 0 {
		cfg.LatestLimit = 6
	}
	return &DesignService{
		repo:       repo,
		architects: architects,
		storage:    storage,
		cache:      cache,
		metrics:    metrics,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		cfg:        cfg,
	}
}

// Create validates and persists a new design with optional photo uploads.
func (s *DesignService) Create(ctx context.Context, architectID string, req dto.CreateDesignRequest, fotoBangunan, fotoDenah []DesignUpload) (*dto.DesignResponse, error) {
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}

	architect, err := s.architects.FindByID(ctx, architectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "architect not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load architect")
	}

	bangunanPaths, err := s.storeUploads(fotoBangunan)
	if err != nil {
		return nil, err
	}
	denahPaths, err := s.storeUploads(fotoDenah)
	if err != nil {
		return nil, err
	}

	design := &models.Design{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Kategori:     req.Kategori,
		LuasBangunan: req.LuasBangunan,
		LuasTanah:    req.LuasTanah,
		FotoBangunan: encodePhotoList(bangunanPaths),
		FotoDenah:    encodePhotoList(denahPaths),
		ArchitectID:  architectID,
	}
	if err := s.repo.Create(ctx, design); err != nil {
		s.releaseFiles(append(bangunanPaths, denahPaths...))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create design")
	}

	s.invalidateCatalogCache(ctx)

	summary := &models.ArchitectSummary{ID: architect.ID, FullName: architect.FullName, City: architect.City}
	return s.formatDesign(design, summary), nil
}

// GetByID returns one formatted design, optionally with the owner summary.
func (s *DesignService) GetByID(ctx context.Context, id string, includeArchitect bool) (*dto.DesignResponse, error) {
	if includeArchitect {
		design, err := s.repo.GetByIDWithArchitect(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "design not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load design")
		}
		return s.formatDesign(&design.Design, summaryFromJoin(design)), nil
	}

	design, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "design not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load design")
	}
	return s.formatDesign(design, nil), nil
}

// List returns formatted designs for the given filter with pagination
// metadata.
func (s *DesignService) List(ctx context.Context, filter models.DesignFilter) ([]dto.DesignResponse, *models.Pagination, error) {
	designs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list designs")
	}

	responses := make([]dto.DesignResponse, 0, len(designs))
	for i := range designs {
		responses = append(responses, *s.formatDesign(&designs[i].Design, summaryFromJoin(&designs[i])))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 12
	}
	return responses, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListByArchitect returns one architect's designs.
func (s *DesignService) ListByArchitect(ctx context.Context, architectID string, query dto.ListDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error) {
	return s.List(ctx, models.DesignFilter{
		ArchitectID: architectID,
		Page:        query.Page,
		PageSize:    query.Limit,
		SortBy:      query.OrderBy,
	})
}

// ListByKategori returns designs in an exact (case-insensitive) category.
func (s *DesignService) ListByKategori(ctx context.Context, kategori string, query dto.ListDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error) {
	return s.List(ctx, models.DesignFilter{
		Kategori: kategori,
		Page:     query.Page,
		PageSize: query.Limit,
		SortBy:   query.OrderBy,
	})
}

// ListLatest returns the newest designs, served from cache when possible.
func (s *DesignService) ListLatest(ctx context.Context, limit int) ([]dto.DesignResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = s.cfg.LatestLimit
	}

	cacheKey := fmt.Sprintf("designs:latest:%d", limit)
	var cached []dto.DesignResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		s.observeCacheLookup(true)
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("latest designs cache lookup failed", zap.Error(err))
	}
	s.observeCacheLookup(false)

	responses, _, err := s.List(ctx, models.DesignFilter{Page: 1, PageSize: limit})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, responses, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("latest designs cache write failed", zap.Error(err))
	}
	return responses, nil
}

// Search applies the conjunctive public filter; blank terms degrade to a
// plain listing.
func (s *DesignService) Search(ctx context.Context, query dto.SearchDesignsQuery) ([]dto.DesignResponse, *models.Pagination, error) {
	q := strings.TrimSpace(query.Q)
	kategori := strings.TrimSpace(query.Kategori)
	city := strings.TrimSpace(query.City)

	return s.List(ctx, models.DesignFilter{
		Query:    q,
		Kategori: kategori,
		City:     city,
		Page:     query.Page,
		PageSize: query.Limit,
	})
}

// Update mutates a design under the given authorization policy. When a photo
// batch is supplied for a field, every old file of that field is released
// after the row mutation succeeds; old files are never retained alongside a
// new batch.
func (s *DesignService) Update(ctx context.Context, designID, actorID string, policy AuthzPolicy, req dto.UpdateDesignRequest, fotoBangunan, fotoDenah []DesignUpload) (*dto.DesignResponse, error) {
	design, err := s.repo.GetByID(ctx, designID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "design not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load design")
	}

	if policy == AuthzOwnerOnly && design.ArchitectID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "design belongs to another architect")
	}

	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
		design.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		design.Description = req.Description
	}
	if req.Kategori != nil {
		design.Kategori = req.Kategori
	}
	if req.LuasBangunan != nil {
		design.LuasBangunan = req.LuasBangunan
	}
	if req.LuasTanah != nil {
		design.LuasTanah = req.LuasTanah
	}

	var obsolete []string
	if len(fotoBangunan) > 0 {
		paths, err := s.storeUploads(fotoBangunan)
		if err != nil {
			return nil, err
		}
		obsolete = append(obsolete, decodePhotoList(design.FotoBangunan)...)
		design.FotoBangunan = encodePhotoList(paths)
	}
	if len(fotoDenah) > 0 {
		paths, err := s.storeUploads(fotoDenah)
		if err != nil {
			return nil, err
		}
		obsolete = append(obsolete, decodePhotoList(design.FotoDenah)...)
		design.FotoDenah = encodePhotoList(paths)
	}

	if err := s.repo.Update(ctx, design); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "design not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update design")
	}

	s.releaseFiles(obsolete)
	s.invalidateCatalogCache(ctx)

	return s.formatDesign(design, nil), nil
}

// Delete removes a design and best-effort releases every referenced file.
func (s *DesignService) Delete(ctx context.Context, designID, actorID string, policy AuthzPolicy) error {
	design, err := s.repo.GetByID(ctx, designID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "design not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load design")
	}

	if policy == AuthzOwnerOnly && design.ArchitectID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "design belongs to another architect")
	}

	if err := s.repo.Delete(ctx, designID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "design not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete design")
	}

	s.releaseFiles(append(decodePhotoList(design.FotoBangunan), decodePhotoList(design.FotoDenah)...))
	s.invalidateCatalogCache(ctx)

	return nil
}

// Statistics aggregates catalog counts for one architect.
func (s *DesignService) Statistics(ctx context.Context, architectID string) (*models.DesignStatistics, error) {
	total, breakdown, err := s.repo.CountByArchitect(ctx, architectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate design statistics")
	}
	return &models.DesignStatistics{Total: total, PerKategori: breakdown}, nil
}

// Export renders the architect's catalog as CSV or PDF.
func (s *DesignService) Export(ctx context.Context, architectID, format string) (*DesignExport, error) {
	designs, _, err := s.repo.List(ctx, models.DesignFilter{ArchitectID: architectID, Page: 1, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load designs for export")
	}

	table := export.Table{
		Columns: []string{"No", "Title", "Kategori", "Luas Bangunan", "Luas Tanah", "Created"},
	}
	for i := range designs {
		design := &designs[i].Design
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(i + 1),
			design.Title,
			stringOrDash(design.Kategori),
			stringOrDash(design.LuasBangunan),
			stringOrDash(design.LuasTanah),
			design.CreatedAt.Format("2006-01-02"),
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &DesignExport{Content: content, MimeType: "text/csv", Filename: exportFilename("csv")}, nil
	case "pdf":
		content, err := s.pdf.Render(table, "Design Catalog")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &DesignExport{Content: content, MimeType: "application/pdf", Filename: exportFilename("pdf")}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *DesignService) storeUploads(uploads []DesignUpload) ([]string, error) {
	paths := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Content == nil {
			continue
		}
		filename := generatePhotoFilename(upload.Filename)
		path, err := s.storage.SaveStream(filename, upload.Content)
		if err != nil {
			s.releaseFiles(paths)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist uploaded photo")
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// releaseFiles deletes stored files best-effort: failures are logged and
// never block the primary operation.
func (s *DesignService) releaseFiles(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.storage.Delete(path); err != nil {
			s.logger.Warn("failed to delete design photo", zap.String("path", path), zap.Error(err))
		}
	}
}

func (s *DesignService) observeCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(hit)
	}
}

func (s *DesignService) invalidateCatalogCache(ctx context.Context) {
	if err := s.cache.DeleteByPattern(ctx, "designs:*"); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *DesignService) formatDesign(design *models.Design, architect *models.ArchitectSummary) *dto.DesignResponse {
	return &dto.DesignResponse{
		ID:           design.ID,
		Title:        design.Title,
		Description:  design.Description,
		Kategori:     design.Kategori,
		LuasBangunan: design.LuasBangunan,
		LuasTanah:    design.LuasTanah,
		FotoBangunan: s.resolvePhotoURLs(design.FotoBangunan),
		FotoDenah:    s.resolvePhotoURLs(design.FotoDenah),
		ArchitectID:  design.ArchitectID,
		Architect:    architect,
		CreatedAt:    design.CreatedAt,
		UpdatedAt:    design.UpdatedAt,
	}
}

func (s *DesignService) resolvePhotoURLs(encoded string) []string {
	paths := decodePhotoList(encoded)
	urls := make([]string, 0, len(paths))
	for _, path := range paths {
		urls = append(urls, s.storage.PublicURL(path))
	}
	return urls
}

// decodePhotoList parses a JSON-encoded path list; null, empty or malformed
// values decode to an empty slice so responses always carry real arrays.
func decodePhotoList(encoded string) []string {
	if strings.TrimSpace(encoded) == "" {
		return []string{}
	}
	var paths []string
	if err := json.Unmarshal([]byte(encoded), &paths); err != nil || paths == nil {
		return []string{}
	}
	return paths
}

func encodePhotoList(paths []string) string {
	if paths == nil {
		paths = []string{}
	}
	encoded, err := json.Marshal(paths)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid design payload"),
			map[string]string{"title": "title is required"})
	}
	if len([]rune(trimmed)) > 200 {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid design payload"),
			map[string]string{"title": "title must be at most 200 characters"})
	}
	return nil
}

func summaryFromJoin(design *models.DesignWithArchitect) *models.ArchitectSummary {
	if design.ArchitectName == nil {
		return nil
	}
	summary := &models.ArchitectSummary{ID: design.ArchitectID, FullName: *design.ArchitectName}
	if design.ArchitectCity != nil {
		summary.City = *design.ArchitectCity
	}
	return summary
}

func generatePhotoFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("designs/design_%d_%s%s", time.Now().Unix(), randomSuffix(), ext)
}

func exportFilename(ext string) string {
	return fmt.Sprintf("design_catalog_%s.%s", time.Now().Format("20060102"), ext)
}

func stringOrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
