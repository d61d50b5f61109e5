package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
)

type arsipediaStore interface {
	Create(ctx context.Context, entry *models.ArsipediaEntry) error
	GetByID(ctx context.Context, id string) (*models.ArsipediaEntry, error)
	List(ctx context.Context, filter models.ArsipediaFilter) ([]models.ArsipediaEntry, int, error)
	Update(ctx context.Context, entry *models.ArsipediaEntry) error
	Delete(ctx context.Context, id string) error
}

type arsipediaAdminResolver interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

type arsipediaFileStorage interface {
	Delete(filename string) error
	PublicURL(filename string) string
}

// ArsipediaService manages editorial content entries.
type ArsipediaService struct {
	repo    arsipediaStore
	admins  arsipediaAdminResolver
	storage arsipediaFileStorage
	logger  *zap.Logger
}

// NewArsipediaService constructs the service.
func NewArsipediaService(repo arsipediaStore, admins arsipediaAdminResolver, storage arsipediaFileStorage, logger *zap.Logger) *ArsipediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArsipediaService{repo: repo, admins: admins, storage: storage, logger: logger}
}

// Create validates the admin reference and image, normalises tags and
// persists the entry. The normalised payload is forwarded to the store
// unchanged.
func (s *ArsipediaService) Create(ctx context.Context, req dto.CreateArsipediaRequest) (*models.ArsipediaEntry, error) {
	exists, err := s.admins.ExistsByID(ctx, req.AdminID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin")
	}
	if !exists {
		// Surfaced as a client input error rather than 404: the admin id is
		// part of the submitted payload, not the addressed resource.
		return nil, appErrors.Clone(appErrors.ErrValidation, "Invalid adminId")
	}

	if req.ImagePath == nil || strings.TrimSpace(*req.ImagePath) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Image is required")
	}

	entry := &models.ArsipediaEntry{
		AdminID:   req.AdminID,
		Title:     req.Title,
		Tags:      normalizeTags(req.Tags),
		ImagePath: req.ImagePath,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create arsipedia entry")
	}
	return entry, nil
}

// GetByID returns one entry or a 404.
func (s *ArsipediaService) GetByID(ctx context.Context, id string) (*models.ArsipediaEntry, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Arsipedia entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load arsipedia entry")
	}
	return entry, nil
}

// List returns entries newest first.
func (s *ArsipediaService) List(ctx context.Context, query dto.ListArsipediaQuery) ([]models.ArsipediaEntry, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, models.ArsipediaFilter{Page: query.Page, PageSize: query.Limit})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list arsipedia entries")
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.Limit
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return entries, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Update re-verifies existence via GetByID, re-normalises tags when present
// and writes the entry back (read-verify, then write).
func (s *ArsipediaService) Update(ctx context.Context, id string, req dto.UpdateArsipediaRequest) (*models.ArsipediaEntry, error) {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.ImagePath != nil {
		entry.ImagePath = req.ImagePath
	}
	if req.Tags != nil {
		entry.Tags = normalizeTags(req.Tags)
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Arsipedia entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update arsipedia entry")
	}
	return entry, nil
}

// Delete removes the entry row and best-effort unlinks the stored image.
// Filesystem failures are logged, never escalated.
func (s *ArsipediaService) Delete(ctx context.Context, id string) error {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "Arsipedia entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete arsipedia entry")
	}

	if entry.ImagePath != nil && *entry.ImagePath != "" {
		if err := s.storage.Delete(*entry.ImagePath); err != nil {
			s.logger.Warn("failed to unlink arsipedia image", zap.String("path", *entry.ImagePath), zap.Error(err))
		}
	}
	return nil
}

// normalizeTags coerces any supported tags input into a JSON array string.
// Arrays are marshalled as-is, strings are parsed as JSON arrays or split on
// commas, and anything else collapses to "[]".
func normalizeTags(value interface{}) string {
	switch tags := value.(type) {
	case nil:
		return "[]"
	case []string:
		return marshalTags(tags)
	case []interface{}:
		result := make([]string, 0, len(tags))
		for _, tag := range tags {
			result = append(result, strings.TrimSpace(fmt.Sprintf("%v", tag)))
		}
		return marshalTags(result)
	case string:
		trimmed := strings.TrimSpace(tags)
		if trimmed == "" {
			return "[]"
		}
		var parsed []string
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return marshalTags(parsed)
		}
		parts := strings.Split(trimmed, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if cleaned := strings.TrimSpace(part); cleaned != "" {
				result = append(result, cleaned)
			}
		}
		return marshalTags(result)
	default:
		return "[]"
	}
}

func marshalTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
