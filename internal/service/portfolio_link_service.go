package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/arsitekta/arsitekta-api/internal/dto"
	"github.com/arsitekta/arsitekta-api/internal/models"
	appErrors "github.com/arsitekta/arsitekta-api/pkg/errors"
)

type portfolioLinkStore interface {
	Create(ctx context.Context, link *models.PortfolioLink) error
	GetByID(ctx context.Context, id string) (*models.PortfolioLink, error)
	ListByArchitect(ctx context.Context, architectID string) ([]models.PortfolioLink, error)
	NextOrder(ctx context.Context, architectID string) (int, error)
	ExistsByArchitectAndURL(ctx context.Context, architectID, url, excludeID string) (bool, error)
	Update(ctx context.Context, link *models.PortfolioLink) error
	ReassignOrders(ctx context.Context, architectID string, orderedIDs []string) error
	Delete(ctx context.Context, id string) error
}

type portfolioArchitectResolver interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
}

// PortfolioLinkService manages architect portfolio links and their
// architect-scoped ordering sequence.
type PortfolioLinkService struct {
	repo       portfolioLinkStore
	architects portfolioArchitectResolver
	logger     *zap.Logger
}

// NewPortfolioLinkService constructs the service.
func NewPortfolioLinkService(repo portfolioLinkStore, architects portfolioArchitectResolver, logger *zap.Logger) *PortfolioLinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioLinkService{repo: repo, architects: architects, logger: logger}
}

// Create validates and persists a new link with the next sequence value.
func (s *PortfolioLinkService) Create(ctx context.Context, architectID string, req dto.CreatePortfolioLinkRequest) (*models.PortfolioLink, error) {
	if err := validateLinkURL(req.URL); err != nil {
		return nil, err
	}

	exists, err := s.architects.ExistsByID(ctx, architectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check architect")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "architect not found")
	}

	duplicate, err := s.repo.ExistsByArchitectAndURL(ctx, architectID, req.URL, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check url uniqueness")
	}
	if duplicate {
		return nil, appErrors.Clone(appErrors.ErrConflict, "portfolio link url already exists")
	}

	next, err := s.repo.NextOrder(ctx, architectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute next order")
	}

	link := &models.PortfolioLink{
		ArchitectID: architectID,
		URL:         req.URL,
		Order:       next,
	}
	if err := s.repo.Create(ctx, link); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create portfolio link")
	}
	return link, nil
}

// Get returns one link by id.
func (s *PortfolioLinkService) Get(ctx context.Context, id string) (*models.PortfolioLink, error) {
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "portfolio link not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load portfolio link")
	}
	return link, nil
}

// ListByArchitect returns the architect's links in sequence order.
func (s *PortfolioLinkService) ListByArchitect(ctx context.Context, architectID string) ([]models.PortfolioLink, error) {
	links, err := s.repo.ListByArchitect(ctx, architectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list portfolio links")
	}
	return links, nil
}

// Update mutates url and/or order of an owned link. Order is accepted as a
// raw overwrite; siblings are not renumbered.
func (s *PortfolioLinkService) Update(ctx context.Context, linkID, architectID string, req dto.UpdatePortfolioLinkRequest) (*models.PortfolioLink, error) {
	link, err := s.Get(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.ArchitectID != architectID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "portfolio link belongs to another architect")
	}

	if req.URL != nil && *req.URL != link.URL {
		if err := validateLinkURL(*req.URL); err != nil {
			return nil, err
		}
		duplicate, err := s.repo.ExistsByArchitectAndURL(ctx, architectID, *req.URL, link.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check url uniqueness")
		}
		if duplicate {
			return nil, appErrors.Clone(appErrors.ErrConflict, "portfolio link url already exists")
		}
		link.URL = *req.URL
	}
	if req.Order != nil {
		link.Order = *req.Order
	}

	if err := s.repo.Update(ctx, link); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "portfolio link not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update portfolio link")
	}
	return link, nil
}

// Reorder assigns order = index for the submitted id sequence inside a
// single transaction and returns the links in their new order. Any id that
// does not belong to the architect fails the whole batch.
func (s *PortfolioLinkService) Reorder(ctx context.Context, architectID string, orderedIDs []string) ([]models.PortfolioLink, error) {
	if len(orderedIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "orderedIds must not be empty")
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if strings.TrimSpace(id) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "orderedIds must not contain blank ids")
		}
		if _, dup := seen[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "orderedIds must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	if err := s.repo.ReassignOrders(ctx, architectID, orderedIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "one or more links do not belong to this architect")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder portfolio links")
	}

	return s.ListByArchitect(ctx, architectID)
}

// Delete removes an owned link.
func (s *PortfolioLinkService) Delete(ctx context.Context, linkID, architectID string) error {
	link, err := s.Get(ctx, linkID)
	if err != nil {
		return err
	}
	if link.ArchitectID != architectID {
		return appErrors.Clone(appErrors.ErrForbidden, "portfolio link belongs to another architect")
	}

	if err := s.repo.Delete(ctx, linkID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "portfolio link not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete portfolio link")
	}
	return nil
}

// validateLinkURL requires an absolute http(s) URL with a host.
func validateLinkURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid portfolio link payload"),
			map[string]string{"url": "url is required"})
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "invalid portfolio link payload"),
			map[string]string{"url": "url must be a valid http(s) URL"})
	}
	return nil
}
