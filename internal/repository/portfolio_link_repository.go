package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arsitekta/arsitekta-api/internal/models"
)

// PortfolioLinkRepository handles portfolio link persistence.
type PortfolioLinkRepository struct {
	db *sqlx.DB
}

// NewPortfolioLinkRepository constructs the repository.
func NewPortfolioLinkRepository(db *sqlx.DB) *PortfolioLinkRepository {
	return &PortfolioLinkRepository{db: db}
}

// Create stores a new portfolio link.
func (r *PortfolioLinkRepository) Create(ctx context.Context, link *models.PortfolioLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO portfolio_links (id, architect_id, url, sort_order, created_at)
	VALUES (:id, :architect_id, :url, :sort_order, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create portfolio link: %w", err)
	}
	return nil
}

// GetByID retrieves one portfolio link row.
func (r *PortfolioLinkRepository) GetByID(ctx context.Context, id string) (*models.PortfolioLink, error) {
	const query = `SELECT id, architect_id, url, sort_order, created_at FROM portfolio_links WHERE id = $1 LIMIT 1`
	var link models.PortfolioLink
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListByArchitect returns the architect's links in sequence order.
func (r *PortfolioLinkRepository) ListByArchitect(ctx context.Context, architectID string) ([]models.PortfolioLink, error) {
	const query = `SELECT id, architect_id, url, sort_order, created_at
	FROM portfolio_links WHERE architect_id = $1 ORDER BY sort_order ASC, created_at ASC`
	var links []models.PortfolioLink
	if err := r.db.SelectContext(ctx, &links, query, architectID); err != nil {
		return nil, fmt.Errorf("list portfolio links: %w", err)
	}
	return links, nil
}

// NextOrder computes the next architect-scoped sequence value.
func (r *PortfolioLinkRepository) NextOrder(ctx context.Context, architectID string) (int, error) {
	const query = `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM portfolio_links WHERE architect_id = $1`
	var next int
	if err := r.db.GetContext(ctx, &next, query, architectID); err != nil {
		return 0, fmt.Errorf("next portfolio link order: %w", err)
	}
	return next, nil
}

// ExistsByArchitectAndURL reports whether the architect already has the URL,
// optionally excluding one link id (used by update).
func (r *PortfolioLinkRepository) ExistsByArchitectAndURL(ctx context.Context, architectID, url, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM portfolio_links WHERE architect_id = $1 AND url = $2 AND id <> $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, architectID, url, excludeID); err != nil {
		return false, fmt.Errorf("check portfolio link url: %w", err)
	}
	return exists, nil
}

// Update writes url and sort_order of an existing link.
func (r *PortfolioLinkRepository) Update(ctx context.Context, link *models.PortfolioLink) error {
	const query = `UPDATE portfolio_links SET url = :url, sort_order = :sort_order WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, link)
	if err != nil {
		return fmt.Errorf("update portfolio link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check portfolio link update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ReassignOrders rewrites the sequence inside a single transaction: each id
// must belong to the architect or the whole batch rolls back with
// sql.ErrNoRows.
func (r *PortfolioLinkRepository) ReassignOrders(ctx context.Context, architectID string, orderedIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE portfolio_links SET sort_order = $1 WHERE id = $2 AND architect_id = $3`
	for index, id := range orderedIDs {
		res, err := tx.ExecContext(ctx, query, index, id, architectID)
		if err != nil {
			return fmt.Errorf("reassign portfolio link order: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("check reorder rows: %w", err)
		}
		if affected == 0 {
			return sql.ErrNoRows
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder transaction: %w", err)
	}
	return nil
}

// Delete removes a portfolio link row.
func (r *PortfolioLinkRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM portfolio_links WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete portfolio link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check portfolio link delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
