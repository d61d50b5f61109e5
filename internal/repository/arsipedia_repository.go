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

// ArsipediaRepository handles arsipedia entry persistence.
type ArsipediaRepository struct {
	db *sqlx.DB
}

// NewArsipediaRepository constructs the repository.
func NewArsipediaRepository(db *sqlx.DB) *ArsipediaRepository {
	return &ArsipediaRepository{db: db}
}

// Create stores a new entry and returns it unchanged.
func (r *ArsipediaRepository) Create(ctx context.Context, entry *models.ArsipediaEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const query = `INSERT INTO arsipedia_entries (id, admin_id, title, tags, image_path, created_at, updated_at)
	VALUES (:id, :admin_id, :title, :tags, :image_path, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create arsipedia entry: %w", err)
	}
	return nil
}

// GetByID retrieves one entry row.
func (r *ArsipediaRepository) GetByID(ctx context.Context, id string) (*models.ArsipediaEntry, error) {
	const query = `SELECT id, admin_id, title, tags, image_path, created_at, updated_at
	FROM arsipedia_entries WHERE id = $1 LIMIT 1`
	var entry models.ArsipediaEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns entries newest first with a total count.
func (r *ArsipediaRepository) List(ctx context.Context, filter models.ArsipediaFilter) ([]models.ArsipediaEntry, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT id, admin_id, title, tags, image_path, created_at, updated_at
	FROM arsipedia_entries ORDER BY created_at DESC LIMIT %d OFFSET %d`, pageSize, offset)

	var entries []models.ArsipediaEntry
	if err := r.db.SelectContext(ctx, &entries, listQuery); err != nil {
		return nil, 0, fmt.Errorf("list arsipedia entries: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM arsipedia_entries`); err != nil {
		return nil, 0, fmt.Errorf("count arsipedia entries: %w", err)
	}

	return entries, total, nil
}

// Update writes mutable columns of an existing entry.
func (r *ArsipediaRepository) Update(ctx context.Context, entry *models.ArsipediaEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE arsipedia_entries SET title = :title, tags = :tags, image_path = :image_path, updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("update arsipedia entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check arsipedia update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an entry row.
func (r *ArsipediaRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM arsipedia_entries WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete arsipedia entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check arsipedia delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
