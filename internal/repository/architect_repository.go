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

// ArchitectRepository provides database access for architect accounts.
type ArchitectRepository struct {
	db *sqlx.DB
}

// NewArchitectRepository creates a new instance of ArchitectRepository.
func NewArchitectRepository(db *sqlx.DB) *ArchitectRepository {
	return &ArchitectRepository{db: db}
}

// Create inserts a new architect account.
func (r *ArchitectRepository) Create(ctx context.Context, architect *models.Architect) error {
	if architect.ID == "" {
		architect.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if architect.CreatedAt.IsZero() {
		architect.CreatedAt = now
	}
	architect.UpdatedAt = now

	const query = `INSERT INTO architects (id, email, password_hash, full_name, city, phone, bio, active, created_at, updated_at)
	VALUES (:id, :email, :password_hash, :full_name, :city, :phone, :bio, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, architect); err != nil {
		return fmt.Errorf("create architect: %w", err)
	}
	return nil
}

// FindByID returns an architect by identifier.
func (r *ArchitectRepository) FindByID(ctx context.Context, id string) (*models.Architect, error) {
	const query = `SELECT id, email, password_hash, full_name, city, phone, bio, active, created_at, updated_at FROM architects WHERE id = $1 LIMIT 1`
	var architect models.Architect
	if err := r.db.GetContext(ctx, &architect, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find architect by id: %w", err)
	}
	return &architect, nil
}

// FindByEmail returns an architect by email address.
func (r *ArchitectRepository) FindByEmail(ctx context.Context, email string) (*models.Architect, error) {
	const query = `SELECT id, email, password_hash, full_name, city, phone, bio, active, created_at, updated_at FROM architects WHERE email = $1 LIMIT 1`
	var architect models.Architect
	if err := r.db.GetContext(ctx, &architect, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find architect by email: %w", err)
	}
	return &architect, nil
}

// ExistsByID reports whether an architect row exists.
func (r *ArchitectRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM architects WHERE id = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("check architect exists: %w", err)
	}
	return exists, nil
}
