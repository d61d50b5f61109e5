package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arsitekta/arsitekta-api/internal/models"
)

const designColumns = `d.id, d.title, d.description, d.kategori, d.luas_bangunan, d.luas_tanah,
       d.foto_bangunan, d.foto_denah, d.architect_id, d.created_at, d.updated_at`

// DesignRepository handles design catalog persistence.
type DesignRepository struct {
	db *sqlx.DB
}

// NewDesignRepository constructs the repository.
func NewDesignRepository(db *sqlx.DB) *DesignRepository {
	return &DesignRepository{db: db}
}

// Create stores a new design row.
func (r *DesignRepository) Create(ctx context.Context, design *models.Design) error {
	if design.ID == "" {
		design.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if design.CreatedAt.IsZero() {
		design.CreatedAt = now
	}
	design.UpdatedAt = now

	const query = `INSERT INTO designs
	(id, title, description, kategori, luas_bangunan, luas_tanah, foto_bangunan, foto_denah, architect_id, created_at, updated_at)
	VALUES (:id, :title, :description, :kategori, :luas_bangunan, :luas_tanah, :foto_bangunan, :foto_denah, :architect_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, design); err != nil {
		return fmt.Errorf("create design: %w", err)
	}
	return nil
}

// GetByID retrieves one design row.
func (r *DesignRepository) GetByID(ctx context.Context, id string) (*models.Design, error) {
	query := fmt.Sprintf(`SELECT %s FROM designs d WHERE d.id = $1`, designColumns)
	var design models.Design
	if err := r.db.GetContext(ctx, &design, query, id); err != nil {
		return nil, err
	}
	return &design, nil
}

// GetByIDWithArchitect retrieves one design joined with its owning architect.
func (r *DesignRepository) GetByIDWithArchitect(ctx context.Context, id string) (*models.DesignWithArchitect, error) {
	query := fmt.Sprintf(`SELECT %s, a.full_name AS architect_name, a.city AS architect_city
	FROM designs d
	LEFT JOIN architects a ON a.id = d.architect_id
	WHERE d.id = $1`, designColumns)
	var design models.DesignWithArchitect
	if err := r.db.GetContext(ctx, &design, query, id); err != nil {
		return nil, err
	}
	return &design, nil
}

// List returns designs applying filters with total count. The architect is
// always joined so listings can embed the owner summary and filter by city.
func (r *DesignRepository) List(ctx context.Context, filter models.DesignFilter) ([]models.DesignWithArchitect, int, error) {
	baseQuery := `FROM designs d LEFT JOIN architects a ON a.id = d.architect_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ArchitectID != "" {
		conditions = append(conditions, fmt.Sprintf("d.architect_id = $%d", len(args)+1))
		args = append(args, filter.ArchitectID)
	}
	if filter.Kategori != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(d.kategori) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.Kategori))
	}
	if filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(d.title) LIKE $%d OR LOWER(d.description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
	}
	if filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(a.city) = $%d", len(args)+1))
		args = append(args, strings.ToLower(filter.City))
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"title":      true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf(`SELECT %s, a.full_name AS architect_name, a.city AS architect_city %s ORDER BY d.%s %s LIMIT %d OFFSET %d`,
		designColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var designs []models.DesignWithArchitect
	if err := r.db.SelectContext(ctx, &designs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list designs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count designs: %w", err)
	}

	return designs, total, nil
}

// Update writes mutable columns of an existing design.
func (r *DesignRepository) Update(ctx context.Context, design *models.Design) error {
	design.UpdatedAt = time.Now().UTC()
	const query = `UPDATE designs SET
	title = :title, description = :description, kategori = :kategori,
	luas_bangunan = :luas_bangunan, luas_tanah = :luas_tanah,
	foto_bangunan = :foto_bangunan, foto_denah = :foto_denah,
	updated_at = :updated_at
	WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, design)
	if err != nil {
		return fmt.Errorf("update design: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check design update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a design row.
func (r *DesignRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM designs WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete design: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check design delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByArchitect aggregates total and per-kategori counts for one owner.
func (r *DesignRepository) CountByArchitect(ctx context.Context, architectID string) (int, []models.KategoriCount, error) {
	const totalQuery = `SELECT COUNT(*) FROM designs WHERE architect_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, totalQuery, architectID); err != nil {
		return 0, nil, fmt.Errorf("count designs by architect: %w", err)
	}

	const breakdownQuery = `SELECT COALESCE(kategori, '') AS kategori, COUNT(*) AS count
	FROM designs WHERE architect_id = $1 GROUP BY COALESCE(kategori, '') ORDER BY count DESC`
	var breakdown []models.KategoriCount
	if err := r.db.SelectContext(ctx, &breakdown, breakdownQuery, architectID); err != nil {
		return 0, nil, fmt.Errorf("count designs per kategori: %w", err)
	}

	return total, breakdown, nil
}
