package models

import "time"

// Design is one catalog entry owned by an architect. The two photo columns
// are TEXT holding JSON-encoded arrays of relative file paths; they are
// decoded into real slices at the service boundary, never exposed raw.
type Design struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Kategori     *string   `db:"kategori" json:"kategori,omitempty"`
	LuasBangunan *string   `db:"luas_bangunan" json:"luas_bangunan,omitempty"`
	LuasTanah    *string   `db:"luas_tanah" json:"luas_tanah,omitempty"`
	FotoBangunan string    `db:"foto_bangunan" json:"-"`
	FotoDenah    string    `db:"foto_denah" json:"-"`
	ArchitectID  string    `db:"architect_id" json:"architect_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// DesignWithArchitect joins the owning architect summary onto a design row.
type DesignWithArchitect struct {
	Design
	ArchitectName *string `db:"architect_name" json:"-"`
	ArchitectCity *string `db:"architect_city" json:"-"`
}

// DesignFilter captures listing and search criteria.
type DesignFilter struct {
	Query       string
	Kategori    string
	City        string
	ArchitectID string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// KategoriCount is one row of the per-category statistics breakdown.
type KategoriCount struct {
	Kategori string `db:"kategori" json:"kategori"`
	Count    int    `db:"count" json:"count"`
}

// DesignStatistics aggregates catalog counts for one architect.
type DesignStatistics struct {
	Total       int             `json:"total"`
	PerKategori []KategoriCount `json:"per_kategori"`
}
