package dto

import (
	"time"

	"github.com/arsitekta/arsitekta-api/internal/models"
)

// CreateDesignRequest carries the multipart form fields submitted alongside
// the foto_bangunan[] / foto_denah[] uploads.
type CreateDesignRequest struct {
	Title        string  `form:"title" json:"title"`
	Description  *string `form:"description" json:"description"`
	Kategori     *string `form:"kategori" json:"kategori"`
	LuasBangunan *string `form:"luas_bangunan" json:"luas_bangunan"`
	LuasTanah    *string `form:"luas_tanah" json:"luas_tanah"`
}

// UpdateDesignRequest carries partial design mutations; nil fields are left
// untouched.
type UpdateDesignRequest struct {
	Title        *string `form:"title" json:"title"`
	Description  *string `form:"description" json:"description"`
	Kategori     *string `form:"kategori" json:"kategori"`
	LuasBangunan *string `form:"luas_bangunan" json:"luas_bangunan"`
	LuasTanah    *string `form:"luas_tanah" json:"luas_tanah"`
}

// SearchDesignsQuery captures the public search parameters.
type SearchDesignsQuery struct {
	Q        string `form:"q"`
	Kategori string `form:"kategori"`
	City     string `form:"city"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// ListDesignsQuery captures plain listing parameters.
type ListDesignsQuery struct {
	Page    int    `form:"page"`
	Limit   int    `form:"limit"`
	OrderBy string `form:"orderBy"`
}

// DesignResponse is the formatted catalog entry. Both photo fields are
// always genuine arrays of public URLs, never raw JSON strings.
type DesignResponse struct {
	ID           string                   `json:"id"`
	Title        string                   `json:"title"`
	Description  *string                  `json:"description,omitempty"`
	Kategori     *string                  `json:"kategori,omitempty"`
	LuasBangunan *string                  `json:"luas_bangunan,omitempty"`
	LuasTanah    *string                  `json:"luas_tanah,omitempty"`
	FotoBangunan []string                 `json:"foto_bangunan"`
	FotoDenah    []string                 `json:"foto_denah"`
	ArchitectID  string                   `json:"architect_id"`
	Architect    *models.ArchitectSummary `json:"architect,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}
