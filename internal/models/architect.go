package models

import "time"

// UserRole distinguishes the two account kinds carried in JWT claims.
type UserRole string

const (
	RoleArchitect UserRole = "ARCHITECT"
	RoleAdmin     UserRole = "ADMIN"
)

// Architect represents an architect account, the owner entity for designs
// and portfolio links.
type Architect struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	City         string    `db:"city" json:"city"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	Bio          string    `db:"bio" json:"bio,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ArchitectSummary is the nested shape embedded in design responses.
type ArchitectSummary struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	City     string `db:"city" json:"city,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
