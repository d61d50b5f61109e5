package models

import "time"

// ArsipediaEntry is one editorial content entry. Tags is a TEXT column that
// always holds a JSON-encoded array of strings.
type ArsipediaEntry struct {
	ID        string    `db:"id" json:"id"`
	AdminID   string    `db:"admin_id" json:"admin_id"`
	Title     string    `db:"title" json:"title"`
	Tags      string    `db:"tags" json:"tags"`
	ImagePath *string   `db:"image_path" json:"image_path,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ArsipediaFilter narrows listing queries.
type ArsipediaFilter struct {
	Page     int
	PageSize int
}
