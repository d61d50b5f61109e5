package models

import "time"

// PortfolioLink is one external portfolio URL owned by an architect.
// sort_order is an architect-scoped sequence; the column avoids the
// reserved word ORDER while the JSON field keeps the public name.
type PortfolioLink struct {
	ID          string    `db:"id" json:"id"`
	ArchitectID string    `db:"architect_id" json:"architect_id"`
	URL         string    `db:"url" json:"url"`
	Order       int       `db:"sort_order" json:"order"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
