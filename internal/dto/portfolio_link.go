package dto

// CreatePortfolioLinkRequest is the payload for adding a portfolio link.
type CreatePortfolioLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

// UpdatePortfolioLinkRequest mutates url and/or order. Order is a raw
// overwrite; callers wanting a consistent sequence should use reorder.
type UpdatePortfolioLinkRequest struct {
	URL   *string `json:"url"`
	Order *int    `json:"order"`
}

// ReorderPortfolioLinksRequest carries the full id permutation.
type ReorderPortfolioLinksRequest struct {
	OrderedIDs []string `json:"orderedIds" binding:"required"`
}
