package dto

// CreateArsipediaRequest carries a new entry. Tags accepts an array of
// strings, a comma-separated string, or a JSON array string; the service
// normalises all three into a JSON array string.
type CreateArsipediaRequest struct {
	AdminID   string      `json:"adminId"`
	Title     string      `json:"title"`
	ImagePath *string     `json:"imagePath"`
	Tags      interface{} `json:"tags"`
}

// UpdateArsipediaRequest mutates an existing entry; nil fields are left
// untouched, Tags is re-normalised when present.
type UpdateArsipediaRequest struct {
	Title     *string     `json:"title"`
	ImagePath *string     `json:"imagePath"`
	Tags      interface{} `json:"tags"`
}

// ListArsipediaQuery captures listing parameters.
type ListArsipediaQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
