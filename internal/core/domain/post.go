package domain

import "time"

// Image references a stored picture. PublicID is the handle used to delete it.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Post is a catalog entry, presented to visitors as an exhibit.
type Post struct {
	ID        string
	Title     string
	Content   string
	UserID    string
	Images    []Image
	CreatedAt time.Time
	UpdatedAt time.Time
}
