package postservice

import (
	"database/sql"
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"

	DefaultCategory = "General"
	DefaultStatus   = StatusPublished
)

type PostService struct {
	m *PostModel
}

type PostModel struct {
	db *sql.DB
}

type Post struct {
	ID                    int       `json:"id"`
	Title                 string    `json:"title"`
	Summary               *string   `json:"summary"`
	Content               string    `json:"content"`
	FeaturedImage         *string   `json:"featured_image"`
	FeaturedImageFilename *string   `json:"featured_image_filename"`
	Category              string    `json:"category"`
	AuthorID              int       `json:"author_id"`
	AuthorEmail           string    `json:"author_email"`
	DatePublished         string    `json:"date_published"`
	Status                string    `json:"status"`
	Views                 int       `json:"views"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// PostSummary is the listing shape: everything but the body and the inline
// image payload.
type PostSummary struct {
	ID                    int       `json:"id"`
	Title                 string    `json:"title"`
	Summary               *string   `json:"summary"`
	FeaturedImageFilename *string   `json:"featured_image_filename"`
	Category              string    `json:"category"`
	AuthorEmail           string    `json:"author_email"`
	DatePublished         string    `json:"date_published"`
	Status                string    `json:"status"`
	Views                 int       `json:"views"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

type CreatePostRequest struct {
	Title                 string
	Summary               *string
	Content               string
	FeaturedImage         *string
	FeaturedImageFilename *string
	Category              string
	AuthorID              int
	DatePublished         string
	Status                string
}

// UpdatePostRequest is a patch: only non-nil fields are applied, everything
// else keeps its stored value. A supplied image replaces the stored inline
// image wholesale.
type UpdatePostRequest struct {
	Title                 *string
	Summary               *string
	Content               *string
	FeaturedImage         *string
	FeaturedImageFilename *string
	Category              *string
	DatePublished         *string
	Status                *string
}

type BlogStats struct {
	Total   int `json:"total"`
	Monthly int `json:"monthly"`
	Views   int `json:"views"`
}
