package models

import (
	"time"

	"github.com/lib/pq"
)

// Article statuses
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// ValidStatuses defines allowed article statuses
var ValidStatuses = map[string]bool{
	StatusDraft:     true,
	StatusPublished: true,
}

// Sort keys accepted by listing endpoints
const (
	SortLatest  = "latest"
	SortPopular = "popular"
	SortOldest  = "oldest"
)

// ValidSortKeys defines allowed sort parameters
var ValidSortKeys = map[string]bool{
	SortLatest:  true,
	SortPopular: true,
	SortOldest:  true,
}

// Article represents a single content item in the magazine
type Article struct {
	ID              string         `json:"id" db:"id"`
	Title           string         `json:"title" db:"title"`
	Slug            string         `json:"slug" db:"slug"`
	Content         string         `json:"content" db:"content"`
	Excerpt         *string        `json:"excerpt,omitempty" db:"excerpt"`
	Images          pq.StringArray `json:"images" db:"images"`
	CategoryID      string         `json:"category_id" db:"category_id"`
	Region          *string        `json:"region,omitempty" db:"region"`
	Views           int            `json:"views" db:"views"`
	Likes           int            `json:"likes" db:"likes"`
	Status          string         `json:"status" db:"status"`
	MetaTitle       *string        `json:"meta_title,omitempty" db:"meta_title"`
	MetaDescription *string        `json:"meta_description,omitempty" db:"meta_description"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
	PublishedAt     *time.Time     `json:"published_at,omitempty" db:"published_at"`
}

// ArticleWithCategory is an article with its category row inlined,
// the shape returned by all listing and detail queries.
type ArticleWithCategory struct {
	Article
	Category *Category `json:"category"`
}

// ArticleInput carries the editable fields for admin create/update calls.
// The slug is derived from the title and never accepted from the client.
type ArticleInput struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Excerpt         *string  `json:"excerpt"`
	Images          []string `json:"images"`
	CategoryID      string   `json:"category_id"`
	Region          *string  `json:"region"`
	Status          string   `json:"status"`
	MetaTitle       *string  `json:"meta_title"`
	MetaDescription *string  `json:"meta_description"`
}

// ListParams is the filter specification for a listing query.
// Zero values mean "no filter". Public paths see published articles
// only unless Status or AllStatuses widens the scope. Offset, when
// set, positions the window directly; otherwise it is derived from
// Page and PageSize.
type ListParams struct {
	Page        int
	PageSize    int
	Offset      int
	CategoryID  string
	Region      string
	Search      string
	SortBy      string
	Status      string
	AllStatuses bool
}

// ArticlePage is one page of listing results plus pagination metadata.
type ArticlePage struct {
	Data       []*ArticleWithCategory `json:"data"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"page_size"`
	TotalPages int                    `json:"total_pages"`
	HasMore    bool                   `json:"has_more"`
}
