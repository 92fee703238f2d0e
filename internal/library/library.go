package library

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a saved book does not exist for the owner.
	ErrNotFound = errors.New("book not found in library")
	// ErrAlreadyInLibrary is returned when the owner already saved a book with
	// the same title and author, compared case-insensitively.
	ErrAlreadyInLibrary = errors.New("book already in library")
)

// Book is a saved library entry. Exactly one user owns it.
type Book struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	PublishYear string    `json:"publish_year"`
	ISBN        string    `json:"isbn,omitempty"`
	ExternalID  string    `json:"open_library_id,omitempty"`
	Review      string    `json:"review"`
	Rating      int       `json:"rating"`
	HasCover    bool      `json:"has_cover"`
	CoverURL    string    `json:"cover_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewBook is the input for saving a book.
type NewBook struct {
	Title            string
	Author           string
	PublishYear      string
	ISBN             string
	ExternalID       string
	Review           string
	Rating           int
	Cover            []byte
	CoverContentType string
}

// Sort orders accepted by List.
const (
	SortRatingAsc  = "rating-asc"
	SortRatingDesc = "rating-desc"
	SortTitleAsc   = "title-asc"
	SortTitleDesc  = "title-desc"
	SortNewest     = "newest"
	SortOldest     = "oldest"
)

// ListQuery filters and paginates an owner's library.
type ListQuery struct {
	Limit           int
	Offset          int
	Search          string
	SortBy          string
	ExcludeNoReview bool
}

// Stats summarises an owner's library.
type Stats struct {
	TotalBooks         int     `json:"total_books"`
	BooksWithReview    int     `json:"books_with_review"`
	BooksWithoutReview int     `json:"books_without_review"`
	AverageRating      float64 `json:"average_rating"`
	HighestRating      int     `json:"highest_rating"`
	LowestRating       int     `json:"lowest_rating"`
}

type Cover struct {
	Data        []byte
	ContentType string
	Title       string
}
