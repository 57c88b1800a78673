// Package catalog provides book and category value types and pure
// functions over them.
package catalog

import (
	"math"
	"strings"
	"time"
)

// Book represents a title in the catalog (immutable value type).
type Book struct {
	ID            string
	Title         string
	Author        string
	Description   string
	ISBN          string
	Price         float64
	CoverURL      string
	FileURL       string
	CategoryIDs   []string
	PublishedAt   time.Time
	IsActive      bool
	AverageRating float64
	ReviewCount   int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category groups books (immutable value type).
type Category struct {
	ID          string
	Name        string
	Description string
	BookCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Review is a reader's rating of a book. One review per user per book.
type Review struct {
	ID        string
	BookID    string
	UserID    string
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingValid reports whether a star rating is in range.
func RatingValid(rating int) bool {
	return rating >= 1 && rating <= 5
}

// AverageRating computes the mean of ratings rounded to one decimal.
// An empty slice yields zero.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10
}

// ListOptions narrows and pages a catalog listing.
type ListOptions struct {
	Search     string
	CategoryID string
	Page       int
	PerPage    int
	// IncludeInactive lists delisted titles too; admin listings only.
	IncludeInactive bool
}

// Normalized applies paging defaults and bounds.
func (o ListOptions) Normalized() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage < 1 {
		o.PerPage = 20
	}
	if o.PerPage > 100 {
		o.PerPage = 100
	}
	o.Search = strings.TrimSpace(o.Search)
	return o
}

// Offset returns the row offset for the normalized page.
func (o ListOptions) Offset() int {
	n := o.Normalized()
	return (n.Page - 1) * n.PerPage
}

// Page is one page of results with its total for pagination UIs.
type Page[T any] struct {
	Items      []T
	Total      int64
	PageNumber int
	PerPage    int
}

// TotalPages returns the page count for the total.
func (p Page[T]) TotalPages() int64 {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.Total + int64(p.PerPage) - 1) / int64(p.PerPage)
}
