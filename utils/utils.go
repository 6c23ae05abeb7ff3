package utils

import (
	"math"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 200
)

// Page is the pagination envelope shared by audit logs, transfers,
// intake logs and assignments.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

func NewPage[T any](items []T, total int64, page, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	return Page[T]{Items: items, Total: total, Page: page, PerPage: perPage, TotalPages: totalPages}
}

// NormalizePage applies defaults and the per_page ceiling.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Paginate is a gorm scope for an already normalised page.
func Paginate(page, perPage int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * perPage).Limit(perPage)
	}
}

// ContainsPattern builds a case-insensitive LIKE pattern for LOWER(column).
func ContainsPattern(s string) string {
	s = strings.NewReplacer("%", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	return "%" + s + "%"
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD and RFC3339.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
