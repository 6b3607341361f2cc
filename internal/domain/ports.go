package domain

import (
	"context"
	"math"
	"time"
)

type ReviewRepository interface {
	// Write paths
	Create(ctx context.Context, in ReviewInput, createdAt time.Time) (Review, error)
	CreateMany(ctx context.Context, in []ReviewInput, createdAt time.Time) error
	Update(ctx context.Context, id int64, p ReviewPatch) (Review, error)
	Delete(ctx context.Context, id int64) error

	// Read paths
	Get(ctx context.Context, id int64) (Review, error)
	List(ctx context.Context, f ReviewFilter) ([]Review, error)
	Count(ctx context.Context, f ReviewFilter) (int64, error)
	DistinctAuthors(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
}

type Clock func() time.Time

// Read models & queries

// ReviewFilter selects reviews. Nil criteria impose no constraint; present ones are ANDed.
type ReviewFilter struct {
	Author   *string
	Rating   *int
	Search   *string // substring of title
	Page     int
	PageSize int
}

// Offset and Limit fall back to the defaults when Page or PageSize is unset.
// Offset saturates at math.MaxInt instead of wrapping, so a page far past the
// end selects nothing.
func (f ReviewFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = DefaultPage
	}
	limit := f.Limit()
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func (f ReviewFilter) Limit() int {
	if f.PageSize < 1 {
		return DefaultPageSize
	}
	return f.PageSize
}

type ReviewsPage struct {
	Reviews []Review `json:"reviews"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
}
