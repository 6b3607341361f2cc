// Package memory is an in-process review store for tests and local runs.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

type Repo struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.Review // ordered by id
}

func New() *Repo { return &Repo{nextID: 1} }

func (r *Repo) Ping(context.Context) error { return nil }

func (r *Repo) Create(_ context.Context, in domain.ReviewInput, createdAt time.Time) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insert(in, createdAt), nil
}

func (r *Repo) CreateMany(_ context.Context, in []domain.ReviewInput, createdAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range in {
		r.insert(rv, createdAt)
	}
	return nil
}

func (r *Repo) insert(in domain.ReviewInput, createdAt time.Time) domain.Review {
	rv := domain.Review{
		ID:        r.nextID,
		Title:     in.Title,
		Content:   in.Content,
		Rating:    in.Rating,
		Author:    in.Author,
		CreatedAt: createdAt.UTC(),
	}
	r.nextID++
	r.rows = append(r.rows, rv)
	return rv
}

func (r *Repo) Get(_ context.Context, id int64) (domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.index(id); i >= 0 {
		return r.rows[i], nil
	}
	return domain.Review{}, notFound("get")
}

func (r *Repo) List(_ context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Review{}
	skip, take := f.Offset(), f.Limit()
	for _, rv := range r.rows {
		if !matches(rv, f) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		if len(out) == take {
			break
		}
		out = append(out, rv)
	}
	return out, nil
}

func (r *Repo) Count(_ context.Context, f domain.ReviewFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, rv := range r.rows {
		if matches(rv, f) {
			n++
		}
	}
	return n, nil
}

func (r *Repo) Update(_ context.Context, id int64, p domain.ReviewPatch) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return domain.Review{}, notFound("update")
	}
	r.rows[i] = p.Apply(r.rows[i])
	return r.rows[i], nil
}

func (r *Repo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return notFound("delete")
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

// DistinctAuthors returns authors in first-seen order.
func (r *Repo) DistinctAuthors(context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.rows))
	out := []string{}
	for _, rv := range r.rows {
		if _, ok := seen[rv.Author]; ok {
			continue
		}
		seen[rv.Author] = struct{}{}
		out = append(out, rv.Author)
	}
	return out, nil
}

func (r *Repo) index(id int64) int {
	for i := range r.rows {
		if r.rows[i].ID == id {
			return i
		}
	}
	return -1
}

func matches(rv domain.Review, f domain.ReviewFilter) bool {
	if f.Author != nil && rv.Author != *f.Author {
		return false
	}
	if f.Rating != nil && rv.Rating != *f.Rating {
		return false
	}
	if f.Search != nil && !strings.Contains(rv.Title, *f.Search) {
		return false
	}
	return true
}

func notFound(op string) error {
	return domain.NewStoreError(op, domain.KindNotFound, domain.ErrNotFound)
}
