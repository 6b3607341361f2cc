package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService wires the read side. cache may be nil.
func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return readThrough(ctx, s, reviewKey(id), func(ctx context.Context) (domain.Review, error) {
		return s.repo.Get(ctx, id)
	})
}

// ListReviews runs the page query and the count query side by side. They are
// independent statements, so a write landing between them can make Total
// disagree with the page.
func (s *QueryService) ListReviews(ctx context.Context, f domain.ReviewFilter) (domain.ReviewsPage, error) {
	if f.Page < 1 {
		f.Page = domain.DefaultPage
	}
	if f.PageSize < 1 {
		f.PageSize = domain.DefaultPageSize
	}

	var (
		reviews []domain.Review
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = s.repo.List(gctx, f)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.ReviewsPage{}, err
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}
	return domain.ReviewsPage{Reviews: reviews, Total: total, Page: f.Page}, nil
}

func (s *QueryService) Authors(ctx context.Context) ([]string, error) {
	return readThrough(ctx, s, authorsKey, func(ctx context.Context) ([]string, error) {
		authors, err := s.repo.DistinctAuthors(ctx)
		if err != nil {
			return nil, err
		}
		if authors == nil {
			authors = []string{}
		}
		return authors, nil
	})
}

func (s *QueryService) Ping(ctx context.Context) error { return s.repo.Ping(ctx) }
