package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

type ReviewService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
	now   domain.Clock
}

// NewReviewService wires the write side. cache may be nil; now defaults to time.Now.
func NewReviewService(r domain.ReviewRepository, cache domain.Cache, now domain.Clock) *ReviewService {
	if now == nil {
		now = time.Now
	}
	return &ReviewService{repo: r, cache: cache, now: now}
}

// Create and Update reject out-of-range ratings before reaching the store.
func (s *ReviewService) Create(ctx context.Context, in domain.ReviewInput) (domain.Review, error) {
	if !domain.ValidRating(in.Rating) {
		return domain.Review{}, domain.NewStoreError("create", domain.KindInvalid, domain.ErrRatingRange)
	}
	rv, err := s.repo.Create(ctx, in, s.timestamp())
	if err != nil {
		return domain.Review{}, err
	}
	s.invalidate(ctx, authorsKey)
	return rv, nil
}

func (s *ReviewService) Update(ctx context.Context, id int64, p domain.ReviewPatch) (domain.Review, error) {
	if p.Rating != nil && !domain.ValidRating(*p.Rating) {
		return domain.Review{}, domain.NewStoreError("update", domain.KindInvalid, domain.ErrRatingRange)
	}
	rv, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return domain.Review{}, err
	}
	// the patch may have changed the author
	s.invalidate(ctx, reviewKey(id), authorsKey)
	return rv, nil
}

func (s *ReviewService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, reviewKey(id), authorsKey)
	return nil
}

// Seed bulk-inserts n generated reviews in one statement so their ids are sequential.
func (s *ReviewService) Seed(ctx context.Context, n int) error {
	if err := s.repo.CreateMany(ctx, SeedInputs(n), s.timestamp()); err != nil {
		return fmt.Errorf("seed %d reviews: %w", n, err)
	}
	s.invalidate(ctx, authorsKey)
	return nil
}

// timestamp is truncated to the millisecond precision both stores keep.
func (s *ReviewService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *ReviewService) invalidate(ctx context.Context, keys ...string) {
	invalidate(ctx, s.cache, keys...)
}
