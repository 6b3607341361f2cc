package app_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/app"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/memory"
)

func ptr[T any](v T) *T { return &v }

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)

func TestCreate_StampsCreatedAt(t *testing.T) {
	svc := app.NewReviewService(memory.New(), nil, func() time.Time { return fixedNow })

	rv, err := svc.Create(context.Background(), domain.ReviewInput{Title: "t", Content: "c", Rating: 4, Author: "a"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rv.ID != 1 || rv.Rating != 4 {
		t.Fatalf("unexpected review: %+v", rv)
	}
	if want := fixedNow.Truncate(time.Millisecond); !rv.CreatedAt.Equal(want) {
		t.Fatalf("createdAt = %v, want %v", rv.CreatedAt, want)
	}
}

func TestUpdate_PartialAndInvalidates(t *testing.T) {
	repo := memory.New()
	cache := &fakeCache{}
	svc := app.NewReviewService(repo, cache, nil)
	q := app.NewQueryService(repo, cache, time.Minute)
	ctx := context.Background()

	orig, _ := svc.Create(ctx, domain.ReviewInput{Title: "t", Content: "c", Rating: 2, Author: "a"})
	if _, err := q.GetReview(ctx, orig.ID); err != nil { // warm the cache
		t.Fatalf("get: %v", err)
	}

	got, err := svc.Update(ctx, orig.ID, domain.ReviewPatch{Rating: ptr(4)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Rating != 4 || got.Title != "t" || got.Content != "c" || got.Author != "a" || !got.CreatedAt.Equal(orig.CreatedAt) {
		t.Fatalf("partial update touched other fields: %+v", got)
	}
	if !slices.Contains(cache.dels, "review:1") {
		t.Fatalf("expected review:1 invalidated, dels=%v", cache.dels)
	}

	fresh, _ := q.GetReview(ctx, orig.ID)
	if fresh.Rating != 4 {
		t.Fatalf("stale read after update: %+v", fresh)
	}
}

func TestUpdateDelete_MissingKeepNotFoundKind(t *testing.T) {
	svc := app.NewReviewService(memory.New(), nil, nil)

	_, err := svc.Update(context.Background(), 7, domain.ReviewPatch{Title: ptr("x")})
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("update: expected not_found kind, got %v", err)
	}
	if err := svc.Delete(context.Background(), 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestSeed_SequentialIDsAndRatings(t *testing.T) {
	repo := memory.New()
	svc := app.NewReviewService(repo, nil, nil)
	if err := svc.Seed(context.Background(), 20); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rv, err := repo.Get(context.Background(), 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rv.Title != "Review 4" || rv.Author != "Author 4" || rv.Rating != 3 {
		t.Fatalf("unexpected seeded review 5: %+v", rv)
	}
}

func TestSeedRating_InRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		if r := app.SeedRating(i); !domain.ValidRating(r) {
			t.Fatalf("SeedRating(%d) = %d out of range", i, r)
		}
	}
}

func TestCreateUpdate_RejectOutOfRangeRating(t *testing.T) {
	repo := memory.New()
	svc := app.NewReviewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.ReviewInput{Title: "t", Content: "c", Rating: 6, Author: "a"})
	if !errors.Is(err, domain.ErrRatingRange) || domain.KindOf(err) != domain.KindInvalid {
		t.Fatalf("create: expected invalid rating, got %v", err)
	}
	if n, _ := repo.Count(ctx, domain.ReviewFilter{}); n != 0 {
		t.Fatalf("rejected review was stored")
	}

	rv, _ := svc.Create(ctx, domain.ReviewInput{Title: "t", Content: "c", Rating: 3, Author: "a"})
	if _, err := svc.Update(ctx, rv.ID, domain.ReviewPatch{Rating: ptr(0)}); domain.KindOf(err) != domain.KindInvalid {
		t.Fatalf("update: expected invalid kind, got %v", err)
	}
}
