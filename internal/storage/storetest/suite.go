// Package storetest holds behaviour checks shared by every review store.
package storetest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/app"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) domain.ReviewRepository

func ptr[T any](v T) *T { return &v }

// stamp is millisecond precision, the coarsest any store keeps.
var stamp = time.Date(2024, 5, 1, 12, 30, 0, 123_000_000, time.UTC)

// Run exercises newRepo against the repository contract.
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { createAndGet(t, newRepo(t)) })
	t.Run("GetMissing", func(t *testing.T) { getMissing(t, newRepo(t)) })
	t.Run("CreateManyKeepsOrder", func(t *testing.T) { createManyKeepsOrder(t, newRepo(t)) })
	t.Run("FilterAndCount", func(t *testing.T) { filterAndCount(t, newRepo(t)) })
	t.Run("PageFarPastEnd", func(t *testing.T) { pageFarPastEnd(t, newRepo(t)) })
	t.Run("SearchEscapesWildcards", func(t *testing.T) { searchEscapesWildcards(t, newRepo(t)) })
	t.Run("UpdatePartial", func(t *testing.T) { updatePartial(t, newRepo(t)) })
	t.Run("DeleteThenMissing", func(t *testing.T) { deleteThenMissing(t, newRepo(t)) })
	t.Run("DistinctAuthors", func(t *testing.T) { distinctAuthors(t, newRepo(t)) })
}

func createAndGet(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	in := domain.ReviewInput{Title: "Great", Content: "Loved it", Rating: 5, Author: "Ann"}

	rv, err := repo.Create(ctx, in, stamp)
	require.NoError(t, err)
	assert.Positive(t, rv.ID)

	got, err := repo.Get(ctx, rv.ID)
	require.NoError(t, err)
	assert.Equal(t, rv.ID, got.ID)
	assert.Equal(t, in.Title, got.Title)
	assert.Equal(t, in.Content, got.Content)
	assert.Equal(t, in.Rating, got.Rating)
	assert.Equal(t, in.Author, got.Author)
	assert.True(t, stamp.Equal(got.CreatedAt), "createdAt %s", got.CreatedAt)
}

func getMissing(t *testing.T, repo domain.ReviewRepository) {
	_, err := repo.Get(context.Background(), 424242)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func createManyKeepsOrder(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateMany(ctx, app.SeedInputs(20), stamp))

	all, err := repo.List(ctx, domain.ReviewFilter{Page: 1, PageSize: 50})
	require.NoError(t, err)
	require.Len(t, all, 20)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].ID, all[i-1].ID)
		assert.Equal(t, app.SeedInputs(20)[i].Title, all[i].Title)
	}

	fifth, err := repo.Get(ctx, all[0].ID+4)
	require.NoError(t, err)
	assert.Equal(t, "Review 4", fifth.Title)
	assert.Equal(t, 3, fifth.Rating)
}

func filterAndCount(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateMany(ctx, app.SeedInputs(20), stamp))

	cases := []struct {
		name string
		f    domain.ReviewFilter
		want int64
	}{
		{"none", domain.ReviewFilter{}, 20},
		{"rating", domain.ReviewFilter{Rating: ptr(3)}, 4},
		{"author", domain.ReviewFilter{Author: ptr("Author 7")}, 1},
		{"search", domain.ReviewFilter{Search: ptr("Review 1")}, 11},
		{"search+rating", domain.ReviewFilter{Search: ptr("Review 1"), Rating: ptr(4)}, 3},
		{"no match", domain.ReviewFilter{Author: ptr("Nobody")}, 0},
	}
	for _, tc := range cases {
		n, err := repo.Count(ctx, tc.f)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, n, tc.name)
	}

	page, err := repo.List(ctx, domain.ReviewFilter{Page: 2, PageSize: 7})
	require.NoError(t, err)
	require.Len(t, page, 7)
	assert.Equal(t, "Review 7", page[0].Title)

	past, err := repo.List(ctx, domain.ReviewFilter{Page: 5, PageSize: 7})
	require.NoError(t, err)
	assert.Empty(t, past)

	// paging does not change the count
	n, err := repo.Count(ctx, domain.ReviewFilter{Page: 5, PageSize: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)
}

func pageFarPastEnd(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	require.NoError(t, repo.CreateMany(ctx, app.SeedInputs(5), stamp))

	f := domain.ReviewFilter{Page: math.MaxInt/2 + 1, PageSize: 4}
	require.Equal(t, math.MaxInt, f.Offset())
	got, err := repo.List(ctx, f)
	require.NoError(t, err)
	assert.Empty(t, got)

	n, err := repo.Count(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func searchEscapesWildcards(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	for _, title := range []string{"100% fun", "1000 fun", "a_b", "axb"} {
		_, err := repo.Create(ctx, domain.ReviewInput{Title: title, Content: "c", Rating: 1, Author: "a"}, stamp)
		require.NoError(t, err)
	}

	n, err := repo.Count(ctx, domain.ReviewFilter{Search: ptr("100%")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Count(ctx, domain.ReviewFilter{Search: ptr("a_b")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func updatePartial(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	rv, err := repo.Create(ctx, domain.ReviewInput{Title: "T", Content: "C", Rating: 2, Author: "A"}, stamp)
	require.NoError(t, err)

	up, err := repo.Update(ctx, rv.ID, domain.ReviewPatch{Rating: ptr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, up.Rating)
	assert.Equal(t, "T", up.Title)
	assert.Equal(t, "C", up.Content)
	assert.Equal(t, "A", up.Author)
	assert.True(t, stamp.Equal(up.CreatedAt))

	// same value again and an empty patch both still find the row
	_, err = repo.Update(ctx, rv.ID, domain.ReviewPatch{Rating: ptr(5)})
	require.NoError(t, err)
	same, err := repo.Update(ctx, rv.ID, domain.ReviewPatch{})
	require.NoError(t, err)
	assert.Equal(t, up.Rating, same.Rating)

	_, err = repo.Update(ctx, rv.ID+1000, domain.ReviewPatch{Title: ptr("x")})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	_, err = repo.Update(ctx, rv.ID+1000, domain.ReviewPatch{})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func deleteThenMissing(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()
	rv, err := repo.Create(ctx, domain.ReviewInput{Title: "T", Content: "C", Rating: 2, Author: "A"}, stamp)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, rv.ID))
	_, err = repo.Get(ctx, rv.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = repo.Delete(ctx, rv.ID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func distinctAuthors(t *testing.T, repo domain.ReviewRepository) {
	ctx := context.Background()

	empty, err := repo.DistinctAuthors(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, a := range []string{"Ann", "Bob", "Ann", "Cid", "Bob"} {
		_, err := repo.Create(ctx, domain.ReviewInput{Title: "T", Content: "C", Rating: 1, Author: a}, stamp)
		require.NoError(t, err)
	}
	got, err := repo.DistinctAuthors(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Ann", "Bob", "Cid"}, got)
}
