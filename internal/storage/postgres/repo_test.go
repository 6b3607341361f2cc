package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want domain.ErrorKind
	}{
		{gorm.ErrRecordNotFound, domain.KindNotFound},
		{fmt.Errorf("first: %w", gorm.ErrRecordNotFound), domain.KindNotFound},
		{context.Canceled, domain.KindUnavailable},
		{&pgconn.PgError{Code: "23505"}, domain.KindConflict},
		{&pgconn.PgError{Code: "23514"}, domain.KindInvalid}, // check_violation
		{&pgconn.PgError{Code: "22001"}, domain.KindInvalid}, // string_data_right_truncation
		{&pgconn.PgError{Code: "08006"}, domain.KindUnavailable},
		{&pgconn.PgError{Code: "57P01"}, domain.KindUnavailable},
		{&pgconn.PgError{Code: "42P01"}, domain.KindInternal},
		{errors.New("boom"), domain.KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, kindOf(tc.err), "%v", tc.err)
	}
}

func TestPatchColumns(t *testing.T) {
	assert.Empty(t, patchColumns(domain.ReviewPatch{}))
	assert.Equal(t,
		map[string]any{"content": "", "author": "Bob"},
		patchColumns(domain.ReviewPatch{Content: ptr(""), Author: ptr("Bob")}),
	)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
}

func TestRowToDomain(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	rv := reviewRow{ID: 3, Title: "T", Content: "C", Rating: 4, Author: "A", CreatedAt: at}.toDomain()
	assert.Equal(t, int64(3), rv.ID)
	assert.Equal(t, time.UTC, rv.CreatedAt.Location())
	assert.True(t, at.Equal(rv.CreatedAt))
}
