package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/redis"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	var got domain.Review
	ok, err := c.Get(ctx, "review:1", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := domain.Review{ID: 1, Title: "t", Content: "c", Rating: 4, Author: "a", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := c.Set(ctx, "review:1", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	ok, err = c.Get(ctx, "review:1", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ID != want.ID || got.Title != want.Title || got.Rating != want.Rating ||
		got.Author != want.Author || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, want)
	}

	if err := c.Del(ctx, "review:1", "authors"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, _ = c.Get(ctx, "review:1", &got)
	if ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestCache_TTLExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "authors", []string{"Ana"}, 30); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var authors []string
	if ok, _ := c.Get(ctx, "authors", &authors); ok {
		t.Fatalf("expected entry to expire, got %v", authors)
	}
}

func TestCache_ZeroTTLNeverExpires(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "gen:review:1", "g1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(24 * time.Hour)

	var gen string
	if ok, err := c.Get(ctx, "gen:review:1", &gen); !ok || err != nil || gen != "g1" {
		t.Fatalf("expected persistent key, got ok=%v gen=%q err=%v", ok, gen, err)
	}
	if ttl := mr.TTL("gen:review:1"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newCache(t)
	if err := mr.Set("review:9", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var got domain.Review
	ok, err := c.Get(context.Background(), "review:9", &got)
	if ok || err == nil {
		t.Fatalf("expected decode error and miss, got ok=%v err=%v", ok, err)
	}
}
