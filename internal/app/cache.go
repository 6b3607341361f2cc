package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

const authorsKey = "authors"

func reviewKey(id int64) string { return fmt.Sprintf("review:%d", id) }

// genKey holds the generation of key. Writers replace it before evicting key;
// it never expires, so it outlives every entry stamped with an older value.
func genKey(key string) string { return "gen:" + key }

// entry is a cached value stamped with the generation current when the value
// was loaded. An entry whose generation no longer matches is a miss.
type entry[T any] struct {
	Gen string `json:"gen"`
	Val T      `json:"val"`
}

// readThrough serves key from the cache or loads it. The generation is read
// before load runs, so a value loaded before a concurrent write is stored under
// the old generation and never served after that write.
func readThrough[T any](ctx context.Context, s *QueryService, key string, load func(context.Context) (T, error)) (T, error) {
	if s.cache == nil {
		return load(ctx)
	}
	var gen string
	_, err := s.cache.Get(ctx, genKey(key), &gen)
	cacheable := err == nil
	if cacheable {
		var e entry[T]
		if ok, _ := s.cache.Get(ctx, key, &e); ok && e.Gen == gen {
			return e.Val, nil
		}
	}

	v, err := load(ctx)
	if err != nil || !cacheable {
		return v, err
	}
	_ = s.cache.Set(ctx, key, entry[T]{Gen: gen, Val: v}, int(s.cacheTTL.Seconds()))
	return v, nil
}

// invalidate moves every key to a fresh generation, then evicts it.
func invalidate(ctx context.Context, c domain.Cache, keys ...string) {
	if c == nil {
		return
	}
	for _, k := range keys {
		if err := c.Set(ctx, genKey(k), uuid.NewString(), 0); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("cache generation bump failed")
		}
	}
	if err := c.Del(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
