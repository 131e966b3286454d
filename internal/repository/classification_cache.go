package repository

// This file decorates ClassificationRepo with a small Redis cache.  The
// classification list is read on effectively every page (navigation and the
// management dropdown) and changes only when staff add a classification, so
// a short TTL plus explicit invalidation on insert keeps it fresh.  With a
// nil Redis client the decorator is a transparent pass-through.

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/cse-motors/dealership/internal/config"
)

// CachedClassificationRepo wraps a ClassificationRepo behind Redis.
type CachedClassificationRepo struct {
	repo *ClassificationRepo
	rdb  *redis.Client
	cfg  config.NavCacheConfig
}

// NewCachedClassificationRepo builds the decorator.  Passing rdb == nil or a
// disabled config turns caching off entirely.
func NewCachedClassificationRepo(repo *ClassificationRepo, rdb *redis.Client, cfg config.NavCacheConfig) *CachedClassificationRepo {
	return &CachedClassificationRepo{repo: repo, rdb: rdb, cfg: cfg}
}

func (r *CachedClassificationRepo) key() string {
	return r.cfg.Prefix + ":classifications"
}

func (r *CachedClassificationRepo) cacheEnabled() bool {
	return r.cfg.Enabled && r.rdb != nil
}

// GetAll returns the classification list, serving from Redis when possible.
// Cache failures fall through to the store; a stale or missing cache must
// never break navigation.
func (r *CachedClassificationRepo) GetAll(ctx context.Context) ([]Classification, error) {
	if r.cacheEnabled() {
		if raw, err := r.rdb.Get(ctx, r.key()).Bytes(); err == nil {
			var out []Classification
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
		}
	}
	out, err := r.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if r.cacheEnabled() {
		if raw, err := json.Marshal(out); err == nil {
			_ = r.rdb.SetEx(ctx, r.key(), raw, r.cfg.TTL).Err()
		}
	}
	return out, nil
}

// GetName delegates to the underlying store; single-name lookups are cheap
// and not worth a cache entry.
func (r *CachedClassificationRepo) GetName(ctx context.Context, id uint64) (string, error) {
	return r.repo.GetName(ctx, id)
}

// Add inserts through the underlying store and invalidates the cached list.
func (r *CachedClassificationRepo) Add(ctx context.Context, c *Classification) error {
	if err := r.repo.Add(ctx, c); err != nil {
		return err
	}
	if r.cacheEnabled() {
		_ = r.rdb.Del(ctx, r.key()).Err()
	}
	return nil
}
