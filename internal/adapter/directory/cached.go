package directory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

const cacheKeyPrefix = "account:"

// Cached is a read-through cache in front of another directory. Only known
// accounts are cached, so an account created in the source becomes visible
// immediately. Cache failures fall back to the source.
type Cached struct {
	source usecase.AccountDirectory
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCached wraps source with cache. Entries live for ttl.
func NewCached(source usecase.AccountDirectory, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *Cached {
	return &Cached{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

// Exists reports whether id is a known account.
func (c *Cached) Exists(ctx context.Context, id string) (bool, error) {
	_, err := c.CurrencyOf(ctx, id)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrencyOf returns the currency of an account.
func (c *Cached) CurrencyOf(ctx context.Context, id string) (string, error) {
	key := cacheKeyPrefix + id

	currency, err := c.cache.Get(ctx, key)
	if err == nil {
		return currency, nil
	}
	if !errors.Is(err, usecase.ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("account", id).Msg("account cache unavailable")
	}

	currency, err = c.source.CurrencyOf(ctx, id)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, currency, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("account", id).Msg("failed to cache account")
	}

	return currency, nil
}

// Invalidate drops the cached entry of an account.
func (c *Cached) Invalidate(ctx context.Context, id string) error {
	return c.cache.Delete(ctx, cacheKeyPrefix+id)
}
