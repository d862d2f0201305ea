package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/metrics"
	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// PoolFinder resolves a mint pair to a pool id.
type PoolFinder interface {
	FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*solana.PublicKey, error)
}

// MarketKeySource resolves a pool's orderbook keys.
type MarketKeySource interface {
	MarketKeys(ctx context.Context, pool solana.PublicKey) (*raydium.MarketKeys, error)
}

// DiscoveryCache puts Redis in front of pool discovery and market key lookups.
// Only static data is cached; reserves never pass through here.
// Redis failures fall through to the wrapped source.
type DiscoveryCache struct {
	client  redis.Cmdable
	finder  PoolFinder
	markets MarketKeySource
	ttl     time.Duration
	logger  *logrus.Logger
}

type DiscoveryCacheConfig struct {
	Client  redis.Cmdable
	Finder  PoolFinder
	Markets MarketKeySource
	TTL     time.Duration
	Logger  *logrus.Logger
}

func NewDiscoveryCache(cfg DiscoveryCacheConfig) (*DiscoveryCache, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = constants.DefaultPoolCacheTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &DiscoveryCache{
		client:  cfg.Client,
		finder:  cfg.Finder,
		markets: cfg.Markets,
		ttl:     cfg.TTL,
		logger:  cfg.Logger,
	}, nil
}

// FindPool returns the cached pool for the pair, asking the finder on a miss.
// Pairs are cached in either orientation; "no pool" is not cached.
func (c *DiscoveryCache) FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*solana.PublicKey, error) {
	key := pairKey(mintA, mintB)

	val, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		pool, perr := solana.PublicKeyFromBase58(val)
		if perr == nil {
			metrics.CacheLookups.WithLabelValues("pool", "hit").Inc()
			return &pool, nil
		}
		c.logger.WithField("key", key).WithError(perr).Warn("dropping unreadable cached pool id")
	case !errors.Is(err, redis.Nil):
		c.logger.WithField("key", key).WithError(err).Warn("pool cache read failed")
	}
	metrics.CacheLookups.WithLabelValues("pool", "miss").Inc()

	if c.finder == nil {
		return nil, nil
	}
	pool, err := c.finder.FindPool(ctx, mintA, mintB)
	if err != nil || pool == nil {
		return pool, err
	}

	if err := c.client.Set(ctx, key, pool.String(), c.ttl).Err(); err != nil {
		c.logger.WithField("key", key).WithError(err).Warn("pool cache write failed")
	}
	return pool, nil
}

// MarketKeys returns the cached market keys for pool, asking the source on a miss.
func (c *DiscoveryCache) MarketKeys(ctx context.Context, pool solana.PublicKey) (*raydium.MarketKeys, error) {
	key := constants.RedisKeyMarketKeysPrefix + pool.String()

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var keys raydium.MarketKeys
		uerr := sonic.Unmarshal(val, &keys)
		if uerr == nil {
			metrics.CacheLookups.WithLabelValues("market", "hit").Inc()
			return &keys, nil
		}
		c.logger.WithField("key", key).WithError(uerr).Warn("dropping unreadable cached market keys")
	case !errors.Is(err, redis.Nil):
		c.logger.WithField("key", key).WithError(err).Warn("market cache read failed")
	}
	metrics.CacheLookups.WithLabelValues("market", "miss").Inc()

	if c.markets == nil {
		return nil, fmt.Errorf("%w: no market key source", raydium.ErrMissingMarketKeys)
	}
	keys, err := c.markets.MarketKeys(ctx, pool)
	if err != nil {
		return nil, err
	}

	data, err := sonic.Marshal(keys)
	if err != nil {
		return nil, fmt.Errorf("marshal market keys: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WithField("key", key).WithError(err).Warn("market cache write failed")
	}
	return keys, nil
}

// Invalidate drops everything cached for a pair and its pool.
func (c *DiscoveryCache) Invalidate(ctx context.Context, mintA, mintB solana.PublicKey, pool *solana.PublicKey) error {
	keys := []string{pairKey(mintA, mintB)}
	if pool != nil {
		keys = append(keys, constants.RedisKeyMarketKeysPrefix+pool.String())
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate discovery cache: %w", err)
	}
	return nil
}

func pairKey(a, b solana.PublicKey) string {
	x, y := a.String(), b.String()
	if y < x {
		x, y = y, x
	}
	return constants.RedisKeyPoolPrefix + x + ":" + y
}
