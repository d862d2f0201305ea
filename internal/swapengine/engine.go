package swapengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/apiv3"
	"github.com/aman-zulfiqar/raydium-swap/internal/cache"
	"github.com/aman-zulfiqar/raydium-swap/internal/config"
	"github.com/aman-zulfiqar/raydium-swap/internal/rpc"
	"github.com/aman-zulfiqar/raydium-swap/internal/settings"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/aman-zulfiqar/raydium-swap/internal/wallet"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Engine wires the swap pipeline from configuration.
type Engine struct {
	RPC      *rpc.Client
	API      *apiv3.Client
	Executor *swap.Executor
	Settings *settings.Store // nil without Redis
	Wallet   *wallet.Wallet  // nil without WALLET_PRIVATE_KEY

	profile string
	redis   *redis.Client
	logger  *logrus.Logger
}

// NewEngine connects the RPC client, Raydium API and optional Redis layer
// and builds an executor over them.
func NewEngine(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Engine, error) {
	if logger == nil {
		logger = logrus.New()
	}

	// 1. RPC for pool state and simulation
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	// 2. Raydium API for discovery and market keys
	api := apiv3.NewClient(cfg.RaydiumAPIURL)
	discovery := apiv3.NewDiscovery(api, cfg.Program(), logger)

	e := &Engine{
		RPC:     rpcClient,
		API:     api,
		profile: cfg.SettingsProfile,
		logger:  logger,
	}

	var finder swap.PoolFinder = discovery
	var markets swap.MarketKeySource = discovery

	// 3. Redis cache and shared settings
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := rclient.Ping(ctx).Err(); err != nil {
			_ = rclient.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		e.redis = rclient

		dc, err := cache.NewDiscoveryCache(cache.DiscoveryCacheConfig{
			Client:  rclient,
			Finder:  discovery,
			Markets: discovery,
			TTL:     cfg.PoolCacheTTL,
			Logger:  logger,
		})
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		finder, markets = dc, dc

		store, err := settings.NewStore(rclient, logger)
		if err != nil {
			_ = e.Close()
			return nil, err
		}
		e.Settings = store
	}

	// 4. Optional fee payer
	if cfg.WalletPrivateKey != "" {
		w, err := wallet.NewWallet(cfg.WalletPrivateKey)
		if err != nil {
			_ = e.Close()
			return nil, fmt.Errorf("failed to create wallet: %w", err)
		}
		e.Wallet = w
	}

	// 5. Lookup tables for versioned transactions
	addrs, err := cfg.LookupTableAddresses()
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	tables, err := LoadLookupTables(ctx, rpcClient, addrs, logger)
	if err != nil {
		_ = e.Close()
		return nil, err
	}

	// 6. Executor
	base, err := cfg.SwapConfig()
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	byAPI := cfg.MarketKeysByAPI
	exec, err := swap.NewExecutor(swap.ExecutorConfig{
		Accounts:        rpcClient,
		Simulator:       rpcClient,
		Finder:          finder,
		Markets:         markets,
		ProgramID:       cfg.Program(),
		MarketKeysByAPI: &byAPI,
		Base:            base,
		LookupTables:    tables,
		Logger:          logger,
	})
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	e.Executor = exec

	return e, nil
}

// Profile is the settings profile this engine follows.
func (e *Engine) Profile() string { return e.profile }

// ApplyStoredSettings loads the profile's saved config, if any, into the executor.
func (e *Engine) ApplyStoredSettings(ctx context.Context) error {
	if e.Settings == nil {
		return nil
	}
	rec, err := e.Settings.Get(ctx, e.profile)
	if errors.Is(err, settings.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load settings %q: %w", e.profile, err)
	}
	e.Executor.UpdateConfig(rec.Config)
	return nil
}

// WatchSettings applies config published by other instances until ctx is done.
func (e *Engine) WatchSettings(ctx context.Context) error {
	if e.Settings == nil {
		return nil
	}
	return e.Settings.Watch(ctx, e.profile, func(rec *settings.Record) {
		e.Executor.UpdateConfig(rec.Config)
	})
}

// Close cleans up all resources
func (e *Engine) Close() error {
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			return fmt.Errorf("redis close: %w", err)
		}
	}
	return nil
}
