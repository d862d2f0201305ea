package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
)

type Config struct {
	// RPC settings
	RPCUrl string

	// HTTP client settings
	HTTPTimeout  time.Duration
	MaxRetries   int
	RetryBackoff time.Duration

	// Raydium API v3
	RaydiumAPIURL string

	// Redis settings; empty disables caching and settings persistence
	RedisAddr    string
	RedisDB      int
	PoolCacheTTL time.Duration

	// HTTP API
	APIAddr       string
	APIKey        string
	DevMode       bool
	LogLevel      string
	SwapRateLimit float64

	// Settings profile followed through Redis
	SettingsProfile string

	// Fee payer for signed transactions
	WalletPrivateKey string

	// Swap defaults
	PriorityFee         string
	ComputeLimit        string
	WrapAndUnwrapSOL    bool
	MarketKeysByAPI     bool
	AsLegacyTransaction bool
	ProgramID           string
	// Comma separated lookup table addresses for versioned transactions
	LookupTables string
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl: getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),

		// HTTP
		HTTPTimeout:  getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 3),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 500*time.Millisecond),

		// Raydium
		RaydiumAPIURL: getEnv("RAYDIUM_API_URL", constants.RaydiumAPIBaseURL),

		// Redis
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		RedisDB:      getIntEnv("REDIS_DB", 0),
		PoolCacheTTL: getDurationEnv("POOL_CACHE_TTL", constants.DefaultPoolCacheTTL),

		// API
		APIAddr:  getEnv("API_ADDR", ":8090"),
		APIKey:   getEnv("API_KEY", ""),
		DevMode:  getBoolEnv("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SwapRateLimit:   getFloatEnv("SWAP_RATE_LIMIT", 5),
		SettingsProfile: getEnv("SETTINGS_PROFILE", "default"),

		WalletPrivateKey: getEnv("WALLET_PRIVATE_KEY", ""),

		// Swap
		PriorityFee:         getEnv("SWAP_PRIORITY_FEE", ""),
		ComputeLimit:        getEnv("SWAP_COMPUTE_LIMIT", "dynamic"),
		WrapAndUnwrapSOL:    getBoolEnv("SWAP_WRAP_AND_UNWRAP_SOL", true),
		MarketKeysByAPI:     getBoolEnv("SWAP_MARKET_KEYS_BY_API", true),
		AsLegacyTransaction: getBoolEnv("SWAP_AS_LEGACY_TRANSACTION", true),
		ProgramID:           getEnv("RAYDIUM_PROGRAM_ID", constants.RaydiumAMMV4ProgramID.String()),
		LookupTables:        getEnv("LOOKUP_TABLES", ""),
	}
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCUrl) == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("MAX_RETRIES must be >= 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("RAYDIUM_PROGRAM_ID: %w", err)
	}
	if _, err := c.LookupTableAddresses(); err != nil {
		return err
	}
	if _, err := c.SwapConfig(); err != nil {
		return err
	}
	return nil
}

// SwapConfig builds the executor's base config from the SWAP_* variables.
func (c *Config) SwapConfig() (swap.SwapConfig, error) {
	fee, err := swap.ParsePriorityFee(c.PriorityFee)
	if err != nil {
		return swap.SwapConfig{}, fmt.Errorf("SWAP_PRIORITY_FEE: %w", err)
	}
	limit, err := swap.ParseComputeLimit(c.ComputeLimit)
	if err != nil {
		return swap.SwapConfig{}, fmt.Errorf("SWAP_COMPUTE_LIMIT: %w", err)
	}
	wrap, legacy := c.WrapAndUnwrapSOL, c.AsLegacyTransaction
	return swap.SwapConfig{
		PriorityFee:         fee,
		ComputeLimit:        limit,
		WrapAndUnwrapSOL:    &wrap,
		AsLegacyTransaction: &legacy,
	}, nil
}

// Program returns the configured AMM program id.
func (c *Config) Program() solana.PublicKey {
	pk, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return constants.RaydiumAMMV4ProgramID
	}
	return pk
}

// LookupTableAddresses parses LOOKUP_TABLES.
func (c *Config) LookupTableAddresses() ([]solana.PublicKey, error) {
	var out []solana.PublicKey
	for _, raw := range strings.Split(c.LookupTables, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, fmt.Errorf("LOOKUP_TABLES: %q: %w", raw, err)
		}
		out = append(out, pk)
	}
	return out, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
