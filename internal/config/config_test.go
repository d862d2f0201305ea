package config

import (
	"testing"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SOLANA_RPC_URL", "REDIS_ADDR", "SWAP_PRIORITY_FEE", "SWAP_COMPUTE_LIMIT", "SWAP_WRAP_AND_UNWRAP_SOL", "MAX_RETRIES"} {
		t.Setenv(k, "")
	}
	t.Setenv("SETTINGS_PROFILE", "")
	t.Setenv("LOOKUP_TABLES", "")
	t.Setenv("SWAP_RATE_LIMIT", "")

	cfg := Load()
	assert.Equal(t, "https://api.mainnet-beta.solana.com", cfg.RPCUrl)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, constants.DefaultPoolCacheTTL, cfg.PoolCacheTTL)
	assert.True(t, cfg.WrapAndUnwrapSOL)
	assert.True(t, cfg.MarketKeysByAPI)
	assert.Equal(t, "default", cfg.SettingsProfile)
	assert.Equal(t, 5.0, cfg.SwapRateLimit)
	assert.Equal(t, constants.RaydiumAMMV4ProgramID, cfg.Program())
	require.NoError(t, cfg.Validate())

	sc, err := cfg.SwapConfig()
	require.NoError(t, err)
	assert.Nil(t, sc.PriorityFee)
	assert.Equal(t, swap.DynamicLimit{}, sc.ComputeLimit)
	require.NotNil(t, sc.WrapAndUnwrapSOL)
	assert.True(t, *sc.WrapAndUnwrapSOL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SWAP_PRIORITY_FEE", "tip:10000")
	t.Setenv("SWAP_COMPUTE_LIMIT", "250000")
	t.Setenv("SWAP_WRAP_AND_UNWRAP_SOL", "false")
	t.Setenv("POOL_CACHE_TTL", "90s")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	assert.Equal(t, 90*time.Second, cfg.PoolCacheTTL)
	assert.Equal(t, 3, cfg.MaxRetries)

	sc, err := cfg.SwapConfig()
	require.NoError(t, err)
	assert.Equal(t, swap.Tip(10_000), sc.PriorityFee)
	assert.Equal(t, swap.FixedLimit(250_000), sc.ComputeLimit)
	assert.False(t, *sc.WrapAndUnwrapSOL)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.PriorityFee = "gas:1"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.ProgramID = "nope"
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.RPCUrl = " "
	assert.Error(t, cfg.Validate())

	cfg = Load()
	cfg.LookupTables = "not-a-key"
	assert.Error(t, cfg.Validate())
}

func TestLookupTableAddresses(t *testing.T) {
	cfg := Load()
	cfg.LookupTables = " 675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8 ,,srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX"

	got, err := cfg.LookupTableAddresses()
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{constants.RaydiumAMMV4ProgramID, constants.OpenBookProgramID}, got)

	cfg.LookupTables = ""
	got, err = cfg.LookupTableAddresses()
	require.NoError(t, err)
	assert.Empty(t, got)
}
