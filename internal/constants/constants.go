package constants

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Program addresses
var (
	RaydiumAMMV4ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	OpenBookProgramID     = solana.MustPublicKeyFromBase58("srmqPvymJeFKQ4zGQed1GFppgkRHL9kaELCbyksJtPX")
)

// NativeMint is the wrapped SOL mint.
var NativeMint = solana.SolMint

// Compute budget
const (
	// DefaultInstructionComputeUnits is what the runtime charges against when no limit is set.
	DefaultInstructionComputeUnits uint32 = 200_000
	MicroLamportsPerLamport        uint64 = 1_000_000
	// PriorityFeeBaseUnit is the lamport amount one multiplier step buys.
	PriorityFeeBaseUnit uint64 = 100_000
	// SimulationComputeMargin is added to simulated units consumed.
	SimulationComputeMargin uint32 = 50_000
)

// Slippage
const (
	MaxSlippageBps  = 10_000
	MaxAccountBatch = 100
)

// JitoTipAccounts are the tip-collection addresses a tip transfer may target.
var JitoTipAccounts = [...]solana.PublicKey{
	solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5"),
	solana.MustPublicKeyFromBase58("HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe"),
	solana.MustPublicKeyFromBase58("Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY"),
	solana.MustPublicKeyFromBase58("ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49"),
	solana.MustPublicKeyFromBase58("DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh"),
	solana.MustPublicKeyFromBase58("ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt"),
	solana.MustPublicKeyFromBase58("DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL"),
	solana.MustPublicKeyFromBase58("3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT"),
}

// Redis keys
const (
	RedisKeyPoolPrefix       = "raydium:pool:"
	RedisKeyMarketKeysPrefix = "raydium:market:"
	RedisKeySettingsPrefix   = "settings:swap:"
)

// Cache
const (
	DefaultPoolCacheTTL = 10 * time.Minute
)

// Raydium API v3
const (
	RaydiumAPIBaseURL   = "https://api-v3.raydium.io"
	DiscoveryPageSize   = 100
	RaydiumPoolTypeAMM  = "standard"
	RaydiumSortField    = "liquidity"
	RaydiumSortOrderDsc = "desc"
)

// TokenMints maps well-known symbols to mint addresses.
var TokenMints = map[string]string{
	"SOL":  "So11111111111111111111111111111111111111112",
	"WSOL": "So11111111111111111111111111111111111111112",
	"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
	"RAY":  "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R",
	"BONK": "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
	"JUP":  "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
	"mSOL": "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",
}
