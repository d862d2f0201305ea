package swap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
	"github.com/aman-zulfiqar/raydium-swap/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

// SwapMode says which side of the trade Amount fixes.
type SwapMode string

const (
	ExactIn  SwapMode = "ExactIn"
	ExactOut SwapMode = "ExactOut"
)

// ParseSwapMode accepts ExactIn/ExactOut case-insensitively; empty means ExactIn.
func ParseSwapMode(s string) (SwapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exactin":
		return ExactIn, nil
	case "exactout":
		return ExactOut, nil
	default:
		return "", fmt.Errorf("%w: unknown swap mode %q", ErrInvalidRequest, s)
	}
}

func (m SwapMode) AmountSpecifiedIsInput() bool { return m != ExactOut }

// SwapRequest asks for a quote.
type SwapRequest struct {
	InputMint   solana.PublicKey
	OutputMint  solana.PublicKey
	Amount      uint64
	Mode        SwapMode
	SlippageBps uint16
	// Pool skips discovery when set.
	Pool *solana.PublicKey
}

// OrderbookAdjustment holds the pool's balances resting on the orderbook.
type OrderbookAdjustment struct {
	CoinTotal uint64
	PcTotal   uint64
}

// PoolSnapshot is a point-in-time view of a pool's reserves. It is built per
// request and never reused.
type PoolSnapshot struct {
	PoolID          solana.PublicKey
	Status          raydium.AmmStatus
	CoinVaultAmount uint64
	PcVaultAmount   uint64
	NeedTakePnlCoin uint64
	NeedTakePnlPc   uint64
	FeeNumerator    uint64
	FeeDenominator  uint64
	CoinDecimals    uint8
	PcDecimals      uint8
	Orderbook       *OrderbookAdjustment
}

// LoadedPool bundles a snapshot with the keys needed to encode a swap against it.
type LoadedPool struct {
	Snapshot   PoolSnapshot
	AmmKeys    *raydium.AmmKeys
	MarketKeys *raydium.MarketKeys
}

// Quote is the priced result of a SwapRequest.
type Quote struct {
	PoolID                 solana.PublicKey      `json:"pool_id"`
	InputMint              solana.PublicKey      `json:"input_mint"`
	OutputMint             solana.PublicKey      `json:"output_mint"`
	Amount                 uint64                `json:"amount"`
	OtherAmount            uint64                `json:"other_amount"`
	OtherAmountThreshold   uint64                `json:"other_amount_threshold"`
	AmountSpecifiedIsInput bool                  `json:"amount_specified_is_input"`
	InputDecimals          uint8                 `json:"input_decimals"`
	OutputDecimals         uint8                 `json:"output_decimals"`
	SlippageBps            uint16                `json:"slippage_bps"`
	FeeBps                 uint16                `json:"fee_bps"`
	PriceImpact            float64               `json:"price_impact"`
	Direction              raydium.SwapDirection `json:"-"`
	AmmKeys                *raydium.AmmKeys      `json:"amm_keys"`
	MarketKeys             *raydium.MarketKeys   `json:"market_keys"`
}

// InputAmount is the amount of input the swap may consume at most.
func (q *Quote) InputAmount() uint64 {
	if q.AmountSpecifiedIsInput {
		return q.Amount
	}
	return q.OtherAmountThreshold
}

// AccountFetcher reads raw account data in one batched call. Missing accounts are nil.
type AccountFetcher interface {
	GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([][]byte, error)
}

// Simulator dry-runs an unsigned transaction.
type Simulator interface {
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateResult, error)
}

// PoolFinder resolves a mint pair to a pool; nil means none exists.
type PoolFinder interface {
	FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*solana.PublicKey, error)
}

// MarketKeySource supplies orderbook keys for a pool from off-chain data.
type MarketKeySource interface {
	MarketKeys(ctx context.Context, pool solana.PublicKey) (*raydium.MarketKeys, error)
}
