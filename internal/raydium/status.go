package raydium

import "fmt"

// AmmStatus is the lifecycle state stored in AmmInfo.Status.
type AmmStatus uint64

const (
	StatusUninitialized AmmStatus = iota
	StatusInitialized
	StatusDisabled
	StatusWithdrawOnly
	StatusLiquidityOnly
	StatusOrderBookOnly
	StatusSwapOnly
	StatusWaitingTrade
)

func (s AmmStatus) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusInitialized:
		return "initialized"
	case StatusDisabled:
		return "disabled"
	case StatusWithdrawOnly:
		return "withdraw_only"
	case StatusLiquidityOnly:
		return "liquidity_only"
	case StatusOrderBookOnly:
		return "orderbook_only"
	case StatusSwapOnly:
		return "swap_only"
	case StatusWaitingTrade:
		return "waiting_trade"
	default:
		return fmt.Sprintf("unknown(%d)", uint64(s))
	}
}

// OrderbookPermission reports whether the pool has liquidity parked on the market.
func (s AmmStatus) OrderbookPermission() bool {
	return s == StatusInitialized || s == StatusOrderBookOnly || s == StatusWaitingTrade
}

// SwapPermission reports whether the program accepts swaps in this state.
func (s AmmStatus) SwapPermission() bool {
	return s == StatusInitialized || s == StatusSwapOnly || s == StatusWaitingTrade
}
