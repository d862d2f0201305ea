package swap

import (
	"fmt"
	"math/bits"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
)

// Validate checks the request without touching the network.
func (r SwapRequest) Validate() error {
	if r.InputMint.Equals(r.OutputMint) {
		return fmt.Errorf("%w: input mint %s equals output mint", ErrInvalidRequest, r.InputMint)
	}
	if r.InputMint.IsZero() || r.OutputMint.IsZero() {
		return fmt.Errorf("%w: input and output mints are required", ErrInvalidRequest)
	}
	if r.SlippageBps > constants.MaxSlippageBps {
		return fmt.Errorf("%w: slippage %d bps exceeds %d", ErrInvalidRequest, r.SlippageBps, constants.MaxSlippageBps)
	}
	if r.Amount == 0 {
		return fmt.Errorf("%w: amount must be > 0", ErrInvalidRequest)
	}
	if r.Mode != "" && r.Mode != ExactIn && r.Mode != ExactOut {
		return fmt.Errorf("%w: unknown swap mode %q", ErrInvalidRequest, r.Mode)
	}
	return nil
}

// EffectiveReserves returns the (coin, pc) totals a swap prices against:
// vault balances plus open-order totals when the pool trades on the
// orderbook, less pnl owed to the pool owner.
func EffectiveReserves(s PoolSnapshot) (uint64, uint64, error) {
	coin, pc := s.CoinVaultAmount, s.PcVaultAmount

	if s.Orderbook != nil {
		var carry uint64
		if coin, carry = bits.Add64(coin, s.Orderbook.CoinTotal, 0); carry != 0 {
			return 0, 0, fmt.Errorf("%w: coin reserve with open orders", ErrArithmeticOverflow)
		}
		if pc, carry = bits.Add64(pc, s.Orderbook.PcTotal, 0); carry != 0 {
			return 0, 0, fmt.Errorf("%w: pc reserve with open orders", ErrArithmeticOverflow)
		}
	}

	if s.NeedTakePnlCoin > coin {
		return 0, 0, fmt.Errorf("%w: coin pnl %d exceeds reserve %d", ErrArithmeticOverflow, s.NeedTakePnlCoin, coin)
	}
	if s.NeedTakePnlPc > pc {
		return 0, 0, fmt.Errorf("%w: pc pnl %d exceeds reserve %d", ErrArithmeticOverflow, s.NeedTakePnlPc, pc)
	}
	return coin - s.NeedTakePnlCoin, pc - s.NeedTakePnlPc, nil
}

// ComputeQuote prices req against a loaded pool. Rounding always favors the pool.
func ComputeQuote(req SwapRequest, pool *LoadedPool) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if pool == nil || pool.AmmKeys == nil {
		return nil, fmt.Errorf("%w: no pool state", ErrPoolNotFound)
	}
	if !pool.Snapshot.Status.SwapPermission() {
		return nil, fmt.Errorf("%w: pool %s is %s", ErrSwapDisabled, pool.Snapshot.PoolID, pool.Snapshot.Status)
	}

	direction, err := raydium.DetermineSwapDirection(pool.AmmKeys, req.InputMint, req.OutputMint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	snap := pool.Snapshot
	coin, pc, err := EffectiveReserves(snap)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut := direction.Reserves(coin, pc)

	isInput := req.Mode.AmountSpecifiedIsInput()
	var other uint64
	if isInput {
		other, err = raydium.SwapExactIn(req.Amount, reserveIn, reserveOut, snap.FeeNumerator, snap.FeeDenominator)
	} else {
		other, err = raydium.SwapExactOut(req.Amount, reserveIn, reserveOut, snap.FeeNumerator, snap.FeeDenominator)
	}
	if err != nil {
		return nil, classify(err)
	}

	// ExactIn bounds the output from below, ExactOut bounds the input from above.
	threshold, err := raydium.ApplySlippage(other, req.SlippageBps, isInput)
	if err != nil {
		return nil, classify(err)
	}

	amountIn, amountOut := req.Amount, other
	if !isInput {
		amountIn, amountOut = other, req.Amount
	}

	inputDecimals, outputDecimals := snap.CoinDecimals, snap.PcDecimals
	if direction == raydium.PC2Coin {
		inputDecimals, outputDecimals = snap.PcDecimals, snap.CoinDecimals
	}

	return &Quote{
		PoolID:                 snap.PoolID,
		InputMint:              req.InputMint,
		OutputMint:             req.OutputMint,
		Amount:                 req.Amount,
		OtherAmount:            other,
		OtherAmountThreshold:   threshold,
		AmountSpecifiedIsInput: isInput,
		InputDecimals:          inputDecimals,
		OutputDecimals:         outputDecimals,
		SlippageBps:            req.SlippageBps,
		FeeBps:                 raydium.CalculateFeeBps(snap.FeeNumerator, snap.FeeDenominator),
		PriceImpact:            raydium.PriceImpact(amountIn, amountOut, reserveIn, reserveOut),
		Direction:              direction,
		AmmKeys:                pool.AmmKeys,
		MarketKeys:             pool.MarketKeys,
	}, nil
}
