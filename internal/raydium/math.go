package raydium

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

var (
	ErrOverflow     = errors.New("arithmetic overflow")
	ErrDivideByZero = errors.New("divide by zero")
)

const bpsDenominator = 10_000

// SwapDirection is the trade direction relative to the pool's coin/pc legs.
type SwapDirection uint8

const (
	Coin2PC SwapDirection = iota
	PC2Coin
)

func (d SwapDirection) String() string {
	if d == Coin2PC {
		return "coin_to_pc"
	}
	return "pc_to_coin"
}

// Reserves returns (reserveIn, reserveOut) for the direction.
func (d SwapDirection) Reserves(coin, pc uint64) (uint64, uint64) {
	if d == Coin2PC {
		return coin, pc
	}
	return pc, coin
}

// SwapExactIn computes the output for amountIn after the proportional fee.
// The fee is rounded up and the output down.
func SwapExactIn(amountIn, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, error) {
	if feeDenominator == 0 {
		return 0, fmt.Errorf("%w: fee denominator is zero", ErrDivideByZero)
	}
	if feeNumerator > feeDenominator {
		return 0, fmt.Errorf("%w: fee %d/%d exceeds 100%%", ErrOverflow, feeNumerator, feeDenominator)
	}
	if reserveIn == 0 || reserveOut == 0 {
		return 0, fmt.Errorf("%w: empty reserve (in %d, out %d)", ErrDivideByZero, reserveIn, reserveOut)
	}

	amount := new(big.Int).SetUint64(amountIn)
	fee := ceilDiv(
		new(big.Int).Mul(amount, new(big.Int).SetUint64(feeNumerator)),
		new(big.Int).SetUint64(feeDenominator),
	)
	afterFee := new(big.Int).Sub(amount, fee)

	// out = reserveOut * afterFee / (reserveIn + afterFee)
	denominator := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), afterFee)
	out := new(big.Int).Mul(new(big.Int).SetUint64(reserveOut), afterFee)
	out.Div(out, denominator)

	if !out.IsUint64() {
		return 0, fmt.Errorf("%w: output amount", ErrOverflow)
	}
	return out.Uint64(), nil
}

// SwapExactOut computes the input needed to receive amountOut, fee included.
// Both the curve and the fee gross-up round up.
func SwapExactOut(amountOut, reserveIn, reserveOut, feeNumerator, feeDenominator uint64) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, fmt.Errorf("%w: empty reserve (in %d, out %d)", ErrDivideByZero, reserveIn, reserveOut)
	}
	if amountOut == reserveOut {
		return 0, fmt.Errorf("%w: output drains the reserve", ErrDivideByZero)
	}
	if amountOut > reserveOut {
		return 0, fmt.Errorf("%w: output %d exceeds reserve %d", ErrOverflow, amountOut, reserveOut)
	}
	if feeNumerator > feeDenominator {
		return 0, fmt.Errorf("%w: fee %d/%d exceeds 100%%", ErrOverflow, feeNumerator, feeDenominator)
	}
	if feeDenominator == feeNumerator {
		return 0, fmt.Errorf("%w: fee leaves nothing to trade", ErrDivideByZero)
	}

	// in = ceil(reserveIn * out / (reserveOut - out))
	beforeFee := ceilDiv(
		new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), new(big.Int).SetUint64(amountOut)),
		new(big.Int).SetUint64(reserveOut-amountOut),
	)
	// gross = ceil(in * den / (den - num))
	gross := ceilDiv(
		new(big.Int).Mul(beforeFee, new(big.Int).SetUint64(feeDenominator)),
		new(big.Int).SetUint64(feeDenominator-feeNumerator),
	)

	if !gross.IsUint64() {
		return 0, fmt.Errorf("%w: input amount", ErrOverflow)
	}
	return gross.Uint64(), nil
}

// ApplySlippage widens amount by slippageBps against the caller.
// An output minimum rounds down, an input maximum rounds up.
func ApplySlippage(amount uint64, slippageBps uint16, amountIsOutput bool) (uint64, error) {
	if slippageBps > bpsDenominator {
		return 0, fmt.Errorf("%w: slippage %d bps", ErrOverflow, slippageBps)
	}

	value := new(big.Int).SetUint64(amount)
	denom := big.NewInt(bpsDenominator)

	var result *big.Int
	if amountIsOutput {
		result = new(big.Int).Mul(value, big.NewInt(int64(bpsDenominator-int(slippageBps))))
		result.Div(result, denom)
	} else {
		result = ceilDiv(new(big.Int).Mul(value, big.NewInt(int64(bpsDenominator+int(slippageBps)))), denom)
	}

	if !result.IsUint64() {
		return 0, fmt.Errorf("%w: slippage threshold", ErrOverflow)
	}
	return result.Uint64(), nil
}

// CalculateFeeBps converts fee numerator/denominator to basis points
func CalculateFeeBps(feeNumerator, feeDenominator uint64) uint16 {
	if feeDenominator == 0 {
		return 0
	}
	bps := new(big.Int).Mul(new(big.Int).SetUint64(feeNumerator), big.NewInt(bpsDenominator))
	bps.Div(bps, new(big.Int).SetUint64(feeDenominator))
	if !bps.IsUint64() || bps.Uint64() > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(bps.Uint64())
}

// PriceImpact compares the execution rate of amountIn→amountOut with the
// pool's spot rate. Returns a fraction in [0, 1].
func PriceImpact(amountIn, amountOut, reserveIn, reserveOut uint64) float64 {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0
	}
	idealRate := float64(reserveOut) / float64(reserveIn)
	executionRate := float64(amountOut) / float64(amountIn)
	return math.Max(0, 1-(executionRate/idealRate))
}

func ceilDiv(numerator, denominator *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(numerator, denominator, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
