package swap

import (
	"fmt"
	"math/rand"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/holiman/uint256"
)

// FeeCalculator turns a PriorityFee into instructions.
type FeeCalculator struct {
	pick func(n int) int
}

// NewFeeCalculator uses pick to choose a tip account index in [0, n).
// nil picks uniformly at random.
func NewFeeCalculator(pick func(n int) int) *FeeCalculator {
	if pick == nil {
		pick = rand.Intn
	}
	return &FeeCalculator{pick: pick}
}

// Instructions returns compute budget instructions and setup instructions for
// intent. limit is the compute unit limit that will be set, if any.
func (f *FeeCalculator) Instructions(intent PriorityFee, limit *uint32, payer solana.PublicKey) ([]solana.Instruction, []solana.Instruction, error) {
	switch p := intent.(type) {
	case nil:
		return nil, nil, nil
	case FixedPrice:
		return []solana.Instruction{NewComputePriceIx(uint64(p))}, nil, nil
	case TargetMultiplier:
		price, err := PriceForTarget(uint64(p), limit)
		if err != nil {
			return nil, nil, err
		}
		return []solana.Instruction{NewComputePriceIx(price)}, nil, nil
	case Tip:
		ix := system.NewTransferInstruction(uint64(p), payer, f.TipAccount()).Build()
		return nil, []solana.Instruction{ix}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported priority fee %T", ErrInvalidRequest, intent)
	}
}

// TipAccount returns one of the known tip accounts.
func (f *FeeCalculator) TipAccount() solana.PublicKey {
	return constants.JitoTipAccounts[f.pick(len(constants.JitoTipAccounts))]
}

// PriceForTarget returns the compute unit price, in micro-lamports, that makes
// the charged priority fee reach multiplier * 100_000 lamports under limit.
// The network floors price*limit/1e6, so the price is rounded up.
// A nil limit means the runtime default of 200_000 units.
func PriceForTarget(multiplier uint64, limit *uint32) (uint64, error) {
	units := constants.DefaultInstructionComputeUnits
	if limit != nil {
		units = *limit
	}
	if units == 0 {
		return 0, fmt.Errorf("%w: compute unit limit is zero", ErrDivideByZero)
	}

	target, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(multiplier), uint256.NewInt(constants.PriorityFeeBaseUnit))
	if overflow || !target.IsUint64() {
		return 0, fmt.Errorf("%w: priority fee multiplier %d", ErrArithmeticOverflow, multiplier)
	}

	// ceil(target * 1e6 / units)
	micro := new(uint256.Int).Mul(target, uint256.NewInt(constants.MicroLamportsPerLamport))
	divisor := uint256.NewInt(uint64(units))
	price := new(uint256.Int).Add(micro, new(uint256.Int).SubUint64(divisor, 1))
	price.Div(price, divisor)

	if !price.IsUint64() {
		return 0, fmt.Errorf("%w: compute unit price", ErrArithmeticOverflow)
	}
	return price.Uint64(), nil
}
