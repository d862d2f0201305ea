package swap

import (
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
)

// Failure taxonomy. Callers classify with errors.Is.
var (
	ErrInvalidRequest        = errors.New("invalid swap request")
	ErrPoolNotFound          = errors.New("pool not found")
	ErrMalformedAccountData  = errors.New("malformed account data")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrDivideByZero          = errors.New("divide by zero")
	ErrInstructionEncoding   = errors.New("instruction encoding failed")
	ErrIncompletePlan        = errors.New("instruction plan has no swap instruction")
	ErrSimulationUnavailable = errors.New("compute unit simulation unavailable")
	ErrSwapDisabled          = errors.New("pool does not accept swaps")
)

// classify maps lower-level sentinels onto the taxonomy, keeping the
// original error in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, raydium.ErrMalformedAccount):
		return fmt.Errorf("%w: %w", ErrMalformedAccountData, err)
	case errors.Is(err, raydium.ErrOverflow):
		return fmt.Errorf("%w: %w", ErrArithmeticOverflow, err)
	case errors.Is(err, raydium.ErrDivideByZero):
		return fmt.Errorf("%w: %w", ErrDivideByZero, err)
	case errors.Is(err, raydium.ErrMissingMarketKeys):
		return fmt.Errorf("%w: %w", ErrInstructionEncoding, err)
	default:
		return err
	}
}
