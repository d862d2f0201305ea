package swapengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/aman-zulfiqar/raydium-swap/internal/apiv3"
	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// TokenSource looks up mint metadata.
type TokenSource interface {
	TokenInfo(ctx context.Context, mints []string) ([]apiv3.Token, error)
}

// Intent is a swap as a person types it: symbols or mints, and an amount that
// is raw base units unless UIAmount is set.
type Intent struct {
	Input       string
	Output      string
	Amount      string
	UIAmount    bool
	Mode        string
	SlippageBps uint16
	Pool        string
}

// ResolveIntent turns an Intent into a SwapRequest. Decimals are only looked
// up when the amount is given in UI units.
func ResolveIntent(ctx context.Context, tokens TokenSource, in Intent) (swap.SwapRequest, error) {
	var req swap.SwapRequest

	inMint, err := ResolveMint(in.Input)
	if err != nil {
		return req, fmt.Errorf("input: %w", err)
	}
	outMint, err := ResolveMint(in.Output)
	if err != nil {
		return req, fmt.Errorf("output: %w", err)
	}
	mode, err := swap.ParseSwapMode(in.Mode)
	if err != nil {
		return req, err
	}

	req = swap.SwapRequest{
		InputMint:   inMint,
		OutputMint:  outMint,
		Mode:        mode,
		SlippageBps: in.SlippageBps,
	}
	if p := strings.TrimSpace(in.Pool); p != "" {
		pool, err := solana.PublicKeyFromBase58(p)
		if err != nil {
			return req, fmt.Errorf("%w: pool %q: %v", swap.ErrInvalidRequest, p, err)
		}
		req.Pool = &pool
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(in.Amount))
	if err != nil {
		return req, fmt.Errorf("%w: amount %q: %v", swap.ErrInvalidRequest, in.Amount, err)
	}
	if in.UIAmount {
		// ExactOut fixes the output side, so its decimals scale the amount.
		mint := inMint
		if mode == swap.ExactOut {
			mint = outMint
		}
		decimals, err := mintDecimals(ctx, tokens, mint)
		if err != nil {
			return req, err
		}
		amount = amount.Shift(int32(decimals))
	}

	raw, err := toRawAmount(amount)
	if err != nil {
		return req, err
	}
	req.Amount = raw
	return req, nil
}

// ResolveMint accepts a known symbol (any case) or a base58 mint.
func ResolveMint(s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: token is required", swap.ErrInvalidRequest)
	}
	for sym, mint := range constants.TokenMints {
		if strings.EqualFold(sym, s) {
			return solana.MustPublicKeyFromBase58(mint), nil
		}
	}
	pk, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: unknown token %q", swap.ErrInvalidRequest, s)
	}
	return pk, nil
}

func mintDecimals(ctx context.Context, tokens TokenSource, mint solana.PublicKey) (uint8, error) {
	if mint.Equals(solana.WrappedSol) {
		return 9, nil
	}
	if tokens == nil {
		return 0, fmt.Errorf("no token source to look up decimals for %s", mint)
	}
	infos, err := tokens.TokenInfo(ctx, []string{mint.String()})
	if err != nil {
		return 0, fmt.Errorf("token info for %s: %w", mint, err)
	}
	for _, t := range infos {
		if t.Address == mint.String() {
			return t.Decimals, nil
		}
	}
	return 0, fmt.Errorf("%w: no token info for %s", swap.ErrInvalidRequest, mint)
}

// toRawAmount requires a whole number of base units that fits in u64.
func toRawAmount(d decimal.Decimal) (uint64, error) {
	if d.Sign() < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", swap.ErrInvalidRequest)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("%w: amount %s has more precision than the mint", swap.ErrInvalidRequest, d)
	}
	n := d.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: amount %s exceeds u64", swap.ErrArithmeticOverflow, d)
	}
	return n.Uint64(), nil
}
