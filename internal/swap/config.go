package swap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
)

// PriorityFee selects exactly one fee strategy: FixedPrice, TargetMultiplier or Tip.
type PriorityFee interface {
	isPriorityFee()
	String() string
}

// FixedPrice is a compute unit price in micro-lamports.
type FixedPrice uint64

// TargetMultiplier targets a total priority fee of m * 100_000 lamports.
type TargetMultiplier uint64

// Tip is a lamport transfer to a tip account.
type Tip uint64

func (FixedPrice) isPriorityFee()       {}
func (TargetMultiplier) isPriorityFee() {}
func (Tip) isPriorityFee()              {}

func (p FixedPrice) String() string       { return "price:" + strconv.FormatUint(uint64(p), 10) }
func (m TargetMultiplier) String() string { return "multiplier:" + strconv.FormatUint(uint64(m), 10) }
func (t Tip) String() string              { return "tip:" + strconv.FormatUint(uint64(t), 10) }

// ParsePriorityFee reads "price:<n>", "multiplier:<n>" or "tip:<n>". Empty means none.
func ParsePriorityFee(s string) (PriorityFee, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "none" {
		return nil, nil
	}
	kind, raw, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid priority fee %q: want kind:value", s)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid priority fee value %q: %w", raw, err)
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "price":
		return FixedPrice(n), nil
	case "multiplier":
		return TargetMultiplier(n), nil
	case "tip":
		return Tip(n), nil
	default:
		return nil, fmt.Errorf("unknown priority fee kind %q", kind)
	}
}

// ComputeLimit selects how the compute unit limit is set: DynamicLimit or FixedLimit.
type ComputeLimit interface {
	isComputeLimit()
	String() string
}

// DynamicLimit sizes the limit from a simulation.
type DynamicLimit struct{}

// FixedLimit is an explicit compute unit limit.
type FixedLimit uint64

func (DynamicLimit) isComputeLimit() {}
func (FixedLimit) isComputeLimit()   {}

func (DynamicLimit) String() string { return "dynamic" }
func (l FixedLimit) String() string { return strconv.FormatUint(uint64(l), 10) }

// ParseComputeLimit reads "dynamic" or a unit count. Empty means none.
func ParseComputeLimit(s string) (ComputeLimit, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case "dynamic":
		return DynamicLimit{}, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid compute limit %q: %w", s, err)
	}
	return FixedLimit(n), nil
}

// SwapConfig carries per-swap settings. The executor holds a base config;
// callers pass another as overrides, whose set fields win.
type SwapConfig struct {
	PriorityFee         PriorityFee
	ComputeLimit        ComputeLimit
	WrapAndUnwrapSOL    *bool
	DestinationAccount  *solana.PublicKey
	AsLegacyTransaction *bool
}

// ResolvedConfig is a merged SwapConfig with defaults applied.
type ResolvedConfig struct {
	PriorityFee         PriorityFee
	ComputeLimit        ComputeLimit
	WrapAndUnwrapSOL    bool
	DestinationAccount  *solana.PublicKey
	AsLegacyTransaction bool
}

// Merge resolves overrides over base field by field.
// Wrapping and legacy transactions default to on.
func Merge(base SwapConfig, overrides *SwapConfig) ResolvedConfig {
	o := SwapConfig{}
	if overrides != nil {
		o = *overrides
	}

	r := ResolvedConfig{
		PriorityFee:         base.PriorityFee,
		ComputeLimit:        base.ComputeLimit,
		WrapAndUnwrapSOL:    true,
		DestinationAccount:  base.DestinationAccount,
		AsLegacyTransaction: true,
	}
	if o.PriorityFee != nil {
		r.PriorityFee = o.PriorityFee
	}
	if o.ComputeLimit != nil {
		r.ComputeLimit = o.ComputeLimit
	}
	if o.DestinationAccount != nil {
		r.DestinationAccount = o.DestinationAccount
	}

	switch {
	case o.WrapAndUnwrapSOL != nil:
		r.WrapAndUnwrapSOL = *o.WrapAndUnwrapSOL
	case base.WrapAndUnwrapSOL != nil:
		r.WrapAndUnwrapSOL = *base.WrapAndUnwrapSOL
	}
	switch {
	case o.AsLegacyTransaction != nil:
		r.AsLegacyTransaction = *o.AsLegacyTransaction
	case base.AsLegacyTransaction != nil:
		r.AsLegacyTransaction = *base.AsLegacyTransaction
	}
	return r
}

// swapConfigJSON is the wire form of SwapConfig; intents use their string form.
type swapConfigJSON struct {
	PriorityFee         string            `json:"priority_fee,omitempty"`
	ComputeLimit        string            `json:"compute_limit,omitempty"`
	WrapAndUnwrapSOL    *bool             `json:"wrap_and_unwrap_sol,omitempty"`
	DestinationAccount  *solana.PublicKey `json:"destination_account,omitempty"`
	AsLegacyTransaction *bool             `json:"as_legacy_transaction,omitempty"`
}

func (c SwapConfig) MarshalJSON() ([]byte, error) {
	w := swapConfigJSON{
		WrapAndUnwrapSOL:    c.WrapAndUnwrapSOL,
		DestinationAccount:  c.DestinationAccount,
		AsLegacyTransaction: c.AsLegacyTransaction,
	}
	if c.PriorityFee != nil {
		w.PriorityFee = c.PriorityFee.String()
	}
	if c.ComputeLimit != nil {
		w.ComputeLimit = c.ComputeLimit.String()
	}
	return sonic.ConfigStd.Marshal(w)
}

func (c *SwapConfig) UnmarshalJSON(data []byte) error {
	var w swapConfigJSON
	if err := sonic.ConfigStd.Unmarshal(data, &w); err != nil {
		return err
	}
	fee, err := ParsePriorityFee(w.PriorityFee)
	if err != nil {
		return err
	}
	limit, err := ParseComputeLimit(w.ComputeLimit)
	if err != nil {
		return err
	}
	*c = SwapConfig{
		PriorityFee:         fee,
		ComputeLimit:        limit,
		WrapAndUnwrapSOL:    w.WrapAndUnwrapSOL,
		DestinationAccount:  w.DestinationAccount,
		AsLegacyTransaction: w.AsLegacyTransaction,
	}
	return nil
}
