package server

import (
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// QuoteResponse is the wire form of swap.Quote. Amounts are decimal strings.
type QuoteResponse struct {
	PoolID               string  `json:"poolId"`
	InputMint            string  `json:"inputMint"`
	OutputMint           string  `json:"outputMint"`
	SwapMode             string  `json:"swapMode"`
	Amount               string  `json:"amount"`
	OtherAmount          string  `json:"otherAmount"`
	OtherAmountThreshold string  `json:"otherAmountThreshold"`
	InAmount             string  `json:"inAmount"`
	OutAmount            string  `json:"outAmount"`
	InputDecimals        uint8   `json:"inputDecimals"`
	OutputDecimals       uint8   `json:"outputDecimals"`
	SlippageBps          uint16  `json:"slippageBps"`
	FeeBps               uint16  `json:"feeBps"`
	PriceImpactPct       float64 `json:"priceImpactPct"`
}

// SwapRequestBody asks for instructions or a transaction. The pool is
// re-quoted from a fresh snapshot before building.
type SwapRequestBody struct {
	Payer       string           `json:"payer"`
	InputMint   string           `json:"inputMint"`
	OutputMint  string           `json:"outputMint"`
	Amount      string           `json:"amount"`
	SlippageBps uint16           `json:"slippageBps"`
	SwapMode    string           `json:"swapMode"`
	PoolID      string           `json:"poolId,omitempty"`
	Config      *swap.SwapConfig `json:"config,omitempty"` // per-request overrides
}

// AccountMetaResponse is one account of an instruction.
type AccountMetaResponse struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// InstructionResponse is one instruction with base64 data.
type InstructionResponse struct {
	ProgramID string                `json:"programId"`
	Accounts  []AccountMetaResponse `json:"accounts"`
	Data      string                `json:"data"`
}

// SwapInstructionsResponse carries the ordered instruction list.
type SwapInstructionsResponse struct {
	Quote        QuoteResponse         `json:"quote"`
	Instructions []InstructionResponse `json:"instructions"`
}

// SwapTransactionResponse carries an unsigned base64 transaction. Its
// blockhash is zero; callers set a fresh one before signing.
type SwapTransactionResponse struct {
	Quote       QuoteResponse `json:"quote"`
	Transaction string        `json:"transaction"`
	Versioned   bool          `json:"versioned"`
}

// ProfilesResponse lists stored settings profiles.
type ProfilesResponse struct {
	Active   string   `json:"active"`
	Profiles []string `json:"profiles"`
}

// ConfigResponse is the executor's current base config.
type ConfigResponse struct {
	Profile string          `json:"profile"`
	Config  swap.SwapConfig `json:"config"`
}
