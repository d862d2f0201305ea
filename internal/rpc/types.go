package rpc

import "fmt"

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// ResponseContext is the slot a response was observed at.
type ResponseContext struct {
	Slot uint64 `json:"slot"`
}

// AccountInfo is one entry of getMultipleAccounts with base64 encoding.
// Data is ["<base64>", "base64"].
type AccountInfo struct {
	Data       []string `json:"data"`
	Executable bool     `json:"executable"`
	Lamports   uint64   `json:"lamports"`
	Owner      string   `json:"owner"`
	RentEpoch  uint64   `json:"rentEpoch"`
}

// MultipleAccountsResponse is the response from getMultipleAccounts
type MultipleAccountsResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   []*AccountInfo  `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// SimulateResult is the value of a simulateTransaction response.
// UnitsConsumed is nil when the node does not report it.
type SimulateResult struct {
	Err           interface{} `json:"err"`
	Logs          []string    `json:"logs"`
	UnitsConsumed *uint64     `json:"unitsConsumed"`
}

// SimulateResponse is the response from simulateTransaction
type SimulateResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   *SimulateResult `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// BlockhashResponse is the response from getLatestBlockhash
type BlockhashResponse struct {
	Result *struct {
		Context ResponseContext `json:"context"`
		Value   struct {
			Blockhash            string `json:"blockhash"`
			LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
		} `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}
