package rpc

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// SimulateTransaction dry-runs tx without signature verification and with the
// node substituting a recent blockhash. A failed program execution is reported
// in SimulateResult.Err, not as an error.
func (c *Client) SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*SimulateResult, error) {
	txBytes, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	params := []interface{}{
		base64.StdEncoding.EncodeToString(txBytes),
		map[string]interface{}{
			"encoding":               "base64",
			"commitment":             c.commitment,
			"sigVerify":              false,
			"replaceRecentBlockhash": true,
		},
	}

	var resp SimulateResponse
	if err := c.Call(ctx, "simulateTransaction", params, &resp); err != nil {
		return nil, fmt.Errorf("simulateTransaction RPC failed: %w", err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result == nil || resp.Result.Value == nil {
		return &SimulateResult{}, nil
	}

	result := resp.Result.Value
	fields := logrus.Fields{"slot": resp.Result.Context.Slot}
	if result.UnitsConsumed != nil {
		fields["units_consumed"] = *result.UnitsConsumed
	}
	if result.Err != nil {
		fields["err"] = fmt.Sprintf("%v", result.Err)
	}
	c.logger.WithFields(fields).Debug("simulated transaction")

	return result, nil
}

// GetLatestBlockhash fetches the most recent blockhash at the client's commitment.
func (c *Client) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	params := []interface{}{
		map[string]interface{}{"commitment": c.commitment},
	}

	var resp BlockhashResponse
	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash RPC failed: %w", err)
	}
	if resp.Error != nil {
		return solana.Hash{}, resp.Error
	}
	if resp.Result == nil {
		return solana.Hash{}, fmt.Errorf("getLatestBlockhash: empty result")
	}

	hash, err := solana.HashFromBase58(resp.Result.Value.Blockhash)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("invalid blockhash format: %w", err)
	}
	return hash, nil
}
