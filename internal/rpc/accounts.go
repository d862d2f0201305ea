package rpc

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// GetMultipleAccounts reads raw account data for keys in one request per
// batch of 100. The result has the same order as keys; missing accounts are nil.
// Batches after the first are pinned to at least the first batch's slot.
func (c *Client) GetMultipleAccounts(ctx context.Context, keys []solana.PublicKey) ([][]byte, error) {
	out := make([][]byte, 0, len(keys))
	var minSlot uint64

	for start := 0; start < len(keys); start += constants.MaxAccountBatch {
		end := start + constants.MaxAccountBatch
		if end > len(keys) {
			end = len(keys)
		}

		addrs := make([]string, 0, end-start)
		for _, k := range keys[start:end] {
			addrs = append(addrs, k.String())
		}

		opts := map[string]interface{}{
			"encoding":   "base64",
			"commitment": c.commitment,
		}
		if minSlot > 0 {
			opts["minContextSlot"] = minSlot
		}

		var resp MultipleAccountsResponse
		if err := c.Call(ctx, "getMultipleAccounts", []interface{}{addrs, opts}, &resp); err != nil {
			return nil, fmt.Errorf("getMultipleAccounts RPC failed: %w", err)
		}
		if resp.Error != nil {
			return nil, resp.Error
		}
		if resp.Result == nil || len(resp.Result.Value) != len(addrs) {
			return nil, fmt.Errorf("getMultipleAccounts: expected %d accounts in response", len(addrs))
		}
		if minSlot == 0 {
			minSlot = resp.Result.Context.Slot
		}

		for i, acc := range resp.Result.Value {
			if acc == nil {
				out = append(out, nil)
				continue
			}
			data, err := decodeAccountData(acc.Data)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", addrs[i], err)
			}
			out = append(out, data)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"accounts": len(keys),
		"slot":     minSlot,
	}).Debug("fetched accounts")

	return out, nil
}

func decodeAccountData(data []string) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	if len(data) > 1 && data[1] != "base64" {
		return nil, fmt.Errorf("unexpected account encoding %q", data[1])
	}
	raw, err := base64.StdEncoding.DecodeString(data[0])
	if err != nil {
		return nil, fmt.Errorf("invalid base64 account data: %w", err)
	}
	return raw, nil
}
