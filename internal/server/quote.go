package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
)

// Quote prices a swap against a fresh pool snapshot.
func (h *Handlers) Quote(c echo.Context) error {
	req, details := parseSwapRequest(
		c.QueryParam("inputMint"),
		c.QueryParam("outputMint"),
		c.QueryParam("amount"),
		c.QueryParam("slippageBps"),
		c.QueryParam("swapMode"),
		c.QueryParam("poolId"),
	)
	if details != nil {
		return h.err(c, http.StatusBadRequest, "invalid quote request", details)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	q, err := h.Swaps.Quote(ctx, req)
	if err != nil {
		return h.swapErr(c, err)
	}
	return c.JSON(http.StatusOK, toQuoteResponse(q))
}

// parseSwapRequest reads string inputs into a SwapRequest, collecting every
// field problem instead of stopping at the first.
func parseSwapRequest(inputMint, outputMint, amount, slippage, mode, pool string) (swap.SwapRequest, map[string]any) {
	var req swap.SwapRequest
	details := map[string]any{}

	parseKey := func(field, v string, required bool) *solana.PublicKey {
		v = strings.TrimSpace(v)
		if v == "" {
			if required {
				details[field] = "required"
			}
			return nil
		}
		pk, err := solana.PublicKeyFromBase58(v)
		if err != nil {
			details[field] = "must be a base58 public key"
			return nil
		}
		return &pk
	}

	if pk := parseKey("inputMint", inputMint, true); pk != nil {
		req.InputMint = *pk
	}
	if pk := parseKey("outputMint", outputMint, true); pk != nil {
		req.OutputMint = *pk
	}
	req.Pool = parseKey("poolId", pool, false)

	if amount = strings.TrimSpace(amount); amount == "" {
		details["amount"] = "required"
	} else if n, err := strconv.ParseUint(amount, 10, 64); err != nil {
		details["amount"] = "must be uint64"
	} else {
		req.Amount = n
	}

	if slippage = strings.TrimSpace(slippage); slippage != "" {
		n, err := strconv.ParseUint(slippage, 10, 16)
		if err != nil {
			details["slippageBps"] = "must be uint16"
		} else {
			req.SlippageBps = uint16(n)
		}
	}

	m, err := swap.ParseSwapMode(mode)
	if err != nil {
		details["swapMode"] = "must be ExactIn or ExactOut"
	}
	req.Mode = m

	if len(details) > 0 {
		return req, details
	}
	return req, nil
}

func toQuoteResponse(q *swap.Quote) QuoteResponse {
	mode := swap.ExactIn
	in, out := q.Amount, q.OtherAmount
	if !q.AmountSpecifiedIsInput {
		mode = swap.ExactOut
		in, out = q.OtherAmount, q.Amount
	}
	return QuoteResponse{
		PoolID:               q.PoolID.String(),
		InputMint:            q.InputMint.String(),
		OutputMint:           q.OutputMint.String(),
		SwapMode:             string(mode),
		Amount:               strconv.FormatUint(q.Amount, 10),
		OtherAmount:          strconv.FormatUint(q.OtherAmount, 10),
		OtherAmountThreshold: strconv.FormatUint(q.OtherAmountThreshold, 10),
		InAmount:             strconv.FormatUint(in, 10),
		OutAmount:            strconv.FormatUint(out, 10),
		InputDecimals:        q.InputDecimals,
		OutputDecimals:       q.OutputDecimals,
		SlippageBps:          q.SlippageBps,
		FeeBps:               q.FeeBps,
		PriceImpactPct:       q.PriceImpact,
	}
}
