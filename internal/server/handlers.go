package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/settings"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// SwapService is the part of swap.Executor the API needs.
type SwapService interface {
	Quote(ctx context.Context, req swap.SwapRequest) (*swap.Quote, error)
	SwapInstructions(ctx context.Context, payer solana.PublicKey, quote *swap.Quote, overrides *swap.SwapConfig) ([]solana.Instruction, error)
	SwapTransaction(ctx context.Context, payer solana.PublicKey, quote *swap.Quote, overrides *swap.SwapConfig) (*solana.Transaction, error)
	Config() swap.SwapConfig
	UpdateConfig(cfg swap.SwapConfig)
}

// ConfigStore persists base config changes so other instances pick them up.
type ConfigStore interface {
	Save(ctx context.Context, profile string, cfg swap.SwapConfig) (*settings.Record, error)
	Profiles(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, profile string) error
}

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Swaps    SwapService
	Settings ConfigStore // optional; nil keeps config changes local
	Profile  string      // settings profile this instance follows
	DevMode  bool
	Logger   *logrus.Logger
}

func (h *Handlers) logger() *logrus.Logger {
	if h.Logger == nil {
		return logrus.StandardLogger()
	}
	return h.Logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// swapErr logs and renders an executor failure.
func (h *Handlers) swapErr(c echo.Context, err error) error {
	code, msg := statusFor(err)
	entry := h.logger().WithError(err).WithField("path", c.Path())
	if code >= http.StatusInternalServerError {
		entry.Warn("swap request failed")
	} else {
		entry.Debug("swap request rejected")
	}
	return h.err(c, code, msg, map[string]any{"err": err.Error()})
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// SwapInstructions re-quotes and returns the ordered instruction list.
func (h *Handlers) SwapInstructions(c echo.Context) error {
	body, payer, req, ok, err := h.bindSwap(c)
	if !ok {
		return err
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	q, err := h.Swaps.Quote(ctx, req)
	if err != nil {
		return h.swapErr(c, err)
	}
	ixs, err := h.Swaps.SwapInstructions(ctx, payer, q, body.Config)
	if err != nil {
		return h.swapErr(c, err)
	}

	out := SwapInstructionsResponse{Quote: toQuoteResponse(q), Instructions: make([]InstructionResponse, 0, len(ixs))}
	for _, ix := range ixs {
		ir, err := toInstructionResponse(ix)
		if err != nil {
			return h.swapErr(c, err)
		}
		out.Instructions = append(out.Instructions, ir)
	}
	return c.JSON(http.StatusOK, out)
}

// SwapTransaction re-quotes and returns an unsigned transaction shell.
func (h *Handlers) SwapTransaction(c echo.Context) error {
	body, payer, req, ok, err := h.bindSwap(c)
	if !ok {
		return err
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	q, err := h.Swaps.Quote(ctx, req)
	if err != nil {
		return h.swapErr(c, err)
	}
	tx, err := h.Swaps.SwapTransaction(ctx, payer, q, body.Config)
	if err != nil {
		return h.swapErr(c, err)
	}
	raw, err := tx.MarshalBinary()
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to serialize transaction", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, SwapTransactionResponse{
		Quote:       toQuoteResponse(q),
		Transaction: base64.StdEncoding.EncodeToString(raw),
		Versioned:   tx.Message.IsVersioned(),
	})
}

// GetConfig returns the executor's base config.
func (h *Handlers) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, ConfigResponse{Profile: h.Profile, Config: h.Swaps.Config()})
}

// UpdateConfig replaces the base config and publishes it when a store is set.
func (h *Handlers) UpdateConfig(c echo.Context) error {
	var cfg swap.SwapConfig
	if err := c.Bind(&cfg); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", map[string]any{"err": err.Error()})
	}

	if h.Settings != nil {
		ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if _, err := h.Settings.Save(ctx, h.Profile, cfg); err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to save config", nil)
		}
	}
	h.Swaps.UpdateConfig(cfg)
	return c.JSON(http.StatusOK, ConfigResponse{Profile: h.Profile, Config: h.Swaps.Config()})
}

// ListProfiles returns the stored settings profiles.
func (h *Handlers) ListProfiles(c echo.Context) error {
	if h.Settings == nil {
		return h.err(c, http.StatusServiceUnavailable, "settings store not configured", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	names, err := h.Settings.Profiles(ctx)
	if err != nil {
		h.logger().WithError(err).Warn("list settings profiles failed")
		return h.err(c, http.StatusInternalServerError, "failed to list profiles", nil)
	}
	sort.Strings(names)
	return c.JSON(http.StatusOK, ProfilesResponse{Active: h.Profile, Profiles: names})
}

// DeleteProfile removes a stored profile other than the one this instance follows.
func (h *Handlers) DeleteProfile(c echo.Context) error {
	if h.Settings == nil {
		return h.err(c, http.StatusServiceUnavailable, "settings store not configured", nil)
	}
	profile := c.Param("profile")
	if err := settings.ValidateProfile(profile); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid profile", map[string]any{"err": err.Error()})
	}
	if profile == h.Profile {
		return h.err(c, http.StatusConflict, "profile is in use by this instance", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if err := h.Settings.Delete(ctx, profile); err != nil {
		h.logger().WithError(err).WithField("profile", profile).Warn("delete settings profile failed")
		return h.err(c, http.StatusInternalServerError, "failed to delete profile", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// bindSwap decodes a swap body. When ok is false, err is the already-written response.
func (h *Handlers) bindSwap(c echo.Context) (body SwapRequestBody, payer solana.PublicKey, req swap.SwapRequest, ok bool, err error) {
	if err := c.Bind(&body); err != nil {
		return body, payer, req, false, h.err(c, http.StatusBadRequest, "invalid json", map[string]any{"err": err.Error()})
	}

	req, details := parseSwapRequest(body.InputMint, body.OutputMint, body.Amount,
		strconv.FormatUint(uint64(body.SlippageBps), 10), body.SwapMode, body.PoolID)

	payer, perr := solana.PublicKeyFromBase58(strings.TrimSpace(body.Payer))
	if perr != nil {
		if details == nil {
			details = map[string]any{}
		}
		details["payer"] = "must be a base58 public key"
	}
	if details != nil {
		return body, payer, req, false, h.err(c, http.StatusBadRequest, "invalid swap request", details)
	}
	return body, payer, req, true, nil
}

func toInstructionResponse(ix solana.Instruction) (InstructionResponse, error) {
	data, err := ix.Data()
	if err != nil {
		return InstructionResponse{}, fmt.Errorf("%w: %w", swap.ErrInstructionEncoding, err)
	}
	metas := ix.Accounts()
	accounts := make([]AccountMetaResponse, 0, len(metas))
	for _, m := range metas {
		accounts = append(accounts, AccountMetaResponse{
			Pubkey:     m.PublicKey.String(),
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
		})
	}
	return InstructionResponse{
		ProgramID: ix.ProgramID().String(),
		Accounts:  accounts,
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}
