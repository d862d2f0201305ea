package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aman-zulfiqar/raydium-swap/internal/settings"
	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	coinMint = solana.MustPublicKeyFromBase58("4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R")
	poolID   = solana.MustPublicKeyFromBase58("AVs9TA4nWDzfPJE9gGVNJMVhcQy3V9PGazuz33BfG2RA")
	payerKey = solana.MustPublicKeyFromBase58("5KKsLVU6TcbVDK4BS6K1DGDxnh4Q9xjYJ8XaDCG5t8ht")
)

type fakeSwaps struct {
	quoteErr  error
	buildErr  error
	lastReq   swap.SwapRequest
	overrides *swap.SwapConfig
	cfg       swap.SwapConfig
}

func (f *fakeSwaps) Quote(_ context.Context, req swap.SwapRequest) (*swap.Quote, error) {
	f.lastReq = req
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return &swap.Quote{
		PoolID:                 poolID,
		InputMint:              req.InputMint,
		OutputMint:             req.OutputMint,
		Amount:                 req.Amount,
		OtherAmount:            49_825_299,
		OtherAmountThreshold:   44_842_769,
		AmountSpecifiedIsInput: req.Mode != swap.ExactOut,
		SlippageBps:            req.SlippageBps,
		FeeBps:                 25,
	}, nil
}

func (f *fakeSwaps) instructions(payer solana.PublicKey) []solana.Instruction {
	return []solana.Instruction{
		system.NewTransferInstruction(1_000, payer, poolID).Build(),
	}
}

func (f *fakeSwaps) SwapInstructions(_ context.Context, payer solana.PublicKey, _ *swap.Quote, o *swap.SwapConfig) ([]solana.Instruction, error) {
	f.overrides = o
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.instructions(payer), nil
}

func (f *fakeSwaps) SwapTransaction(_ context.Context, payer solana.PublicKey, _ *swap.Quote, o *swap.SwapConfig) (*solana.Transaction, error) {
	f.overrides = o
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return solana.NewTransaction(f.instructions(payer), solana.Hash{}, solana.TransactionPayer(payer))
}

func (f *fakeSwaps) Config() swap.SwapConfig         { return f.cfg }
func (f *fakeSwaps) UpdateConfig(cfg swap.SwapConfig) { f.cfg = cfg }

type fakeStore struct {
	saved    []swap.SwapConfig
	profiles []string
	deleted  []string
	err      error
}

func (s *fakeStore) Save(_ context.Context, profile string, cfg swap.SwapConfig) (*settings.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.saved = append(s.saved, cfg)
	return &settings.Record{Profile: profile, Config: cfg}, nil
}

func (s *fakeStore) Profiles(context.Context) ([]string, error) {
	return s.profiles, s.err
}

func (s *fakeStore) Delete(_ context.Context, profile string) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, profile)
	return nil
}

func newTestServer(t *testing.T, swaps *fakeSwaps, store ConfigStore, apiKey string) http.Handler {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := &Handlers{Swaps: swaps, Profile: settings.DefaultProfile, DevMode: true, Logger: logger}
	if store != nil {
		h.Settings = store
	}
	srv, err := NewServer(ServerDeps{Handlers: h, Config: ServerConfig{APIKey: apiKey, SwapRateLimit: 100}})
	require.NoError(t, err)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func quotePath(extra string) string {
	return fmt.Sprintf("/v1/quote?inputMint=%s&outputMint=%s&amount=1000000000&slippageBps=1000%s", coinMint, solana.WrappedSol, extra)
}

func TestHealth(t *testing.T) {
	rec, body := do(t, newTestServer(t, &fakeSwaps{}, nil, ""), http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestQuote(t *testing.T) {
	swaps := &fakeSwaps{}
	rec, body := do(t, newTestServer(t, swaps, nil, ""), http.MethodGet, quotePath("&poolId="+poolID.String()), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "49825299", body["otherAmount"])
	assert.Equal(t, "44842769", body["otherAmountThreshold"])
	assert.Equal(t, "1000000000", body["inAmount"])
	assert.Equal(t, "ExactIn", body["swapMode"])
	assert.Equal(t, poolID.String(), body["poolId"])

	assert.Equal(t, uint16(1000), swaps.lastReq.SlippageBps)
	require.NotNil(t, swaps.lastReq.Pool)
	assert.Equal(t, poolID, *swaps.lastReq.Pool)
}

func TestQuote_ExactOutSwapsInAndOut(t *testing.T) {
	rec, body := do(t, newTestServer(t, &fakeSwaps{}, nil, ""), http.MethodGet, quotePath("&swapMode=exactout"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ExactOut", body["swapMode"])
	assert.Equal(t, "1000000000", body["outAmount"])
	assert.Equal(t, "49825299", body["inAmount"])
}

func TestQuote_BadParams(t *testing.T) {
	swaps := &fakeSwaps{}
	h := newTestServer(t, swaps, nil, "")

	rec, body := do(t, h, http.MethodGet, "/v1/quote?inputMint=nope&amount=-1&swapMode=sideways&slippageBps=70000", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"inputMint", "outputMint", "amount", "swapMode", "slippageBps"} {
		assert.Contains(t, details, field)
	}
	assert.Zero(t, swaps.lastReq.Amount)
}

func TestQuote_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: same mint", swap.ErrInvalidRequest), http.StatusBadRequest},
		{swap.ErrPoolNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: output", swap.ErrArithmeticOverflow), http.StatusUnprocessableEntity},
		{swap.ErrDivideByZero, http.StatusUnprocessableEntity},
		{swap.ErrInstructionEncoding, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: pool is disabled", swap.ErrSwapDisabled), http.StatusUnprocessableEntity},
		{swap.ErrMalformedAccountData, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec, body := do(t, newTestServer(t, &fakeSwaps{quoteErr: tc.err}, nil, ""), http.MethodGet, quotePath(""), "", nil)
			assert.Equal(t, tc.code, rec.Code)
			assert.EqualValues(t, tc.code, body["code"])
		})
	}
}

func swapBody(extra string) string {
	return fmt.Sprintf(`{"payer":%q,"inputMint":%q,"outputMint":%q,"amount":"2000000","slippageBps":50%s}`,
		payerKey, solana.WrappedSol, coinMint, extra)
}

func TestSwapInstructions(t *testing.T) {
	swaps := &fakeSwaps{}
	rec, body := do(t, newTestServer(t, swaps, nil, ""), http.MethodPost, "/v1/swap/instructions",
		swapBody(`,"config":{"priority_fee":"tip:5000","wrap_and_unwrap_sol":false}`), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ixs, ok := body["instructions"].([]any)
	require.True(t, ok)
	require.Len(t, ixs, 1)
	ix := ixs[0].(map[string]any)
	assert.Equal(t, solana.SystemProgramID.String(), ix["programId"])
	data, err := base64.StdEncoding.DecodeString(ix["data"].(string))
	require.NoError(t, err)
	assert.Len(t, data, 12)
	accounts := ix["accounts"].([]any)
	assert.Equal(t, payerKey.String(), accounts[0].(map[string]any)["pubkey"])
	assert.Equal(t, true, accounts[0].(map[string]any)["isSigner"])

	require.NotNil(t, swaps.overrides)
	assert.Equal(t, swap.Tip(5000), swaps.overrides.PriorityFee)
	require.NotNil(t, swaps.overrides.WrapAndUnwrapSOL)
	assert.False(t, *swaps.overrides.WrapAndUnwrapSOL)
}

func TestSwapInstructions_Validation(t *testing.T) {
	h := newTestServer(t, &fakeSwaps{}, nil, "")

	rec, body := do(t, h, http.MethodPost, "/v1/swap/instructions", `{"inputMint":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "payer")
	assert.Contains(t, details, "amount")

	rec, _ = do(t, h, http.MethodPost, "/v1/swap/instructions", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/v1/swap/instructions", swapBody(`,"config":{"priority_fee":"bogus"}`), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSwapInstructions_BuildError(t *testing.T) {
	rec, _ := do(t, newTestServer(t, &fakeSwaps{buildErr: swap.ErrIncompletePlan}, nil, ""),
		http.MethodPost, "/v1/swap/instructions", swapBody(""), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSwapTransaction(t *testing.T) {
	rec, body := do(t, newTestServer(t, &fakeSwaps{}, nil, ""), http.MethodPost, "/v1/swap/transaction", swapBody(""), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, body["versioned"])

	raw, err := base64.StdEncoding.DecodeString(body["transaction"].(string))
	require.NoError(t, err)
	tx, err := solana.TransactionFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, payerKey, tx.Message.AccountKeys[0])
	assert.Len(t, tx.Message.Instructions, 1)
}

func TestConfigEndpoints(t *testing.T) {
	swaps := &fakeSwaps{cfg: swap.SwapConfig{PriorityFee: swap.FixedPrice(1)}}
	store := &fakeStore{}
	h := newTestServer(t, swaps, store, "")

	rec, body := do(t, h, http.MethodGet, "/v1/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "price:1", body["config"].(map[string]any)["priority_fee"])

	rec, body = do(t, h, http.MethodPut, "/v1/config", `{"priority_fee":"multiplier:3","compute_limit":"dynamic"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "multiplier:3", body["config"].(map[string]any)["priority_fee"])
	assert.Equal(t, swap.TargetMultiplier(3), swaps.cfg.PriorityFee)
	assert.Equal(t, swap.DynamicLimit{}, swaps.cfg.ComputeLimit)
	require.Len(t, store.saved, 1)

	store.err = errors.New("redis down")
	rec, _ = do(t, h, http.MethodPut, "/v1/config", `{"priority_fee":"price:9"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, swap.TargetMultiplier(3), swaps.cfg.PriorityFee)
}

func TestConfigProfiles(t *testing.T) {
	store := &fakeStore{profiles: []string{"bot-2", settings.DefaultProfile, "bot-1"}}
	h := newTestServer(t, &fakeSwaps{}, store, "")

	rec, body := do(t, h, http.MethodGet, "/v1/config/profiles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, settings.DefaultProfile, body["active"])
	assert.Equal(t, []any{"bot-1", "bot-2", settings.DefaultProfile}, body["profiles"])

	rec, _ = do(t, h, http.MethodDelete, "/v1/config/profiles/bot-1", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"bot-1"}, store.deleted)

	rec, _ = do(t, h, http.MethodDelete, "/v1/config/profiles/"+settings.DefaultProfile, "", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, h, http.MethodDelete, "/v1/config/profiles/bad:name", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"bot-1"}, store.deleted)

	store.err = errors.New("redis down")
	rec, _ = do(t, h, http.MethodDelete, "/v1/config/profiles/bot-2", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/v1/config/profiles", "", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConfigProfiles_NoStore(t *testing.T) {
	h := newTestServer(t, &fakeSwaps{}, nil, "")

	rec, _ := do(t, h, http.MethodGet, "/v1/config/profiles", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec, _ = do(t, h, http.MethodDelete, "/v1/config/profiles/bot-1", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPIKeyAndMetrics(t *testing.T) {
	h := newTestServer(t, &fakeSwaps{}, nil, "secret")

	rec, _ := do(t, h, http.MethodGet, "/v1/health", "", nil)
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusUnauthorized}, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/v1/health", "", map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/v1/health", "", map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, h, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNotFound(t *testing.T) {
	rec, body := do(t, newTestServer(t, &fakeSwaps{}, nil, ""), http.MethodGet, "/v2/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", body["error"])
}
