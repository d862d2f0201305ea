package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/metrics"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// ExecutorConfig wires the executor's collaborators.
type ExecutorConfig struct {
	Accounts  AccountFetcher
	Simulator Simulator
	Finder    PoolFinder      // nil requires SwapRequest.Pool
	Markets   MarketKeySource // used when MarketKeysByAPI is on

	ProgramID solana.PublicKey
	// MarketKeysByAPI reads market keys from Markets instead of the market
	// account. Defaults to true.
	MarketKeysByAPI *bool

	// Base is the starting config; UpdateConfig replaces it.
	Base SwapConfig
	// LookupTables holds known lookup table contents for versioned transactions.
	LookupTables map[solana.PublicKey]solana.PublicKeySlice
	// PickTip chooses a tip account index; nil is uniform random.
	PickTip func(n int) int

	Logger *logrus.Logger
}

// Executor runs the quote and build pipeline. Requests share no mutable state
// apart from the base config.
type Executor struct {
	finder  PoolFinder
	loader  *SnapshotLoader
	planner *Planner
	tables  map[solana.PublicKey]solana.PublicKeySlice
	logger  *logrus.Logger

	mu   sync.RWMutex
	base SwapConfig
}

func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Accounts == nil {
		return nil, fmt.Errorf("account fetcher is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = constants.RaydiumAMMV4ProgramID
	}

	byAPI := cfg.MarketKeysByAPI == nil || *cfg.MarketKeysByAPI
	var markets MarketKeySource
	if byAPI {
		markets = cfg.Markets
	}

	return &Executor{
		finder:  cfg.Finder,
		loader:  NewSnapshotLoader(cfg.Accounts, markets, cfg.ProgramID, cfg.Logger),
		planner: NewPlanner(NewComputeEstimator(cfg.Simulator, cfg.Logger), NewFeeCalculator(cfg.PickTip), cfg.Logger),
		tables:  cfg.LookupTables,
		logger:  cfg.Logger,
		base:    cfg.Base,
	}, nil
}

// Config returns the current base config.
func (e *Executor) Config() SwapConfig {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.base
}

// UpdateConfig replaces the base config used by later builds.
func (e *Executor) UpdateConfig(cfg SwapConfig) {
	e.mu.Lock()
	e.base = cfg
	e.mu.Unlock()

	e.logger.WithFields(logrus.Fields{
		"priority_fee":  intentString(cfg.PriorityFee),
		"compute_limit": intentString(cfg.ComputeLimit),
	}).Info("swap config updated")
}

// Quote resolves the pool, reads a fresh snapshot and prices req.
// Invalid requests fail before any network call.
func (e *Executor) Quote(ctx context.Context, req SwapRequest) (*Quote, error) {
	start := time.Now()
	mode := req.Mode
	if mode == "" {
		mode = ExactIn
	}

	quote, err := e.quote(ctx, req)
	metrics.QuoteDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	metrics.QuotesTotal.WithLabelValues(string(mode), resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}

	e.logger.WithFields(logrus.Fields{
		"pool":         quote.PoolID.String(),
		"direction":    quote.Direction.String(),
		"amount":       quote.Amount,
		"other_amount": quote.OtherAmount,
		"threshold":    quote.OtherAmountThreshold,
		"price_impact": quote.PriceImpact,
	}).Debug("computed quote")

	return quote, nil
}

func (e *Executor) quote(ctx context.Context, req SwapRequest) (*Quote, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pool, err := e.resolvePool(ctx, req)
	if err != nil {
		return nil, err
	}

	loaded, err := e.loader.Load(ctx, pool)
	if err != nil {
		return nil, err
	}
	return ComputeQuote(req, loaded)
}

func (e *Executor) resolvePool(ctx context.Context, req SwapRequest) (solana.PublicKey, error) {
	if req.Pool != nil {
		return *req.Pool, nil
	}
	if e.finder == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: no pool given and discovery is disabled", ErrPoolNotFound)
	}

	pool, err := e.finder.FindPool(ctx, req.InputMint, req.OutputMint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("find pool for %s/%s: %w", req.InputMint, req.OutputMint, err)
	}
	if pool == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s/%s", ErrPoolNotFound, req.InputMint, req.OutputMint)
	}
	return *pool, nil
}

// SwapInstructions builds the ordered instructions for quote.
func (e *Executor) SwapInstructions(ctx context.Context, payer solana.PublicKey, quote *Quote, overrides *SwapConfig) ([]solana.Instruction, error) {
	plan, _, err := e.build(ctx, payer, quote, overrides)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("instructions", resultLabel(err)).Inc()
		return nil, err
	}
	ixs, err := plan.Instructions()
	metrics.PlansTotal.WithLabelValues("instructions", resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	metrics.PlanInstructions.Observe(float64(len(ixs)))
	return ixs, nil
}

// SwapTransaction builds an unsigned transaction shell for quote.
func (e *Executor) SwapTransaction(ctx context.Context, payer solana.PublicKey, quote *Quote, overrides *SwapConfig) (*solana.Transaction, error) {
	plan, cfg, err := e.build(ctx, payer, quote, overrides)
	if err != nil {
		metrics.PlansTotal.WithLabelValues("transaction", resultLabel(err)).Inc()
		return nil, err
	}
	tx, err := Assemble(plan, payer, cfg.AsLegacyTransaction, e.tables)
	metrics.PlansTotal.WithLabelValues("transaction", resultLabel(err)).Inc()
	if err != nil {
		return nil, err
	}
	metrics.PlanInstructions.Observe(float64(len(tx.Message.Instructions)))
	return tx, nil
}

func (e *Executor) build(ctx context.Context, payer solana.PublicKey, quote *Quote, overrides *SwapConfig) (*InstructionPlan, ResolvedConfig, error) {
	cfg := Merge(e.Config(), overrides)
	plan, err := e.planner.Plan(ctx, quote, payer, cfg)
	if err != nil {
		return nil, cfg, err
	}
	if !cfg.AsLegacyTransaction {
		for addr := range e.tables {
			plan.AddLookupTables(addr)
		}
	}
	return plan, cfg, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrPoolNotFound):
		return "pool_not_found"
	case errors.Is(err, ErrMalformedAccountData):
		return "malformed_account"
	case errors.Is(err, ErrArithmeticOverflow), errors.Is(err, ErrDivideByZero):
		return "arithmetic"
	case errors.Is(err, ErrInstructionEncoding), errors.Is(err, ErrIncompletePlan):
		return "encoding"
	default:
		return "error"
	}
}

func intentString(v fmt.Stringer) string {
	if v == nil {
		return "none"
	}
	return v.String()
}
