package swap

import (
	"context"
	"fmt"
	"math"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/metrics"
	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/sirupsen/logrus"
)

// ComputeEstimator decides the compute unit limit for a plan.
type ComputeEstimator struct {
	sim    Simulator
	logger *logrus.Logger
}

func NewComputeEstimator(sim Simulator, logger *logrus.Logger) *ComputeEstimator {
	if logger == nil {
		logger = logrus.New()
	}
	return &ComputeEstimator{sim: sim, logger: logger}
}

// Estimate returns the limit to set, or nil when no limit instruction should
// be emitted. A dynamic estimate that cannot be obtained is not an error.
// plan must already hold its swap instruction.
func (e *ComputeEstimator) Estimate(ctx context.Context, plan *InstructionPlan, payer solana.PublicKey, intent ComputeLimit) (*uint32, error) {
	switch l := intent.(type) {
	case nil:
		return nil, nil
	case FixedLimit:
		if uint64(l) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: compute limit %d exceeds u32", ErrArithmeticOverflow, uint64(l))
		}
		limit := uint32(l)
		return &limit, nil
	case DynamicLimit:
		return e.simulate(ctx, plan, payer)
	default:
		return nil, fmt.Errorf("%w: unsupported compute limit %T", ErrInvalidRequest, intent)
	}
}

func (e *ComputeEstimator) simulate(ctx context.Context, plan *InstructionPlan, payer solana.PublicKey) (*uint32, error) {
	ixs, err := plan.Instructions()
	if err != nil {
		return nil, err
	}
	if e.sim == nil {
		e.degraded("no simulator configured", nil)
		return nil, nil
	}

	tx, err := newDraftTransaction(ixs, payer)
	if err != nil {
		return nil, err
	}

	result, err := e.sim.SimulateTransaction(ctx, tx)
	if err != nil {
		e.degraded("simulation failed", err)
		return nil, nil
	}
	if result == nil || result.UnitsConsumed == nil {
		e.degraded("simulation reported no units consumed", nil)
		return nil, nil
	}

	units := *result.UnitsConsumed
	if units > uint64(math.MaxUint32-constants.SimulationComputeMargin) {
		e.degraded(fmt.Sprintf("units consumed %d leave no room for margin", units), nil)
		return nil, nil
	}
	limit := uint32(units) + constants.SimulationComputeMargin

	fields := logrus.Fields{"units_consumed": units, "cu_limit": limit}
	if result.Err != nil {
		// the draft may fail for reasons that do not affect sizing, e.g. an unfunded payer
		fields["sim_err"] = fmt.Sprintf("%v", result.Err)
	}
	e.logger.WithFields(fields).Debug("estimated compute units")
	metrics.SimulationsTotal.WithLabelValues("ok").Inc()
	metrics.ComputeUnitLimit.Observe(float64(limit))

	return &limit, nil
}

func (e *ComputeEstimator) degraded(reason string, err error) {
	entry := e.logger.WithField("reason", reason)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warnf("%v, continuing without compute limit", ErrSimulationUnavailable)
	metrics.SimulationsTotal.WithLabelValues("unavailable").Inc()
}

// newDraftTransaction builds an unsigned legacy transaction with zeroed
// signature slots and a zero blockhash for the simulator to replace.
func newDraftTransaction(ixs []solana.Instruction, payer solana.PublicKey) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(ixs, solana.Hash{}, solana.TransactionPayer(payer))
	if err != nil {
		return nil, fmt.Errorf("failed to build draft transaction: %w", err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}

func NewComputeLimitIx(units uint32) solana.Instruction {
	return computebudget.NewSetComputeUnitLimitInstruction(units).Build()
}

func NewComputePriceIx(microLamports uint64) solana.Instruction {
	return computebudget.NewSetComputeUnitPriceInstruction(microLamports).Build()
}
