package swap

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// InstructionPlan accumulates a swap's instructions by role. It is owned by a
// single build and finalized once.
type InstructionPlan struct {
	computeBudget []solana.Instruction
	setup         []solana.Instruction
	swap          solana.Instruction
	cleanup       solana.Instruction
	lookupTables  []solana.PublicKey
}

func NewInstructionPlan() *InstructionPlan {
	return &InstructionPlan{}
}

func (p *InstructionPlan) AddComputeBudget(ixs ...solana.Instruction) {
	p.computeBudget = append(p.computeBudget, ixs...)
}

func (p *InstructionPlan) AddSetup(ixs ...solana.Instruction) {
	p.setup = append(p.setup, ixs...)
}

func (p *InstructionPlan) SetSwap(ix solana.Instruction) { p.swap = ix }

// SetCleanup records the single closing instruction; a later call replaces it.
func (p *InstructionPlan) SetCleanup(ix solana.Instruction) { p.cleanup = ix }

func (p *InstructionPlan) AddLookupTables(tables ...solana.PublicKey) {
	p.lookupTables = append(p.lookupTables, tables...)
}

func (p *InstructionPlan) LookupTables() []solana.PublicKey { return p.lookupTables }

// Instructions returns compute budget, setup, swap and cleanup in that order.
func (p *InstructionPlan) Instructions() ([]solana.Instruction, error) {
	if p.swap == nil {
		return nil, ErrIncompletePlan
	}
	out := make([]solana.Instruction, 0, len(p.computeBudget)+len(p.setup)+2)
	out = append(out, p.computeBudget...)
	out = append(out, p.setup...)
	out = append(out, p.swap)
	if p.cleanup != nil {
		out = append(out, p.cleanup)
	}
	return out, nil
}

// Planner turns a Quote into an InstructionPlan.
type Planner struct {
	estimator *ComputeEstimator
	fees      *FeeCalculator
	logger    *logrus.Logger
}

func NewPlanner(estimator *ComputeEstimator, fees *FeeCalculator, logger *logrus.Logger) *Planner {
	if logger == nil {
		logger = logrus.New()
	}
	if estimator == nil {
		estimator = NewComputeEstimator(nil, logger)
	}
	if fees == nil {
		fees = NewFeeCalculator(nil)
	}
	return &Planner{estimator: estimator, fees: fees, logger: logger}
}

// Plan builds the full instruction plan for quote paid by payer.
func (b *Planner) Plan(ctx context.Context, quote *Quote, payer solana.PublicKey, cfg ResolvedConfig) (*InstructionPlan, error) {
	if quote == nil {
		return nil, fmt.Errorf("%w: quote is nil", ErrInvalidRequest)
	}
	if payer.IsZero() {
		return nil, fmt.Errorf("%w: fee payer is required", ErrInvalidRequest)
	}

	plan := NewInstructionPlan()

	source, destination, err := b.tokenAccounts(plan, quote, payer, cfg)
	if err != nil {
		return nil, err
	}

	swapIx, err := raydium.BuildSwapInstruction(
		quote.AmmKeys,
		quote.MarketKeys,
		raydium.SwapAccounts{Source: source, Destination: destination, Owner: payer},
		quote.Amount,
		quote.OtherAmountThreshold,
		quote.AmountSpecifiedIsInput,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstructionEncoding, err)
	}
	plan.SetSwap(swapIx)

	limit, err := b.estimator.Estimate(ctx, plan, payer, cfg.ComputeLimit)
	if err != nil {
		return nil, err
	}
	if limit != nil {
		plan.AddComputeBudget(NewComputeLimitIx(*limit))
	}

	budget, setup, err := b.fees.Instructions(cfg.PriorityFee, limit, payer)
	if err != nil {
		return nil, err
	}
	plan.AddComputeBudget(budget...)
	plan.AddSetup(setup...)

	fields := logrus.Fields{
		"pool":     quote.PoolID.String(),
		"setup":    len(plan.setup),
		"budget":   len(plan.computeBudget),
		"cleanup":  plan.cleanup != nil,
		"wrap_sol": cfg.WrapAndUnwrapSOL,
	}
	if limit != nil {
		fields["cu_limit"] = *limit
	}
	b.logger.WithFields(fields).Debug("built instruction plan")

	return plan, nil
}

// tokenAccounts adds account creation and SOL wrapping to plan and returns
// the swap's source and destination accounts.
func (b *Planner) tokenAccounts(plan *InstructionPlan, quote *Quote, payer solana.PublicKey, cfg ResolvedConfig) (solana.PublicKey, solana.PublicKey, error) {
	var source, destination solana.PublicKey

	if quote.InputMint.Equals(solana.WrappedSol) {
		createIx, ata, err := NewCreateIdempotentATAIx(payer, payer, quote.InputMint)
		if err != nil {
			return source, destination, err
		}
		plan.AddSetup(createIx)
		source = ata

		if cfg.WrapAndUnwrapSOL {
			plan.AddSetup(NewWrapSOLIxs(payer, ata, quote.InputAmount())...)
			plan.SetCleanup(NewCloseAccountIx(ata, payer))
		}
	} else {
		ata, _, err := solana.FindAssociatedTokenAddress(payer, quote.InputMint)
		if err != nil {
			return source, destination, fmt.Errorf("derive input token account: %w", err)
		}
		source = ata
	}

	if cfg.DestinationAccount != nil {
		// assumed to exist already
		return source, *cfg.DestinationAccount, nil
	}

	createIx, ata, err := NewCreateIdempotentATAIx(payer, payer, quote.OutputMint)
	if err != nil {
		return source, destination, err
	}
	plan.AddSetup(createIx)
	destination = ata

	if cfg.WrapAndUnwrapSOL && quote.OutputMint.Equals(solana.WrappedSol) {
		plan.SetCleanup(NewCloseAccountIx(ata, payer))
	}
	return source, destination, nil
}
