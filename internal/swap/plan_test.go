package swap

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgram = testKey(40)

func quoteFor(t *testing.T, input, output solana.PublicKey, amount uint64, mode SwapMode) *Quote {
	t.Helper()
	q, err := ComputeQuote(SwapRequest{
		InputMint:   input,
		OutputMint:  output,
		Amount:      amount,
		Mode:        mode,
		SlippageBps: 100,
	}, loadedScenario(t))
	require.NoError(t, err)
	return q
}

func programs(ixs []solana.Instruction) []solana.PublicKey {
	out := make([]solana.PublicKey, len(ixs))
	for i, ix := range ixs {
		out[i] = ix.ProgramID()
	}
	return out
}

func newTestPlanner(sim Simulator) *Planner {
	logger := quietLogger()
	return NewPlanner(NewComputeEstimator(sim, logger), NewFeeCalculator(func(int) int { return 0 }), logger)
}

func TestPlanner_OrderingWithWrapAndTip(t *testing.T) {
	quote := quoteFor(t, testPcMint, testCoinMint, 1_000_000_000, ExactIn)
	cfg := Merge(SwapConfig{ComputeLimit: FixedLimit(300_000), PriorityFee: Tip(5_000)}, nil)

	plan, err := newTestPlanner(nil).Plan(context.Background(), quote, testPayer, cfg)
	require.NoError(t, err)
	ixs, err := plan.Instructions()
	require.NoError(t, err)

	assert.Equal(t, []solana.PublicKey{
		computeBudgetProgram,
		solana.SPLAssociatedTokenAccountProgramID, // input wSOL account
		solana.SystemProgramID,                    // wrap
		solana.TokenProgramID,                     // sync native
		solana.SPLAssociatedTokenAccountProgramID, // output account
		solana.SystemProgramID,                    // tip
		testProgram,                               // swap
		solana.TokenProgramID,                     // close wSOL
	}, programs(ixs))

	wsolATA, _, err := solana.FindAssociatedTokenAddress(testPayer, solana.WrappedSol)
	require.NoError(t, err)

	wrapData, err := ixs[2].Data()
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), binary.LittleEndian.Uint64(wrapData[4:12]))
	assert.Equal(t, wsolATA, ixs[2].Accounts()[1].PublicKey)

	swapAccounts := ixs[6].Accounts()
	require.Len(t, swapAccounts, 18)
	assert.Equal(t, wsolATA, swapAccounts[15].PublicKey)
	assert.Equal(t, wsolATA, ixs[7].Accounts()[0].PublicKey)

	limitData, err := ixs[0].Data()
	require.NoError(t, err)
	want, err := NewComputeLimitIx(300_000).Data()
	require.NoError(t, err)
	assert.Equal(t, want, limitData)
}

func TestPlanner_BudgetPrecedesSetupPrecedesSwap(t *testing.T) {
	configs := []SwapConfig{
		{},
		{PriorityFee: FixedPrice(10)},
		{PriorityFee: TargetMultiplier(3), ComputeLimit: FixedLimit(250_000)},
		{PriorityFee: Tip(1), ComputeLimit: DynamicLimit{}},
		{WrapAndUnwrapSOL: boolPtr(false)},
	}
	quotes := []*Quote{
		quoteFor(t, testPcMint, testCoinMint, 1_000_000, ExactIn),
		quoteFor(t, testCoinMint, testPcMint, 1_000_000, ExactOut),
	}
	sim := &fakeSimulator{result: unitsConsumed(90_000)}

	for _, base := range configs {
		for _, quote := range quotes {
			plan, err := newTestPlanner(sim).Plan(context.Background(), quote, testPayer, Merge(base, nil))
			require.NoError(t, err)
			ixs, err := plan.Instructions()
			require.NoError(t, err)

			rank := func(ix solana.Instruction) int {
				switch {
				case ix.ProgramID().Equals(computeBudgetProgram):
					return 0
				case ix.ProgramID().Equals(testProgram):
					return 2
				default:
					return 1
				}
			}
			swaps := 0
			for i := range ixs {
				if rank(ixs[i]) == 2 {
					swaps++
				}
				if i > 0 && rank(ixs[i-1]) == 2 {
					continue // cleanup follows the swap
				}
				if i > 0 {
					assert.LessOrEqual(t, rank(ixs[i-1]), rank(ixs[i]), "config %+v", base)
				}
			}
			assert.Equal(t, 1, swaps)
		}
	}
}

func TestPlanner_Idempotent(t *testing.T) {
	quote := quoteFor(t, testCoinMint, testPcMint, 5_000_000, ExactIn)
	cfg := Merge(SwapConfig{PriorityFee: TargetMultiplier(2), ComputeLimit: FixedLimit(180_000)}, nil)
	planner := newTestPlanner(nil)

	first, err := planner.Plan(context.Background(), quote, testPayer, cfg)
	require.NoError(t, err)
	second, err := planner.Plan(context.Background(), quote, testPayer, cfg)
	require.NoError(t, err)

	a, err := first.Instructions()
	require.NoError(t, err)
	b, err := second.Instructions()
	require.NoError(t, err)
	require.Len(t, b, len(a))

	for i := range a {
		assert.Equal(t, a[i].ProgramID(), b[i].ProgramID())
		assert.Equal(t, a[i].Accounts(), b[i].Accounts())
		da, err := a[i].Data()
		require.NoError(t, err)
		db, err := b[i].Data()
		require.NoError(t, err)
		assert.Equal(t, da, db)
	}
}

func TestPlanner_OutputWSOLIsClosed(t *testing.T) {
	quote := quoteFor(t, testCoinMint, testPcMint, 1_000_000, ExactIn)

	plan, err := newTestPlanner(nil).Plan(context.Background(), quote, testPayer, Merge(SwapConfig{}, nil))
	require.NoError(t, err)
	ixs, err := plan.Instructions()
	require.NoError(t, err)

	assert.Equal(t, []solana.PublicKey{
		solana.SPLAssociatedTokenAccountProgramID,
		testProgram,
		solana.TokenProgramID,
	}, programs(ixs))

	wsolATA, _, err := solana.FindAssociatedTokenAddress(testPayer, solana.WrappedSol)
	require.NoError(t, err)
	assert.Equal(t, wsolATA, ixs[1].Accounts()[16].PublicKey)
	assert.Equal(t, wsolATA, ixs[2].Accounts()[0].PublicKey)
}

func TestPlanner_WrapDisabled(t *testing.T) {
	quote := quoteFor(t, testPcMint, testCoinMint, 1_000_000, ExactIn)

	plan, err := newTestPlanner(nil).Plan(context.Background(), quote, testPayer, Merge(SwapConfig{WrapAndUnwrapSOL: boolPtr(false)}, nil))
	require.NoError(t, err)
	ixs, err := plan.Instructions()
	require.NoError(t, err)

	// input wSOL account is still ensured, but nothing is wrapped or closed
	assert.Equal(t, []solana.PublicKey{
		solana.SPLAssociatedTokenAccountProgramID,
		solana.SPLAssociatedTokenAccountProgramID,
		testProgram,
	}, programs(ixs))
}

func TestPlanner_DestinationOverride(t *testing.T) {
	quote := quoteFor(t, testPcMint, testCoinMint, 1_000_000, ExactOut)
	dest := testKey(77)

	plan, err := newTestPlanner(nil).Plan(context.Background(), quote, testPayer, Merge(SwapConfig{DestinationAccount: &dest}, nil))
	require.NoError(t, err)
	ixs, err := plan.Instructions()
	require.NoError(t, err)

	assert.Equal(t, []solana.PublicKey{
		solana.SPLAssociatedTokenAccountProgramID,
		solana.SystemProgramID,
		solana.TokenProgramID,
		testProgram,
		solana.TokenProgramID,
	}, programs(ixs))
	assert.Equal(t, dest, ixs[3].Accounts()[16].PublicKey)

	// exact-out wraps the maximum input
	wrapData, err := ixs[1].Data()
	require.NoError(t, err)
	assert.Equal(t, quote.OtherAmountThreshold, binary.LittleEndian.Uint64(wrapData[4:12]))
}

func TestPlanner_DynamicLimit(t *testing.T) {
	quote := quoteFor(t, testCoinMint, testPcMint, 1_000_000, ExactIn)
	cfg := Merge(SwapConfig{ComputeLimit: DynamicLimit{}}, nil)

	t.Run("units reported", func(t *testing.T) {
		sim := &fakeSimulator{result: unitsConsumed(120_000)}
		plan, err := newTestPlanner(sim).Plan(context.Background(), quote, testPayer, cfg)
		require.NoError(t, err)
		ixs, err := plan.Instructions()
		require.NoError(t, err)

		require.Equal(t, computeBudgetProgram, ixs[0].ProgramID())
		got, err := ixs[0].Data()
		require.NoError(t, err)
		want, err := NewComputeLimitIx(170_000).Data()
		require.NoError(t, err)
		assert.Equal(t, want, got)

		require.Len(t, sim.txs, 1)
		draft := sim.txs[0]
		assert.Len(t, draft.Signatures, 1)
		assert.Equal(t, solana.Signature{}, draft.Signatures[0])
		assert.Equal(t, solana.Hash{}, draft.Message.RecentBlockhash)
		assert.Equal(t, testPayer, draft.Message.AccountKeys[0])
	})

	t.Run("no units reported", func(t *testing.T) {
		sim := &fakeSimulator{result: unitsConsumed(0)}
		sim.result.UnitsConsumed = nil
		plan, err := newTestPlanner(sim).Plan(context.Background(), quote, testPayer, cfg)
		require.NoError(t, err)
		ixs, err := plan.Instructions()
		require.NoError(t, err)
		for _, ix := range ixs {
			assert.NotEqual(t, computeBudgetProgram, ix.ProgramID())
		}
		assert.Len(t, sim.txs, 1)
	})

	t.Run("simulation error", func(t *testing.T) {
		sim := &fakeSimulator{err: errors.New("node behind")}
		plan, err := newTestPlanner(sim).Plan(context.Background(), quote, testPayer, cfg)
		require.NoError(t, err)
		ixs, err := plan.Instructions()
		require.NoError(t, err)
		assert.NotEqual(t, computeBudgetProgram, ixs[0].ProgramID())
	})

	t.Run("units leave no room for margin", func(t *testing.T) {
		sim := &fakeSimulator{result: unitsConsumed(1 << 32)}
		plan, err := newTestPlanner(sim).Plan(context.Background(), quote, testPayer, cfg)
		require.NoError(t, err)
		ixs, err := plan.Instructions()
		require.NoError(t, err)
		assert.NotEqual(t, computeBudgetProgram, ixs[0].ProgramID())
	})

	t.Run("target multiplier uses simulated limit", func(t *testing.T) {
		sim := &fakeSimulator{result: unitsConsumed(150_000)}
		withFee := Merge(SwapConfig{ComputeLimit: DynamicLimit{}, PriorityFee: TargetMultiplier(1)}, nil)
		plan, err := newTestPlanner(sim).Plan(context.Background(), quote, testPayer, withFee)
		require.NoError(t, err)
		ixs, err := plan.Instructions()
		require.NoError(t, err)

		got, err := ixs[1].Data()
		require.NoError(t, err)
		want, err := NewComputePriceIx(500_000).Data() // 1e11 / 200_000
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestPlanner_Failures(t *testing.T) {
	quote := quoteFor(t, testCoinMint, testPcMint, 1_000_000, ExactIn)
	planner := newTestPlanner(nil)

	_, err := planner.Plan(context.Background(), quote, solana.PublicKey{}, Merge(SwapConfig{}, nil))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	noMarket := *quote
	noMarket.MarketKeys = nil
	_, err = planner.Plan(context.Background(), &noMarket, testPayer, Merge(SwapConfig{}, nil))
	assert.ErrorIs(t, err, ErrInstructionEncoding)

	_, err = planner.Plan(context.Background(), quote, testPayer, Merge(SwapConfig{ComputeLimit: FixedLimit(1 << 40)}, nil))
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	_, err = planner.Plan(context.Background(), quote, testPayer, Merge(SwapConfig{ComputeLimit: FixedLimit(0), PriorityFee: TargetMultiplier(1)}, nil))
	assert.ErrorIs(t, err, ErrDivideByZero)
}

func TestInstructionPlan_IncompleteWithoutSwap(t *testing.T) {
	plan := NewInstructionPlan()
	plan.AddComputeBudget(NewComputeLimitIx(1))

	_, err := plan.Instructions()
	assert.ErrorIs(t, err, ErrIncompletePlan)

	_, err = Assemble(plan, testPayer, true, nil)
	assert.ErrorIs(t, err, ErrIncompletePlan)
}

func boolPtr(v bool) *bool { return &v }
