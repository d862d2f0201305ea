package cmd

import (
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/aman-zulfiqar/raydium-swap/internal/swapengine"
	"github.com/spf13/cobra"
)

// intentFlags are shared by every command that quotes.
type intentFlags struct {
	in, out, amount, mode, pool string
	ui                          bool
	slippageBps                 uint16
}

func (f *intentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.in, "in", "SOL", "input token symbol or mint")
	cmd.Flags().StringVar(&f.out, "out", "USDC", "output token symbol or mint")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in base units (or UI units with --ui)")
	cmd.Flags().BoolVar(&f.ui, "ui", false, "read --amount in UI units using the mint's decimals")
	cmd.Flags().StringVar(&f.mode, "mode", "ExactIn", "ExactIn or ExactOut")
	cmd.Flags().Uint16Var(&f.slippageBps, "slippage-bps", 50, "slippage tolerance in basis points")
	cmd.Flags().StringVar(&f.pool, "pool", "", "pool id; skips discovery")
	_ = cmd.MarkFlagRequired("amount")
}

func (f *intentFlags) intent() swapengine.Intent {
	return swapengine.Intent{
		Input:       f.in,
		Output:      f.out,
		Amount:      f.amount,
		UIAmount:    f.ui,
		Mode:        f.mode,
		SlippageBps: f.slippageBps,
		Pool:        f.pool,
	}
}

// quoteWith resolves the flags and prices the swap.
func (f *intentFlags) quoteWith(cmd *cobra.Command, engine *swapengine.Engine) (*swap.Quote, error) {
	req, err := swapengine.ResolveIntent(cmd.Context(), engine.API, f.intent())
	if err != nil {
		return nil, err
	}
	return engine.Executor.Quote(cmd.Context(), req)
}

var quoteFlags intentFlags

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote a swap against a fresh pool snapshot",
	Example: `  raydiumswap quote --in SOL --out USDC --amount 0.5 --ui
  raydiumswap quote --in USDC --out SOL --amount 1000000000 --mode ExactOut`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		q, err := quoteFlags.quoteWith(cmd, engine)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd, q)
		}
		printQuote(cmd, q)
		return nil
	},
}

func printQuote(cmd *cobra.Command, q *swap.Quote) {
	w := cmd.OutOrStdout()
	label := "min_out"
	if !q.AmountSpecifiedIsInput {
		label = "max_in"
	}
	fmt.Fprintf(w, "pool=%s direction=%s\n", q.PoolID, q.Direction)
	fmt.Fprintf(w, "amount=%d other_amount=%d %s=%d\n", q.Amount, q.OtherAmount, label, q.OtherAmountThreshold)
	fmt.Fprintf(w, "fee_bps=%d slippage_bps=%d price_impact=%.4f%%\n", q.FeeBps, q.SlippageBps, q.PriceImpact*100)
}

func init() {
	quoteFlags.register(quoteCmd)
	rootCmd.AddCommand(quoteCmd)
}
