package cmd

import (
	"encoding/base64"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/aman-zulfiqar/raydium-swap/internal/swapengine"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// buildFlags add the payer and per-swap overrides to intentFlags.
type buildFlags struct {
	intentFlags
	payer        string
	priorityFee  string
	computeLimit string
	noWrap       bool
	destination  string
	versioned    bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	f.intentFlags.register(cmd)
	cmd.Flags().StringVar(&f.payer, "payer", "", "fee payer and swap owner (defaults to WALLET_PRIVATE_KEY's address)")
	cmd.Flags().StringVar(&f.priorityFee, "priority-fee", "", "override: price:<micro-lamports>, multiplier:<n> or tip:<lamports>")
	cmd.Flags().StringVar(&f.computeLimit, "compute-limit", "", "override: dynamic or a unit count")
	cmd.Flags().BoolVar(&f.noWrap, "no-wrap", false, "do not wrap or unwrap native SOL")
	cmd.Flags().StringVar(&f.destination, "destination", "", "token account credited by the swap")
	cmd.Flags().BoolVar(&f.versioned, "versioned", false, "build a v0 transaction using LOOKUP_TABLES")
}

// overrides turns the flags the user actually set into a SwapConfig.
func (f *buildFlags) overrides(cmd *cobra.Command) (*swap.SwapConfig, error) {
	var o swap.SwapConfig
	flags := cmd.Flags()

	if flags.Changed("priority-fee") {
		fee, err := swap.ParsePriorityFee(f.priorityFee)
		if err != nil {
			return nil, err
		}
		o.PriorityFee = fee
	}
	if flags.Changed("compute-limit") {
		limit, err := swap.ParseComputeLimit(f.computeLimit)
		if err != nil {
			return nil, err
		}
		o.ComputeLimit = limit
	}
	if flags.Changed("no-wrap") {
		wrap := !f.noWrap
		o.WrapAndUnwrapSOL = &wrap
	}
	if f.destination != "" {
		dest, err := solana.PublicKeyFromBase58(f.destination)
		if err != nil {
			return nil, fmt.Errorf("invalid --destination: %w", err)
		}
		o.DestinationAccount = &dest
	}
	if flags.Changed("versioned") {
		legacy := !f.versioned
		o.AsLegacyTransaction = &legacy
	}
	return &o, nil
}

func (f *buildFlags) payerKey(engine *swapengine.Engine) (solana.PublicKey, error) {
	if f.payer != "" {
		return solana.PublicKeyFromBase58(f.payer)
	}
	if engine.Wallet != nil {
		return engine.Wallet.PublicKey(), nil
	}
	return solana.PublicKey{}, fmt.Errorf("--payer is required when WALLET_PRIVATE_KEY is not set")
}

var instructionsFlags buildFlags

var instructionsCmd = &cobra.Command{
	Use:   "instructions",
	Short: "Print the ordered instructions for a swap",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		payer, err := instructionsFlags.payerKey(engine)
		if err != nil {
			return err
		}
		overrides, err := instructionsFlags.overrides(cmd)
		if err != nil {
			return err
		}
		q, err := instructionsFlags.quoteWith(cmd, engine)
		if err != nil {
			return err
		}
		ixs, err := engine.Executor.SwapInstructions(cmd.Context(), payer, q, overrides)
		if err != nil {
			return err
		}

		type ixOut struct {
			Program  string   `json:"program_id"`
			Accounts []string `json:"accounts"`
			Data     string   `json:"data"`
		}
		out := make([]ixOut, 0, len(ixs))
		for _, ix := range ixs {
			data, err := ix.Data()
			if err != nil {
				return err
			}
			o := ixOut{Program: ix.ProgramID().String(), Data: base64.StdEncoding.EncodeToString(data)}
			for _, m := range ix.Accounts() {
				flags := ""
				if m.IsSigner {
					flags += "s"
				}
				if m.IsWritable {
					flags += "w"
				}
				o.Accounts = append(o.Accounts, fmt.Sprintf("%s [%s]", m.PublicKey, flags))
			}
			out = append(out, o)
		}

		if jsonOut {
			return printJSON(cmd, map[string]any{"quote": q, "instructions": out})
		}
		printQuote(cmd, q)
		w := cmd.OutOrStdout()
		for i, o := range out {
			fmt.Fprintf(w, "#%d %s (%d accounts) data=%s\n", i, o.Program, len(o.Accounts), o.Data)
		}
		return nil
	},
}

var transactionFlags buildFlags
var signTx bool

var transactionCmd = &cobra.Command{
	Use:   "transaction",
	Short: "Print a base64 swap transaction",
	Long: `Builds the swap transaction. Without --sign it is unsigned with a zero
blockhash. With --sign the wallet fetches a recent blockhash and signs. The
transaction is printed, never sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		defer engine.Close()

		payer, err := transactionFlags.payerKey(engine)
		if err != nil {
			return err
		}
		if signTx && engine.Wallet == nil {
			return fmt.Errorf("--sign needs WALLET_PRIVATE_KEY")
		}
		overrides, err := transactionFlags.overrides(cmd)
		if err != nil {
			return err
		}
		q, err := transactionFlags.quoteWith(cmd, engine)
		if err != nil {
			return err
		}
		tx, err := engine.Executor.SwapTransaction(cmd.Context(), payer, q, overrides)
		if err != nil {
			return err
		}
		if signTx {
			if err := engine.Wallet.SignWithBlockhash(cmd.Context(), engine.RPC, tx); err != nil {
				return err
			}
		}

		raw, err := tx.MarshalBinary()
		if err != nil {
			return fmt.Errorf("serialize transaction: %w", err)
		}
		encoded := base64.StdEncoding.EncodeToString(raw)

		if jsonOut {
			return printJSON(cmd, map[string]any{
				"quote":       q,
				"transaction": encoded,
				"versioned":   tx.Message.IsVersioned(),
				"signed":      signTx,
			})
		}
		printQuote(cmd, q)
		fmt.Fprintln(cmd.OutOrStdout(), encoded)
		return nil
	},
}

func init() {
	instructionsFlags.register(instructionsCmd)
	transactionFlags.register(transactionCmd)
	transactionCmd.Flags().BoolVar(&signTx, "sign", false, "sign with WALLET_PRIVATE_KEY")

	rootCmd.AddCommand(instructionsCmd)
	rootCmd.AddCommand(transactionCmd)
}
