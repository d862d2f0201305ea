package swap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Assemble finalizes plan into an unsigned transaction shell paid by payer.
// The blockhash is zero and every signature slot is empty; the caller sets
// a recent blockhash and signs.
//
// The message is legacy unless legacy is false and tables holds the contents
// of at least one lookup table the plan references.
func Assemble(plan *InstructionPlan, payer solana.PublicKey, legacy bool, tables map[solana.PublicKey]solana.PublicKeySlice) (*solana.Transaction, error) {
	if plan == nil {
		return nil, ErrIncompletePlan
	}
	if payer.IsZero() {
		return nil, fmt.Errorf("%w: fee payer is required", ErrInvalidRequest)
	}
	ixs, err := plan.Instructions()
	if err != nil {
		return nil, err
	}

	opts := []solana.TransactionOption{solana.TransactionPayer(payer)}
	if !legacy {
		if resolved := resolveTables(plan.LookupTables(), tables); len(resolved) > 0 {
			opts = append(opts, solana.TransactionAddressTables(resolved))
		}
	}

	tx, err := solana.NewTransaction(ixs, solana.Hash{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstructionEncoding, err)
	}
	tx.Signatures = make([]solana.Signature, tx.Message.Header.NumRequiredSignatures)
	return tx, nil
}

func resolveTables(addresses []solana.PublicKey, contents map[solana.PublicKey]solana.PublicKeySlice) map[solana.PublicKey]solana.PublicKeySlice {
	out := make(map[solana.PublicKey]solana.PublicKeySlice)
	for _, addr := range addresses {
		if keys, ok := contents[addr]; ok && len(keys) > 0 {
			out[addr] = keys
		}
	}
	return out
}
