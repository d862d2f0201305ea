package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// BlockhashSource supplies a recent blockhash for signing.
type BlockhashSource interface {
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// SignTx signs a transaction with the wallet's private key. Any placeholder
// signatures are replaced.
func (w *Wallet) SignTx(tx *solana.Transaction) error {
	tx.Signatures = nil
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}

// SignWithBlockhash fills in a recent blockhash and signs tx.
func (w *Wallet) SignWithBlockhash(ctx context.Context, src BlockhashSource, tx *solana.Transaction) error {
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(w.pub) {
		return fmt.Errorf("wallet %s is not the fee payer", w.pub)
	}

	hash, err := src.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("failed to get blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = hash

	return w.SignTx(tx)
}
