package wallet

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Wallet holds the fee payer's key. It never submits transactions.
type Wallet struct {
	priv solana.PrivateKey
	pub  solana.PublicKey
}

// NewWallet parses a base58-encoded 64-byte key or a solana-keygen JSON array.
func NewWallet(privateKey string) (*Wallet, error) {
	if strings.TrimSpace(privateKey) == "" {
		return nil, fmt.Errorf("wallet: private key is required")
	}

	priv, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	return &Wallet{priv: priv, pub: priv.PublicKey()}, nil
}

func (w *Wallet) Address() string             { return w.pub.String() }
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

func parsePrivateKey(s string) (solana.PrivateKey, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		raw, err := base58.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("wallet: invalid base58 private key: %w", err)
		}
		return keypairFromBytes(raw)
	}

	// solana-keygen file contents
	var ints []int
	if err := sonic.UnmarshalString(s, &ints); err != nil {
		return nil, fmt.Errorf("wallet: invalid JSON private key: %w", err)
	}
	raw := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("wallet: invalid byte at %d: %d", i, v)
		}
		raw[i] = byte(v)
	}
	return keypairFromBytes(raw)
}

// keypairFromBytes accepts seed||public and rejects pairs whose halves disagree.
func keypairFromBytes(raw []byte) (solana.PrivateKey, error) {
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet: expected %d bytes, got %d", ed25519.PrivateKeySize, len(raw))
	}
	derived := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("wallet: public key does not match seed")
	}
	return solana.PrivateKey(derived), nil
}
