package raydium

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var ErrMissingMarketKeys = errors.New("market keys unavailable")

var ammAuthoritySeed = []byte("amm authority")

// AmmKeys are the pool-side accounts a swap touches.
type AmmKeys struct {
	Pool          solana.PublicKey `json:"pool"`
	ProgramID     solana.PublicKey `json:"program_id"`
	CoinMint      solana.PublicKey `json:"coin_mint"`
	PcMint        solana.PublicKey `json:"pc_mint"`
	LpMint        solana.PublicKey `json:"lp_mint"`
	Authority     solana.PublicKey `json:"authority"`
	OpenOrders    solana.PublicKey `json:"open_orders"`
	TargetOrders  solana.PublicKey `json:"target_orders"`
	CoinVault     solana.PublicKey `json:"coin_vault"`
	PcVault       solana.PublicKey `json:"pc_vault"`
	Market        solana.PublicKey `json:"market"`
	MarketProgram solana.PublicKey `json:"market_program"`
}

// MarketKeys are the orderbook accounts a swap passes through.
type MarketKeys struct {
	EventQueue  solana.PublicKey `json:"event_queue"`
	Bids        solana.PublicKey `json:"bids"`
	Asks        solana.PublicKey `json:"asks"`
	CoinVault   solana.PublicKey `json:"coin_vault"`
	PcVault     solana.PublicKey `json:"pc_vault"`
	VaultSigner solana.PublicKey `json:"vault_signer"`
	CoinMint    solana.PublicKey `json:"coin_mint"`
	PcMint      solana.PublicKey `json:"pc_mint"`
}

// AmmAuthority derives the authority PDA shared by every pool of the program.
func AmmAuthority(programID solana.PublicKey) (solana.PublicKey, error) {
	authority, _, err := solana.FindProgramAddress([][]byte{ammAuthoritySeed}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive amm authority: %w", err)
	}
	return authority, nil
}

// NewAmmKeys collects the pool-side keys from decoded pool state.
func NewAmmKeys(pool, programID solana.PublicKey, info *AmmInfo) (*AmmKeys, error) {
	if info == nil {
		return nil, fmt.Errorf("amm info cannot be nil")
	}
	authority, err := AmmAuthority(programID)
	if err != nil {
		return nil, err
	}
	return &AmmKeys{
		Pool:          pool,
		ProgramID:     programID,
		CoinMint:      info.CoinVaultMint,
		PcMint:        info.PcVaultMint,
		LpMint:        info.LpMint,
		Authority:     authority,
		OpenOrders:    info.OpenOrders,
		TargetOrders:  info.TargetOrders,
		CoinVault:     info.CoinVault,
		PcVault:       info.PcVault,
		Market:        info.Market,
		MarketProgram: info.MarketProgram,
	}, nil
}

// VaultSigner derives the market's vault signer from its stored nonce.
func VaultSigner(market, marketProgram solana.PublicKey, nonce uint64) (solana.PublicKey, error) {
	nonceBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonceBytes, nonce)
	signer, err := solana.CreateProgramAddress([][]byte{market.Bytes(), nonceBytes}, marketProgram)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive vault signer: %w", err)
	}
	return signer, nil
}

// NewMarketKeys collects the orderbook keys from decoded market state.
func NewMarketKeys(market, marketProgram solana.PublicKey, state *MarketState) (*MarketKeys, error) {
	if state == nil {
		return nil, ErrMissingMarketKeys
	}
	signer, err := VaultSigner(market, marketProgram, state.VaultSignerNonce)
	if err != nil {
		return nil, err
	}
	return &MarketKeys{
		EventQueue:  state.EventQueue,
		Bids:        state.Bids,
		Asks:        state.Asks,
		CoinVault:   state.CoinVault,
		PcVault:     state.PcVault,
		VaultSigner: signer,
		CoinMint:    state.CoinMint,
		PcMint:      state.PcMint,
	}, nil
}
