package raydium

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AMM v4 instruction tags.
const (
	InstructionSwapBaseIn  uint8 = 9
	InstructionSwapBaseOut uint8 = 11
)

// SwapAccounts are the user-side accounts of a swap.
type SwapAccounts struct {
	Source      solana.PublicKey
	Destination solana.PublicKey
	Owner       solana.PublicKey
}

// BuildSwapInstruction encodes SwapBaseIn when amountSpecifiedIsInput, else SwapBaseOut.
//
// SwapBaseIn:  amount = exact input, otherAmountThreshold = minimum output.
// SwapBaseOut: amount = exact output, otherAmountThreshold = maximum input.
func BuildSwapInstruction(
	amm *AmmKeys,
	market *MarketKeys,
	user SwapAccounts,
	amount uint64,
	otherAmountThreshold uint64,
	amountSpecifiedIsInput bool,
) (solana.Instruction, error) {
	if amm == nil {
		return nil, fmt.Errorf("amm keys cannot be nil")
	}
	if market == nil {
		return nil, ErrMissingMarketKeys
	}

	// Account order fixed by the program:
	// 0. token program
	// 1. amm (w)
	// 2. amm authority
	// 3. amm open orders (w)
	// 4. amm target orders (w)
	// 5. pool coin vault (w)
	// 6. pool pc vault (w)
	// 7. market program
	// 8. market (w)
	// 9. bids (w)
	// 10. asks (w)
	// 11. event queue (w)
	// 12. market coin vault (w)
	// 13. market pc vault (w)
	// 14. market vault signer
	// 15. user source (w)
	// 16. user destination (w)
	// 17. user owner (signer)
	accounts := []*solana.AccountMeta{
		{PublicKey: solana.TokenProgramID, IsWritable: false, IsSigner: false},
		{PublicKey: amm.Pool, IsWritable: true, IsSigner: false},
		{PublicKey: amm.Authority, IsWritable: false, IsSigner: false},
		{PublicKey: amm.OpenOrders, IsWritable: true, IsSigner: false},
		{PublicKey: amm.TargetOrders, IsWritable: true, IsSigner: false},
		{PublicKey: amm.CoinVault, IsWritable: true, IsSigner: false},
		{PublicKey: amm.PcVault, IsWritable: true, IsSigner: false},
		{PublicKey: amm.MarketProgram, IsWritable: false, IsSigner: false},
		{PublicKey: amm.Market, IsWritable: true, IsSigner: false},
		{PublicKey: market.Bids, IsWritable: true, IsSigner: false},
		{PublicKey: market.Asks, IsWritable: true, IsSigner: false},
		{PublicKey: market.EventQueue, IsWritable: true, IsSigner: false},
		{PublicKey: market.CoinVault, IsWritable: true, IsSigner: false},
		{PublicKey: market.PcVault, IsWritable: true, IsSigner: false},
		{PublicKey: market.VaultSigner, IsWritable: false, IsSigner: false},
		{PublicKey: user.Source, IsWritable: true, IsSigner: false},
		{PublicKey: user.Destination, IsWritable: true, IsSigner: false},
		{PublicKey: user.Owner, IsWritable: false, IsSigner: true},
	}

	// [tag u8][first u64 LE][second u64 LE]
	data := make([]byte, 17)
	if amountSpecifiedIsInput {
		data[0] = InstructionSwapBaseIn
		binary.LittleEndian.PutUint64(data[1:9], amount)
		binary.LittleEndian.PutUint64(data[9:17], otherAmountThreshold)
	} else {
		data[0] = InstructionSwapBaseOut
		binary.LittleEndian.PutUint64(data[1:9], otherAmountThreshold)
		binary.LittleEndian.PutUint64(data[9:17], amount)
	}

	return solana.NewInstruction(amm.ProgramID, accounts, data), nil
}

// DetermineSwapDirection matches the mint pair against the pool's legs.
func DetermineSwapDirection(amm *AmmKeys, inputMint, outputMint solana.PublicKey) (SwapDirection, error) {
	if amm.CoinMint.Equals(inputMint) && amm.PcMint.Equals(outputMint) {
		return Coin2PC, nil
	}
	if amm.PcMint.Equals(inputMint) && amm.CoinMint.Equals(outputMint) {
		return PC2Coin, nil
	}
	return 0, fmt.Errorf("mints %s/%s do not match pool %s", inputMint, outputMint, amm.Pool)
}
