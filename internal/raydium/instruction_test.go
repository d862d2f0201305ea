package raydium

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeys(t *testing.T) (*AmmKeys, *MarketKeys) {
	t.Helper()
	amm, err := NewAmmKeys(solana.NewWallet().PublicKey(), testProgramID, sampleAmmInfo())
	require.NoError(t, err)
	market := &MarketKeys{
		EventQueue:  solana.NewWallet().PublicKey(),
		Bids:        solana.NewWallet().PublicKey(),
		Asks:        solana.NewWallet().PublicKey(),
		CoinVault:   solana.NewWallet().PublicKey(),
		PcVault:     solana.NewWallet().PublicKey(),
		VaultSigner: solana.NewWallet().PublicKey(),
	}
	return amm, market
}

func TestBuildSwapInstruction_BaseIn(t *testing.T) {
	amm, market := testKeys(t)
	user := SwapAccounts{
		Source:      solana.NewWallet().PublicKey(),
		Destination: solana.NewWallet().PublicKey(),
		Owner:       solana.NewWallet().PublicKey(),
	}

	ix, err := BuildSwapInstruction(amm, market, user, 1_000, 900, true)
	require.NoError(t, err)
	assert.Equal(t, testProgramID, ix.ProgramID())

	data, err := ix.Data()
	require.NoError(t, err)
	require.Len(t, data, 17)
	assert.Equal(t, InstructionSwapBaseIn, data[0])
	assert.Equal(t, uint64(1_000), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(900), binary.LittleEndian.Uint64(data[9:17]))

	accounts := ix.Accounts()
	require.Len(t, accounts, 18)
	assert.Equal(t, solana.TokenProgramID, accounts[0].PublicKey)
	assert.Equal(t, amm.Pool, accounts[1].PublicKey)
	assert.True(t, accounts[1].IsWritable)
	assert.Equal(t, amm.Authority, accounts[2].PublicKey)
	assert.Equal(t, market.EventQueue, accounts[11].PublicKey)
	assert.Equal(t, market.VaultSigner, accounts[14].PublicKey)
	assert.False(t, accounts[14].IsWritable)
	assert.Equal(t, user.Source, accounts[15].PublicKey)
	assert.Equal(t, user.Destination, accounts[16].PublicKey)
	assert.Equal(t, user.Owner, accounts[17].PublicKey)
	assert.True(t, accounts[17].IsSigner)

	signers := 0
	for _, a := range accounts {
		if a.IsSigner {
			signers++
		}
	}
	assert.Equal(t, 1, signers)
}

func TestBuildSwapInstruction_BaseOut(t *testing.T) {
	amm, market := testKeys(t)

	ix, err := BuildSwapInstruction(amm, market, SwapAccounts{}, 500, 1_100, false)
	require.NoError(t, err)

	data, err := ix.Data()
	require.NoError(t, err)
	assert.Equal(t, InstructionSwapBaseOut, data[0])
	// max amount in comes first
	assert.Equal(t, uint64(1_100), binary.LittleEndian.Uint64(data[1:9]))
	assert.Equal(t, uint64(500), binary.LittleEndian.Uint64(data[9:17]))
}

func TestBuildSwapInstruction_MissingMarketKeys(t *testing.T) {
	amm, _ := testKeys(t)
	_, err := BuildSwapInstruction(amm, nil, SwapAccounts{}, 1, 1, true)
	assert.ErrorIs(t, err, ErrMissingMarketKeys)
}

func TestDetermineSwapDirection(t *testing.T) {
	amm, _ := testKeys(t)

	dir, err := DetermineSwapDirection(amm, amm.CoinMint, amm.PcMint)
	require.NoError(t, err)
	assert.Equal(t, Coin2PC, dir)

	dir, err = DetermineSwapDirection(amm, amm.PcMint, amm.CoinMint)
	require.NoError(t, err)
	assert.Equal(t, PC2Coin, dir)

	_, err = DetermineSwapDirection(amm, amm.CoinMint, solana.NewWallet().PublicKey())
	assert.Error(t, err)
}
