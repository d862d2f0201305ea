package swap

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
	"github.com/aman-zulfiqar/raydium-swap/internal/rpc"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testKey(n byte) solana.PublicKey {
	var k solana.PublicKey
	k[0] = n
	k[31] = 0x5a
	return k
}

var (
	testPool         = testKey(1)
	testCoinMint     = testKey(2)
	testPcMint       = solana.WrappedSol
	testCoinVault    = testKey(3)
	testPcVault      = testKey(4)
	testOpenOrders   = testKey(5)
	testTargetOrders = testKey(6)
	testMarket       = testKey(7)
	testLpMint       = testKey(8)
	testPayer        = testKey(9)
)

var testMarketKeys = &raydium.MarketKeys{
	EventQueue:  testKey(20),
	Bids:        testKey(21),
	Asks:        testKey(22),
	CoinVault:   testKey(23),
	PcVault:     testKey(24),
	VaultSigner: testKey(25),
	CoinMint:    testCoinMint,
	PcMint:      testPcMint,
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// poolFixture describes the on-chain state served by fakeAccounts.
type poolFixture struct {
	status     raydium.AmmStatus
	coinVault  uint64
	pcVault    uint64
	pnlCoin    uint64
	pnlPc      uint64
	ooCoin     uint64
	ooPc       uint64
	feeNum     uint64
	feeDen     uint64
	marketData []byte
}

// scenarioFixture is a swap-only pool with coin=1e12, pc=50e9 and a 25/10000 fee.
func scenarioFixture() poolFixture {
	return poolFixture{
		status:    raydium.StatusSwapOnly,
		coinVault: 1_000_000_000_000,
		pcVault:   50_000_000_000,
		feeNum:    25,
		feeDen:    10_000,
	}
}

func (f poolFixture) ammInfo() *raydium.AmmInfo {
	info := &raydium.AmmInfo{
		Status:        uint64(f.status),
		CoinDecimals:  6,
		PcDecimals:    9,
		CoinVault:     testCoinVault,
		PcVault:       testPcVault,
		CoinVaultMint: testCoinMint,
		PcVaultMint:   testPcMint,
		LpMint:        testLpMint,
		OpenOrders:    testOpenOrders,
		Market:        testMarket,
		MarketProgram: testKey(30),
		TargetOrders:  testTargetOrders,
	}
	info.Fees.SwapFeeNumerator = f.feeNum
	info.Fees.SwapFeeDenominator = f.feeDen
	info.StateData.NeedTakePnlCoin = f.pnlCoin
	info.StateData.NeedTakePnlPc = f.pnlPc
	return info
}

func (f poolFixture) accounts(t *testing.T) *fakeAccounts {
	t.Helper()

	amm, err := raydium.EncodeAmmInfo(f.ammInfo())
	require.NoError(t, err)
	oo, err := raydium.EncodeOpenOrders(&raydium.OpenOrders{
		Market:          testMarket,
		NativeCoinTotal: f.ooCoin,
		NativePcTotal:   f.ooPc,
	})
	require.NoError(t, err)

	data := map[solana.PublicKey][]byte{
		testPool:         amm,
		testTargetOrders: make([]byte, 64),
		testCoinVault:    tokenAccountData(testCoinMint, f.coinVault),
		testPcVault:      tokenAccountData(testPcMint, f.pcVault),
		testOpenOrders:   oo,
		testMarket:       make([]byte, raydium.MarketStateSize),
	}
	data[testMarketKeys.EventQueue] = make([]byte, 64)
	if f.marketData != nil {
		data[testMarket] = f.marketData
	}
	return &fakeAccounts{data: data}
}

func tokenAccountData(mint solana.PublicKey, amount uint64) []byte {
	data := make([]byte, raydium.TokenAccountSize)
	copy(data[0:32], mint[:])
	copy(data[32:64], testKey(99).Bytes())
	binary.LittleEndian.PutUint64(data[64:72], amount)
	data[108] = 1 // initialized
	return data
}

type fakeAccounts struct {
	mu      sync.Mutex
	data    map[solana.PublicKey][]byte
	batches [][]solana.PublicKey
	err     error
}

func (f *fakeAccounts) GetMultipleAccounts(_ context.Context, keys []solana.PublicKey) ([][]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, append([]solana.PublicKey(nil), keys...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = f.data[k]
	}
	return out, nil
}

func (f *fakeAccounts) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

type fakeMarkets struct {
	keys  *raydium.MarketKeys
	err   error
	calls int
}

func (f *fakeMarkets) MarketKeys(context.Context, solana.PublicKey) (*raydium.MarketKeys, error) {
	f.calls++
	return f.keys, f.err
}

type fakeFinder struct {
	pool  *solana.PublicKey
	err   error
	calls int
}

func (f *fakeFinder) FindPool(context.Context, solana.PublicKey, solana.PublicKey) (*solana.PublicKey, error) {
	f.calls++
	return f.pool, f.err
}

type fakeSimulator struct {
	result *rpc.SimulateResult
	err    error
	txs    []*solana.Transaction
}

func (f *fakeSimulator) SimulateTransaction(_ context.Context, tx *solana.Transaction) (*rpc.SimulateResult, error) {
	f.txs = append(f.txs, tx)
	return f.result, f.err
}

func unitsConsumed(n uint64) *rpc.SimulateResult {
	return &rpc.SimulateResult{UnitsConsumed: &n}
}

func testAmmKeys(t *testing.T) *raydium.AmmKeys {
	t.Helper()
	keys, err := raydium.NewAmmKeys(testPool, testKey(40), scenarioFixture().ammInfo())
	require.NoError(t, err)
	return keys
}

// loadedScenario is the scenario pool as the loader would return it.
func loadedScenario(t *testing.T) *LoadedPool {
	t.Helper()
	f := scenarioFixture()
	return &LoadedPool{
		Snapshot: PoolSnapshot{
			PoolID:          testPool,
			Status:          f.status,
			CoinVaultAmount: f.coinVault,
			PcVaultAmount:   f.pcVault,
			FeeNumerator:    f.feeNum,
			FeeDenominator:  f.feeDen,
			CoinDecimals:    6,
			PcDecimals:      9,
		},
		AmmKeys:    testAmmKeys(t),
		MarketKeys: testMarketKeys,
	}
}
