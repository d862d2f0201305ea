package raydium

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

var ErrMalformedAccount = errors.New("malformed account data")

// Account sizes of the layouts decoded here.
const (
	AmmInfoSize      = 752
	OpenOrdersSize   = 3228
	MarketStateSize  = 388
	TokenAccountSize = 165
)

// Fees mirrors the AMM v4 fee block.
type Fees struct {
	MinSeparateNumerator   uint64
	MinSeparateDenominator uint64
	TradeFeeNumerator      uint64
	TradeFeeDenominator    uint64
	PnlNumerator           uint64
	PnlDenominator         uint64
	SwapFeeNumerator       uint64
	SwapFeeDenominator     uint64
}

// StateData holds pnl bookkeeping and swap statistics. u128 counters are kept as raw LE bytes.
type StateData struct {
	NeedTakePnlCoin     uint64
	NeedTakePnlPc       uint64
	TotalPnlPc          uint64
	TotalPnlCoin        uint64
	PoolOpenTime        uint64
	Padding             [2]uint64
	OrderbookToInitTime uint64
	SwapCoinInAmount    [16]byte
	SwapPcOutAmount     [16]byte
	SwapAccPcFee        uint64
	SwapPcInAmount      [16]byte
	SwapCoinOutAmount   [16]byte
	SwapAccCoinFee      uint64
}

// AmmInfo is the on-chain state of an AMM v4 pool.
type AmmInfo struct {
	Status             uint64
	Nonce              uint64
	OrderNum           uint64
	Depth              uint64
	CoinDecimals       uint64
	PcDecimals         uint64
	State              uint64
	ResetFlag          uint64
	MinSize            uint64
	VolMaxCutRatio     uint64
	AmountWave         uint64
	CoinLotSize        uint64
	PcLotSize          uint64
	MinPriceMultiplier uint64
	MaxPriceMultiplier uint64
	SysDecimalValue    uint64
	Fees               Fees
	StateData          StateData
	CoinVault          solana.PublicKey
	PcVault            solana.PublicKey
	CoinVaultMint      solana.PublicKey
	PcVaultMint        solana.PublicKey
	LpMint             solana.PublicKey
	OpenOrders         solana.PublicKey
	Market             solana.PublicKey
	MarketProgram      solana.PublicKey
	TargetOrders       solana.PublicKey
	Padding1           [8]uint64
	AmmOwner           solana.PublicKey
	LpAmount           uint64
	ClientOrderID      uint64
	Padding2           [2]uint64
}

// OpenOrders is the serum/OpenBook open orders account owned by the AMM.
type OpenOrders struct {
	Head                   [5]byte
	AccountFlags           uint64
	Market                 solana.PublicKey
	Owner                  solana.PublicKey
	NativeCoinFree         uint64
	NativeCoinTotal        uint64
	NativePcFree           uint64
	NativePcTotal          uint64
	FreeSlotBits           [16]byte
	IsBidBits              [16]byte
	Orders                 [128 * 16]byte
	ClientOrderIDs         [128]uint64
	ReferrerRebatesAccrued uint64
	Tail                   [7]byte
}

// MarketState is the serum/OpenBook market header.
type MarketState struct {
	Head                   [5]byte
	AccountFlags           uint64
	OwnAddress             solana.PublicKey
	VaultSignerNonce       uint64
	CoinMint               solana.PublicKey
	PcMint                 solana.PublicKey
	CoinVault              solana.PublicKey
	CoinDepositsTotal      uint64
	CoinFeesAccrued        uint64
	PcVault                solana.PublicKey
	PcDepositsTotal        uint64
	PcFeesAccrued          uint64
	PcDustThreshold        uint64
	RequestQueue           solana.PublicKey
	EventQueue             solana.PublicKey
	Bids                   solana.PublicKey
	Asks                   solana.PublicKey
	CoinLotSize            uint64
	PcLotSize              uint64
	FeeRateBps             uint64
	ReferrerRebatesAccrued uint64
	Tail                   [7]byte
}

func DecodeAmmInfo(data []byte) (*AmmInfo, error) {
	var info AmmInfo
	if err := decodeExact(data, AmmInfoSize, "amm info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func DecodeOpenOrders(data []byte) (*OpenOrders, error) {
	var oo OpenOrders
	if err := decodeExact(data, OpenOrdersSize, "open orders", &oo); err != nil {
		return nil, err
	}
	return &oo, nil
}

func DecodeMarketState(data []byte) (*MarketState, error) {
	var ms MarketState
	if err := decodeExact(data, MarketStateSize, "market state", &ms); err != nil {
		return nil, err
	}
	return &ms, nil
}

// DecodeTokenAccount decodes an SPL token account.
func DecodeTokenAccount(data []byte) (*token.Account, error) {
	if len(data) < TokenAccountSize {
		return nil, fmt.Errorf("%w: token account is %d bytes, want %d", ErrMalformedAccount, len(data), TokenAccountSize)
	}
	var acc token.Account
	if err := bin.NewBinDecoder(data).Decode(&acc); err != nil {
		return nil, fmt.Errorf("%w: token account: %v", ErrMalformedAccount, err)
	}
	return &acc, nil
}

// EncodeAmmInfo serializes info back into its on-chain layout.
func EncodeAmmInfo(info *AmmInfo) ([]byte, error) { return encode(info) }

func EncodeOpenOrders(oo *OpenOrders) ([]byte, error) { return encode(oo) }

func EncodeMarketState(ms *MarketState) ([]byte, error) { return encode(ms) }

func decodeExact(data []byte, size int, name string, v interface{}) error {
	if len(data) != size {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrMalformedAccount, name, len(data), size)
	}
	if err := bin.NewBinDecoder(data).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedAccount, name, err)
	}
	return nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
