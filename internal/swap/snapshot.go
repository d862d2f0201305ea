package swap

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

// SnapshotLoader reads a pool's state. Reserve figures come from a single
// batched read so vaults and orderbook balances share one slot.
type SnapshotLoader struct {
	accounts  AccountFetcher
	market    MarketKeySource // nil reads market keys on-chain
	programID solana.PublicKey
	logger    *logrus.Logger
}

func NewSnapshotLoader(accounts AccountFetcher, market MarketKeySource, programID solana.PublicKey, logger *logrus.Logger) *SnapshotLoader {
	if logger == nil {
		logger = logrus.New()
	}
	if programID.IsZero() {
		programID = constants.RaydiumAMMV4ProgramID
	}
	return &SnapshotLoader{accounts: accounts, market: market, programID: programID, logger: logger}
}

// Batch order of Load's consistent read.
const (
	idxAmm = iota
	idxTargetOrders
	idxPcVault
	idxCoinVault
	idxOpenOrders
	idxMarket
	idxEventQueue
	batchSize
)

// Load resolves keys for pool and takes a reserve snapshot.
func (l *SnapshotLoader) Load(ctx context.Context, pool solana.PublicKey) (*LoadedPool, error) {
	ammKeys, err := l.ammKeys(ctx, pool)
	if err != nil {
		return nil, err
	}
	marketKeys, err := l.marketKeys(ctx, ammKeys)
	if err != nil {
		return nil, err
	}

	batch := make([]solana.PublicKey, batchSize)
	batch[idxAmm] = pool
	batch[idxTargetOrders] = ammKeys.TargetOrders
	batch[idxPcVault] = ammKeys.PcVault
	batch[idxCoinVault] = ammKeys.CoinVault
	batch[idxOpenOrders] = ammKeys.OpenOrders
	batch[idxMarket] = ammKeys.Market
	batch[idxEventQueue] = marketKeys.EventQueue

	data, err := l.accounts.GetMultipleAccounts(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("load pool %s accounts: %w", pool, err)
	}
	if len(data) != batchSize {
		return nil, fmt.Errorf("%w: expected %d accounts, got %d", ErrMalformedAccountData, batchSize, len(data))
	}

	snapshot, err := buildSnapshot(pool, data)
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"pool":       pool.String(),
		"status":     snapshot.Status.String(),
		"coin_vault": snapshot.CoinVaultAmount,
		"pc_vault":   snapshot.PcVaultAmount,
		"orderbook":  snapshot.Orderbook != nil,
	}).Debug("loaded pool snapshot")

	return &LoadedPool{
		Snapshot:   *snapshot,
		AmmKeys:    ammKeys,
		MarketKeys: marketKeys,
	}, nil
}

func (l *SnapshotLoader) ammKeys(ctx context.Context, pool solana.PublicKey) (*raydium.AmmKeys, error) {
	data, err := l.fetchOne(ctx, pool, "amm")
	if err != nil {
		return nil, err
	}
	info, err := raydium.DecodeAmmInfo(data)
	if err != nil {
		return nil, classify(err)
	}
	return raydium.NewAmmKeys(pool, l.programID, info)
}

func (l *SnapshotLoader) marketKeys(ctx context.Context, amm *raydium.AmmKeys) (*raydium.MarketKeys, error) {
	if l.market != nil {
		keys, err := l.market.MarketKeys(ctx, amm.Pool)
		if err != nil {
			return nil, classify(fmt.Errorf("market keys for %s: %w", amm.Pool, err))
		}
		return keys, nil
	}

	data, err := l.fetchOne(ctx, amm.Market, "market")
	if err != nil {
		return nil, err
	}
	state, err := raydium.DecodeMarketState(data)
	if err != nil {
		return nil, classify(err)
	}
	keys, err := raydium.NewMarketKeys(amm.Market, amm.MarketProgram, state)
	if err != nil {
		return nil, classify(err)
	}
	return keys, nil
}

func (l *SnapshotLoader) fetchOne(ctx context.Context, key solana.PublicKey, name string) ([]byte, error) {
	data, err := l.accounts.GetMultipleAccounts(ctx, []solana.PublicKey{key})
	if err != nil {
		return nil, fmt.Errorf("fetch %s account %s: %w", name, key, err)
	}
	if len(data) != 1 || data[0] == nil {
		return nil, fmt.Errorf("%w: %s account %s not found", ErrMalformedAccountData, name, key)
	}
	return data[0], nil
}

func buildSnapshot(pool solana.PublicKey, data [][]byte) (*PoolSnapshot, error) {
	for _, idx := range []int{idxAmm, idxTargetOrders, idxPcVault, idxCoinVault} {
		if data[idx] == nil {
			return nil, fmt.Errorf("%w: account %d of pool %s batch missing", ErrMalformedAccountData, idx, pool)
		}
	}

	info, err := raydium.DecodeAmmInfo(data[idxAmm])
	if err != nil {
		return nil, classify(err)
	}
	pcVault, err := raydium.DecodeTokenAccount(data[idxPcVault])
	if err != nil {
		return nil, classify(err)
	}
	coinVault, err := raydium.DecodeTokenAccount(data[idxCoinVault])
	if err != nil {
		return nil, classify(err)
	}

	s := &PoolSnapshot{
		PoolID:          pool,
		Status:          raydium.AmmStatus(info.Status),
		CoinVaultAmount: coinVault.Amount,
		PcVaultAmount:   pcVault.Amount,
		NeedTakePnlCoin: info.StateData.NeedTakePnlCoin,
		NeedTakePnlPc:   info.StateData.NeedTakePnlPc,
		FeeNumerator:    info.Fees.SwapFeeNumerator,
		FeeDenominator:  info.Fees.SwapFeeDenominator,
		CoinDecimals:    uint8(info.CoinDecimals),
		PcDecimals:      uint8(info.PcDecimals),
	}

	if s.Status.OrderbookPermission() {
		for _, idx := range []int{idxOpenOrders, idxMarket, idxEventQueue} {
			if data[idx] == nil {
				return nil, fmt.Errorf("%w: orderbook account %d of pool %s batch missing", ErrMalformedAccountData, idx, pool)
			}
		}
		oo, err := raydium.DecodeOpenOrders(data[idxOpenOrders])
		if err != nil {
			return nil, classify(err)
		}
		s.Orderbook = &OrderbookAdjustment{
			CoinTotal: oo.NativeCoinTotal,
			PcTotal:   oo.NativePcTotal,
		}
	}

	return s, nil
}
