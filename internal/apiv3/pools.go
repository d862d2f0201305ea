package apiv3

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/constants"
	"github.com/aman-zulfiqar/raydium-swap/internal/raydium"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const maxDiscoveryPages = 5

// Discovery resolves mint pairs and market keys for AMM v4 pools through the API.
type Discovery struct {
	client    *Client
	programID solana.PublicKey
	logger    *logrus.Logger
}

func NewDiscovery(client *Client, programID solana.PublicKey, logger *logrus.Logger) *Discovery {
	if logger == nil {
		logger = logrus.New()
	}
	if programID.IsZero() {
		programID = constants.RaydiumAMMV4ProgramID
	}
	return &Discovery{client: client, programID: programID, logger: logger}
}

// FindPool returns the deepest AMM v4 pool trading mintA against mintB, or nil
// when there is none. Pools are listed by liquidity, highest first.
func (d *Discovery) FindPool(ctx context.Context, mintA, mintB solana.PublicKey) (*solana.PublicKey, error) {
	for page := 1; page <= maxDiscoveryPages; page++ {
		res, err := d.client.PoolsByMint(ctx, PoolQuery{
			Mint1:     mintA.String(),
			Mint2:     mintB.String(),
			PoolType:  constants.RaydiumPoolTypeAMM,
			SortField: constants.RaydiumSortField,
			SortType:  constants.RaydiumSortOrderDsc,
			PageSize:  constants.DiscoveryPageSize,
			Page:      page,
		})
		if err != nil {
			return nil, fmt.Errorf("list pools for %s/%s: %w", mintA, mintB, err)
		}

		for _, pool := range res.Data {
			if !d.matches(pool, mintA, mintB) {
				continue
			}
			id, err := solana.PublicKeyFromBase58(pool.ID)
			if err != nil {
				return nil, fmt.Errorf("invalid pool id %q: %w", pool.ID, err)
			}
			d.logger.WithFields(logrus.Fields{
				"pool": pool.ID,
				"tvl":  pool.TVL,
				"page": page,
			}).Debug("discovered pool")
			return &id, nil
		}

		if !res.HasNextPage {
			break
		}
	}
	return nil, nil
}

func (d *Discovery) matches(pool PoolInfo, mintA, mintB solana.PublicKey) bool {
	if pool.ProgramID != d.programID.String() {
		return false
	}
	a, b := mintA.String(), mintB.String()
	return (pool.MintA.Address == a && pool.MintB.Address == b) ||
		(pool.MintA.Address == b && pool.MintB.Address == a)
}

// MarketKeys returns the orderbook keys of pool as reported by the API.
func (d *Discovery) MarketKeys(ctx context.Context, pool solana.PublicKey) (*raydium.MarketKeys, error) {
	keys, err := d.client.PoolKeysByIDs(ctx, []string{pool.String()})
	if err != nil {
		return nil, fmt.Errorf("fetch pool keys for %s: %w", pool, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: pool %s not known to the api", raydium.ErrMissingMarketKeys, pool)
	}
	return keys[0].MarketKeys()
}

// MarketKeys converts the API's market fields.
func (k *PoolKeys) MarketKeys() (*raydium.MarketKeys, error) {
	if k.MarketID == "" || k.MarketEventQueue == "" {
		return nil, fmt.Errorf("%w: pool %s has no market", raydium.ErrMissingMarketKeys, k.ID)
	}

	var mk raydium.MarketKeys
	fields := []struct {
		name string
		in   string
		out  *solana.PublicKey
	}{
		{"marketEventQueue", k.MarketEventQueue, &mk.EventQueue},
		{"marketBids", k.MarketBids, &mk.Bids},
		{"marketAsks", k.MarketAsks, &mk.Asks},
		{"marketBaseVault", k.MarketBaseVault, &mk.CoinVault},
		{"marketQuoteVault", k.MarketQuoteVault, &mk.PcVault},
		{"marketAuthority", k.MarketAuthority, &mk.VaultSigner},
		{"mintA", k.MintA.Address, &mk.CoinMint},
		{"mintB", k.MintB.Address, &mk.PcMint},
	}
	for _, f := range fields {
		pk, err := solana.PublicKeyFromBase58(f.in)
		if err != nil {
			return nil, fmt.Errorf("%w: pool %s field %s: %v", raydium.ErrMissingMarketKeys, k.ID, f.name, err)
		}
		*f.out = pk
	}
	return &mk, nil
}
