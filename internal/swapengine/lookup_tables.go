package swapengine

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/raydium-swap/internal/swap"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/sirupsen/logrus"
)

// LoadLookupTables reads the given lookup tables in one batch. Missing,
// unreadable and deactivated tables are skipped with a warning so builds fall
// back to inlining those accounts.
func LoadLookupTables(ctx context.Context, accounts swap.AccountFetcher, addrs []solana.PublicKey, logger *logrus.Logger) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	if logger == nil {
		logger = logrus.New()
	}

	datas, err := accounts.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("fetch lookup tables: %w", err)
	}

	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(addrs))
	for i, addr := range addrs {
		log := logger.WithField("lookup_table", addr.String())
		if i >= len(datas) || datas[i] == nil {
			log.Warn("lookup table not found, skipping")
			continue
		}
		state, err := addresslookuptable.DecodeAddressLookupTableState(datas[i])
		if err != nil {
			log.WithError(err).Warn("lookup table unreadable, skipping")
			continue
		}
		if !state.IsActive() {
			log.Warn("lookup table is deactivated, skipping")
			continue
		}
		tables[addr] = state.Addresses
		log.WithField("addresses", len(state.Addresses)).Info("loaded lookup table")
	}
	return tables, nil
}
