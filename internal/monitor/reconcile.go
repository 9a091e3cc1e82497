package monitor

import (
	"context"

	"github.com/gabapcia/ergowatch/internal/pkg/logger"
)

// checkAddress fetches the current transaction batch for one address and
// reconciles it against prior state, returning the transactions that are new
// and significant. It mutates the dedup sets and, on a successful pass, the
// address's watermark.
//
// The batch arrives mempool-first, then confirmed records newest-first. For
// each record the dedup rule runs before the temporal gate, so a record seen
// but too old still advances the seen sets. Because the confirmed feed is
// sorted newest-first, the first record failing the temporal gate terminates
// the scan; the remaining records are assumed older.
//
// The watermark (LastCheck, LastHeight) advances only when at least one new
// transaction was emitted or the batch was empty. A batch of exclusively
// stale or dust-level records leaves the watermark untouched, so a later
// significant transaction is not hidden behind it.
func (s *service) checkAddress(ctx context.Context, watch *AddressWatch) []Transaction {
	records, err := s.explorer.AddressTransactions(ctx, watch.Address)
	if err != nil {
		logger.Error(ctx, "error fetching transactions",
			"address.nickname", watch.Nickname,
			"error", err,
		)
		return nil
	}

	now := s.clock.Now()

	var fresh []Transaction
	for _, record := range records {
		if !s.dedup.shouldProcess(record.ID, record.Mempool) {
			continue
		}

		if !record.Timestamp.After(watch.LastCheck) {
			break
		}

		tx := s.analyzer.ExtractDetails(record, watch.Address)
		if tx.Significant() {
			fresh = append(fresh, tx)
		}
	}

	if len(fresh) > 0 || len(records) == 0 {
		watch.LastCheck = now
		if len(records) > 0 && records[0].Height != nil && *records[0].Height > watch.LastHeight {
			watch.LastHeight = *records[0].Height
		}
	}

	return fresh
}
