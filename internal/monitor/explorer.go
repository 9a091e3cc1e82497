package monitor

import "context"

// ExplorerGateway defines the fetch surface the monitor needs from a
// block-explorer service. Implementations own the HTTP plumbing, including
// rate limiting and retries; the monitor only sequences calls.
type ExplorerGateway interface {
	// AddressTransactions returns the current transaction batch for one
	// address: mempool records first (normalized, nil height, synthesized
	// timestamps), then confirmed records sorted newest-first.
	//
	// Transient upstream failures are absorbed by the fetch layer and
	// surface as an empty batch, not an error.
	AddressTransactions(ctx context.Context, address string) ([]TransactionRecord, error)

	// Close releases the underlying connection resources. It is called
	// exactly once when the monitor loop terminates, on every exit path.
	Close() error
}

// BalanceTracker resolves the current confirmed balance of an address.
// It is an external capability from the monitor's perspective.
type BalanceTracker interface {
	CurrentBalance(ctx context.Context, address string) (Balance, error)
}

// TransactionAnalyzer extracts the normalized, address-relative details of a
// raw transaction record: signed net ERG delta and per-token deltas.
type TransactionAnalyzer interface {
	ExtractDetails(record TransactionRecord, address string) Transaction
}
