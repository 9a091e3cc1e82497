package monitor

import "context"

// DailyReportAddress is the sentinel address used when dispatching the
// once-daily balance report. The transaction payload is nil for this event;
// handlers read the current state of all watched addresses from the snapshot.
const DailyReportAddress = "daily_report"

// Snapshot gives notification handlers read access to the monitor's current
// state without exposing its mutable internals.
type Snapshot interface {
	// Addresses returns a copy of every watched address entry.
	Addresses() []AddressWatch
}

// TransactionHandler defines a mechanism for notifying external systems when
// new transactions involving watched addresses are detected.
//
// Handlers are invoked once per new transaction, in registration order, and
// once per daily report with address set to DailyReportAddress and a nil
// transaction.
type TransactionHandler interface {
	// HandleTransaction is invoked for each newly discovered transaction
	// (ascending timestamp order within an address's batch) and for the
	// daily-report pseudo-event.
	//
	// Parameters:
	//   - ctx: context for cancellation and timeout control.
	//   - address: the watched address, or DailyReportAddress.
	//   - tx: the normalized transaction, or nil for the daily report.
	//   - m: read access to the monitor's watched-address state.
	//
	// Returns:
	//   - An error if the notification could not be delivered.
	HandleTransaction(ctx context.Context, address string, tx *Transaction, m Snapshot) error
}
