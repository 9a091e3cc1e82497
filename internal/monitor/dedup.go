package monitor

import "github.com/gabapcia/ergowatch/internal/pkg/types"

const (
	// seenConfirmedCap bounds the confirmed-transaction dedup window. Ids
	// evicted from the window can in principle be re-notified, an accepted
	// trade of perfect history for bounded memory.
	seenConfirmedCap = 1000

	// seenMempoolCap bounds the mempool dedup window. Mempool entries are
	// short-lived, so the window is much smaller.
	seenMempoolCap = 100
)

// dedupState tracks which transaction ids have already been notified, split
// by lifecycle stage. A transaction id moves unknown -> mempool-notified ->
// confirmed-notified (or straight to confirmed-notified if it was never
// observed unconfirmed); confirmed-notified is terminal.
//
// The state is shared across all watched addresses and mutated only by the
// monitor loop, so no locking is required.
type dedupState struct {
	seenMempool   *types.BoundedSet[string] // ids notified while unconfirmed
	seenConfirmed *types.BoundedSet[string] // ids notified as confirmed
}

func newDedupState() *dedupState {
	return &dedupState{
		seenMempool:   types.NewBoundedSet[string](seenMempoolCap),
		seenConfirmed: types.NewBoundedSet[string](seenConfirmedCap),
	}
}

// shouldProcess applies the dedup decision rule for one record and mutates
// the seen sets accordingly:
//
//   - A mempool record is processed iff its id has not been notified as
//     unconfirmed yet; processing marks it so.
//   - A confirmed record is processed iff its id has not been notified as
//     confirmed, or it is currently in the mempool set (the confirmation of
//     a transaction already notified as pending). Processing promotes the id:
//     it is removed from the mempool set and added to the confirmed set.
//
// Both sets evict their oldest-inserted entries once their caps are exceeded.
func (d *dedupState) shouldProcess(id string, mempool bool) bool {
	if mempool {
		if d.seenMempool.Contains(id) {
			return false
		}
		d.seenMempool.Add(id)
		return true
	}

	if d.seenConfirmed.Contains(id) && !d.seenMempool.Contains(id) {
		return false
	}

	d.promote(id)
	return true
}

// promote moves a transaction id from the mempool-seen set to the
// confirmed-seen set. The id need not be present in the mempool set.
func (d *dedupState) promote(id string) {
	d.seenMempool.Delete(id)
	d.seenConfirmed.Add(id)
}
