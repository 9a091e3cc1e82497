package monitor

import (
	"math"
	"time"
)

// NanoErgsPerErg is the number of nanoERG units in one ERG.
const NanoErgsPerErg = 1e9

// DustThreshold is the minimum absolute net ERG delta required for a
// transaction to be considered notification-worthy. Transactions at or below
// this value are suppressed unless they move tokens.
const DustThreshold = 0.0001

// BoxAsset is a token amount carried by a transaction box.
type BoxAsset struct {
	TokenID  string // token identifier
	Name     string // display name, may be empty
	Decimals int    // number of decimal places for Amount
	Amount   int64  // raw token amount, unscaled
}

// Box is a transaction input or output. Mempool inputs are often bare box
// references, in which case only BoxID is populated.
type Box struct {
	BoxID   string
	Address string
	Value   int64 // nanoERG held by the box
	Assets  []BoxAsset
}

// TransactionRecord is the explorer's view of a single transaction involving
// a watched address, normalized so mempool and confirmed records share one
// shape. Mempool records carry a nil Height and a timestamp synthesized at
// fetch time.
type TransactionRecord struct {
	ID        string
	Inputs    []Box
	Outputs   []Box
	Size      int
	Height    *int64 // nil while unconfirmed
	Timestamp time.Time
	Mempool   bool
}

// Transaction is the normalized, notification-ready view of a transaction
// from the perspective of one watched address. It is immutable once produced.
type Transaction struct {
	ID        string
	Timestamp time.Time
	Height    *int64             // nil while unconfirmed
	Value     float64            // signed net ERG delta for the watched address
	Tokens    map[string]float64 // signed token deltas keyed by token id, zero deltas omitted
	Mempool   bool               // whether the record was unconfirmed at extraction time
}

// Significant reports whether the transaction clears the dust filter: it
// either moves more than DustThreshold ERG in absolute terms or carries any
// nonzero token delta.
func (t Transaction) Significant() bool {
	return math.Abs(t.Value) > DustThreshold || len(t.Tokens) > 0
}

// TokenBalance is the held amount of a single token, scaled to its decimals.
type TokenBalance struct {
	TokenID string
	Name    string
	Amount  float64
}

// Balance is a point-in-time snapshot of an address's confirmed holdings.
// It is replaced wholesale on every refresh.
type Balance struct {
	Ergs   float64
	Tokens map[string]TokenBalance
}
