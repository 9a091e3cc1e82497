// Package analyzer computes the address-relative details of raw transaction
// records: the signed net ERG delta and per-token deltas resulting from the
// boxes an address spends and receives.
package analyzer

import (
	"math"

	"github.com/gabapcia/ergowatch/internal/monitor"
	"github.com/gabapcia/ergowatch/internal/pkg/types"
)

// analyzer implements monitor.TransactionAnalyzer.
type analyzer struct{}

// Compile-time check that *analyzer implements the TransactionAnalyzer interface.
var _ monitor.TransactionAnalyzer = (*analyzer)(nil)

// New returns a TransactionAnalyzer that derives value and token deltas from
// a record's inputs and outputs.
func New() *analyzer {
	return &analyzer{}
}

// scaledAmount converts a raw token amount into its display value using the
// token's decimal places.
func scaledAmount(asset monitor.BoxAsset) float64 {
	return float64(asset.Amount) / math.Pow10(asset.Decimals)
}

// ExtractDetails produces the normalized view of a transaction from the
// perspective of one address: boxes the address spends count negative, boxes
// it receives count positive. Token deltas that cancel out to zero are
// omitted. Mempool inputs that arrived as bare box references carry no
// address or value and therefore contribute nothing; for those records the
// delta reflects received outputs only.
func (a *analyzer) ExtractDetails(record monitor.TransactionRecord, address string) monitor.Transaction {
	var (
		netNanoErgs int64
		tokenDeltas = types.NewDefaultMap[string](func() float64 { return 0 })
	)

	for _, box := range record.Inputs {
		if box.Address != address {
			continue
		}

		netNanoErgs -= box.Value
		for _, asset := range box.Assets {
			tokenDeltas.Set(asset.TokenID, tokenDeltas.Get(asset.TokenID)-scaledAmount(asset))
		}
	}

	for _, box := range record.Outputs {
		if box.Address != address {
			continue
		}

		netNanoErgs += box.Value
		for _, asset := range box.Assets {
			tokenDeltas.Set(asset.TokenID, tokenDeltas.Get(asset.TokenID)+scaledAmount(asset))
		}
	}

	tokens := make(map[string]float64)
	for tokenID, delta := range tokenDeltas.ToMap() {
		if delta != 0 {
			tokens[tokenID] = delta
		}
	}

	return monitor.Transaction{
		ID:        record.ID,
		Timestamp: record.Timestamp,
		Height:    record.Height,
		Value:     float64(netNanoErgs) / monitor.NanoErgsPerErg,
		Tokens:    tokens,
		Mempool:   record.Mempool,
	}
}
