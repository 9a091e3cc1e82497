package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gabapcia/ergowatch/internal/monitor"
)

const (
	// confirmedPageLimit is the page size requested from the confirmed
	// transactions endpoint.
	confirmedPageLimit = 50

	// confirmedSortDirection orders the confirmed feed newest-first, which
	// the reconciler's temporal short-circuit depends on.
	confirmedSortDirection = "desc"
)

// asset is the wire shape of a token amount inside a box.
type asset struct {
	TokenID  string `json:"tokenId"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Amount   int64  `json:"amount"`
}

// box is the wire shape of a transaction input or output. Mempool inputs are
// sometimes represented as a bare box-id string, which is upgraded to a
// structured reference on decode.
type box struct {
	BoxID   string  `json:"boxId"`
	Address string  `json:"address"`
	Value   int64   `json:"value"`
	Assets  []asset `json:"assets"`
}

// UnmarshalJSON accepts either a structured box object or a bare box-id
// string.
func (b *box) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.BoxID)
	}

	type boxAlias box
	var alias boxAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	*b = box(alias)
	return nil
}

// transactionRecord is the wire shape of one transaction.
type transactionRecord struct {
	ID              string `json:"id"`
	Inputs          []box  `json:"inputs"`
	Outputs         []box  `json:"outputs"`
	Size            int    `json:"size"`
	InclusionHeight *int64 `json:"inclusionHeight"`
	Height          *int64 `json:"height"`
	Timestamp       int64  `json:"timestamp"` // unix milliseconds, absent for mempool records
}

// pagedTransactions is the `{items: [...]}` envelope of the confirmed feed.
type pagedTransactions struct {
	Items []transactionRecord `json:"items"`
}

// mempoolTransactions accepts the mempool feed in either of its observed
// shapes: a bare list or an `{items: [...]}` envelope. Any other shape is
// treated as empty.
type mempoolTransactions struct {
	Items []transactionRecord
}

func (m *mempoolTransactions) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &m.Items)
	}

	var envelope pagedTransactions
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	m.Items = envelope.Items
	return nil
}

// toDomain converts a wire record to the monitor's normalized record shape.
// Mempool records get a nil height and the supplied synthesized timestamp.
func (r transactionRecord) toDomain(mempool bool, timestamp time.Time) monitor.TransactionRecord {
	record := monitor.TransactionRecord{
		ID:        r.ID,
		Inputs:    boxesToDomain(r.Inputs),
		Outputs:   boxesToDomain(r.Outputs),
		Size:      r.Size,
		Timestamp: timestamp,
		Mempool:   mempool,
	}

	if !mempool {
		record.Height = r.InclusionHeight
		if record.Height == nil {
			record.Height = r.Height
		}
	}

	return record
}

func boxesToDomain(boxes []box) []monitor.Box {
	out := make([]monitor.Box, len(boxes))
	for i, b := range boxes {
		assets := make([]monitor.BoxAsset, len(b.Assets))
		for j, a := range b.Assets {
			assets[j] = monitor.BoxAsset{
				TokenID:  a.TokenID,
				Name:     a.Name,
				Decimals: a.Decimals,
				Amount:   a.Amount,
			}
		}

		out[i] = monitor.Box{
			BoxID:   b.BoxID,
			Address: b.Address,
			Value:   b.Value,
			Assets:  assets,
		}
	}
	return out
}

// AddressTransactions implements monitor.ExplorerGateway. It returns the
// address's mempool records (normalized, timestamps synthesized to now)
// followed by the latest page of confirmed records, newest-first, exactly as
// the reconciler expects. Transient fetch failures yield an empty batch.
func (c *Client) AddressTransactions(ctx context.Context, address string) ([]monitor.TransactionRecord, error) {
	records := make([]monitor.TransactionRecord, 0)

	var mempool mempoolTransactions
	mempoolURL := fmt.Sprintf("%s/mempool/transactions/byAddress/%s", c.baseURL, address)
	if err := c.fetch(ctx, mempoolURL, nil, &mempool); err != nil {
		return nil, err
	}

	now := c.now()
	for _, raw := range mempool.Items {
		records = append(records, raw.toDomain(true, now))
	}

	var confirmed pagedTransactions
	confirmedURL := fmt.Sprintf("%s/addresses/%s/transactions", c.baseURL, address)
	params := url.Values{
		"offset":        {"0"},
		"limit":         {strconv.Itoa(confirmedPageLimit)},
		"sortDirection": {confirmedSortDirection},
	}
	if err := c.fetch(ctx, confirmedURL, params, &confirmed); err != nil {
		return nil, err
	}

	for _, raw := range confirmed.Items {
		records = append(records, raw.toDomain(false, time.UnixMilli(raw.Timestamp)))
	}

	return records, nil
}

// Compile-time check that *Client satisfies the ExplorerGateway interface.
var _ monitor.ExplorerGateway = (*Client)(nil)
