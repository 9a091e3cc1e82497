// Package redis implements a notification handler that publishes monitor
// events to a Redis Stream, letting any number of downstream consumers
// (chat bots, alerting, archival) read them at their own pace.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gabapcia/ergowatch/internal/monitor"

	redis "github.com/redis/go-redis/v9"
)

const (
	// notificationStream is the Redis Stream to which all monitor events
	// are appended.
	notificationStream = "ergowatch:notifications"

	// eventTypeTransaction marks a new-transaction event.
	eventTypeTransaction = "transaction"

	// eventTypeDailyReport marks the once-daily balance report event.
	eventTypeDailyReport = "daily_report"
)

// reportEntry is one address's line in the serialized daily report.
type reportEntry struct {
	Nickname string                          `json:"nickname"`
	Address  string                          `json:"address"`
	Ergs     float64                         `json:"ergs"`
	Tokens   map[string]monitor.TokenBalance `json:"tokens,omitempty"`
}

// HandleTransaction implements monitor.TransactionHandler. New transactions
// are appended to the notification stream as flat field/value entries;
// the daily-report pseudo-event is rendered from the monitor snapshot into
// a single JSON payload.
func (c *client) HandleTransaction(ctx context.Context, address string, tx *monitor.Transaction, m monitor.Snapshot) error {
	if address == monitor.DailyReportAddress {
		return c.publishDailyReport(ctx, m)
	}

	nickname := address
	for _, watch := range m.Addresses() {
		if watch.Address == address {
			nickname = watch.Nickname
			break
		}
	}

	tokens, err := json.Marshal(tx.Tokens)
	if err != nil {
		return err
	}

	values := map[string]any{
		"type":      eventTypeTransaction,
		"address":   address,
		"nickname":  nickname,
		"tx_id":     tx.ID,
		"value":     fmt.Sprintf("%.9f", tx.Value),
		"tokens":    string(tokens),
		"mempool":   tx.Mempool,
		"timestamp": tx.Timestamp.UnixMilli(),
	}
	if tx.Height != nil {
		values["height"] = *tx.Height
	}

	return c.conn.XAdd(ctx, &redis.XAddArgs{
		Stream: notificationStream,
		Values: values,
	}).Err()
}

// publishDailyReport renders the balances of every reportable address,
// sorted by nickname for stable ordering, and appends them as one event.
func (c *client) publishDailyReport(ctx context.Context, m monitor.Snapshot) error {
	entries := make([]reportEntry, 0)
	for _, watch := range m.Addresses() {
		if !watch.ReportBalance {
			continue
		}

		entries = append(entries, reportEntry{
			Nickname: watch.Nickname,
			Address:  watch.Address,
			Ergs:     watch.Balance.Ergs,
			Tokens:   watch.Balance.Tokens,
		})
	}

	if len(entries) == 0 {
		return nil
	}

	slices.SortFunc(entries, func(a, b reportEntry) int {
		return strings.Compare(a.Nickname, b.Nickname)
	})

	report, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return c.conn.XAdd(ctx, &redis.XAddArgs{
		Stream: notificationStream,
		Values: map[string]any{
			"type":      eventTypeDailyReport,
			"report":    string(report),
			"timestamp": time.Now().UnixMilli(),
		},
	}).Err()
}

// Compile-time check that *client satisfies the TransactionHandler interface.
var _ monitor.TransactionHandler = (*client)(nil)
