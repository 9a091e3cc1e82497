package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const otherAddress = "9hQ2PW4Vd6YvxcRZJM1LsAu7TgKNXp8EnB3mC5oDfUwS2aGkT1j"

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc := New(nil, nil, nil, nil)

		require.NotNil(t, svc)
		assert.Equal(t, 60*time.Second, svc.checkInterval)
		assert.Equal(t, 12, svc.dailyReportHour)
		assert.NotNil(t, svc.clock)
		assert.NotNil(t, svc.retry)
		assert.NotNil(t, svc.dedup)
		assert.True(t, svc.lastDailyReport.IsZero())
	})

	t.Run("custom options", func(t *testing.T) {
		clock := &fakeClock{current: time.Now()}
		svc := New(nil, nil, nil, nil,
			WithCheckInterval(5*time.Second),
			WithDailyReportHour(8),
			WithClock(clock),
			WithRetry(noRetry{}),
		)

		assert.Equal(t, 5*time.Second, svc.checkInterval)
		assert.Equal(t, 8, svc.dailyReportHour)
		assert.Equal(t, clock, svc.clock)
		assert.Equal(t, noRetry{}, svc.retry)
	})
}

func TestService_ProcessAddress(t *testing.T) {
	baseTime := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)

	confirmedRecord := func(id string, ts time.Time, height int64) TransactionRecord {
		return TransactionRecord{ID: id, Timestamp: ts, Height: &height}
	}

	t.Run("dispatches ascending by timestamp, handlers in registration order", func(t *testing.T) {
		explorer := newExplorerGatewayMock(t)
		// Feed arrives newest-first; dispatch must be oldest-first.
		explorer.On("AddressTransactions", mock.Anything, testAddress).
			Return([]TransactionRecord{
				confirmedRecord("tx-newer", baseTime.Add(-5*time.Minute), 1200301),
				confirmedRecord("tx-older", baseTime.Add(-10*time.Minute), 1200300),
			}, nil)

		var calls []string
		record := func(name string) func(mock.Arguments) {
			return func(args mock.Arguments) {
				tx := args.Get(2).(*Transaction)
				calls = append(calls, name+":"+tx.ID)
			}
		}

		first := newTransactionHandlerMock(t)
		first.On("HandleTransaction", mock.Anything, testAddress, mock.Anything, mock.Anything).
			Run(record("first")).Return(nil)

		second := newTransactionHandlerMock(t)
		second.On("HandleTransaction", mock.Anything, testAddress, mock.Anything, mock.Anything).
			Run(record("second")).Return(nil)

		clock := &fakeClock{current: baseTime}
		svc := New(explorer, nil, passthroughAnalyzer(), []TransactionHandler{first, second}, WithClock(clock))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		err := svc.processAddress(t.Context(), testAddress)
		require.NoError(t, err)

		assert.Equal(t, []string{
			"first:tx-older",
			"second:tx-older",
			"first:tx-newer",
			"second:tx-newer",
		}, calls)
	})

	t.Run("handler failure stops the dispatch chain", func(t *testing.T) {
		explorer := newExplorerGatewayMock(t)
		explorer.On("AddressTransactions", mock.Anything, testAddress).
			Return([]TransactionRecord{
				confirmedRecord("tx-1", baseTime.Add(-5*time.Minute), 1200300),
			}, nil)

		expectedErr := errors.New("notification channel down")
		first := newTransactionHandlerMock(t)
		first.On("HandleTransaction", mock.Anything, testAddress, mock.Anything, mock.Anything).
			Return(expectedErr)

		second := newTransactionHandlerMock(t)
		second.On("HandleTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil).Maybe()

		clock := &fakeClock{current: baseTime}
		svc := New(explorer, nil, passthroughAnalyzer(), []TransactionHandler{first, second}, WithClock(clock))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		err := svc.processAddress(t.Context(), testAddress)
		assert.ErrorIs(t, err, expectedErr)
		second.AssertNotCalled(t, "HandleTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no fresh transactions means no handler calls", func(t *testing.T) {
		explorer := newExplorerGatewayMock(t)
		explorer.On("AddressTransactions", mock.Anything, testAddress).
			Return([]TransactionRecord{}, nil)

		handler := newTransactionHandlerMock(t)

		clock := &fakeClock{current: baseTime}
		svc := New(explorer, nil, passthroughAnalyzer(), []TransactionHandler{handler}, WithClock(clock))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		err := svc.processAddress(t.Context(), testAddress)
		assert.NoError(t, err)
	})

	t.Run("unwatched address is a no-op", func(t *testing.T) {
		explorer := newExplorerGatewayMock(t)

		svc := New(explorer, nil, passthroughAnalyzer(), nil)

		err := svc.processAddress(t.Context(), testAddress)
		assert.NoError(t, err)
	})
}

func TestService_RefreshBalances(t *testing.T) {
	clock := &fakeClock{current: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)}

	t.Run("updates the cached balance of every address", func(t *testing.T) {
		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{Ergs: 3.5}, nil)

		svc := New(nil, balances, nil, nil, WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		svc.refreshBalances(t.Context())

		assert.InDelta(t, 3.5, svc.Addresses()[0].Balance.Ergs, 1e-12)
	})

	t.Run("one failing address does not block the others", func(t *testing.T) {
		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{}, errors.New("balance endpoint down"))
		balances.On("CurrentBalance", mock.Anything, otherAddress).Return(Balance{Ergs: 7}, nil)

		svc := New(nil, balances, nil, nil, WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "a", 1, true))
		require.NoError(t, svc.AddAddress(t.Context(), otherAddress, "b", 1, true))

		svc.refreshBalances(t.Context())

		for _, watch := range svc.Addresses() {
			if watch.Address == otherAddress {
				assert.InDelta(t, 7.0, watch.Balance.Ergs, 1e-12)
			}
		}
	})
}

func TestService_DailyReportDue(t *testing.T) {
	svc := New(nil, nil, nil, nil, WithDailyReportHour(12))

	t.Run("due at the report hour when never sent", func(t *testing.T) {
		now := time.Date(2025, time.June, 1, 12, 15, 0, 0, time.UTC)
		assert.True(t, svc.dailyReportDue(now))
	})

	t.Run("not due outside the report hour", func(t *testing.T) {
		now := time.Date(2025, time.June, 1, 13, 0, 0, 0, time.UTC)
		assert.False(t, svc.dailyReportDue(now))
	})

	t.Run("not due twice on the same day", func(t *testing.T) {
		svc := New(nil, nil, nil, nil, WithDailyReportHour(12))
		svc.lastDailyReport = time.Date(2025, time.June, 1, 12, 5, 0, 0, time.UTC)

		now := time.Date(2025, time.June, 1, 12, 45, 0, 0, time.UTC)
		assert.False(t, svc.dailyReportDue(now))
	})

	t.Run("due again the next day", func(t *testing.T) {
		svc := New(nil, nil, nil, nil, WithDailyReportHour(12))
		svc.lastDailyReport = time.Date(2025, time.June, 1, 12, 5, 0, 0, time.UTC)

		now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
		assert.True(t, svc.dailyReportDue(now))
	})

	t.Run("next day outside the report hour is skipped", func(t *testing.T) {
		svc := New(nil, nil, nil, nil, WithDailyReportHour(12))
		svc.lastDailyReport = time.Date(2025, time.June, 1, 12, 5, 0, 0, time.UTC)

		now := time.Date(2025, time.June, 2, 14, 0, 0, 0, time.UTC)
		assert.False(t, svc.dailyReportDue(now), "there is no catch-up for a missed report hour")
	})
}

func TestService_SendDailyReport(t *testing.T) {
	clock := &fakeClock{current: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}

	t.Run("dispatches the pseudo-event to every handler", func(t *testing.T) {
		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{Ergs: 1}, nil)

		handler := newTransactionHandlerMock(t)
		handler.On("HandleTransaction", mock.Anything, DailyReportAddress, (*Transaction)(nil), mock.Anything).
			Return(nil)

		svc := New(nil, balances, nil, []TransactionHandler{handler}, WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		svc.sendDailyReport(t.Context())
	})

	t.Run("skipped when no address opted into the report", func(t *testing.T) {
		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{Ergs: 1}, nil)

		handler := newTransactionHandlerMock(t)

		svc := New(nil, balances, nil, []TransactionHandler{handler}, WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, false))

		svc.sendDailyReport(t.Context())

		handler.AssertNotCalled(t, "HandleTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("handler failure is absorbed and stops the chain", func(t *testing.T) {
		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{Ergs: 1}, nil)

		first := newTransactionHandlerMock(t)
		first.On("HandleTransaction", mock.Anything, DailyReportAddress, (*Transaction)(nil), mock.Anything).
			Return(errors.New("stream unavailable"))

		second := newTransactionHandlerMock(t)

		svc := New(nil, balances, nil, []TransactionHandler{first, second}, WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		assert.NotPanics(t, func() {
			svc.sendDailyReport(t.Context())
		})
		second.AssertNotCalled(t, "HandleTransaction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Tick(t *testing.T) {
	t.Run("full pass refreshes balances and dispatches fresh transactions", func(t *testing.T) {
		baseTime := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
		height := int64(1200300)

		explorer := newExplorerGatewayMock(t)
		explorer.On("AddressTransactions", mock.Anything, testAddress).
			Return([]TransactionRecord{
				{ID: "tx-1", Timestamp: baseTime.Add(-30 * time.Minute), Height: &height},
			}, nil)

		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{Ergs: 2}, nil)

		handler := newTransactionHandlerMock(t)
		handler.On("HandleTransaction", mock.Anything, testAddress, mock.Anything, mock.Anything).
			Return(nil).Once()

		clock := &fakeClock{current: baseTime}
		svc := New(explorer, balances, passthroughAnalyzer(), []TransactionHandler{handler},
			WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		svc.tick(t.Context())

		assert.InDelta(t, 2.0, svc.Addresses()[0].Balance.Ergs, 1e-12)
		assert.True(t, svc.lastDailyReport.IsZero(), "no report outside the configured hour")
	})

	t.Run("daily report fires once per day", func(t *testing.T) {
		clock := &fakeClock{current: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}

		explorer := newExplorerGatewayMock(t)
		explorer.On("AddressTransactions", mock.Anything, testAddress).
			Return([]TransactionRecord{}, nil)

		balances := newBalanceTrackerMock(t)
		balances.On("CurrentBalance", mock.Anything, testAddress).Return(Balance{Ergs: 1}, nil)

		handler := newTransactionHandlerMock(t)
		handler.On("HandleTransaction", mock.Anything, DailyReportAddress, (*Transaction)(nil), mock.Anything).
			Return(nil).Once()

		svc := New(explorer, balances, passthroughAnalyzer(), []TransactionHandler{handler},
			WithClock(clock), WithRetry(noRetry{}))
		require.NoError(t, svc.AddAddress(t.Context(), testAddress, "t", 1, true))

		svc.tick(t.Context())
		assert.Equal(t, clock.current, svc.lastDailyReport)

		// Still within the report hour on the same day: no second report.
		clock.current = clock.current.Add(30 * time.Minute)
		svc.tick(t.Context())
	})
}

func TestService_Run(t *testing.T) {
	t.Run("releases the explorer on exit", func(t *testing.T) {
		explorer := newExplorerGatewayMock(t)
		explorer.On("Close").Return(nil).Once()

		clock := &fakeClock{current: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)}
		svc := New(explorer, nil, passthroughAnalyzer(), nil,
			WithClock(clock),
			WithCheckInterval(10*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := svc.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("close failure is logged, not returned", func(t *testing.T) {
		explorer := newExplorerGatewayMock(t)
		explorer.On("Close").Return(errors.New("already closed")).Once()

		clock := &fakeClock{current: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)}
		svc := New(explorer, nil, passthroughAnalyzer(), nil,
			WithClock(clock),
			WithCheckInterval(10*time.Millisecond),
		)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		err := svc.Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
