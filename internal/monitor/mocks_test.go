package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/gabapcia/ergowatch/internal/pkg/logger"

	"github.com/stretchr/testify/mock"
)

func init() {
	// Initialize logger for tests to prevent nil pointer dereference
	_ = logger.Init("error") // Use error level to reduce test output
}

type explorerGatewayMock struct{ mock.Mock }

func newExplorerGatewayMock(t *testing.T) *explorerGatewayMock {
	m := new(explorerGatewayMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *explorerGatewayMock) AddressTransactions(ctx context.Context, address string) ([]TransactionRecord, error) {
	args := m.Called(ctx, address)

	var records []TransactionRecord
	if v := args.Get(0); v != nil {
		records = v.([]TransactionRecord)
	}
	return records, args.Error(1)
}

func (m *explorerGatewayMock) Close() error {
	return m.Called().Error(0)
}

type balanceTrackerMock struct{ mock.Mock }

func newBalanceTrackerMock(t *testing.T) *balanceTrackerMock {
	m := new(balanceTrackerMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *balanceTrackerMock) CurrentBalance(ctx context.Context, address string) (Balance, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(Balance), args.Error(1)
}

type transactionHandlerMock struct{ mock.Mock }

func newTransactionHandlerMock(t *testing.T) *transactionHandlerMock {
	m := new(transactionHandlerMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *transactionHandlerMock) HandleTransaction(ctx context.Context, address string, tx *Transaction, s Snapshot) error {
	return m.Called(ctx, address, tx, s).Error(0)
}

// analyzerFunc adapts a function to the TransactionAnalyzer interface.
type analyzerFunc func(record TransactionRecord, address string) Transaction

func (f analyzerFunc) ExtractDetails(record TransactionRecord, address string) Transaction {
	return f(record, address)
}

// passthroughAnalyzer carries the record fields over unchanged and flags every
// transaction with a significant 1 ERG delta.
func passthroughAnalyzer() analyzerFunc {
	return func(record TransactionRecord, address string) Transaction {
		return Transaction{
			ID:        record.ID,
			Timestamp: record.Timestamp,
			Height:    record.Height,
			Value:     1,
			Mempool:   record.Mempool,
		}
	}
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

// noRetry executes the operation exactly once.
type noRetry struct{}

func (noRetry) Execute(ctx context.Context, operation func() error) error {
	return operation()
}
