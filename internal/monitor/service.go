// Package monitor implements the address-watching core: a single-threaded
// scheduling loop that fetches transaction batches per watched address,
// reconciles them against dedup state, and fans newly discovered
// transactions out to registered notification handlers, plus a once-daily
// balance report.
package monitor

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gabapcia/ergowatch/internal/pkg/logger"
	"github.com/gabapcia/ergowatch/internal/pkg/resilience/retry"
	"github.com/gabapcia/ergowatch/internal/pkg/x/chflow"

	"github.com/google/uuid"
)

const (
	// defaultCheckInterval is the pause between monitoring ticks.
	defaultCheckInterval = 60 * time.Second

	// defaultDailyReportHour is the hour of day (0-23) at which the daily
	// balance report is dispatched.
	defaultDailyReportHour = 12
)

// Clock abstracts wall-clock reads so simulated time can be injected in tests.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service is the monitor's public surface: address registration, state
// snapshots for notification handlers, and the blocking run loop.
type Service interface {
	Snapshot

	// AddAddress registers an address for monitoring (see service.AddAddress).
	AddAddress(ctx context.Context, address, nickname string, hoursLookback int, reportBalance bool) error

	// Run drives the monitoring loop until ctx is canceled. The explorer
	// connection resources are released on every exit path.
	Run(ctx context.Context) error
}

// service implements Service. All mutable state (watched addresses, dedup
// sets, daily-report marker) is owned by the run loop; AddAddress and
// Addresses take the mutex only because they may be called from outside it.
type service struct {
	mu      sync.Mutex
	watched map[string]*AddressWatch

	explorer ExplorerGateway
	balances BalanceTracker
	analyzer TransactionAnalyzer
	handlers []TransactionHandler

	retry retry.Retry
	clock Clock

	checkInterval   time.Duration
	dailyReportHour int

	dedup           *dedupState
	lastDailyReport time.Time // zero value means no report has ever been sent
}

// Compile-time check that *service implements the Service interface.
var _ Service = (*service)(nil)

// config holds the optional settings applied by New.
type config struct {
	checkInterval   time.Duration
	dailyReportHour int
	clock           Clock
	retry           retry.Retry
}

// Option configures the monitor service.
type Option func(*config)

// New creates a monitor service wiring the explorer fetch layer, balance
// tracking, transaction analysis, and the notification handlers, which are
// invoked in the order given. If no options are provided, defaults are used:
// 60s check interval, daily report at hour 12, the system clock, and an
// exponential-backoff retry for balance refreshes.
func New(explorer ExplorerGateway, balances BalanceTracker, analyzer TransactionAnalyzer, handlers []TransactionHandler, opts ...Option) *service {
	cfg := config{
		checkInterval:   defaultCheckInterval,
		dailyReportHour: defaultDailyReportHour,
		clock:           systemClock{},
		retry:           retry.New(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		watched:         make(map[string]*AddressWatch),
		explorer:        explorer,
		balances:        balances,
		analyzer:        analyzer,
		handlers:        handlers,
		retry:           cfg.retry,
		clock:           cfg.clock,
		checkInterval:   cfg.checkInterval,
		dailyReportHour: cfg.dailyReportHour,
		dedup:           newDedupState(),
	}
}

// WithCheckInterval sets the pause between monitoring ticks. Default: 60s.
func WithCheckInterval(d time.Duration) Option {
	return func(c *config) {
		c.checkInterval = d
	}
}

// WithDailyReportHour sets the hour of day (0-23) at which the daily balance
// report is dispatched. Default: 12.
func WithDailyReportHour(hour int) Option {
	return func(c *config) {
		c.dailyReportHour = hour
	}
}

// WithClock injects a Clock, letting tests control simulated time.
func WithClock(clock Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithRetry overrides the retry mechanism used for balance refreshes.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// Run drives the monitoring loop: one tick immediately, then one per check
// interval until ctx is canceled. The explorer's connection resources are
// released exactly once when the loop exits, regardless of how it exits.
func (s *service) Run(ctx context.Context) error {
	defer func() {
		if err := s.explorer.Close(); err != nil {
			logger.Error(ctx, "error releasing explorer connections", "error", err)
		}
	}()

	logger.Info(ctx, "starting monitoring loop",
		"check.interval", s.checkInterval,
		"report.hour", s.dailyReportHour,
	)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		if _, ok := chflow.Receive(ctx, ticker.C); !ok {
			return ctx.Err()
		}
	}
}

// tick runs one full monitoring pass: daily report check, balance refresh,
// then a fetch+reconcile+notify pass over a snapshot of the watched
// addresses. A failure for one address is logged and never aborts the rest
// of the tick.
func (s *service) tick(ctx context.Context) {
	ctx = logger.Derive(ctx, "check.id", uuid.Must(uuid.NewV7()).String())

	now := s.clock.Now()
	if s.dailyReportDue(now) {
		s.sendDailyReport(ctx)
		s.lastDailyReport = now
	}

	s.refreshBalances(ctx)

	for _, address := range s.watchedAddresses() {
		if err := s.processAddress(ctx, address); err != nil {
			logger.Error(ctx, "error processing address",
				"address", address,
				"error", err,
			)
		}
	}
}

// processAddress reconciles one address and dispatches its newly discovered
// transactions, in ascending timestamp order, to every handler in
// registration order. Each handler call completes before the next begins.
func (s *service) processAddress(ctx context.Context, address string) error {
	s.mu.Lock()
	watch := s.watched[address]
	s.mu.Unlock()

	if watch == nil {
		return nil
	}

	fresh := s.checkAddress(ctx, watch)
	if len(fresh) == 0 {
		return nil
	}

	slices.SortStableFunc(fresh, func(a, b Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	for i := range fresh {
		for _, handler := range s.handlers {
			if err := handler.HandleTransaction(ctx, address, &fresh[i], s); err != nil {
				return err
			}
		}
	}

	return nil
}

// refreshBalances updates the cached balance of every watched address.
// Refreshes are best-effort: each address is retried independently and a
// persistent failure is logged without blocking the others.
func (s *service) refreshBalances(ctx context.Context) {
	for _, address := range s.watchedAddresses() {
		err := s.retry.Execute(ctx, func() error {
			balance, err := s.balances.CurrentBalance(ctx, address)
			if err != nil {
				return err
			}

			s.mu.Lock()
			if watch := s.watched[address]; watch != nil {
				watch.Balance = balance
			}
			s.mu.Unlock()
			return nil
		})
		if err != nil {
			logger.Error(ctx, "failed to update balance",
				"address", address,
				"error", err,
			)
		}
	}
}
