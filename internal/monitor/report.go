package monitor

import (
	"context"
	"time"

	"github.com/gabapcia/ergowatch/internal/pkg/logger"
)

// dailyReportDue reports whether the daily balance report should be sent at
// the given instant: the current date is newer than the last report's date
// (or no report has ever been sent) and the current hour matches the
// configured report hour exactly. There is no catch-up; if the process is
// not running during the report hour, that day's report is skipped.
func (s *service) dailyReportDue(now time.Time) bool {
	if !s.lastDailyReport.IsZero() {
		lastYear, lastMonth, lastDay := s.lastDailyReport.Date()
		year, month, day := now.Date()

		sameOrEarlierDate := year < lastYear ||
			(year == lastYear && month < lastMonth) ||
			(year == lastYear && month == lastMonth && day <= lastDay)
		if sameOrEarlierDate {
			return false
		}
	}

	return now.Hour() == s.dailyReportHour
}

// sendDailyReport refreshes all balances and dispatches the daily-report
// pseudo-event (DailyReportAddress, nil transaction) to every handler.
// Handlers read the reportable addresses from the snapshot. Failures are
// logged and absorbed; a broken handler must not stall the monitor loop.
func (s *service) sendDailyReport(ctx context.Context) {
	s.refreshBalances(ctx)

	reportable := false
	for _, watch := range s.Addresses() {
		if watch.ReportBalance {
			reportable = true
			break
		}
	}
	if !reportable {
		return
	}

	for _, handler := range s.handlers {
		if err := handler.HandleTransaction(ctx, DailyReportAddress, nil, s); err != nil {
			logger.Error(ctx, "error sending daily balance report", "error", err)
			return
		}
	}

	logger.Info(ctx, "daily balance report sent")
}
