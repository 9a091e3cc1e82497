package cli

import (
	"context"
	"errors"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gabapcia/ergowatch/internal/monitor"

	"github.com/urfave/cli/v3"
)

// startMonitorCommand returns a CLI command that registers the given
// addresses and runs the monitoring loop until it receives an interrupt
// (SIGINT or SIGTERM).
//
// Usage example:
//
//	ergowatch start --address 9f4QF8AD1nQ3nJahQVkMj8hFSVVzVom77b52JU7EW71Zexg6N8v=treasury
//
// Each --address value is either a bare address or address=nickname.
func startMonitorCommand(m monitor.Service) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Registers the given addresses and starts the transaction monitoring loop.",
		Usage:       "Runs until Ctrl+C or a termination signal; the daily balance report is dispatched at the configured hour.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "address",
				Usage:    "Address to watch, optionally as address=nickname. Repeatable.",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "lookback-hours",
				Usage: "How many hours of history to pick up on the first check.",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  "report-balance",
				Usage: "Include the addresses in the daily balance report.",
				Value: true,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			var (
				lookbackHours = int(c.Int("lookback-hours"))
				reportBalance = c.Bool("report-balance")
			)

			for _, value := range c.StringSlice("address") {
				address, nickname, _ := strings.Cut(value, "=")
				if err := m.AddAddress(ctx, address, nickname, lookbackHours, reportBalance); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
