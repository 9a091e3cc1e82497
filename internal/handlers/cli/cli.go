package cli

import (
	"context"
	"os"

	"github.com/gabapcia/ergowatch/internal/monitor"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the ergowatch CLI application.
//
// It registers all available commands, including:
//
//   - `start`: Registers the given addresses and runs the monitoring loop.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - m: The monitor service implementation driven by the commands.
//
// This function sets up shell completion and invokes the CLI framework to parse and run commands.
func Run(ctx context.Context, m monitor.Service) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "ergowatch",
		Description:           "Command-line interface for watching Ergo addresses and dispatching transaction notifications.",
		Usage:                 "ergowatch [command] [flags]",
		Commands: []*cli.Command{
			startMonitorCommand(m),
		},
	}

	return app.Run(ctx, os.Args)
}
