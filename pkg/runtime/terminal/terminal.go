package terminal

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/de-tools/weekly-pulse/pkg/runtime/terminal/commands"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	output  io.Writer
	logs    io.Writer
	now     func() time.Time
	rootCmd *cobra.Command

	logLevel string
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Logs receives structured logs; defaults to stderr so Output stays clean
	Logs io.Writer
	Now  func() time.Time
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logs == nil {
		opts.Logs = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cli := &CLI{
		output: opts.Output,
		logs:   opts.Logs,
		now:    opts.Now,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the command-line arguments
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "weekly-pulse",
		Short:         "Weekly year-over-year analytics reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := zerolog.ParseLevel(cli.logLevel)
			if err != nil {
				return err
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: cli.logs, TimeFormat: time.RFC3339}).
				Level(level).
				With().
				Timestamp().
				Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	cmd.SetOut(cli.output)
	cmd.PersistentFlags().StringVar(&cli.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	newRenderer := func(c commands.Composer) commands.Renderer {
		return NewRenderer(cli.output, c)
	}
	cmd.AddCommand(commands.NewReportCmd(cli.now, newRenderer))
	cmd.AddCommand(commands.NewWeekCmd(cli.now))
	cmd.AddCommand(commands.NewHistoryCmd())

	return cmd
}
