package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/config"
	"github.com/vango-dev/reactor/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// cli carries state shared by the subcommands.
type cli struct {
	configPath  string
	errorFormat string
	cfg         *config.Config
	logger      *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "reactor",
		Short: "Reactive runtime and tree reconciler",
		Long: `Reactor drives a fine-grained reactive runtime and a keyed tree
reconciler. Use it to:

  • Inspect the host operations a tree change produces (diff)
  • Compute longest increasing subsequences (lis)
  • Serve a live tree to WebSocket viewers (serve)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVar(&c.errorFormat, "error-format", errors.OutputPretty, "Error output: pretty, compact or json")

	rootCmd.AddCommand(
		c.diffCmd(),
		c.lisCmd(),
		c.serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// init loads the configuration and installs the logger.
func (c *cli) init(stderr io.Writer) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(c.logger)
	return nil
}

// run executes the command line and reports a failure on stderr in the
// requested error format. It returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		format, _ := cmd.PersistentFlags().GetString("error-format")
		errors.FprintAs(stderr, err, format)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
