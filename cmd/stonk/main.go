// Command stonk searches symbols and prints quotes, earnings and a pinned
// board from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stonkboard/internal/app"
	"stonkboard/internal/board"
	"stonkboard/internal/config"
	"stonkboard/internal/logger"
	"stonkboard/internal/render"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

// newBoard is replaced in tests.
var newBoard = app.NewBoard

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every subcommand runs against.
type env struct {
	cfg   config.Config
	log   zerolog.Logger
	board *board.Board
	opts  render.Options
	json  bool
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "stonk",
		Short:         "Search stocks, pin a few and compare their quotes and earnings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
				cfg.Log.Level = lvl
			}
			e.cfg = cfg
			e.log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: true, Out: cmd.ErrOrStderr()})

			e.board, err = newBoard(cfg, e.log)
			if err != nil {
				return err
			}
			noColor, _ := cmd.Flags().GetBool("no-color")
			e.json, _ = cmd.Flags().GetBool("json")
			e.opts = render.Options{Color: !noColor, PrettyJSON: true}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.board != nil {
				e.board.Close()
			}
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config.json)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().Bool("json", false, "print JSON instead of a table")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newSearchCmd(e))
	root.AddCommand(newQuoteCmd(e))
	root.AddCommand(newEarningsCmd(e))
	root.AddCommand(newBoardCmd(e))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stonk %s (%s)\n", version, commit)
		},
	}
}
