package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stonkboard/internal/board"
	"stonkboard/internal/cache"
	"stonkboard/internal/chart"
	"stonkboard/internal/compare"
	"stonkboard/internal/pinned"
	"stonkboard/internal/provider"
	"stonkboard/internal/render"
)

func newSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search ticker symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := e.board.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return userError(err)
			}
			if e.json {
				return render.JSON(cmd.OutOrStdout(), res, e.opts)
			}
			render.Search(cmd.OutOrStdout(), res.BestMatches, e.opts)
			return nil
		},
	}
}

func newQuoteCmd(e *env) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Show the latest quote for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, entry, err := loadOne(cmd, e, pinned.Stock{Symbol: args[0], Name: name})
			if err != nil {
				return err
			}
			if e.json {
				return render.JSON(cmd.OutOrStdout(), stock.Quote, e.opts)
			}
			render.Quote(cmd.OutOrStdout(), entry.Symbol, *stock.Quote, e.opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "listing name, to tell share classes apart")
	return cmd
}

func newEarningsCmd(e *env) *cobra.Command {
	var name, chartFile string
	cmd := &cobra.Command{
		Use:   "earnings <symbol>",
		Short: "Show quarterly EPS history for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, entry, err := loadOne(cmd, e, pinned.Stock{Symbol: args[0], Name: name})
			if err != nil {
				return err
			}
			points := chart.EarningsData(stock.Earnings.Reports)
			if chartFile != "" {
				if err := writeChart(chartFile, entry.Symbol, points); err != nil {
					return err
				}
			}
			if e.json {
				return render.JSON(cmd.OutOrStdout(), points, e.opts)
			}
			render.Earnings(cmd.OutOrStdout(), points, e.opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "listing name, to tell share classes apart")
	cmd.Flags().StringVar(&chartFile, "chart", "", "also write the EPS chart to this PNG file")
	return cmd
}

func newBoardCmd(e *env) *cobra.Command {
	var pinsFile, chartDir string
	cmd := &cobra.Command{
		Use:   "board [SYMBOL[~NAME]...]",
		Short: "Pin up to three stocks and compare them",
		RunE: func(cmd *cobra.Command, args []string) error {
			stocks, err := parsePinArgs(args)
			if err != nil {
				return err
			}
			if pinsFile != "" {
				fromFile, err := loadPinsFile(pinsFile)
				if err != nil {
					return err
				}
				stocks = append(fromFile, stocks...)
			}
			if len(stocks) == 0 {
				return errors.New("nothing to pin: pass symbols or --pins")
			}

			for _, s := range stocks {
				if _, ok := e.board.Pin(provider.SearchResult{Symbol: s.Symbol, Name: s.Name}); !ok {
					e.log.Warn().Str("key", s.Key()).Int("max", e.board.Pinned().Cap()).Msg("not pinned: duplicate or board full")
				}
			}

			// Each entry fails on its own; the board shows the failure.
			var g errgroup.Group
			for _, entry := range e.board.Pinned().Entries() {
				g.Go(func() error {
					_, _ = e.board.Load(cmd.Context(), entry.ID)
					return nil
				})
			}
			_ = g.Wait()

			views := e.board.Views()
			if chartDir != "" {
				if err := writeCharts(chartDir, views, e); err != nil {
					return err
				}
			}
			rows := compare.Rows(views)
			if e.json {
				return render.JSON(cmd.OutOrStdout(), rows, e.opts)
			}
			render.Board(cmd.OutOrStdout(), rows, e.opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&pinsFile, "pins", "", "YAML file listing stocks to pin")
	cmd.Flags().StringVar(&chartDir, "chart-dir", "", "write one EPS chart PNG per fetched stock into this directory")
	return cmd
}

// loadOne pins s on the session board and loads it.
func loadOne(cmd *cobra.Command, e *env, s pinned.Stock) (cache.Stock, pinned.Entry, error) {
	s.Symbol = strings.ToUpper(strings.TrimSpace(s.Symbol))
	entry, ok := e.board.Pin(provider.SearchResult{Symbol: s.Symbol, Name: s.Name})
	if !ok {
		return cache.Stock{}, pinned.Entry{}, fmt.Errorf("cannot pin %s", s.Key())
	}
	stock, err := e.board.Load(cmd.Context(), entry.ID)
	if err != nil {
		return cache.Stock{}, entry, userError(err)
	}
	return stock, entry, nil
}

func writeCharts(dir string, views []board.View, e *env) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chart dir: %w", err)
	}
	for _, v := range views {
		if v.State != board.Fetched || v.Stock.Earnings == nil {
			continue
		}
		path := filepath.Join(dir, chartFileName(v.Entry))
		err := writeChart(path, v.Entry.Symbol, chart.EarningsData(v.Stock.Earnings.Reports))
		if errors.Is(err, chart.ErrNoData) {
			e.log.Info().Str("symbol", v.Entry.Symbol).Msg("no earnings to chart")
			continue
		}
		if err != nil {
			return err
		}
		e.log.Info().Str("file", path).Msg("chart written")
	}
	return nil
}

func writeChart(path, symbol string, points []chart.Point) error {
	img, err := chart.RenderEPS(symbol+" EPS", points)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// chartFileName is the entry's symbol made safe for a file name.
func chartFileName(e pinned.Entry) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, e.Symbol)
	return name + "-eps.png"
}

// userError replaces provider failures with the message a user should see,
// keeping the cause for errors.Is/As.
func userError(err error) error {
	return fmt.Errorf("%s: %w", board.UserMessage(err), err)
}
