package render

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stonkboard/internal/chart"
	"stonkboard/internal/compare"
	"stonkboard/internal/provider"
)

func newTable(w io.Writer, opts Options, header ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false

	hdr := make(table.Row, len(header))
	for i, h := range header {
		hdr[i] = strings.ToUpper(h)
	}
	tw.AppendHeader(hdr)
	return tw
}

func rightAlign(cols ...int) []table.ColumnConfig {
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for _, n := range cols {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	return cfgs
}

// Board writes one line per pinned stock.
func Board(w io.Writer, rows []compare.Row, opts Options) {
	tw := newTable(w, opts, "sym", "name", "price", "chg%", "open", "high", "low", "eps reports", "status")
	tw.SetColumnConfigs(rightAlign(3, 4, 5, 6, 7, 8))
	for _, r := range rows {
		price, change := r.Price, r.Change
		if opts.Color {
			switch r.Direction {
			case compare.Up:
				price = text.Colors{text.FgGreen}.Sprint(price)
				change = text.Colors{text.FgGreen}.Sprint(change)
			case compare.Down:
				price = text.Colors{text.FgRed}.Sprint(price)
				change = text.Colors{text.FgRed}.Sprint(change)
			}
		}
		status := r.State
		if r.Error != "" {
			status = r.Error
		}
		reports := ""
		if r.State == "fetched" {
			reports = strconv.Itoa(r.Reports)
		}
		tw.AppendRow(table.Row{r.Symbol, r.Name, price, change, r.Open, r.High, r.Low, reports, status})
	}
	tw.Render()
}

// Search writes search matches in provider order.
func Search(w io.Writer, matches []provider.SearchResult, opts Options) {
	tw := newTable(w, opts, "sym", "name", "type", "region", "currency", "score")
	tw.SetColumnConfigs(rightAlign(6))
	for _, m := range matches {
		tw.AppendRow(table.Row{m.Symbol, m.Name, m.Type, m.Region, m.Currency, m.MatchScore})
	}
	tw.Render()
}

// Quote writes a single quote.
func Quote(w io.Writer, symbol string, q provider.Quote, opts Options) {
	tw := newTable(w, opts, "sym", "price", "chg%", "open", "high", "low")
	tw.SetColumnConfigs(rightAlign(2, 3, 4, 5, 6))
	change := compare.FormatChange(q.ChangePercent)
	if opts.Color {
		switch compare.DirectionOf(q.ChangePercent) {
		case compare.Up:
			change = text.Colors{text.FgGreen}.Sprint(change)
		case compare.Down:
			change = text.Colors{text.FgRed}.Sprint(change)
		}
	}
	tw.AppendRow(table.Row{
		symbol,
		compare.FormatPrice(q.Price),
		change,
		compare.FormatPrice(q.Open),
		compare.FormatPrice(q.High),
		compare.FormatPrice(q.Low),
	})
	tw.Render()
}

// Earnings writes the chartable EPS history, oldest first.
func Earnings(w io.Writer, points []chart.Point, opts Options) {
	tw := newTable(w, opts, "quarter", "eps")
	tw.SetColumnConfigs(rightAlign(2))
	for _, p := range points {
		tw.AppendRow(table.Row{chart.FormatChartDate(p.TS), strconv.FormatFloat(p.EPS, 'f', -1, 64)})
	}
	tw.Render()
}
