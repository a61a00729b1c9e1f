package compare

import (
	"strconv"
	"strings"
	"time"

	"stonkboard/internal/board"
)

// Direction of a quote's change percent.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Flat    Direction = "flat"
	Unknown Direction = ""
)

// Row is the display form of one pinned stock.
type Row struct {
	ID            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Key           string     `json:"key"`
	State         string     `json:"state"`
	Price         string     `json:"price,omitempty"`
	Open          string     `json:"open,omitempty"`
	High          string     `json:"high,omitempty"`
	Low           string     `json:"low,omitempty"`
	ChangePercent string     `json:"change_percent,omitempty"`
	Change        string     `json:"change,omitempty"`
	Direction     Direction  `json:"direction,omitempty"`
	Reports       int        `json:"reports"`
	Error         string     `json:"error,omitempty"`
	FetchedAt     *time.Time `json:"fetched_at,omitempty"`
}

// Rows builds one row per view, keeping pin order.
func Rows(views []board.View) []Row {
	out := make([]Row, 0, len(views))
	for _, v := range views {
		out = append(out, RowOf(v))
	}
	return out
}

func RowOf(v board.View) Row {
	r := Row{
		ID:     v.Entry.ID,
		Symbol: v.Entry.Symbol,
		Name:   v.Entry.Name,
		Key:    v.Entry.Key,
		State:  v.State.String(),
	}
	if v.Err != nil {
		r.Error = board.UserMessage(v.Err)
	}
	if q := v.Stock.Quote; q != nil {
		r.Price = FormatPrice(q.Price)
		r.Open = FormatPrice(q.Open)
		r.High = FormatPrice(q.High)
		r.Low = FormatPrice(q.Low)
		r.ChangePercent = q.ChangePercent
		r.Change = FormatChange(q.ChangePercent)
		r.Direction = DirectionOf(q.ChangePercent)
		if !q.FetchedAt.IsZero() {
			ts := q.FetchedAt
			r.FetchedAt = &ts
		}
	}
	if e := v.Stock.Earnings; e != nil {
		r.Reports = len(e.Reports)
	}
	return r
}

// FormatPrice prefixes a provider price with a dollar sign. Empty stays empty.
func FormatPrice(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return "$" + p
}

// DirectionOf parses a change percent such as "-1.2%".
func DirectionOf(changePercent string) Direction {
	s := strings.TrimSuffix(strings.TrimSpace(changePercent), "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Unknown
	}
	switch {
	case f > 0:
		return Up
	case f < 0:
		return Down
	default:
		return Flat
	}
}

// FormatChange marks a change percent with an arrow. Zero and unparseable
// values are returned as is.
func FormatChange(changePercent string) string {
	switch DirectionOf(changePercent) {
	case Up:
		return "🔼 " + changePercent
	case Down:
		return "🔽 " + changePercent
	default:
		return changePercent
	}
}
