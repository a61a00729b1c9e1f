// Package chart turns earnings reports into EPS series and renders them.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	charts "github.com/vicanso/go-charts/v2"

	"stonkboard/internal/provider"
)

// MaxReports is how many of the most recent quarterly reports are charted.
const MaxReports = 20

const fiscalDateLayout = "2006-01-02"

var ErrNoData = errors.New("chart: no data points")

// Point is one EPS sample at the start of its fiscal end date, in unix seconds (UTC).
type Point struct {
	TS  int64   `json:"ts"`
	EPS float64 `json:"EPS"`
}

// EarningsData converts reports (newest first) into chart points, oldest first.
// Only the MaxReports newest reports are used. Reports whose date or EPS does
// not parse to a finite number are skipped.
func EarningsData(reports []provider.EarningsReport) []Point {
	if len(reports) > MaxReports {
		reports = reports[:MaxReports]
	}
	out := make([]Point, 0, len(reports))
	for i := len(reports) - 1; i >= 0; i-- {
		r := reports[i]
		day, err := time.ParseInLocation(fiscalDateLayout, strings.TrimSpace(r.FiscalDateEnding), time.UTC)
		if err != nil {
			continue
		}
		eps, err := strconv.ParseFloat(strings.TrimSpace(r.ReportedEPS), 64)
		if err != nil || math.IsNaN(eps) || math.IsInf(eps, 0) {
			continue
		}
		out = append(out, Point{TS: day.Unix(), EPS: eps})
	}
	return out
}

// FormatChartDate labels an axis tick with its month, e.g. "May 2021".
func FormatChartDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("Jan 2006")
}

// RenderEPS draws points as a PNG line chart.
func RenderEPS(title string, points []Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}

	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	minEPS, maxEPS := points[0].EPS, points[0].EPS
	for _, p := range points {
		labels = append(labels, FormatChartDate(p.TS))
		values = append(values, p.EPS)
		minEPS = min(minEPS, p.EPS)
		maxEPS = max(maxEPS, p.EPS)
	}
	if minEPS == maxEPS {
		minEPS--
		maxEPS++
	}

	painter, err := charts.LineRender([][]float64{values},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: min(len(labels), 6),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &minEPS,
			Max:         &maxEPS,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(800),
		charts.HeightOptionFunc(400),
	)
	if err != nil {
		return nil, fmt.Errorf("render eps chart: %w", err)
	}

	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encode eps chart: %w", err)
	}
	return buf, nil
}
