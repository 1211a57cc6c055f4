// Package plot renders a loaded stats series as a self-contained HTML
// line chart.
package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/linestat/internal/snapshot"
)

const dateLayout = "2006-01-02"

// Options controls the rendered chart.
type Options struct {
	Title  string
	Width  int
	Height int
}

// RenderSeries writes an HTML page with one line chart: code and
// comment totals over commit time. Points arrive chronological and are
// plotted as-is, one per commit.
func RenderSeries(series []snapshot.SeriesPoint, options Options, out io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", options.Width),
			Height: fmt.Sprintf("%dpx", options.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: options.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	dates := make([]string, len(series))
	code := make([]opts.LineData, len(series))
	comments := make([]opts.LineData, len(series))

	for i, point := range series {
		dates[i] = point.Date.Format(dateLayout)
		code[i] = opts.LineData{Value: point.Code}
		comments[i] = opts.LineData{Value: point.Comments}
	}

	smooth := charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)})

	line.SetXAxis(dates).
		AddSeries("Code", code, smooth).
		AddSeries("Comments", comments, smooth)

	renderErr := line.Render(out)
	if renderErr != nil {
		return fmt.Errorf("render chart: %w", renderErr)
	}

	return nil
}
