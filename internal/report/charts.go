package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartImage is one rendered chart file with its caption.
type ChartImage struct {
	Path    string
	Caption string
}

type chartLine struct {
	name   string
	values []float64
	color  drawing.Color
}

// RenderCharts renders the report's chart set as PNG files under dir. A chart
// that fails to render is skipped; the rest are still produced.
func (r *Report) RenderCharts(dir string, userID int64) ([]ChartImage, []error) {
	summary := r.Summary()
	monthly := r.Monthly()
	cumMonthly := r.CumulativeMonthly()
	daily := r.Daily()
	cumDaily := r.CumulativeDaily()

	specs := []struct {
		file    string
		caption string
		render  func(path string) error
	}{
		{
			file:    fmt.Sprintf("summary_%d.png", userID),
			caption: "Income, expense and balance",
			render: func(path string) error {
				return renderBars(path, "Summary", summary)
			},
		},
		{
			file:    fmt.Sprintf("monthly_%d.png", userID),
			caption: "By month",
			render: func(path string) error {
				return renderLines(path, "Income and expense by month", monthly.Labels,
					chartLine{"Income", monthly.Income, chart.ColorGreen},
					chartLine{"Expense", monthly.Expense, chart.ColorRed})
			},
		},
		{
			file:    fmt.Sprintf("cumulative_%d.png", userID),
			caption: "Cumulative balance by month",
			render: func(path string) error {
				return renderLines(path, "Cumulative balance by month", cumMonthly.Labels,
					chartLine{"Balance", cumMonthly.Values, chart.ColorBlue})
			},
		},
		{
			file:    fmt.Sprintf("timeline_%d.png", userID),
			caption: "Daily dynamics",
			render: func(path string) error {
				return renderLines(path, "Daily dynamics", daily.Labels,
					chartLine{"Income", daily.Income, chart.ColorGreen},
					chartLine{"Expense", daily.Expense, chart.ColorRed},
					chartLine{"Net", daily.Net, chart.ColorBlue})
			},
		},
		{
			file:    fmt.Sprintf("cumulative_daily_%d.png", userID),
			caption: "Cumulative balance by day",
			render: func(path string) error {
				return renderLines(path, "Cumulative balance by day", cumDaily.Labels,
					chartLine{"Balance", cumDaily.Values, chart.ColorBlue})
			},
		},
	}

	var images []ChartImage
	var errs []error
	for _, spec := range specs {
		path := filepath.Join(dir, spec.file)
		if err := spec.render(path); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", spec.file, err))
			continue
		}
		images = append(images, ChartImage{Path: path, Caption: spec.caption})
	}
	return images, errs
}

func renderBars(path, title string, s Series) error {
	bars := make([]chart.Value, len(s.Values))
	for i := range s.Values {
		bars[i] = chart.Value{Label: s.Labels[i], Value: s.Values[i]}
	}
	graph := chart.BarChart{
		Title:    title,
		Width:    800,
		Height:   600,
		BarWidth: 80,
		Bars:     bars,
	}
	return renderToFile(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

func renderLines(path, title string, labels []string, lines ...chartLine) error {
	// go-chart cannot plot a single point; extend one-point series flat.
	padded := len(labels) == 1
	ticks := make([]chart.Tick, 0, len(labels)+1)
	for i, label := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	if padded {
		ticks = append(ticks, chart.Tick{Value: 1, Label: ""})
	}

	series := make([]chart.Series, 0, len(lines))
	for _, l := range lines {
		values := l.values
		if padded {
			values = append(values, values[0])
		}
		xs := make([]float64, len(values))
		for i := range values {
			xs[i] = float64(i)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    l.name,
			XValues: xs,
			YValues: values,
			Style: chart.Style{
				StrokeColor: l.color,
				StrokeWidth: 2,
			},
		})
	}

	graph := chart.Chart{
		Title:  title,
		Width:  1000,
		Height: 500,
		XAxis:  chart.XAxis{Ticks: ticks},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderToFile(path, func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

func renderToFile(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
