package trackers

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pkg/errors"
	"github.com/samuelfneumann/rlcore/experiment/tracker"
)

// Chart renders the learning curves of Series as an HTML line chart
type Chart struct {
	title    string
	filename string
	names    []string
	series   []tracker.Series
}

// NewChart returns a new Chart which saves to filename
func NewChart(filename, title string) *Chart {
	return &Chart{title: title, filename: filename}
}

// Add adds a named curve to the chart
func (c *Chart) Add(name string, s tracker.Series) {
	c.names = append(c.names, name)
	c.series = append(c.series, s)
}

// Render writes the chart as an HTML page to w
func (c *Chart) Render(w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: c.title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
	)

	longest := 0
	data := make([][]float64, len(c.series))
	for i, s := range c.series {
		data[i] = s.Data()
		if len(data[i]) > longest {
			longest = len(data[i])
		}
	}

	episodes := make([]string, longest)
	for i := range episodes {
		episodes[i] = fmt.Sprint(i + 1)
	}
	line.SetXAxis(episodes)

	for i, values := range data {
		items := make([]opts.LineData, len(values))
		for j, v := range values {
			items[j] = opts.LineData{Value: v}
		}
		line.AddSeries(c.names[i], items)
	}

	return line.Render(w)
}

// Save renders the chart to its file
func (c *Chart) Save() error {
	file, err := os.Create(c.filename)
	if err != nil {
		return errors.Wrap(err, "save: could not open chart file")
	}
	defer file.Close()

	if err := c.Render(file); err != nil {
		return errors.Wrap(err, "save")
	}
	return file.Close()
}
