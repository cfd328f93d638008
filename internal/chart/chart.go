// Package chart renders the graphable columns of a result set as line charts
// in one standalone HTML page.
package chart

import (
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rotisserie/eris"

	"github.com/sells-group/extract-cli/internal/result"
	"github.com/sells-group/extract-cli/internal/schema"
)

// Options configures rendering.
type Options struct {
	// XField names the field used as x-axis. Empty means record index.
	XField string
	Title  string
}

// Render writes one line chart per graphable field to w. Records where an
// optional graphable field is absent produce gaps in the series, not zeros.
func Render(w io.Writer, set *result.Set, opts Options) error {
	graphable := set.GraphableFields()
	if len(graphable) == 0 {
		return eris.New("chart: schema declares no graphable fields")
	}

	xs, err := xAxis(set, opts.XField)
	if err != nil {
		return err
	}

	page := components.NewPage()
	if opts.Title != "" {
		page.PageTitle = opts.Title
	}

	for _, name := range graphable {
		if name == opts.XField {
			continue
		}
		line, err := seriesChart(set, name, xs)
		if err != nil {
			return err
		}
		page.AddCharts(line)
	}

	return eris.Wrap(page.Render(w), "chart: render page")
}

func seriesChart(set *result.Set, name string, xs []string) (*charts.Line, error) {
	col, err := set.Column(name)
	if err != nil {
		return nil, eris.Wrapf(err, "chart: column %s", name)
	}

	points := make([]opts.LineData, len(col))
	for i, v := range col {
		if num, ok := v.Num(); ok {
			points[i] = opts.LineData{Value: num}
		} else {
			points[i] = opts.LineData{Value: nil} // gap
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: name}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	line.SetXAxis(xs).AddSeries(name, points)
	return line, nil
}

// xAxis builds the x-axis labels: the designated field's formatted values, or
// the record index when no field is designated.
func xAxis(set *result.Set, xField string) ([]string, error) {
	if xField == "" {
		xs := make([]string, set.Len())
		for i := range xs {
			xs[i] = strconv.Itoa(i)
		}
		return xs, nil
	}

	col, err := set.Column(xField)
	if err != nil {
		return nil, eris.Wrapf(err, "chart: x-axis field %s", xField)
	}
	layout := schema.DefaultDateLayout
	if f := set.Schema().Field(xField); f != nil {
		layout = f.DateLayout()
	}
	xs := make([]string, len(col))
	for i, v := range col {
		xs[i] = v.Format(layout)
	}
	return xs, nil
}
