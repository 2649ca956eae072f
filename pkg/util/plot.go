// Package util holds small presentation helpers shared by the suite
// runner and the command-line tool.
package util

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/barrageopt/barrageopt/pkg/framework"
)

// PlotFront writes an HTML scatter chart of the front an optimiser found,
// overlaid on a reference front when one is given. Found points without a
// valid cost are dropped, since an infinite cost has no place on a chart.
func PlotFront(found, reference []framework.Point, title, outputPath string) error {
	plotted := make([]framework.Point, 0, len(found))
	for _, pt := range found {
		if pt.HasValidCost() {
			plotted = append(plotted, pt)
		}
	}
	if len(plotted) == 0 {
		return fmt.Errorf("no plottable points for %q", title)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "annual energy",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "unit cost",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}))

	foundData := make([]opts.ScatterData, len(plotted))
	for i, pt := range plotted {
		foundData[i] = opts.ScatterData{
			Value:      []float64{pt.Energy, pt.UnitCost},
			Symbol:     "triangle",
			SymbolSize: 8,
		}
	}

	if len(reference) > 0 {
		refData := make([]opts.ScatterData, len(reference))
		for i, pt := range reference {
			refData[i] = opts.ScatterData{
				Value:      []float64{pt.Energy, pt.UnitCost},
				Symbol:     "circle",
				SymbolSize: 3,
			}
		}
		scatter.AddSeries("Reference front", refData)
	}
	scatter.AddSeries("Found front", foundData).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
			charts.WithEmphasisOpts(opts.Emphasis{}),
		)

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return scatter.Render(f)
}
