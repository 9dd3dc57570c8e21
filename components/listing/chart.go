package listing

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// ChartKind selects how a breakdown is drawn.
type ChartKind string

const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// ChartRenderer draws breakdowns as server-side ECharts HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) { r.cache = cache }
}

// WithChartTheme sets the ECharts theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) { r.theme = theme }
}

// WithChartAssetsHost points the ECharts runtime at another host.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) { r.assetsHost = host }
}

// NewChartRenderer builds a renderer.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{theme: types.ThemeWesteros}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render returns the HTML for breakdown drawn as kind.
func (r *ChartRenderer) Render(title string, breakdown Breakdown, kind ChartKind) (string, error) {
	if kind == "" {
		kind = ChartBar
	}
	render := func() (string, error) {
		switch kind {
		case ChartBar:
			return r.renderBar(title, breakdown)
		case ChartPie:
			return r.renderPie(title, breakdown)
		default:
			return "", fmt.Errorf("listing: unsupported chart kind %q", kind)
		}
	}
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", breakdown.Axis, kind, title, bucketsHash(breakdown.Buckets))
	return r.cache.GetOrRender(breakdown.Screen, key, render)
}

func (r *ChartRenderer) renderBar(title string, breakdown Breakdown) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(title, breakdown.Axis)...)
	labels := make([]string, len(breakdown.Buckets))
	data := make([]opts.BarData, len(breakdown.Buckets))
	for i, bucket := range breakdown.Buckets {
		labels[i] = bucketLabel(bucket.Value)
		data[i] = opts.BarData{Name: labels[i], Value: bucket.Count}
	}
	bar.SetXAxis(labels)
	bar.AddSeries(breakdown.Axis, data)
	return renderChart(bar)
}

func (r *ChartRenderer) renderPie(title string, breakdown Breakdown) (string, error) {
	pie := charts.NewPie()
	pie.SetGlobalOptions(r.globalOptions(title, breakdown.Axis)...)
	data := make([]opts.PieData, len(breakdown.Buckets))
	for i, bucket := range breakdown.Buckets {
		data[i] = opts.PieData{Name: bucketLabel(bucket.Value), Value: bucket.Count}
	}
	pie.AddSeries(breakdown.Axis, data)
	return renderChart(pie)
}

func (r *ChartRenderer) globalOptions(title, subtitle string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

func bucketLabel(value string) string {
	if strings.TrimSpace(value) == "" {
		return "(none)"
	}
	return value
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
