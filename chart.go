package main

import (
	"fmt"
	"html"
	"math"
	"strings"
)

const (
	chartWidth   = 760
	chartHeight  = 340
	chartPadL    = 70
	chartPadR    = 70
	chartPadT    = 40
	chartPadB    = 45
	chartTickCnt = 5
)

var chartColors = []string{"#2563eb", "#16a34a", "#ea580c", "#9333ea"}

type chartPoint struct {
	X, Y float64
}

type chartSeries struct {
	Name   string
	Color  string
	Points []chartPoint
}

// seriesFromCumulative converts a cumulative series into chart points
func seriesFromCumulative(name, color string, s CumulativeSeries) chartSeries {
	points := make([]chartPoint, len(s))
	for i, p := range s {
		points[i] = chartPoint{X: float64(p.Month), Y: p.Amount}
	}
	return chartSeries{Name: name, Color: color, Points: points}
}

// niceMax rounds v up to 1, 2 or 5 times a power of ten
func niceMax(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	exp := math.Pow(10, math.Floor(math.Log10(v)))
	for _, m := range []float64{1, 2, 5, 10} {
		if v <= m*exp {
			return m * exp
		}
	}
	return 10 * exp
}

func chartBounds(series []chartSeries) (minX, maxX, maxY float64) {
	minX, maxX = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			minX = math.Min(minX, p.X)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 1) {
		minX, maxX = 0, 1
	}
	if maxX == minX {
		maxX = minX + 1
	}
	return minX, maxX, niceMax(maxY)
}

func writeChartFrame(b *strings.Builder, title, xLabel, yLabel string) {
	fmt.Fprintf(b, `<svg class="chart" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" role="img" aria-label="%s">`,
		chartWidth, chartHeight, html.EscapeString(title))
	fmt.Fprintf(b, `<text class="chart-title" x="%d" y="22" text-anchor="middle" font-size="15" font-weight="600">%s</text>`,
		chartWidth/2, html.EscapeString(title))
	fmt.Fprintf(b, `<text x="%d" y="%d" text-anchor="middle" font-size="12" fill="#64748b">%s</text>`,
		chartWidth/2, chartHeight-6, html.EscapeString(xLabel))
	fmt.Fprintf(b, `<text x="14" y="%d" text-anchor="middle" font-size="12" fill="#64748b" transform="rotate(-90 14 %d)">%s</text>`,
		chartHeight/2, chartHeight/2, html.EscapeString(yLabel))
}

func writeYAxis(b *strings.Builder, maxY float64, x float64, anchor string, color string) {
	plotH := float64(chartHeight - chartPadT - chartPadB)
	for i := 0; i <= chartTickCnt; i++ {
		v := maxY * float64(i) / chartTickCnt
		y := float64(chartHeight-chartPadB) - plotH*float64(i)/chartTickCnt
		if anchor == "end" {
			fmt.Fprintf(b, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#e2e8f0"/>`,
				chartPadL, y, chartWidth-chartPadR, y)
		}
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="%s" font-size="11" fill="%s">%s</text>`,
			x, y+4, anchor, color, html.EscapeString(FormatMoney(v)))
	}
}

// svgLineChart renders one or more series as an inline SVG line chart
func svgLineChart(title, xLabel, yLabel string, series []chartSeries) string {
	var b strings.Builder
	writeChartFrame(&b, title, xLabel, yLabel)

	minX, maxX, maxY := chartBounds(series)
	plotW := float64(chartWidth - chartPadL - chartPadR)
	plotH := float64(chartHeight - chartPadT - chartPadB)
	sx := func(x float64) float64 { return chartPadL + (x-minX)/(maxX-minX)*plotW }
	sy := func(y float64) float64 { return float64(chartHeight-chartPadB) - y/maxY*plotH }

	writeYAxis(&b, maxY, chartPadL-6, "end", "#64748b")
	for i := 0; i <= chartTickCnt; i++ {
		x := minX + (maxX-minX)*float64(i)/chartTickCnt
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle" font-size="11" fill="#64748b">%.0f</text>`,
			sx(x), chartHeight-chartPadB+16, x)
	}

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		color := s.Color
		if color == "" {
			color = chartColors[i%len(chartColors)]
		}
		coords := make([]string, len(s.Points))
		for j, p := range s.Points {
			coords[j] = fmt.Sprintf("%.1f,%.1f", sx(p.X), sy(p.Y))
		}
		fmt.Fprintf(&b, `<polyline class="series" data-series="%s" fill="none" stroke="%s" stroke-width="2" points="%s"/>`,
			html.EscapeString(s.Name), color, strings.Join(coords, " "))
	}

	writeLegend(&b, series)
	b.WriteString(`</svg>`)
	return b.String()
}

// svgBarLineChart renders bars on the left axis and a line on an independent
// right axis, for payment vs income charts
func svgBarLineChart(title, xLabel string, bars chartSeries, line chartSeries) string {
	var b strings.Builder
	writeChartFrame(&b, title, xLabel, bars.Name)

	_, _, maxBar := chartBounds([]chartSeries{bars})
	_, _, maxLine := chartBounds([]chartSeries{line})
	n := len(bars.Points)
	if len(line.Points) > n {
		n = len(line.Points)
	}
	if n == 0 {
		n = 1
	}

	plotW := float64(chartWidth - chartPadL - chartPadR)
	plotH := float64(chartHeight - chartPadT - chartPadB)
	slot := plotW / float64(n)
	base := float64(chartHeight - chartPadB)

	writeYAxis(&b, maxBar, chartPadL-6, "end", bars.Color)
	writeYAxis(&b, maxLine, float64(chartWidth-chartPadR+6), "start", line.Color)

	for i, p := range bars.Points {
		h := p.Y / maxBar * plotH
		if h < 0 {
			h = 0
		}
		x := chartPadL + slot*float64(i) + slot*0.15
		fmt.Fprintf(&b, `<rect class="bar" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"><title>%s</title></rect>`,
			x, base-h, slot*0.7, h, bars.Color, html.EscapeString(FormatMoneyFull(p.Y)))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" font-size="11" fill="#64748b">%.0f</text>`,
			chartPadL+slot*(float64(i)+0.5), base+16, p.X)
	}

	coords := make([]string, len(line.Points))
	for i, p := range line.Points {
		coords[i] = fmt.Sprintf("%.1f,%.1f", chartPadL+slot*(float64(i)+0.5), base-p.Y/maxLine*plotH)
	}
	if len(coords) > 0 {
		fmt.Fprintf(&b, `<polyline class="series" data-series="%s" fill="none" stroke="%s" stroke-width="2" points="%s"/>`,
			html.EscapeString(line.Name), line.Color, strings.Join(coords, " "))
	}

	writeLegend(&b, []chartSeries{bars, line})
	b.WriteString(`</svg>`)
	return b.String()
}

func writeLegend(b *strings.Builder, series []chartSeries) {
	x := float64(chartPadL + 10)
	for i, s := range series {
		color := s.Color
		if color == "" {
			color = chartColors[i%len(chartColors)]
		}
		fmt.Fprintf(b, `<rect x="%.1f" y="%d" width="12" height="12" fill="%s"/>`, x, chartPadT-8, color)
		fmt.Fprintf(b, `<text x="%.1f" y="%d" font-size="12">%s</text>`, x+16, chartPadT+2, html.EscapeString(s.Name))
		x += 30 + float64(len(s.Name))*7
	}
}
