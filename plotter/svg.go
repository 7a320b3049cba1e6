// Package plotter renders reflectivity curves and SLD depth profiles as
// SVG. The fitting core itself never renders anything; it exposes curves
// and profiles as plain slices, and this package is the collaborator that
// turns them into pictures.
package plotter

import (
	"fmt"
	"math"
	"strings"
)

// Series is a single curve to draw. Y values are transformed by the plot's
// y-scale (log10 for reflectivity plots) before drawing.
type Series struct {
	X      []float64
	Y      []float64
	Label  string
	Color  string
	Points bool // draw markers instead of a line (measured data)
}

// SVGPlotter draws series into a fixed-size SVG with axes, ticks, grid and
// legend. LogY switches the y-axis to log10, the natural scale for
// reflectivity which spans many decades.
type SVGPlotter struct {
	Width  float64
	Height float64
	Title  string
	XLabel string
	YLabel string
	LogY   bool

	marginTop, marginRight, marginBottom, marginLeft float64
	series                                           []Series
}

// New creates a plotter with the given canvas size.
func New(width, height float64) *SVGPlotter {
	return &SVGPlotter{
		Width:        width,
		Height:       height,
		XLabel:       "q / Å⁻¹",
		YLabel:       "R",
		marginTop:    40,
		marginRight:  30,
		marginBottom: 50,
		marginLeft:   65,
	}
}

// SetTitle sets the plot title.
func (p *SVGPlotter) SetTitle(t string) *SVGPlotter {
	p.Title = t
	return p
}

// SetLabels sets the axis labels.
func (p *SVGPlotter) SetLabels(x, y string) *SVGPlotter {
	p.XLabel = x
	p.YLabel = y
	return p
}

// SetLogY switches the y-axis to log10.
func (p *SVGPlotter) SetLogY(on bool) *SVGPlotter {
	p.LogY = on
	return p
}

// AddSeries adds a line series. An empty color picks from a palette.
func (p *SVGPlotter) AddSeries(x, y []float64, label, color string) *SVGPlotter {
	p.add(Series{X: x, Y: y, Label: label, Color: color})
	return p
}

// AddPoints adds a marker series, used for measured data.
func (p *SVGPlotter) AddPoints(x, y []float64, label, color string) *SVGPlotter {
	p.add(Series{X: x, Y: y, Label: label, Color: color, Points: true})
	return p
}

func (p *SVGPlotter) add(s Series) {
	if s.Color == "" {
		palette := []string{"#377eb8", "#e41a1c", "#4daf4a", "#984ea3", "#ff7f00", "#a65628", "#f781bf"}
		s.Color = palette[len(p.series)%len(palette)]
	}
	p.series = append(p.series, s)
}

func (p *SVGPlotter) transformY(y float64) (float64, bool) {
	if !p.LogY {
		return y, true
	}
	if y <= 0 {
		return 0, false
	}
	return math.Log10(y), true
}

// Render generates the SVG document.
func (p *SVGPlotter) Render() string {
	plotW := p.Width - p.marginLeft - p.marginRight
	plotH := p.Height - p.marginTop - p.marginBottom

	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, s := range p.series {
		for i := range s.X {
			y, ok := p.transformY(s.Y[i])
			if !ok {
				continue
			}
			xmin = math.Min(xmin, s.X[i])
			xmax = math.Max(xmax, s.X[i])
			ymin = math.Min(ymin, y)
			ymax = math.Max(ymax, y)
		}
	}
	if math.IsInf(xmin, 1) {
		xmin, xmax = 0, 1
	}
	if math.IsInf(ymin, 1) {
		ymin, ymax = 0, 1
	}
	if xmax == xmin {
		xmax = xmin + 1
	}
	if ymax == ymin {
		ymax = ymin + 1
	}
	xmin -= (xmax - xmin) * 0.03
	xmax += (xmax - xmin) * 0.03
	ymin -= (ymax - ymin) * 0.05
	ymax += (ymax - ymin) * 0.05

	sx := func(x float64) float64 {
		return p.marginLeft + (x-xmin)/(xmax-xmin)*plotW
	}
	sy := func(y float64) float64 {
		return p.marginTop + plotH - (y-ymin)/(ymax-ymin)*plotH
	}

	sb := strings.Builder{}
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`,
		int(p.Width), int(p.Height))
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#ffffff"/>`,
		int(p.Width), int(p.Height))

	if p.Title != "" {
		fmt.Fprintf(&sb, `<text x="%g" y="25" text-anchor="middle" font-family="sans-serif" font-size="15" font-weight="bold">%s</text>`,
			p.Width/2, escape(p.Title))
	}

	// Axes
	fmt.Fprintf(&sb, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#333" stroke-width="1.5"/>`,
		p.marginLeft, p.marginTop, p.marginLeft, p.marginTop+plotH)
	fmt.Fprintf(&sb, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#333" stroke-width="1.5"/>`,
		p.marginLeft, p.marginTop+plotH, p.marginLeft+plotW, p.marginTop+plotH)

	fmt.Fprintf(&sb, `<text x="%g" y="%g" text-anchor="middle" font-family="sans-serif" font-size="12">%s</text>`,
		p.marginLeft+plotW/2, p.Height-12, escape(p.XLabel))
	fmt.Fprintf(&sb, `<text x="15" y="%g" text-anchor="middle" font-family="sans-serif" font-size="12" transform="rotate(-90, 15, %g)">%s</text>`,
		p.marginTop+plotH/2, p.marginTop+plotH/2, escape(p.YLabel))

	// Ticks and grid
	const ticks = 5
	for i := 0; i <= ticks; i++ {
		x := xmin + (xmax-xmin)*float64(i)/ticks
		px := sx(x)
		fmt.Fprintf(&sb, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#ddd" stroke-width="0.5"/>`,
			px, p.marginTop, px, p.marginTop+plotH)
		fmt.Fprintf(&sb, `<text x="%g" y="%g" text-anchor="middle" font-family="sans-serif" font-size="10">%.3g</text>`,
			px, p.marginTop+plotH+18, x)
	}
	for i := 0; i <= ticks; i++ {
		y := ymin + (ymax-ymin)*float64(i)/ticks
		py := sy(y)
		label := y
		format := "%.3g"
		if p.LogY {
			format = "1e%.0f"
		}
		fmt.Fprintf(&sb, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="#ddd" stroke-width="0.5"/>`,
			p.marginLeft, py, p.marginLeft+plotW, py)
		fmt.Fprintf(&sb, `<text x="%g" y="%g" text-anchor="end" font-family="sans-serif" font-size="10">`+format+`</text>`,
			p.marginLeft-8, py+4, label)
	}

	// Series
	for _, s := range p.series {
		if s.Points {
			for i := range s.X {
				y, ok := p.transformY(s.Y[i])
				if !ok {
					continue
				}
				fmt.Fprintf(&sb, `<circle cx="%g" cy="%g" r="2" fill="%s"/>`,
					sx(s.X[i]), sy(y), s.Color)
			}
			continue
		}
		path := strings.Builder{}
		pen := false
		for i := range s.X {
			y, ok := p.transformY(s.Y[i])
			if !ok {
				pen = false
				continue
			}
			if !pen {
				fmt.Fprintf(&path, "M%g,%g", sx(s.X[i]), sy(y))
				pen = true
			} else {
				fmt.Fprintf(&path, " L%g,%g", sx(s.X[i]), sy(y))
			}
		}
		fmt.Fprintf(&sb, `<path d="%s" stroke="%s" stroke-width="1.5" fill="none"/>`,
			path.String(), s.Color)
	}

	// Legend
	legendY := p.marginTop + 12
	for _, s := range p.series {
		if s.Label == "" {
			continue
		}
		x1 := p.Width - p.marginRight - 110
		fmt.Fprintf(&sb, `<line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="2"/>`,
			x1, legendY, x1+20, legendY, s.Color)
		fmt.Fprintf(&sb, `<text x="%g" y="%g" font-family="sans-serif" font-size="10">%s</text>`,
			x1+26, legendY+4, escape(s.Label))
		legendY += 18
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
