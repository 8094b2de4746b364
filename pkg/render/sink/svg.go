package sink

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

const (
	tickLength     = 15.0
	tickFontSize   = 10
	enzymeWeight   = 1.0
	boldWeight     = 1.5
	dimmedOpacity  = 0.35
	labelBaseShift = 0.35 // em, centers text on its anchor point vertically
)

const featureInteractionCSS = `
    .feature { cursor: pointer; }
    .feature.highlight path { stroke-width: 2.5; }
    .feature.highlight text { font-weight: bold; }`

const featureInteractionJS = `
    function highlight(name) {
      document.querySelectorAll('.feature').forEach(f => f.classList.toggle('highlight', f.dataset.name === name));
    }
    function clearHighlight() {
      document.querySelectorAll('.feature').forEach(f => f.classList.remove('highlight'));
    }
    document.querySelectorAll('.feature').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.name));
      el.addEventListener('mouseleave', clearHighlight);
    });`

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	width       int
	ticks       bool
	labels      bool
	highlight   string
	interactive bool
}

// WithTitle sets the document <title>.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithWidth sets the rendered width and height in pixels. The viewBox keeps
// the layout size, so the map scales. Zero keeps the layout size.
func WithWidth(px int) SVGOption { return func(r *svgRenderer) { r.width = px } }

// WithoutTicks omits the position ticks inside the backbone.
func WithoutTicks() SVGOption { return func(r *svgRenderer) { r.ticks = false } }

// WithoutLabels omits feature labels and their leader lines.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithInteraction embeds CSS and a script that highlight every feature
// sharing a name when the pointer is over one of them.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithHighlight draws the named feature in bold and dims the others. For an
// enzyme every site of that enzyme is highlighted.
func WithHighlight(name string) SVGOption { return func(r *svgRenderer) { r.highlight = name } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{ticks: true, labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws a computed layout as a standalone SVG document. It fails
// only when the layout carries an invalid sequence length.
func RenderSVG(l layout.Layout, opts ...SVGOption) ([]byte, error) {
	conv, err := l.Converter()
	if err != nil {
		return nil, err
	}
	r := newSVGRenderer(opts...)

	size := int(math.Ceil(l.Size))
	width := size
	if r.width > 0 {
		width = r.width
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, width,
		fmt.Sprintf(`viewBox="0 0 %d %d"`, size, size),
		`font-family="sans-serif"`)
	if r.title != "" {
		canvas.Title(r.title)
	}

	r.drawPlasmid(canvas, l)
	if r.ticks {
		r.drawTicks(canvas, conv, l)
	}
	for _, res := range l.Results {
		if res.Visible {
			r.drawFeature(canvas, conv, l, res)
		}
	}

	if r.interactive {
		canvas.Style("text/css", featureInteractionCSS)
		canvas.Script("text/javascript", featureInteractionJS)
	}
	canvas.End()
	return buf.Bytes(), nil
}

func (r *svgRenderer) drawPlasmid(canvas *svg.SVG, l layout.Layout) {
	canvas.Path(circlePath(l.Center, l.PlasmidRadius),
		`id="plasmid"`, "fill:none;stroke:"+plasmid.ColorPlasmid+";stroke-width:1")
}

func (r *svgRenderer) drawTicks(canvas *svg.SVG, conv plasmid.Converter, l layout.Layout) {
	inner := l.PlasmidRadius - l.Options.RingSpacing
	mid := inner - tickLength/2
	labelR := mid - 1.5*tickLength

	canvas.Group(`id="ticks"`, fmt.Sprintf(`stroke="%s"`, plasmid.ColorBackgroundText))
	for _, t := range l.Ticks {
		p0 := conv.PolarToRect(mid-tickLength/2, t.Angle)
		p1 := conv.PolarToRect(mid+tickLength/2, t.Angle)
		canvas.Path(linePath(p0, p1))

		at := conv.PolarToRect(labelR, t.Angle)
		canvas.Text(round(at.X), round(at.Y+tickFontSize*labelBaseShift), strconv.Itoa(t.Position),
			`text-anchor="middle"`, `stroke="none"`,
			fmt.Sprintf(`fill="%s"`, plasmid.ColorBackgroundText),
			fmt.Sprintf(`font-size="%d"`, tickFontSize))
	}
	canvas.Gend()
}

func (r *svgRenderer) drawFeature(canvas *svg.SVG, conv plasmid.Converter, l layout.Layout, res layout.Result) {
	opacity := 1.0
	weight := 1.0
	if r.highlight != "" {
		if res.Name == r.highlight {
			weight = boldWeight
		} else {
			opacity = dimmedOpacity
		}
	}

	canvas.Group(
		fmt.Sprintf(`id="feature-%d"`, res.Index),
		`class="feature"`,
		fmt.Sprintf(`data-name="%s"`, escapeAttr(res.Name)),
		fmt.Sprintf(`stroke="%s"`, res.Color),
		fmt.Sprintf(`opacity="%g"`, opacity))
	canvas.Title(res.Name)

	a0 := conv.PositionToAngle(res.Start)
	a1 := conv.PositionToAngle(res.End)

	switch {
	case res.Enzyme:
		ac := (a0 + a1) / 2
		p0 := conv.PolarToRect(res.Radius-l.Options.EnzymeWidth/2, ac)
		p1 := conv.PolarToRect(res.Radius+l.Options.EnzymeWidth/2, ac)
		canvas.Path(linePath(p0, p1), fmt.Sprintf(`stroke-width="%g"`, enzymeWeight*weight))
	default:
		if res.DrawHead {
			var tip, base float64
			if res.Clockwise {
				tip, base = a1, a1+res.HeadDegrees
				a1 = base
			} else {
				tip, base = a0, a0-res.HeadDegrees
				a0 = base
			}
			pt := conv.PolarToRect(res.Radius, tip)
			pb := conv.PolarToRect(res.Radius-l.Options.HeadWidth/2, base)
			pu := conv.PolarToRect(res.Radius+l.Options.HeadWidth/2, base)
			canvas.Path(fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f L%.2f,%.2f Z", pt.X, pt.Y, pb.X, pb.Y, pu.X, pu.Y),
				`stroke-width="0"`, fmt.Sprintf(`fill="%s"`, res.Color))
		}
		// The head may use up the whole span, leaving no arc.
		if a1 < a0 {
			canvas.Path(arcPath(conv, res.Radius, a1, a0),
				`fill="none"`, `stroke-linecap="butt"`,
				fmt.Sprintf(`stroke-width="%g"`, l.Options.FeatureWidth*weight))
		}
	}

	if r.labels && res.Label != nil {
		r.drawLabel(canvas, l, res)
	}
	canvas.Gend()
}

func (r *svgRenderer) drawLabel(canvas *svg.SVG, l layout.Layout, res layout.Result) {
	lp := res.Label
	canvas.Path(linePath(lp.From, lp.At), fmt.Sprintf(`stroke="%s"`, plasmid.ColorBackgroundText))
	canvas.Text(round(lp.At.X), round(lp.At.Y+l.Options.LabelFontSize*labelBaseShift), res.Name,
		`class="label"`, `stroke="none"`,
		fmt.Sprintf(`text-anchor="%s"`, lp.Anchor),
		fmt.Sprintf(`fill="%s"`, res.Color),
		fmt.Sprintf(`font-size="%g"`, l.Options.LabelFontSize))
}

// =============================================================================
// Geometry helpers
// =============================================================================

// arcPath traces the ring at radius r from angle from to angle to, moving
// counter-clockwise on screen.
func arcPath(conv plasmid.Converter, r, from, to float64) string {
	p0 := conv.PolarToRect(r, from)
	p1 := conv.PolarToRect(r, to)
	large := 0
	if to-from > 180 {
		large = 1
	}
	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 %d 0 %.2f,%.2f", p0.X, p0.Y, r, r, large, p1.X, p1.Y)
}

func circlePath(c plasmid.Point, r float64) string {
	return fmt.Sprintf("M%.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f A%.2f,%.2f 0 1 0 %.2f,%.2f",
		c.X+r, c.Y, r, r, c.X-r, c.Y, r, r, c.X+r, c.Y)
}

func linePath(a, b plasmid.Point) string {
	return fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f", a.X, a.Y, b.X, b.Y)
}

func round(v float64) int { return int(math.Round(v)) }

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
