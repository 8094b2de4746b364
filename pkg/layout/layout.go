package layout

import (
	"math"

	"github.com/samber/lo"

	"github.com/matzehuels/plasmap/pkg/plasmid"
)

const (
	// MinCanvasSize is the smallest square canvas a map is laid out on.
	MinCanvasSize = 640.0
	// labelMargin is the room kept outside the label ring for label text.
	labelMargin = 160.0
	// TickSpacing is the angle between tick marks on the plasmid ring.
	TickSpacing = 30.0
)

// Result is the layout record of one feature.
type Result struct {
	Index     int    `json:"index" bson:"index"`
	Name      string `json:"name" bson:"name"`
	Type      string `json:"type" bson:"type"`
	Start     int    `json:"start" bson:"start"`
	End       int    `json:"end" bson:"end"`
	Clockwise bool   `json:"clockwise" bson:"clockwise"`
	Cut       int    `json:"cut,omitempty" bson:"cut,omitempty"`

	StartDegrees float64 `json:"start_degrees" bson:"start_degrees"`
	EndDegrees   float64 `json:"end_degrees" bson:"end_degrees"`
	SizeDegrees  float64 `json:"size_degrees" bson:"size_degrees"`
	HeadDegrees  float64 `json:"head_degrees,omitempty" bson:"head_degrees,omitempty"`
	Radius       float64 `json:"radius" bson:"radius"`

	Color    string `json:"color" bson:"color"`
	DrawHead bool   `json:"draw_head,omitempty" bson:"draw_head,omitempty"`
	Enzyme   bool   `json:"enzyme,omitempty" bson:"enzyme,omitempty"`
	Visible  bool   `json:"visible" bson:"visible"`

	// CutCount and OtherCutters are set for enzymes only. OtherCutters holds
	// result indices, this result's own index included.
	CutCount     int   `json:"cut_count,omitempty" bson:"cut_count,omitempty"`
	OtherCutters []int `json:"other_cutters,omitempty" bson:"other_cutters,omitempty"`

	Label *LabelPoint `json:"label,omitempty" bson:"label,omitempty"`
}

// Tick is a tick mark on the plasmid ring.
type Tick struct {
	Angle    float64 `json:"angle" bson:"angle"`
	Position int     `json:"position" bson:"position"`
}

// Stats summarizes a layout.
type Stats struct {
	Features   int        `json:"features" bson:"features"`
	Enzymes    int        `json:"enzymes" bson:"enzymes"`
	Visible    int        `json:"visible" bson:"visible"`
	Labels     int        `json:"labels" bson:"labels"`
	Resolution Resolution `json:"resolution" bson:"resolution"`
}

// Layout is the complete, render-ready description of a plasmid map.
type Layout struct {
	Length        int           `json:"length" bson:"length"`
	StartAngle    float64       `json:"start_angle" bson:"start_angle"`
	Size          float64       `json:"size" bson:"size"`
	Center        plasmid.Point `json:"center" bson:"center"`
	PlasmidRadius float64       `json:"plasmid_radius" bson:"plasmid_radius"`
	MaxRadius     float64       `json:"max_radius" bson:"max_radius"`
	LabelRadius   float64       `json:"label_radius" bson:"label_radius"`
	Options       Options       `json:"options" bson:"options"`
	Results       []Result      `json:"results" bson:"results"`
	Ticks         []Tick        `json:"ticks" bson:"ticks"`
	Stats         Stats         `json:"stats" bson:"stats"`
}

// Converter rebuilds the coordinate converter the layout was computed with.
func (l Layout) Converter() (plasmid.Converter, error) {
	conv, err := plasmid.NewConverter(l.Length, l.StartAngle)
	if err != nil {
		return plasmid.Converter{}, err
	}
	return conv.WithCenter(l.Center.X, l.Center.Y), nil
}

// Compute lays out rows on a circular sequence of the given length.
// It validates the options and every row; the first invalid row fails the
// whole layout.
func Compute(length int, rows []plasmid.Row, opts Options) (Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Layout{}, err
	}
	conv, err := plasmid.NewConverter(length, opts.StartAngle)
	if err != nil {
		return Layout{}, err
	}
	features, err := plasmid.NewFeatures(conv, rows, opts.Geometry())
	if err != nil {
		return Layout{}, err
	}
	return ComputeFeatures(conv, features, opts)
}

// ComputeFeatures lays out already constructed features. The features are
// mutated (radius, visibility, cutter groups); pass a fresh set to get a
// reproducible result.
func ComputeFeatures(conv plasmid.Converter, features []*plasmid.Feature, opts Options) (Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Layout{}, err
	}

	cutters := plasmid.GroupCutters(features)
	ApplyCutterFilter(features, opts.CuttersToShow)

	res, err := NewResolver(opts).Resolve(features)
	if err != nil {
		return Layout{}, err
	}

	labelRadius := res.MaxRadius + opts.LabelRadiusOffset
	size := math.Max(MinCanvasSize, 2*(labelRadius+labelMargin))
	conv = conv.WithCenter(size/2, size/2)
	labels := NewLabelStacker(conv, labelRadius, opts).Stack(features)

	index := make(map[*plasmid.Feature]int, len(features))
	for i, f := range features {
		index[f] = i
	}

	l := Layout{
		Length:        conv.Length(),
		StartAngle:    conv.StartAngle(),
		Size:          size,
		Center:        conv.Center(),
		PlasmidRadius: opts.PlasmidRadius,
		MaxRadius:     res.MaxRadius,
		LabelRadius:   labelRadius,
		Options:       opts,
		Results:       make([]Result, len(features)),
		Ticks:         Ticks(conv),
		Stats: Stats{
			Features:   len(features),
			Enzymes:    cutters.Len(),
			Resolution: res,
		},
	}
	for i, f := range features {
		l.Results[i] = newResult(i, f, labels[i], index)
		if f.Visible() {
			l.Stats.Visible++
		}
		if labels[i] != nil {
			l.Stats.Labels++
		}
	}
	return l, nil
}

func newResult(i int, f *plasmid.Feature, label *LabelPoint, index map[*plasmid.Feature]int) Result {
	style := f.Style()
	r := Result{
		Index:        i,
		Name:         f.Name(),
		Type:         f.Type().String(),
		Start:        f.Start(),
		End:          f.End(),
		Clockwise:    f.Clockwise(),
		StartDegrees: f.StartDegrees(),
		EndDegrees:   f.EndDegrees(),
		SizeDegrees:  f.SizeDegrees(),
		HeadDegrees:  f.HeadDegrees(),
		Radius:       f.Radius(),
		Color:        style.Color,
		DrawHead:     style.DrawHead,
		Enzyme:       style.Enzyme,
		Visible:      f.Visible(),
		Label:        label,
	}
	if f.IsEnzyme() {
		r.Cut = f.Cut()
		r.CutCount = f.CutCount()
		r.OtherCutters = lo.Map(f.OtherCutters(), func(o *plasmid.Feature, _ int) int { return index[o] })
	}
	return r
}

// ApplyCutterFilter shows enzymes whose cut count is listed in show and
// hides the rest. Other features are not touched.
func ApplyCutterFilter(features []*plasmid.Feature, show []int) {
	for _, f := range features {
		if !f.IsEnzyme() {
			continue
		}
		visible := lo.Contains(show, f.CutCount())
		f.SetVisible(visible)
		if visible {
			f.SetLabeled(true)
		}
	}
}

// Ticks returns a tick every TickSpacing degrees starting at the start
// angle, each labeled with the position under it.
func Ticks(conv plasmid.Converter) []Tick {
	n := int(360 / TickSpacing)
	out := make([]Tick, 0, n)
	for i := 0; i < n; i++ {
		a := conv.StartAngle() - float64(i)*TickSpacing
		out = append(out, Tick{Angle: a, Position: conv.AngleToPosition(a)})
	}
	return out
}

// Find returns the first result with the given name.
func (l Layout) Find(name string) (Result, bool) {
	return lo.Find(l.Results, func(r Result) bool { return r.Name == name })
}
