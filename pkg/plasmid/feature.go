package plasmid

import (
	"math"

	"github.com/matzehuels/plasmap/pkg/errors"
)

// Default feature geometry, in pixels.
const (
	DefaultPlasmidRadius = 200.0
	DefaultHeadLength    = 7.0
)

// Row is one feature as delivered by a loader, before validation.
// Start and End may come in either order; Clockwise, when set, overrides the
// orientation implied by their order.
type Row struct {
	Name      string `json:"name" yaml:"name" bson:"name"`
	Start     int    `json:"start" yaml:"start" bson:"start"`
	End       int    `json:"end" yaml:"end" bson:"end"`
	Type      string `json:"type" yaml:"type" bson:"type"`
	Clockwise *bool  `json:"clockwise,omitempty" yaml:"clockwise,omitempty" bson:"clockwise,omitempty"`
	Cut       *int   `json:"cut,omitempty" yaml:"cut,omitempty" bson:"cut,omitempty"`
}

// Geometry holds the pixel sizes a feature needs to compute its extent.
type Geometry struct {
	PlasmidRadius float64 // baseline ring, initial radius of every feature
	HeadLength    float64 // arrowhead length along the ring
}

// DefaultGeometry returns the default baseline radius and head length.
func DefaultGeometry() Geometry {
	return Geometry{PlasmidRadius: DefaultPlasmidRadius, HeadLength: DefaultHeadLength}
}

// Feature is one annotation on a circular sequence.
type Feature struct {
	name      string
	typ       Type
	start     int
	end       int
	clockwise bool
	cut       int

	conv       Converter
	headLength float64

	radius       float64
	visible      bool
	labeled      bool
	otherCutters []*Feature
}

// NewFeature validates row against the converter's sequence and builds a
// feature on the baseline ring.
func NewFeature(conv Converter, row Row, geom Geometry) (*Feature, error) {
	if err := errors.ValidateFeatureName(row.Name); err != nil {
		return nil, err
	}
	typ, err := ParseType(row.Type)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateSpan(row.Start, row.End, conv.Length()); err != nil {
		return nil, err
	}

	start, end := row.Start, row.End
	clockwise := start <= end
	if !clockwise {
		start, end = end, start
	}
	if row.Clockwise != nil {
		clockwise = *row.Clockwise
	}

	cut := end
	if row.Cut != nil {
		if err := errors.ValidatePosition("cut", *row.Cut, conv.Length()); err != nil {
			return nil, err
		}
		cut = *row.Cut
	}

	return &Feature{
		name:       row.Name,
		typ:        typ,
		start:      start,
		end:        end,
		clockwise:  clockwise,
		cut:        cut,
		conv:       conv,
		headLength: geom.HeadLength,
		radius:     geom.PlasmidRadius,
		visible:    true,
		labeled:    true,
	}, nil
}

// NewFeatures builds one feature per row, in order. The first invalid row
// aborts construction; its index is reported in the error.
func NewFeatures(conv Converter, rows []Row, geom Geometry) ([]*Feature, error) {
	out := make([]*Feature, 0, len(rows))
	for i, row := range rows {
		f, err := NewFeature(conv, row, geom)
		if err != nil {
			return nil, errors.Wrap(errors.GetCode(err), err, "feature %d (%s)", i, row.Name)
		}
		out = append(out, f)
	}
	return out, nil
}

func (f *Feature) Name() string    { return f.name }
func (f *Feature) Type() Type      { return f.typ }
func (f *Feature) Start() int      { return f.start }
func (f *Feature) End() int        { return f.end }
func (f *Feature) Clockwise() bool { return f.clockwise }
func (f *Feature) Style() Style    { return StyleFor(f.typ) }
func (f *Feature) DrawHead() bool  { return StyleFor(f.typ).DrawHead }
func (f *Feature) IsEnzyme() bool  { return f.typ == TypeEnzyme }

// Span returns the normalized span (start <= end).
func (f *Feature) Span() (start, end int) { return f.start, f.end }

// Cut returns the position after which an enzyme cuts. It defaults to End.
func (f *Feature) Cut() int { return f.cut }

// Radius returns the ring the feature is currently drawn on.
func (f *Feature) Radius() float64 { return f.radius }

// SetRadius moves the feature to another ring.
func (f *Feature) SetRadius(r float64) { f.radius = r }

func (f *Feature) Visible() bool { return f.visible }
func (f *Feature) Labeled() bool { return f.labeled }

// SetVisible shows or hides the feature. Hiding also hides the label.
func (f *Feature) SetVisible(v bool) {
	f.visible = v
	if !v {
		f.labeled = false
	}
}

// SetLabeled shows or hides the label.
func (f *Feature) SetLabeled(v bool) { f.labeled = v }

// CutCount returns how many times this enzyme cuts the sequence. It is 0 for
// non-enzymes and for enzymes not yet grouped by GroupCutters.
func (f *Feature) CutCount() int { return len(f.otherCutters) }

// OtherCutters returns every feature of the same enzyme, f included.
func (f *Feature) OtherCutters() []*Feature { return f.otherCutters }

// SizeDegrees returns the angular size of the feature. Features with an
// arrowhead are never smaller than the head at the current radius.
func (f *Feature) SizeDegrees() float64 {
	size := f.conv.LengthToAngle(f.end - f.start + 1)
	if f.DrawHead() {
		if head := f.headDegrees(); head > size {
			size = head
		}
	}
	return size
}

// headDegrees is the angle subtended by the arrowhead at the current radius.
func (f *Feature) headDegrees() float64 {
	hyp := math.Hypot(f.radius, f.headLength)
	if hyp == 0 {
		return 0
	}
	return degrees(math.Asin(f.headLength / hyp))
}

// HeadDegrees returns the arrowhead's angular length, or 0 without a head.
func (f *Feature) HeadDegrees() float64 {
	if !f.DrawHead() {
		return 0
	}
	return f.headDegrees()
}

// StartDegrees returns the angle where the feature's footprint begins.
// A clockwise head is measured back from the end so the point stays inside
// the claimed span.
func (f *Feature) StartDegrees() float64 {
	if f.DrawHead() && f.clockwise {
		return f.conv.PositionToAngle(f.end) + f.SizeDegrees()
	}
	return f.conv.PositionToAngle(f.start)
}

// EndDegrees returns the angle where the footprint ends.
func (f *Feature) EndDegrees() float64 {
	if f.DrawHead() && !f.clockwise {
		return f.conv.PositionToAngle(f.start) - f.SizeDegrees()
	}
	return f.conv.PositionToAngle(f.end)
}

// CenterDegrees returns the midpoint of the footprint.
func (f *Feature) CenterDegrees() float64 {
	return (f.StartDegrees() + f.EndDegrees()) / 2
}
