package layout

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/plasmap/pkg/plasmid"
)

// Anchor is the SVG text-anchor of a label.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

const (
	labelSectors    = 8
	labelSectorSize = 360.0 / labelSectors
	labelCharWidth  = 0.55 // average glyph width as a fraction of font size
)

// LabelPoint is where a feature's label goes. The leader line runs from From
// (the feature's center on its ring) to At (the stacked label position).
type LabelPoint struct {
	CenterAngle float64       `json:"center_angle" bson:"center_angle"`
	SectorAngle float64       `json:"sector_angle" bson:"sector_angle"`
	Sector      int           `json:"sector" bson:"sector"`
	Radius      float64       `json:"radius" bson:"radius"`
	Offset      float64       `json:"offset" bson:"offset"`
	From        plasmid.Point `json:"from" bson:"from"`
	At          plasmid.Point `json:"at" bson:"at"`
	Anchor      Anchor        `json:"anchor" bson:"anchor"`
	Width       float64       `json:"width" bson:"width"`
	Height      float64       `json:"height" bson:"height"`
}

// LabelStacker places labels in 8 sectors of 45 degrees, stacking labels
// of the same sector away from the horizontal axis. A stacker serves one
// pass; use a new one for every layout.
type LabelStacker struct {
	conv     plasmid.Converter
	radius   float64
	fontSize float64
	height   float64
	heights  [labelSectors]float64
}

// NewLabelStacker returns a stacker placing labels at radius around conv's
// center.
func NewLabelStacker(conv plasmid.Converter, radius float64, opts Options) *LabelStacker {
	return &LabelStacker{
		conv:     conv,
		radius:   radius,
		fontSize: opts.LabelFontSize,
		height:   opts.LabelHeight(),
	}
}

// Stack labels every visible, labeled feature, walking the features in
// reverse order. The result is parallel to features; unlabeled features get
// nil.
func (s *LabelStacker) Stack(features []*plasmid.Feature) []*LabelPoint {
	out := make([]*LabelPoint, len(features))
	for i := len(features) - 1; i >= 0; i-- {
		f := features[i]
		if !f.Visible() || !f.Labeled() {
			continue
		}
		lp := s.Place(f)
		out[i] = &lp
	}
	return out
}

// Place computes one label position and reserves its height in the sector.
func (s *LabelStacker) Place(f *plasmid.Feature) LabelPoint {
	start := s.conv.StartAngle()
	ac := f.CenterDegrees()

	sector := int(math.Floor((start - ac) / labelSectorSize))
	sector = ((sector % labelSectors) + labelSectors) % labelSectors
	sectorAngle := start - labelSectorSize/2 - float64(sector)*labelSectorSize

	shift := s.heights[sector]
	at := s.conv.PolarToRect(s.radius, sectorAngle)
	if at.Y > s.conv.Center().Y {
		at.Y += shift
	} else {
		at.Y -= shift
	}
	s.heights[sector] += s.height

	return LabelPoint{
		CenterAngle: ac,
		SectorAngle: sectorAngle,
		Sector:      sector,
		Radius:      s.radius,
		Offset:      shift,
		From:        s.conv.PolarToRect(f.Radius(), ac),
		At:          at,
		Anchor:      anchorFor(ac, start),
		Width:       float64(utf8.RuneCountInString(f.Name())) * s.fontSize * labelCharWidth,
		Height:      s.height,
	}
}

// SectorHeight returns the label height stacked so far in sector i.
func (s *LabelStacker) SectorHeight(i int) float64 {
	if i < 0 || i >= labelSectors {
		return 0
	}
	return s.heights[i]
}

// anchorFor right-aligns labels on the left half of the wheel and
// left-aligns them on the right half. Labels at the top and bottom are
// centered.
func anchorFor(ac, start float64) Anchor {
	switch {
	case ac < start-180 && ac > start-360:
		return AnchorEnd
	case ac < start && ac > start-180:
		return AnchorStart
	default:
		return AnchorMiddle
	}
}
