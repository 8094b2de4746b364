package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultRingSpacing  = 20.0
	DefaultFeatureWidth = 15.0
	DefaultEnzymeWidth  = 25.0
	DefaultHeadWidth    = 25.0

	// Overlap tolerances, in degrees except for the percentage.
	DefaultMinOverlapCutoff   = -0.1
	DefaultMinOverlapPercent  = 0.01
	DefaultMinSignificantSize = 0.5

	DefaultLabelRadiusOffset = 0.0
	DefaultLabelFontSize     = 16.0 // 12pt
	DefaultLabelLineHeight   = 1.2

	// DefaultMaxPasses bounds the resolver. Typical maps settle in under ten.
	DefaultMaxPasses = 256
)

// DefaultCuttersToShow shows only enzymes that cut once.
var DefaultCuttersToShow = []int{1}

// =============================================================================
// Options
// =============================================================================

// Options configures a layout run. The struct decodes from the config file
// and from API request bodies; start from DefaultOptions so that fields
// absent from the input keep their defaults.
type Options struct {
	StartAngle    float64 `toml:"start_angle" json:"start_angle"`
	PlasmidRadius float64 `toml:"plasmid_radius" json:"plasmid_radius"`
	RingSpacing   float64 `toml:"ring_spacing" json:"ring_spacing"`

	// Drawing widths, in pixels.
	FeatureWidth float64 `toml:"feature_width" json:"feature_width"`
	EnzymeWidth  float64 `toml:"enzyme_width" json:"enzyme_width"`
	HeadWidth    float64 `toml:"head_width" json:"head_width"`
	HeadLength   float64 `toml:"head_length" json:"head_length"`

	MinOverlapCutoff   float64 `toml:"min_overlap_cutoff" json:"min_overlap_cutoff"`
	MinOverlapPercent  float64 `toml:"min_overlap_percent" json:"min_overlap_percent"`
	MinSignificantSize float64 `toml:"min_significant_size" json:"min_significant_size"`

	LabelRadiusOffset float64 `toml:"label_radius_offset" json:"label_radius_offset"`
	LabelFontSize     float64 `toml:"label_font_size" json:"label_font_size"`
	LabelLineHeight   float64 `toml:"label_line_height" json:"label_line_height"`

	// CuttersToShow lists the cut counts whose enzymes are drawn.
	CuttersToShow []int `toml:"cutters_to_show" json:"cutters_to_show"`

	MaxPasses int `toml:"max_passes" json:"max_passes"`

	// Logger receives resolver debug output. Nil discards it.
	Logger *log.Logger `toml:"-" json:"-" bson:"-"`
}

// DefaultOptions returns the full default option set.
func DefaultOptions() Options {
	return Options{
		StartAngle:         plasmid.DefaultStartAngle,
		PlasmidRadius:      plasmid.DefaultPlasmidRadius,
		RingSpacing:        DefaultRingSpacing,
		FeatureWidth:       DefaultFeatureWidth,
		EnzymeWidth:        DefaultEnzymeWidth,
		HeadWidth:          DefaultHeadWidth,
		HeadLength:         plasmid.DefaultHeadLength,
		MinOverlapCutoff:   DefaultMinOverlapCutoff,
		MinOverlapPercent:  DefaultMinOverlapPercent,
		MinSignificantSize: DefaultMinSignificantSize,
		LabelRadiusOffset:  DefaultLabelRadiusOffset,
		LabelFontSize:      DefaultLabelFontSize,
		LabelLineHeight:    DefaultLabelLineHeight,
		CuttersToShow:      append([]int(nil), DefaultCuttersToShow...),
		MaxPasses:          DefaultMaxPasses,
	}
}

// SetDefaults fills the fields whose zero value is never meaningful.
// Angles, tolerances and offsets are left alone because zero is a valid
// setting for each of them.
func (o *Options) SetDefaults() {
	if o.PlasmidRadius == 0 {
		o.PlasmidRadius = plasmid.DefaultPlasmidRadius
	}
	if o.RingSpacing == 0 {
		o.RingSpacing = DefaultRingSpacing
	}
	if o.FeatureWidth == 0 {
		o.FeatureWidth = DefaultFeatureWidth
	}
	if o.EnzymeWidth == 0 {
		o.EnzymeWidth = DefaultEnzymeWidth
	}
	if o.HeadWidth == 0 {
		o.HeadWidth = DefaultHeadWidth
	}
	if o.LabelFontSize == 0 {
		o.LabelFontSize = DefaultLabelFontSize
	}
	if o.LabelLineHeight == 0 {
		o.LabelLineHeight = DefaultLabelLineHeight
	}
	if o.MaxPasses == 0 {
		o.MaxPasses = DefaultMaxPasses
	}
	if o.CuttersToShow == nil {
		o.CuttersToShow = append([]int(nil), DefaultCuttersToShow...)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks that the options describe a drawable map.
func (o *Options) Validate() error {
	switch {
	case o.PlasmidRadius <= 0:
		return errors.New(errors.ErrCodeInvalidOptions, "plasmid_radius must be > 0, got %g", o.PlasmidRadius)
	case o.RingSpacing <= 0:
		return errors.New(errors.ErrCodeInvalidOptions, "ring_spacing must be > 0, got %g", o.RingSpacing)
	case o.FeatureWidth < 0 || o.EnzymeWidth < 0 || o.HeadWidth < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "widths must be >= 0")
	case o.HeadLength < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "head_length must be >= 0, got %g", o.HeadLength)
	case o.MinOverlapPercent < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "min_overlap_percent must be >= 0, got %g", o.MinOverlapPercent)
	case o.MinSignificantSize < 0:
		return errors.New(errors.ErrCodeInvalidOptions, "min_significant_size must be >= 0, got %g", o.MinSignificantSize)
	case o.LabelFontSize <= 0:
		return errors.New(errors.ErrCodeInvalidOptions, "label_font_size must be > 0, got %g", o.LabelFontSize)
	case o.MaxPasses < 1:
		return errors.New(errors.ErrCodeInvalidOptions, "max_passes must be >= 1, got %d", o.MaxPasses)
	}
	for _, n := range o.CuttersToShow {
		if n < 1 {
			return errors.New(errors.ErrCodeInvalidOptions, "cutters_to_show entries must be >= 1, got %d", n)
		}
	}
	return nil
}

// ValidateAndSetDefaults applies SetDefaults and then Validate.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// Geometry returns the feature geometry these options imply.
func (o Options) Geometry() plasmid.Geometry {
	return plasmid.Geometry{PlasmidRadius: o.PlasmidRadius, HeadLength: o.HeadLength}
}

// LabelHeight returns the vertical space one label takes in a sector stack.
func (o Options) LabelHeight() float64 {
	return o.LabelFontSize * o.LabelLineHeight
}
