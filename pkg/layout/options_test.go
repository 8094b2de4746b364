package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plasmap/pkg/errors"
)

func TestDefaultOptionsValid(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	assert.Equal(t, 90.0, opts.StartAngle)
	assert.Equal(t, -0.1, opts.MinOverlapCutoff)
	assert.Equal(t, []int{1}, opts.CuttersToShow)

	opts.CuttersToShow[0] = 9
	assert.Equal(t, []int{1}, DefaultCuttersToShow, "defaults are copied")
}

func TestSetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	assert.Equal(t, 200.0, opts.PlasmidRadius)
	assert.Equal(t, DefaultRingSpacing, opts.RingSpacing)
	assert.Equal(t, DefaultMaxPasses, opts.MaxPasses)
	assert.Equal(t, []int{1}, opts.CuttersToShow)
	assert.NotNil(t, opts.Logger)

	assert.Zero(t, opts.StartAngle, "zero start angle is meaningful")
	assert.Zero(t, opts.MinOverlapCutoff, "zero cutoff is meaningful")

	opts = Options{CuttersToShow: []int{}}
	opts.SetDefaults()
	assert.Empty(t, opts.CuttersToShow, "an explicit empty list is kept")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"negative radius", func(o *Options) { o.PlasmidRadius = -5 }},
		{"negative spacing", func(o *Options) { o.RingSpacing = -20 }},
		{"negative width", func(o *Options) { o.FeatureWidth = -1 }},
		{"negative head", func(o *Options) { o.HeadLength = -7 }},
		{"negative percent", func(o *Options) { o.MinOverlapPercent = -0.5 }},
		{"negative size", func(o *Options) { o.MinSignificantSize = -1 }},
		{"negative font", func(o *Options) { o.LabelFontSize = -12 }},
		{"negative passes", func(o *Options) { o.MaxPasses = -1 }},
		{"zero cutter count", func(o *Options) { o.CuttersToShow = []int{0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.ValidateAndSetDefaults()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidOptions))
		})
	}
}

func TestOptionsGeometry(t *testing.T) {
	opts := DefaultOptions()
	opts.PlasmidRadius = 150
	opts.HeadLength = 10

	g := opts.Geometry()
	assert.Equal(t, 150.0, g.PlasmidRadius)
	assert.Equal(t, 10.0, g.HeadLength)
	assert.InDelta(t, 19.2, opts.LabelHeight(), 1e-9)
}
