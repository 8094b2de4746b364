package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

func pUCRows() []plasmid.Row {
	return []plasmid.Row{
		{Name: "EcoRI", Start: 40, End: 45, Type: "Enzyme"},
		{Name: "lac promoter", Start: 60, End: 140, Type: "Promoter"},
		{Name: "lacZα", Start: 100, End: 460, Type: "Gene"},
		{Name: "EcoRI", Start: 295, End: 300, Type: "Enzyme"},
		{Name: "BamHI", Start: 500, End: 505, Type: "Enzyme"},
		{Name: "ori", Start: 850, End: 1439, Type: "Origin"},
		{Name: "AmpR", Start: 2486, End: 1626, Type: "Gene"},
		{Name: "EcoRI", Start: 795, End: 800, Type: "Enzyme"},
	}
}

func TestCompute(t *testing.T) {
	l, err := Compute(2686, pUCRows(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2686, l.Length)
	assert.Len(t, l.Results, 8)
	assert.Equal(t, 8, l.Stats.Features)
	assert.Equal(t, 4, l.Stats.Enzymes)
	assert.Equal(t, 5, l.Stats.Visible, "EcoRI cuts three times and is hidden")
	assert.Equal(t, 5, l.Stats.Labels)

	ecori := l.Results[0]
	assert.True(t, ecori.Enzyme)
	assert.False(t, ecori.Visible)
	assert.Nil(t, ecori.Label)
	assert.Equal(t, 3, ecori.CutCount)
	assert.Equal(t, []int{0, 3, 7}, ecori.OtherCutters)
	assert.Equal(t, 45, ecori.Cut)
	assert.Equal(t, l.PlasmidRadius, ecori.Radius)

	bam, ok := l.Find("BamHI")
	require.True(t, ok)
	assert.True(t, bam.Visible)
	assert.Equal(t, []int{4}, bam.OtherCutters)
	assert.NotNil(t, bam.Label)

	amp, ok := l.Find("AmpR")
	require.True(t, ok)
	assert.Equal(t, 1626, amp.Start)
	assert.Equal(t, 2486, amp.End)
	assert.False(t, amp.Clockwise)
	assert.Equal(t, "Gene", amp.Type)
	assert.Equal(t, plasmid.ColorFeature, amp.Color)

	promoter, _ := l.Find("lac promoter")
	lacZ, _ := l.Find("lacZα")
	assert.NotEqual(t, promoter.Radius, lacZ.Radius, "overlapping features land on different rings")

	_, ok = l.Find("missing")
	assert.False(t, ok)
}

func TestComputeLabelRadius(t *testing.T) {
	opts := DefaultOptions()
	opts.LabelRadiusOffset = 30

	l, err := Compute(2686, pUCRows(), opts)
	require.NoError(t, err)
	assert.Equal(t, l.MaxRadius+30, l.LabelRadius)
	assert.Equal(t, l.Stats.Resolution.MaxRadius, l.MaxRadius)
	assert.Equal(t, l.Size/2, l.Center.X)
	assert.GreaterOrEqual(t, l.Size, MinCanvasSize)

	for _, r := range l.Results {
		if r.Label != nil {
			assert.Equal(t, l.LabelRadius, r.Label.Radius)
		}
	}
}

func TestComputeIdempotent(t *testing.T) {
	first, err := Compute(2686, pUCRows(), DefaultOptions())
	require.NoError(t, err)
	second, err := Compute(2686, pUCRows(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.Stats, second.Stats)
}

func TestComputeCuttersToShow(t *testing.T) {
	opts := DefaultOptions()
	opts.CuttersToShow = []int{1, 3}

	l, err := Compute(2686, pUCRows(), opts)
	require.NoError(t, err)
	assert.Equal(t, 8, l.Stats.Visible)
	assert.True(t, l.Results[7].Visible)
	assert.NotNil(t, l.Results[7].Label)

	opts.CuttersToShow = []int{}
	l, err = Compute(2686, pUCRows(), opts)
	require.NoError(t, err)
	assert.Equal(t, 4, l.Stats.Visible, "an empty list hides every enzyme")
}

func TestComputeErrors(t *testing.T) {
	badOpts := DefaultOptions()
	badOpts.RingSpacing = -1

	tests := []struct {
		name   string
		length int
		rows   []plasmid.Row
		opts   Options
		code   errors.Code
	}{
		{"zero length", 0, nil, DefaultOptions(), errors.ErrCodeInvalidSequence},
		{"span past end", 100, []plasmid.Row{{Name: "x", Start: 1, End: 101, Type: "Gene"}}, DefaultOptions(), errors.ErrCodeInvalidSpan},
		{"unknown type", 100, []plasmid.Row{{Name: "x", Start: 1, End: 10, Type: "CDS"}}, DefaultOptions(), errors.ErrCodeUnknownFeatureType},
		{"bad options", 100, nil, badOpts, errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.length, tt.rows, tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestComputeEmpty(t *testing.T) {
	l, err := Compute(500, nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, l.Results)
	assert.Equal(t, 200.0, l.MaxRadius)
	assert.Len(t, l.Ticks, 12)
}

func TestLayoutConverter(t *testing.T) {
	l, err := Compute(1000, nil, DefaultOptions())
	require.NoError(t, err)

	conv, err := l.Converter()
	require.NoError(t, err)
	assert.Equal(t, 1000, conv.Length())
	assert.Equal(t, l.StartAngle, conv.StartAngle())
	assert.Equal(t, l.Center, conv.Center())
	assert.InDelta(t, 0, conv.PositionToAngle(250), 1e-9)

	_, err = Layout{}.Converter()
	assert.Error(t, err)
}

func TestTicks(t *testing.T) {
	conv, err := plasmid.NewConverter(1200, 90)
	require.NoError(t, err)

	ticks := Ticks(conv)
	require.Len(t, ticks, 12)
	assert.Equal(t, Tick{Angle: 90, Position: 1200}, ticks[0])
	assert.Equal(t, Tick{Angle: 60, Position: 100}, ticks[1])
	assert.Equal(t, Tick{Angle: 0, Position: 300}, ticks[3])
	assert.Equal(t, Tick{Angle: -240, Position: 1100}, ticks[11])
}

func TestApplyCutterFilter(t *testing.T) {
	fs := newFeatures(t, 1000, []plasmid.Row{
		{Name: "EcoRI", Start: 40, End: 45, Type: "Enzyme"},
		{Name: "EcoRI", Start: 400, End: 405, Type: "Enzyme"},
		{Name: "XhoI", Start: 700, End: 705, Type: "Enzyme"},
		{Name: "ori", Start: 800, End: 900, Type: "Origin"},
	})
	plasmid.GroupCutters(fs)

	ApplyCutterFilter(fs, []int{2})
	assert.True(t, fs[0].Visible())
	assert.True(t, fs[1].Visible())
	assert.False(t, fs[2].Visible())
	assert.False(t, fs[2].Labeled())
	assert.True(t, fs[3].Visible())

	ApplyCutterFilter(fs, []int{1})
	assert.False(t, fs[0].Visible())
	assert.True(t, fs[2].Visible())
	assert.True(t, fs[2].Labeled(), "shown again with its label")
}
