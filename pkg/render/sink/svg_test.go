package sink

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

func testLayout(t *testing.T) layout.Layout {
	t.Helper()
	rows := []plasmid.Row{
		{Name: "EcoRI", Start: 40, End: 45, Type: "Enzyme"},
		{Name: "lac promoter", Start: 60, End: 140, Type: "Promoter"},
		{Name: "lacZ & friends", Start: 100, End: 460, Type: "Gene"},
		{Name: "EcoRI", Start: 295, End: 300, Type: "Enzyme"},
		{Name: "BamHI", Start: 500, End: 505, Type: "Enzyme"},
		{Name: "ori", Start: 850, End: 1439, Type: "Origin"},
		{Name: "AmpR", Start: 2486, End: 1626, Type: "Gene"},
	}
	l, err := layout.Compute(2686, rows, layout.DefaultOptions())
	require.NoError(t, err)
	return l
}

func viewBox(l layout.Layout) string {
	size := int(math.Ceil(l.Size))
	return fmt.Sprintf(`viewBox="0 0 %d %d"`, size, size)
}

func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		require.NoError(t, err)
	}
}

func render(t *testing.T, l layout.Layout, opts ...SVGOption) []byte {
	t.Helper()
	data, err := RenderSVG(l, opts...)
	require.NoError(t, err)
	return data
}

func TestRenderSVG(t *testing.T) {
	l := testLayout(t)
	data := render(t, l, WithTitle("pUC19"))
	out := string(data)

	wellFormed(t, data)
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, viewBox(l))
	assert.Contains(t, out, "<title>pUC19</title>")
	assert.Contains(t, out, `id="plasmid"`)
	assert.Contains(t, out, "<title>BamHI</title>")
	assert.Contains(t, out, "<title>lacZ &amp; friends</title>")
	assert.Contains(t, out, `data-name="lacZ &amp; friends"`)
	assert.NotContains(t, out, "EcoRI", "enzymes cutting more than once are hidden")
	assert.Equal(t, 5, strings.Count(out, `class="feature"`))
	assert.Equal(t, 5, strings.Count(out, `class="label"`))
	assert.Contains(t, out, ">2686</text>", "tick at the origin")
	assert.NotContains(t, out, "<script")
}

func TestRenderSVGOptions(t *testing.T) {
	l := testLayout(t)

	t.Run("without labels and ticks", func(t *testing.T) {
		out := string(render(t, l, WithoutLabels(), WithoutTicks()))
		assert.NotContains(t, out, `class="label"`)
		assert.NotContains(t, out, `id="ticks"`)
	})

	t.Run("width", func(t *testing.T) {
		out := string(render(t, l, WithWidth(320)))
		assert.Contains(t, out, `width="320"`)
		assert.Contains(t, out, viewBox(l))
	})

	t.Run("highlight", func(t *testing.T) {
		out := string(render(t, l, WithHighlight("BamHI")))
		assert.Contains(t, out, `stroke-width="1.5"`)
		assert.Contains(t, out, `opacity="0.35"`)
	})

	t.Run("interaction", func(t *testing.T) {
		data := render(t, l, WithInteraction())
		wellFormed(t, data)
		assert.Contains(t, string(data), "<script")
		assert.Contains(t, string(data), "<style")
	})
}

func TestRenderSVGEmpty(t *testing.T) {
	l, err := layout.Compute(100, nil, layout.DefaultOptions())
	require.NoError(t, err)
	data := render(t, l)
	wellFormed(t, data)
	assert.NotContains(t, string(data), `class="feature"`)
}

func TestRenderSVGInvalidLength(t *testing.T) {
	_, err := RenderSVG(layout.Layout{})
	require.Error(t, err)
}

func TestRenderSVGStartAngle(t *testing.T) {
	tests := []struct {
		name       string
		startAngle float64
		dx, dy     float64
	}{
		{"top", 90, 0, -1},
		{"right", 0, 1, 0},
		{"left", 180, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := layout.DefaultOptions()
			opts.StartAngle = tt.startAngle
			l, err := layout.Compute(1000, nil, opts)
			require.NoError(t, err)

			mid := l.PlasmidRadius - l.Options.RingSpacing - tickLength/2
			r0, r1 := mid-tickLength/2, mid+tickLength/2
			origin := fmt.Sprintf("M%.2f,%.2f L%.2f,%.2f",
				l.Center.X+tt.dx*r0, l.Center.Y+tt.dy*r0,
				l.Center.X+tt.dx*r1, l.Center.Y+tt.dy*r1)
			assert.Contains(t, string(render(t, l)), origin, "origin tick sits at the start angle")
		})
	}
}

func TestArcPath(t *testing.T) {
	conv, err := plasmid.NewConverter(1000, plasmid.DefaultStartAngle)
	require.NoError(t, err)
	conv = conv.WithCenter(100, 100)

	small := arcPath(conv, 50, 0, 90)
	assert.Equal(t, "M150.00,100.00 A50.00,50.00 0 0 0 100.00,50.00", small)

	large := arcPath(conv, 50, -180, 45)
	assert.Contains(t, large, " 0 1 0 ", "spans over 180 degrees use the large arc")
}
