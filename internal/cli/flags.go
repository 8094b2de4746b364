package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/pipeline"
)

// layoutFlags are the layout options settable on the command line. Only
// flags the user set override the config file.
type layoutFlags struct {
	startAngle    float64
	plasmidRadius float64
	ringSpacing   float64
	labelOffset   float64
	fontSize      float64
	cutters       []int
	maxPasses     int
}

func addLayoutFlags(cmd *cobra.Command) *layoutFlags {
	def := layout.DefaultOptions()
	f := &layoutFlags{}
	fs := cmd.Flags()
	fs.Float64Var(&f.startAngle, "start-angle", def.StartAngle, "angle of position 0, in degrees counter-clockwise from 3 o'clock")
	fs.Float64Var(&f.plasmidRadius, "radius", def.PlasmidRadius, "plasmid ring radius in pixels")
	fs.Float64Var(&f.ringSpacing, "ring-spacing", def.RingSpacing, "distance between feature rings in pixels")
	fs.Float64Var(&f.labelOffset, "label-offset", def.LabelRadiusOffset, "extra distance between the outermost ring and the labels")
	fs.Float64Var(&f.fontSize, "font-size", def.LabelFontSize, "label font size in pixels")
	fs.IntSliceVar(&f.cutters, "cutters", def.CuttersToShow, "cut counts of the enzymes to show (e.g. 1,2)")
	fs.IntVar(&f.maxPasses, "max-passes", def.MaxPasses, "resolver pass limit")
	return f
}

// apply copies the flags the user set onto opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *layout.Options) {
	fs := cmd.Flags()
	if fs.Changed("start-angle") {
		opts.StartAngle = f.startAngle
	}
	if fs.Changed("radius") {
		opts.PlasmidRadius = f.plasmidRadius
	}
	if fs.Changed("ring-spacing") {
		opts.RingSpacing = f.ringSpacing
	}
	if fs.Changed("label-offset") {
		opts.LabelRadiusOffset = f.labelOffset
	}
	if fs.Changed("font-size") {
		opts.LabelFontSize = f.fontSize
	}
	if fs.Changed("cutters") {
		opts.CuttersToShow = append([]int(nil), f.cutters...)
	}
	if fs.Changed("max-passes") {
		opts.MaxPasses = f.maxPasses
	}
}

// renderFlags are the SVG options of the render and serve commands.
type renderFlags struct {
	width       int
	title       string
	highlight   string
	noTicks     bool
	noLabels    bool
	interactive bool
}

func addRenderFlags(cmd *cobra.Command) *renderFlags {
	f := &renderFlags{}
	fs := cmd.Flags()
	fs.IntVar(&f.width, "width", 0, "rendered width in pixels (default: natural size)")
	fs.StringVar(&f.title, "title", "", "map title (default: sequence name)")
	fs.StringVar(&f.highlight, "highlight", "", "feature name to emphasize")
	fs.BoolVar(&f.noTicks, "no-ticks", false, "omit tick marks")
	fs.BoolVar(&f.noLabels, "no-labels", false, "omit labels")
	fs.BoolVar(&f.interactive, "interactive", false, "embed hover and click highlighting")
	return f
}

func (f *renderFlags) apply(opts *pipeline.Options) {
	opts.Width = f.width
	if f.title != "" {
		opts.Name = f.title
	}
	opts.Highlight = f.highlight
	opts.NoTicks = f.noTicks
	opts.NoLabels = f.noLabels
	opts.Interactive = f.interactive
}
