// Package pipeline runs the load → layout → render sequence shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Load: read the feature file named by Options.Path, unless the sequence
//     length and rows are given inline
//  2. Layout: assign rings and label points ([layout.Compute])
//  3. Render: draw the layout as SVG, or encode it as JSON
//
// Layouts and rendered artifacts are cached. Layout keys hash the sequence
// length, the rows and the layout options; artifact keys hash the layout
// JSON and the render options, so a layout change always invalidates its
// artifacts.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Path = "pUC19.json"
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// [layout.Compute]: github.com/matzehuels/plasmap/pkg/layout.Compute
package pipeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plasmap/pkg/cache"
	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/plasmid"
	"github.com/matzehuels/plasmap/pkg/render/sink"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
}

// Options configures one pipeline run. Start from [DefaultOptions]: a zero
// start angle and a zero overlap cutoff are meaningful layout settings, so
// zero layout options are not replaced by defaults.
type Options struct {
	// Input
	Path     string        `json:"path,omitempty"`
	Name     string        `json:"name,omitempty"`
	Length   int           `json:"length,omitempty"`
	Features []plasmid.Row `json:"features,omitempty"`

	// Layout
	Layout layout.Options `json:"layout"`

	// Render
	Formats     []string `json:"formats,omitempty"`
	Width       int      `json:"width,omitempty"`
	NoTicks     bool     `json:"no_ticks,omitempty"`
	NoLabels    bool     `json:"no_labels,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Highlight   string   `json:"highlight,omitempty"`

	// Refresh skips cache lookups; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// InputHash is the content hash of the sequence length and rows.
	InputHash string

	Name      string
	Layout    layout.Layout
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Features   int
	Visible    int
	Rings      int
	Passes     int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache
	RenderHit bool // every artifact came from cache
}

// DefaultOptions returns options with default layout settings and SVG output.
func DefaultOptions() Options {
	return Options{
		Layout:  layout.DefaultOptions(),
		Formats: []string{FormatSVG},
	}
}

// ValidateFormat checks that format is supported. Formats are lower case.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, json)", format)
	}
	return nil
}

// ValidateFormats checks every format in formats.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForLoad checks that the run has an input.
func (o *Options) ValidateForLoad() error {
	if o.Path == "" && o.Length == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "either a feature file or a sequence length is required")
	}
	return nil
}

// ValidateForLayout checks the loaded sequence and layout options.
func (o *Options) ValidateForLayout() error {
	if err := errors.ValidateSequenceLength(o.Length); err != nil {
		return err
	}
	return o.Layout.ValidateAndSetDefaults()
}

// ValidateForRender checks the render options and fills their defaults.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "width must not be negative, got %d", o.Width)
	}
	return nil
}

// ValidateAndSetDefaults validates everything a full run needs. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.Layout.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetRenderDefaults renders SVG when no format is given.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// InputHash hashes the sequence length and rows.
func (o *Options) InputHash() string {
	data, _ := json.Marshal(struct {
		Length   int           `json:"length"`
		Features []plasmid.Row `json:"features"`
	}{o.Length, o.Features})
	return cache.Hash(data)
}

// LayoutKeyOpts returns the cache key options of the layout stage.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	data, _ := json.Marshal(o.Layout)
	return cache.LayoutKeyOpts{OptionsHash: cache.Hash(data)}
}

// ArtifactKeyOpts returns the cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	if format == FormatSVG {
		k.Title = o.Name
		k.Width = o.Width
		k.NoTicks = o.NoTicks
		k.NoLabels = o.NoLabels
		k.Interactive = o.Interactive
		k.Highlight = o.Highlight
	}
	return k
}

// SVGOptions converts the render options for the SVG sink.
func (o *Options) SVGOptions() []sink.SVGOption {
	var opts []sink.SVGOption
	if o.Name != "" {
		opts = append(opts, sink.WithTitle(o.Name))
	}
	if o.Width > 0 {
		opts = append(opts, sink.WithWidth(o.Width))
	}
	if o.NoTicks {
		opts = append(opts, sink.WithoutTicks())
	}
	if o.NoLabels {
		opts = append(opts, sink.WithoutLabels())
	}
	if o.Interactive {
		opts = append(opts, sink.WithInteraction())
	}
	if o.Highlight != "" {
		opts = append(opts, sink.WithHighlight(o.Highlight))
	}
	return opts
}

func (o *Options) String() string {
	src := o.Path
	if src == "" {
		src = fmt.Sprintf("%d bp inline", o.Length)
	}
	return fmt.Sprintf("%s (%d features)", src, len(o.Features))
}
