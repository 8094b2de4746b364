package pipeline

import (
	"bytes"
	"fmt"

	pkgio "github.com/matzehuels/plasmap/pkg/io"
	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/render/sink"
)

// RenderFromLayout produces one artifact per requested format without
// caching.
func RenderFromLayout(l layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l layout.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return sink.RenderSVG(l, opts.SVGOptions()...)
	case FormatJSON:
		return marshalLayout(l)
	}
	return nil, ValidateFormat(format)
}

func marshalLayout(l layout.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteLayoutJSON(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
