package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/layout"
)

// WriteJSON encodes a sequence in the JSON object form. The output can be
// read back with [ReadJSON].
func WriteJSON(seq Sequence, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a sequence as YAML.
func WriteYAML(seq Sequence, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes a sequence in the given format.
func Write(seq Sequence, w io.Writer, format Format) error {
	if format == FormatYAML {
		return WriteYAML(seq, w)
	}
	return WriteJSON(seq, w)
}

// WriteLayoutJSON encodes a computed layout.
func WriteLayoutJSON(l layout.Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}

// ReadLayoutJSON decodes a layout written by [WriteLayoutJSON].
func ReadLayoutJSON(r io.Reader) (layout.Layout, error) {
	var l layout.Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return layout.Layout{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode layout")
	}
	return l, nil
}

// ExportLayout writes a computed layout to path.
func ExportLayout(l layout.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteLayoutJSON(l, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
