package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

// Format is a feature file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Sequence is the content of a feature file.
type Sequence struct {
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Length   int           `json:"length" yaml:"length"`
	Features []plasmid.Row `json:"features" yaml:"features"`
}

// row accepts both "name" and the Giraffe "feature" key.
type row struct {
	Name      string `json:"name" yaml:"name"`
	Feature   string `json:"feature" yaml:"feature"`
	Start     int    `json:"start" yaml:"start"`
	End       int    `json:"end" yaml:"end"`
	Type      string `json:"type" yaml:"type"`
	Clockwise *bool  `json:"clockwise" yaml:"clockwise"`
	Cut       *int   `json:"cut" yaml:"cut"`
}

func (r row) toRow() plasmid.Row {
	name := r.Name
	if name == "" {
		name = r.Feature
	}
	return plasmid.Row{
		Name:      name,
		Start:     r.Start,
		End:       r.End,
		Type:      r.Type,
		Clockwise: r.Clockwise,
		Cut:       r.Cut,
	}
}

type document struct {
	Name     string `json:"name" yaml:"name"`
	Length   int    `json:"length" yaml:"length"`
	Features []row  `json:"features" yaml:"features"`
}

func (d document) toSequence() (Sequence, error) {
	if err := errors.ValidateSequenceLength(d.Length); err != nil {
		return Sequence{}, err
	}
	seq := Sequence{Name: d.Name, Length: d.Length, Features: make([]plasmid.Row, len(d.Features))}
	for i, r := range d.Features {
		seq.Features[i] = r.toRow()
	}
	return seq, nil
}

// FormatFromPath picks the encoding from a file extension. Anything that is
// not .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name given on the command line or in a
// request.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported feature format %q (use json or yaml)", s)
}

// Read decodes a feature file in the given format.
func Read(r io.Reader, format Format) (Sequence, error) {
	switch format {
	case FormatYAML:
		return ReadYAML(r)
	case FormatJSON, "":
		return ReadJSON(r)
	}
	return Sequence{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported feature format %q", format)
}

// ReadJSON decodes either the object form or the Giraffe array form,
// depending on the first non-blank character.
func ReadJSON(r io.Reader) (Sequence, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return Sequence{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read features")
	}
	if first == '[' {
		return readGiraffe(br)
	}

	var doc document
	if err := json.NewDecoder(br).Decode(&doc); err != nil {
		return Sequence{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	return doc.toSequence()
}

func readGiraffe(r io.Reader) (Sequence, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Sequence{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	if len(raw) == 0 {
		return Sequence{}, errors.New(errors.ErrCodeInvalidInput, "empty feature array: first element must be the sequence length")
	}

	var doc document
	if err := json.Unmarshal(raw[0], &doc.Length); err != nil {
		return Sequence{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "sequence length")
	}
	doc.Features = make([]row, len(raw)-1)
	for i, msg := range raw[1:] {
		if err := json.Unmarshal(msg, &doc.Features[i]); err != nil {
			return Sequence{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "feature %d", i)
		}
	}
	return doc.toSequence()
}

// ReadYAML decodes the YAML object form.
func ReadYAML(r io.Reader) (Sequence, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return Sequence{}, errors.New(errors.ErrCodeInvalidInput, "empty feature file")
		}
		return Sequence{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode")
	}
	return doc.toSequence()
}

// ImportFile reads the feature file at path, choosing the format from its
// extension.
func ImportFile(path string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return Sequence{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Sequence{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	seq, err := Read(f, FormatFromPath(path))
	if err != nil {
		return Sequence{}, fmt.Errorf("%s: %w", path, err)
	}
	if seq.Name == "" {
		seq.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return seq, nil
}

// ParseBytes decodes an in-memory feature file.
func ParseBytes(data []byte, format Format) (Sequence, error) {
	return Read(bytes.NewReader(data), format)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
