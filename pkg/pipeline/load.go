package pipeline

import (
	pkgio "github.com/matzehuels/plasmap/pkg/io"
)

// Load reads the feature file named by opts.Path into opts. Inline input
// (a non-zero Length) is left untouched.
func Load(opts *Options) error {
	if err := opts.ValidateForLoad(); err != nil {
		return err
	}
	if opts.Length > 0 {
		return nil
	}

	seq, err := pkgio.ImportFile(opts.Path)
	if err != nil {
		return err
	}
	opts.Length = seq.Length
	opts.Features = seq.Features
	if opts.Name == "" {
		opts.Name = seq.Name
	}
	return nil
}
