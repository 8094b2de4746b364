package pipeline

import (
	"github.com/matzehuels/plasmap/pkg/layout"
)

// ComputeLayout lays out the loaded sequence without caching. Resolver
// debug output goes to opts.Logger unless the layout options carry their
// own logger.
func ComputeLayout(opts Options) (layout.Layout, error) {
	if opts.Layout.Logger == nil && opts.Logger != nil {
		opts.Layout.Logger = opts.Logger
	}
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}
	return layout.Compute(opts.Length, opts.Features, opts.Layout)
}
