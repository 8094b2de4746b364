// Package layout assigns plasmid map features to rings and places their
// labels.
//
// # Overview
//
// A layout run takes the features of one sequence through three steps:
//
//  1. Cutter grouping: enzymes sharing a name are linked, and enzymes whose
//     cut count is not in [Options.CuttersToShow] are hidden.
//  2. Ring assignment: [Resolver] moves overlapping features off the
//     baseline ring onto a ladder of rings, alternating outward and inward.
//  3. Label stacking: [LabelStacker] puts each label in one of eight 45
//     degree sectors beyond the outermost ring and stacks labels that share
//     a sector.
//
// [Compute] runs all three and returns a [Layout] with one [Result] per
// feature, ready for a renderer:
//
//	l, err := layout.Compute(2686, rows, layout.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, r := range l.Results {
//	    fmt.Println(r.Name, r.Radius, r.StartDegrees, r.EndDegrees)
//	}
//
// # Ring Assignment
//
// Rings are swept in passes. Within a ring, features are visited in input
// order while tracking the furthest angle claimed so far. A feature that
// starts past that point (by at least [Options.MinOverlapCutoff]) claims the
// ring. A significant overlap is a conflict: the larger feature stays and
// the smaller one moves to the next ring. When a feature is displaced, the
// features it displaced earlier in the same sweep move back if they clear
// the new holder. Passes repeat until one finds no conflicts, or fail with
// a LAYOUT_DIVERGED error after [Options.MaxPasses] passes.
//
// Enzymes always stay on the baseline ring.
package layout
