// Package sink draws computed plasmid map layouts.
//
// [RenderSVG] turns a [layout.Layout] into a standalone SVG document: the
// plasmid ring, tick marks every 30 degrees labeled with the position under
// them, one group per visible feature (arc, arrowhead or enzyme tick) and
// leader-line labels at the stacked label points. Options follow the
// functional option pattern:
//
//	l, _ := layout.Compute(length, rows, layout.DefaultOptions())
//	data, err := sink.RenderSVG(l, sink.WithTitle("pUC19"), sink.WithHighlight("EcoRI"))
//
// Hidden features (enzymes filtered by cut count) are not drawn.
package sink
