// Package plasmid models annotated circular DNA sequences for map layout.
//
// # Core Types
//
//   - [Converter]: sequence position, angle and rectangular coordinate math
//   - [Feature]: one annotation (gene, promoter, cut site, ...) with its
//     angular extent on the map
//   - [Type]: the closed set of feature types, each mapped to a [Style]
//   - [CutterList]: restriction enzyme features grouped by name
//
// # Angles
//
// Angles are in degrees, measured counter-clockwise from the horizontal.
// The sequence starts at the converter's start angle (90, the top of the
// circle by default) and walks clockwise, so angles decrease as positions
// increase:
//
//	conv, _ := plasmid.NewConverter(1000, 90)
//	conv.PositionToAngle(250) // 0
//	conv.PositionToAngle(500) // -90
//
// # Features
//
// Features are built from [Row] values, which carry the loader's view of a
// feature (name, span, type, orientation). Construction validates the span and
// type and normalizes the span so that Start <= End, keeping the original
// orientation in Clockwise:
//
//	f, err := plasmid.NewFeature(conv, plasmid.Row{Name: "AmpR", Start: 1200, End: 340, Type: "Gene"}, geom)
//	f.Span()      // 340, 1200
//	f.Clockwise() // false
//
// The angular extent accessors ([Feature.SizeDegrees], [Feature.StartDegrees],
// [Feature.EndDegrees]) account for arrowheads, whose angular size depends on
// the feature's current radius; they are recomputed on every call.
//
// Only the radius, the visibility flags and the enzyme sibling list change
// after construction. Ring assignment lives in pkg/layout.
package plasmid
