// Package io reads feature files and writes computed layouts.
//
// # Feature Files
//
// A feature file describes one circular sequence: its length in base pairs
// and the features annotated on it. Three encodings are accepted.
//
// The JSON object form:
//
//	{
//	  "name": "pUC19",
//	  "length": 2686,
//	  "features": [
//	    {"name": "lacZα", "start": 146, "end": 469, "type": "Gene"},
//	    {"name": "AmpR", "start": 2486, "end": 1626, "type": "Gene"},
//	    {"name": "EcoRI", "start": 396, "end": 401, "type": "Enzyme", "cut": 397}
//	  ]
//	}
//
// The array form served by Giraffe-style feature databases, where the first
// element is the sequence length and rows name the feature under "feature":
//
//	[2686, {"feature": "lacZα", "start": 146, "end": 469, "type": "Gene"}]
//
// And YAML with the same keys as the JSON object form.
//
// # Row Fields
//
// Required:
//   - name (or feature): display name
//   - start, end: 1-based inclusive positions; start > end means the
//     feature runs counter-clockwise
//   - type: Gene, Regulatory, Enzyme, Primer, Promoter, Terminator, Origin,
//     Feature or ExactFeature
//
// Optional:
//   - clockwise: overrides the orientation implied by start and end
//   - cut: cut position of an enzyme, defaults to end
//
// Readers only check the envelope (length, well-formed rows). Spans and types
// are validated when the layout is computed, so errors name the offending row.
//
// # Layout Export
//
// [WriteLayoutJSON] writes a complete [layout.Layout] including rings, label
// points and render options; [ReadLayoutJSON] reads it back, which is how the
// pipeline cache stores layouts.
//
// [layout.Layout]: github.com/matzehuels/plasmap/pkg/layout.Layout
package io
