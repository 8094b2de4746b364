package plasmid

import (
	"strconv"
	"strings"

	"github.com/matzehuels/plasmap/pkg/errors"
)

// Type is the kind of a feature. The set is closed; use ParseType to read
// one from text.
type Type int

const (
	TypeFeature Type = iota
	TypeGene
	TypeRegulatory
	TypeEnzyme
	TypePrimer
	TypePromoter
	TypeTerminator
	TypeOrigin
	TypeExactFeature

	numTypes
)

var typeNames = [numTypes]string{
	TypeFeature:      "Feature",
	TypeGene:         "Gene",
	TypeRegulatory:   "Regulatory",
	TypeEnzyme:       "Enzyme",
	TypePrimer:       "Primer",
	TypePromoter:     "Promoter",
	TypeTerminator:   "Terminator",
	TypeOrigin:       "Origin",
	TypeExactFeature: "ExactFeature",
}

// Types returns every feature type in declaration order.
func Types() []Type {
	out := make([]Type, 0, numTypes)
	for t := Type(0); t < numTypes; t++ {
		out = append(out, t)
	}
	return out
}

// String returns the canonical type name.
func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// ParseType reads a type name. Matching ignores case, spaces, dashes and
// underscores, so "Exact Feature", "exact_feature" and "ExactFeature" all
// parse to TypeExactFeature.
func ParseType(s string) (Type, error) {
	key := normalizeTypeName(s)
	for t, name := range typeNames {
		if normalizeTypeName(name) == key {
			return Type(t), nil
		}
	}
	return 0, &errors.UnknownFeatureTypeError{Type: s}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if t < 0 || t >= numTypes {
		return nil, &errors.UnknownFeatureTypeError{Type: t.String()}
	}
	return []byte(typeNames[t]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func normalizeTypeName(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// Map colors.
const (
	ColorBackgroundText = "#aaa"
	ColorPlasmid        = "#000"
	ColorFeature        = "#f00"
	ColorPrimer         = "#090"
	ColorOrigin         = "#333"
	ColorEnzyme         = "#00c"
)

// Style holds the visual defaults of a feature type.
type Style struct {
	Color    string
	DrawHead bool
	Enzyme   bool // drawn as a radial tick with the enzyme width
}

// Promoters and primers are the only primer-colored types with heads;
// terminators share the color without one.
var styles = [numTypes]Style{
	TypeFeature:      {Color: ColorFeature},
	TypeGene:         {Color: ColorFeature, DrawHead: true},
	TypeRegulatory:   {Color: ColorOrigin},
	TypeEnzyme:       {Color: ColorEnzyme, Enzyme: true},
	TypePrimer:       {Color: ColorPrimer, DrawHead: true},
	TypePromoter:     {Color: ColorPrimer, DrawHead: true},
	TypeTerminator:   {Color: ColorPrimer},
	TypeOrigin:       {Color: ColorOrigin},
	TypeExactFeature: {Color: ColorFeature},
}

// StyleFor returns the visual defaults for t. Unknown types get the plain
// feature style.
func StyleFor(t Type) Style {
	if t < 0 || t >= numTypes {
		return styles[TypeFeature]
	}
	return styles[t]
}
