package plasmid

import (
	"sort"

	"github.com/samber/lo"
)

// CommonCutters is the reference list of commonly used restriction enzymes.
// CutterList.Non reports the ones that do not cut a sequence.
var CommonCutters = []string{
	"AatII", "Acc65I", "AccI", "AclI", "AfeI", "AflII",
	"AgeI", "ApaI", "ApaLI", "ApoI", "AscI", "AseI",
	"AsiSI", "AvrII", "BamHI", "BclI", "BglII", "Bme1580I",
	"BmtI", "BsaHI", "BsiEI", "BsiWI", "BspEI", "BspHI",
	"BsrGI", "BssHII", "BstBI", "BstZ17I", "BtgI", "ClaI",
	"DraI", "EaeI", "EagI", "EcoRI", "EcoRV", "FseI",
	"FspI", "HaeII", "HincII", "HindIII", "HpaI", "KasI",
	"KpnI", "MfeI", "MluI", "MscI", "MspA1I", "NaeI",
	"NarI", "NcoI", "NdeI", "NgoMIV", "NheI", "NotI",
	"NruI", "NsiI", "NspI", "PacI", "PciI", "PmeI",
	"PmlI", "PsiI", "PspOMI", "PstI", "PvuI", "PvuII",
	"SacI", "SacII", "SalI", "SbfI", "ScaI", "SfcI",
	"SfoI", "SgrAI", "SmaI", "SmlI", "SnaBI", "SpeI",
	"SphI", "SspI", "StuI", "SwaI", "XbaI", "XhoI",
	"XmaI",
}

// GroupCutters links every enzyme feature to all enzyme features of the same
// name, itself included, and returns the enzymes as a CutterList.
// Non-enzyme features are left untouched. Sibling lists are ordered by input
// position.
func GroupCutters(features []*Feature) CutterList {
	enzymes := lo.Filter(features, func(f *Feature, _ int) bool { return f.IsEnzyme() })
	groups := lo.GroupBy(enzymes, func(f *Feature) string { return f.name })
	for _, group := range groups {
		for _, f := range group {
			f.otherCutters = group
		}
	}
	return CutterList{enzymes: enzymes}
}

// CutterList answers the digest questions about a sequence's enzymes.
type CutterList struct {
	enzymes []*Feature
}

// Len returns the number of enzyme features (cut sites).
func (l CutterList) Len() int { return len(l.enzymes) }

// Unique returns the enzymes that cut exactly once, sorted by name.
func (l CutterList) Unique() []*Feature {
	out := lo.Filter(l.enzymes, func(f *Feature, _ int) bool { return f.CutCount() == 1 })
	sortByName(out)
	return out
}

// All returns one feature per enzyme name, sorted by name. The returned
// feature is the first site of that enzyme in input order.
func (l CutterList) All() []*Feature {
	out := lo.UniqBy(l.enzymes, func(f *Feature) string { return f.name })
	sortByName(out)
	return out
}

// Non returns the names in known that do not cut the sequence, sorted.
func (l CutterList) Non(known []string) []string {
	cutting := lo.Map(l.enzymes, func(f *Feature, _ int) string { return f.name })
	out := lo.Uniq(lo.Without(known, cutting...))
	sort.Strings(out)
	return out
}

// Cuts returns the sorted cut positions of the enzyme named name.
func (l CutterList) Cuts(name string) []int {
	sites := lo.Filter(l.enzymes, func(f *Feature, _ int) bool { return f.name == name })
	cuts := lo.Map(sites, func(f *Feature, _ int) int { return f.cut })
	sort.Ints(cuts)
	return cuts
}

func sortByName(fs []*Feature) {
	sort.SliceStable(fs, func(i, j int) bool { return fs[i].name < fs[j].name })
}
