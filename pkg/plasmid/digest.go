package plasmid

import (
	"sort"

	"github.com/samber/lo"
)

// Fragment is one piece of a restriction digest, as 1-based inclusive
// positions. On a circular sequence the last fragment may wrap, in which case
// Start > End.
type Fragment struct {
	Start  int `json:"start" bson:"start"`
	End    int `json:"end" bson:"end"`
	Length int `json:"length" bson:"length"`
}

// Digest returns the fragments left after cutting a sequence of the given
// length after each position in cuts. Cuts are sorted and deduplicated first;
// empty fragments are dropped. A circular sequence with a single cut yields
// one fragment covering the whole sequence.
func Digest(cuts []int, length int, circular bool) []Fragment {
	cuts = lo.Uniq(lo.Filter(cuts, func(c int, _ int) bool { return c >= 1 && c <= length }))
	sort.Ints(cuts)
	if len(cuts) == 0 {
		return nil
	}

	var out []Fragment
	add := func(start, end, n int) {
		if n > 0 {
			out = append(out, Fragment{Start: start, End: end, Length: n})
		}
	}

	if !circular {
		add(1, cuts[0], cuts[0])
	}
	for i := 0; i+1 < len(cuts); i++ {
		add(cuts[i]+1, cuts[i+1], cuts[i+1]-cuts[i])
	}

	last := cuts[len(cuts)-1]
	if circular {
		start := last + 1
		if start > length {
			start = 1
		}
		add(start, cuts[0], length-last+cuts[0])
	} else {
		add(last+1, length, length-last)
	}
	return out
}
