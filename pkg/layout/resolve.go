package layout

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

// RingRadius returns the radius of ring k on the ladder around baseline.
// Ring 0 is the baseline; the ladder then alternates outward and inward
// (baseline+s, baseline-s, baseline+2s, baseline-2s, ...). Once the next
// inner ring would reach the center the ladder continues outward only.
func RingRadius(baseline, spacing float64, k int) float64 {
	if k <= 0 {
		return baseline
	}
	inner := int(math.Ceil(baseline/spacing)) - 1
	if inner < 0 {
		inner = 0
	}
	if k > 2*inner {
		return baseline + float64(k-inner)*spacing
	}
	n := float64((k + 1) / 2)
	if k%2 == 1 {
		return baseline + n*spacing
	}
	return baseline - n*spacing
}

// Resolution summarizes a resolver run.
type Resolution struct {
	MaxRadius float64 `json:"max_radius" bson:"max_radius"`
	Rings     int     `json:"rings" bson:"rings"`
	Passes    int     `json:"passes" bson:"passes"`
	Pushes    int     `json:"pushes" bson:"pushes"`
	Unpushes  int     `json:"unpushes" bson:"unpushes"`
}

// Resolver assigns features to rings so that features sharing a ring do not
// overlap beyond the configured tolerance. Enzymes are not moved.
type Resolver struct {
	opts   Options
	logger *log.Logger
}

// NewResolver returns a resolver using opts; zero fields take defaults.
func NewResolver(opts Options) *Resolver {
	opts.SetDefaults()
	return &Resolver{opts: opts, logger: opts.Logger}
}

type slot struct {
	f      *plasmid.Feature
	ring   int
	pushed []*slot
}

// run holds the state of one Resolve call.
type run struct {
	*Resolver
	slots   []*slot
	highest int
	res     Resolution
}

// Resolve places every non-enzyme feature on the baseline and then sweeps
// rings in passes until a full pass finds no conflicts. Within a ring,
// features are visited in input order; callers that want the tightest
// packing pass features sorted by start.
//
// It fails with *errors.LayoutDivergedError when MaxPasses passes still
// leave conflicts. Feature radii are left as the last pass put them.
func (r *Resolver) Resolve(features []*plasmid.Feature) (Resolution, error) {
	st := &run{Resolver: r}
	for _, f := range features {
		f.SetRadius(r.opts.PlasmidRadius)
		if !f.IsEnzyme() {
			st.slots = append(st.slots, &slot{f: f})
		}
	}

	conflicts := 0
	for pass := 1; pass <= r.opts.MaxPasses; pass++ {
		conflicts = 0
		for k := 0; k <= st.highest; k++ {
			conflicts += st.sweep(k, true)
		}
		st.res.Passes = pass
		r.logger.Debug("resolver pass", "pass", pass, "conflicts", conflicts, "rings", st.highest+1)
		if conflicts == 0 {
			break
		}
	}

	st.res.Rings = st.highest + 1
	st.res.MaxRadius = r.opts.PlasmidRadius
	for k := 0; k <= st.highest; k++ {
		st.res.MaxRadius = math.Max(st.res.MaxRadius, r.ring(k))
	}
	if conflicts > 0 {
		return st.res, &errors.LayoutDivergedError{Passes: st.res.Passes, Conflicts: conflicts}
	}
	return st.res, nil
}

// Verify counts the conflicts a sweep would find in the current ring
// assignment without moving anything. A resolved feature set verifies to 0.
func (r *Resolver) Verify(features []*plasmid.Feature) int {
	st := &run{Resolver: r}
	rings := map[float64]int{}
	for _, f := range features {
		if f.IsEnzyme() {
			continue
		}
		k, ok := rings[f.Radius()]
		if !ok {
			k = len(rings)
			rings[f.Radius()] = k
		}
		st.slots = append(st.slots, &slot{f: f, ring: k})
	}
	conflicts := 0
	for k := 0; k < len(rings); k++ {
		conflicts += st.sweep(k, false)
	}
	return conflicts
}

func (r *Resolver) ring(k int) float64 {
	return RingRadius(r.opts.PlasmidRadius, r.opts.RingSpacing, k)
}

// sweep walks ring k once and returns the number of conflicts found. When
// apply is false nothing is moved.
func (st *run) sweep(k int, apply bool) int {
	for _, s := range st.slots {
		s.pushed = nil
	}

	var (
		winner     *slot
		winnerSize float64
		furthest   = st.opts.StartAngle
		conflicts  int
	)
	for _, s := range st.slots {
		if s.ring != k {
			continue
		}
		size := s.f.SizeDegrees()
		overlap := -(furthest - s.f.StartDegrees())

		if winner == nil || overlap <= st.opts.MinOverlapCutoff {
			winner, winnerSize, furthest = s, size, s.f.EndDegrees()
			continue
		}

		if !st.conflict(overlap, winnerSize, size) {
			// Tolerated overlap. A significant feature reaching past the
			// furthest point takes over as the reference.
			if size > st.opts.MinSignificantSize && s.f.EndDegrees() < furthest {
				winner, winnerSize, furthest = s, size, s.f.EndDegrees()
			}
			continue
		}

		conflicts++
		if size > winnerSize {
			if apply {
				st.push(winner, s, k)
			}
			winner, winnerSize, furthest = s, size, s.f.EndDegrees()
		} else if apply {
			st.push(s, winner, k)
		}
	}
	return conflicts
}

// conflict reports whether an overlap between the current winner and a new
// feature is large enough to act on. Negligible features and overlaps that
// are a tiny fraction of either feature are tolerated.
func (st *run) conflict(overlap, winnerSize, size float64) bool {
	sig := st.opts.MinSignificantSize
	if winnerSize <= sig || size <= sig {
		return false
	}
	if overlap <= 0 {
		return true
	}
	pct := st.opts.MinOverlapPercent
	return overlap/winnerSize > pct && overlap/size > pct
}

// push moves loser from ring k to ring k+1 and returns the features loser
// displaced earlier in this sweep to ring k when they clear the winner.
func (st *run) push(loser, winner *slot, k int) {
	winner.pushed = append(winner.pushed, loser)
	loser.ring = k + 1
	loser.f.SetRadius(st.ring(k + 1))
	if loser.ring > st.highest {
		st.highest = loser.ring
	}
	st.res.Pushes++
	st.logger.Debug("pushed", "feature", loser.f.Name(), "by", winner.f.Name(), "radius", loser.f.Radius())

	cutoff := st.opts.MinOverlapCutoff
	for _, pf := range loser.pushed {
		if pf.ring != k+1 {
			continue
		}
		if pf.f.StartDegrees()-winner.f.EndDegrees() <= cutoff ||
			winner.f.StartDegrees()-pf.f.EndDegrees() <= cutoff {
			pf.ring = k
			pf.f.SetRadius(st.ring(k))
			st.res.Unpushes++
			st.logger.Debug("unpushed", "feature", pf.f.Name(), "after", loser.f.Name(), "radius", pf.f.Radius())
		}
	}
	loser.pushed = nil
}
