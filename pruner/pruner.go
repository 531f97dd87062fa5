package pruner

import (
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/record"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

// Mode selects how far the pruner carries a resolved overlap.
type Mode int

const (
	// ModeOff disables pruning entirely.
	ModeOff Mode = iota
	// ModeRecord marks fully-overlapped LP records deleted but never trims
	// a partially-overlapped record's samples.
	ModeRecord
	// ModeSample additionally trims LP records that only partially overlap
	// HP coverage, adjusting NewStart/NewEnd.
	ModeSample
)

// Options configures a pruning pass.
type Options struct {
	Mode           Mode
	BestQuality    bool
	TimeTolSeconds float64
	SampRateTol    float64
}

// Stats accumulates the counters the pruner touches, mirrored per file via
// the descriptor's File handle.
type Stats struct {
	Removed int
	Trimmed int
}

// Run resolves overlaps across every same-channel pair of traces in g,
// mutating LP descriptors in place. Call after the read pass and after
// tracegroup.Group.Finalize.
func Run(g *tracegroup.Group, opts Options) Stats {
	var stats Stats
	if opts.Mode == ModeOff {
		return stats
	}

	g.SameChannelPairs(func(mst, imst *tracegroup.Trace) {
		if !sameChannel(mst, imst, opts.SampRateTol) {
			return
		}
		if !overlaps(mst, imst) {
			return
		}
		hp, lp := priority(mst, imst, opts.BestQuality)
		trimTrace(lp, hp, opts, &stats)
	})

	return stats
}

// trimTrace removes or trims lp's records that fall within hp's coverage,
// per the mode requested.
func trimTrace(lp, hp *tracegroup.Trace, opts Options, stats *Stats) {
	segs := coverageSegments(hp, opts.TimeTolSeconds)
	period := core.SamplePeriodTicks(hp.SampleRate)

	lp.Records.IterateInOrder(func(h record.Handle, d *record.Descriptor) bool {
		if d.Deleted() {
			return true
		}
		effStart, effEnd := d.EffectiveStart(), d.EffectiveEnd()

		if coveredByAny(effStart, effEnd, segs) {
			lp.Records.MarkDeleted(h)
			if d.File != nil {
				d.File.RecsRemoved++
			}
			stats.Removed++
			return true
		}

		if opts.Mode != ModeSample {
			return true
		}

		trimmed := false
		if effStart <= hp.Start && effEnd >= hp.Start {
			lp.Records.SetNewEnd(h, hp.Start-period)
			trimmed = true
		}
		if effStart <= hp.End && effEnd >= hp.End {
			lp.Records.SetNewStart(h, hp.End+period)
			trimmed = true
		}
		if trimmed {
			if d.File != nil {
				d.File.RecsTrimmed++
			}
			stats.Trimmed++
		}
		return true
	})
}
