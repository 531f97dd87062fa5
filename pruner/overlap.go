// Package pruner implements pairwise overlap resolution across same-channel
// traces: winner selection by quality/length, and marking or trimming the
// loser's records at record or sample granularity.
package pruner

import (
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/record"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

// overlaps reports whether two traces' time envelopes overlap.
func overlaps(mst, imst *tracegroup.Trace) bool {
	return mst.End > imst.Start && mst.Start < imst.End
}

// sameChannel reports whether two traces share identity and a sample rate
// within tolerance, the precondition for pairwise overlap testing.
func sameChannel(mst, imst *tracegroup.Trace, sampRateTol float64) bool {
	return mst.Identity.Equal(imst.Identity) && core.SampleRateTolerable(mst.SampleRate, imst.SampleRate, sampRateTol)
}

// segment is one coalesced run of HP coverage.
type segment struct {
	start, end core.HPT
}

// coverageSegments walks hp's record-map in start order and coalesces
// consecutive live descriptors into segments, starting a new segment
// whenever the gap between the previous descriptor's effective end plus
// one sample period and the current descriptor's effective start exceeds
// the time tolerance. This turns many records into few segments and makes
// the loser-side scan linear in loser records.
func coverageSegments(hp *tracegroup.Trace, timeTolSeconds float64) []segment {
	tolTicks := core.TimeToleranceTicks(hp.SampleRate, timeTolSeconds)
	period := core.SamplePeriodTicks(hp.SampleRate)

	var segs []segment
	var open bool
	var cur segment

	hp.Records.IterateLive(func(_ record.Handle, d *record.Descriptor) bool {
		s, e := d.EffectiveStart(), d.EffectiveEnd()
		if !open {
			cur = segment{start: s, end: e}
			open = true
			return true
		}
		gap := s - (cur.end + period)
		if gap > tolTicks {
			segs = append(segs, cur)
			cur = segment{start: s, end: e}
			return true
		}
		if e > cur.end {
			cur.end = e
		}
		return true
	})
	if open {
		segs = append(segs, cur)
	}
	return segs
}

// fullyCovered reports whether [start, end] falls fully inside seg.
func fullyCovered(start, end core.HPT, seg segment) bool {
	return start >= seg.start && end <= seg.end
}

// coveredByAny reports whether [start, end] is fully covered by some
// segment in segs.
func coveredByAny(start, end core.HPT, segs []segment) bool {
	for _, seg := range segs {
		if fullyCovered(start, end, seg) {
			return true
		}
	}
	return false
}
