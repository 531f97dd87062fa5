package pruner

import (
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

// priority picks the higher-priority (HP) and lower-priority (LP) trace of
// an overlapping pair. With bestQuality, quality (Q>D>R) decides; ties (or
// bestQuality disabled) fall to the longer trace; remaining ties favor mst,
// matching the group's stable sort order.
func priority(mst, imst *tracegroup.Trace, bestQuality bool) (hp, lp *tracegroup.Trace) {
	cmp := 0
	if bestQuality {
		cmp = core.Compare(mst.Quality, imst.Quality)
	}
	if cmp == 0 {
		if mst.End-mst.Start >= imst.End-imst.Start {
			cmp = -1
		} else {
			cmp = 1
		}
	}
	if cmp <= 0 {
		return mst, imst
	}
	return imst, mst
}
