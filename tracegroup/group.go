package tracegroup

import (
	"github.com/INLOpen/skiplist"

	"github.com/nexus-seis/mseedprune/core"
)

// Group is an ordered collection of Traces. During the read pass, traces
// are looked up by channel identity through a plain map (a handful of
// traces per channel at most, so linear scan within the bucket is cheap).
// Once the read pass is complete, Finalize builds an ordered index over
// the *stable* (identity, rate, start, end) sort key used by the pruner
// and writer — stable because pruning and writing never change a trace's
// envelope, only descriptor-level trim marks.
type Group struct {
	byIdentity map[core.ChannelID][]*Trace
	seq        int64

	order *skiplist.SkipList[*orderKey, *Trace]
}

// orderKey is the skiplist key implementing the group iteration order:
// channel identity ascending, sample rate ascending, start-time ascending,
// end-time descending (so longer traces precede shorter ones with the
// same start).
type orderKey struct {
	identity string
	rateKey  int64
	start    int64
	end      int64
	seq      int64
}

func rateKey(rate float64) int64 {
	return int64(rate * 1e6)
}

func orderComparator(a, b *orderKey) int {
	if a.identity != b.identity {
		if a.identity < b.identity {
			return -1
		}
		return 1
	}
	if a.rateKey != b.rateKey {
		if a.rateKey < b.rateKey {
			return -1
		}
		return 1
	}
	if a.start != b.start {
		if a.start < b.start {
			return -1
		}
		return 1
	}
	if a.end != b.end {
		// end DESCENDING: larger end sorts first.
		if a.end > b.end {
			return -1
		}
		return 1
	}
	if a.seq != b.seq {
		if a.seq < b.seq {
			return -1
		}
		return 1
	}
	return 0
}

// NewGroup creates an empty trace group.
func NewGroup() *Group {
	return &Group{byIdentity: make(map[core.ChannelID][]*Trace)}
}

// Tolerances bundles the continuity tolerances used to decide whether a
// record extends an existing trace or starts a new one.
type Tolerances struct {
	TimeTolSeconds float64 // -1 = auto (half sample period)
	SampRateTol    float64 // -1 = codec default
	BestQuality    bool
}

// AddRecord implements the group's insertion rule: find an existing trace
// with matching identity and tolerable sample rate whose envelope is
// contiguous with [start, end]; absorb into it, otherwise create a new
// trace. Returns the owning trace and the classification the reader uses
// to decide where the record attaches.
func (g *Group) AddRecord(id core.ChannelID, rate float64, quality core.Quality, start, end core.HPT, tol Tolerances) (*Trace, Whence) {
	candidates := g.byIdentity[id]

	tolTicks := core.TimeToleranceTicks(rate, tol.TimeTolSeconds)

	for _, t := range candidates {
		if !core.SampleRateTolerable(t.SampleRate, rate, tol.SampRateTol) {
			continue
		}
		if tol.BestQuality && t.Quality != quality {
			continue
		}
		if !contiguous(t.Start, t.End, start, end, tolTicks) {
			continue
		}

		priorStart, priorEnd := t.Start, t.End
		t.extend(start, end)

		var whence Whence
		switch {
		case start == end:
			distStart := abs(start - priorStart)
			distEnd := abs(start - priorEnd)
			if distStart < distEnd {
				whence = WhenceHead
			} else {
				whence = WhenceTail
			}
		case end == t.End:
			whence = WhenceTail
		case start == t.Start:
			whence = WhenceHead
		default:
			whence = WhenceInternal
		}
		return t, whence
	}

	t := newTrace(id, rate, quality, start, end)
	g.byIdentity[id] = append(g.byIdentity[id], t)
	return t, WhenceNewTrace
}

func contiguous(tStart, tEnd, rStart, rEnd, tolTicks core.HPT) bool {
	if rEnd < tStart-tolTicks {
		return false
	}
	if rStart > tEnd+tolTicks {
		return false
	}
	return true
}

func abs(v core.HPT) core.HPT {
	if v < 0 {
		return -v
	}
	return v
}

func absWithin(a, b, tolTicks core.HPT) bool {
	return abs(a-b) <= tolTicks
}

// Adopt inserts an already-built trace directly into the group, bypassing
// the absorption rule. Used by callers that construct traces themselves,
// such as the pruner's tests.
func (g *Group) Adopt(t *Trace) {
	g.byIdentity[t.Identity] = append(g.byIdentity[t.Identity], t)
}

// Traces returns every trace currently in the group, in no particular order.
func (g *Group) Traces() []*Trace {
	var all []*Trace
	for _, bucket := range g.byIdentity {
		all = append(all, bucket...)
	}
	return all
}

// Finalize builds the ordered index used for iteration by the pruner and
// writer. Call once after the read pass completes and before pruning.
func (g *Group) Finalize() {
	cmp := orderComparator
	g.order = skiplist.NewWithComparator[*orderKey, *Trace](cmp)
	for _, t := range g.Traces() {
		g.seq++
		key := &orderKey{
			identity: t.Identity.String(),
			rateKey:  rateKey(t.SampleRate),
			start:    int64(t.Start),
			end:      int64(t.End),
			seq:      g.seq,
		}
		g.order.Insert(key, t)
	}
}

// Each calls fn for every trace in group iteration order: channel
// identity ascending, sample rate ascending, start ascending, end
// descending. Finalize must have been called first.
func (g *Group) Each(fn func(t *Trace) bool) {
	if g.order == nil {
		return
	}
	iter := g.order.NewIterator()
	for iter.Next() {
		if !fn(iter.Value()) {
			return
		}
	}
}

// SameChannelPairs calls fn once for every ordered pair of distinct traces
// (mst, imst) sharing channel identity, for the pruner's O(T^2) walk.
// Traces are visited in the finalized group order (identity, rate, start
// asc, end desc), not raw read-pass insertion order, so ties favor the
// same trace as mst that Each would yield first. Finalize must have been
// called first.
func (g *Group) SameChannelPairs(fn func(mst, imst *Trace)) {
	var run []*Trace
	flush := func() {
		for i := 0; i < len(run); i++ {
			for j := i + 1; j < len(run); j++ {
				fn(run[i], run[j])
			}
		}
		run = run[:0]
	}

	g.Each(func(t *Trace) bool {
		if len(run) > 0 && run[0].Identity != t.Identity {
			flush()
		}
		run = append(run, t)
		return true
	})
	flush()
}
