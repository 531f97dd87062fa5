// Package tracegroup implements the trace and trace-group abstractions
// (component C): the per-channel aggregation of records into continuous
// series, and the ordered collection of those series used by the pruner
// and writer.
package tracegroup

import (
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/record"
)

// Trace is a channel's aggregate of contiguous-or-near-contiguous records.
type Trace struct {
	Identity   core.ChannelID
	SampleRate float64
	Quality    core.Quality // only meaningful when bestQuality forbids mixed-quality merges
	Start      core.HPT
	End        core.HPT
	Samples    int64
	Records    *record.Map
}

// Whence classifies where a newly read record was attached relative to a
// trace's envelope.
type Whence int

const (
	WhenceNewTrace Whence = iota
	WhenceHead
	WhenceTail
	WhenceInternal // internal out-of-order record: an error condition
)

func newTrace(id core.ChannelID, rate float64, quality core.Quality, start, end core.HPT) *Trace {
	return &Trace{
		Identity:   id,
		SampleRate: rate,
		Quality:    quality,
		Start:      start,
		End:        end,
		Records:    record.NewMap(),
	}
}

// span returns End - Start, used to break priority ties by trace length.
func (t *Trace) span() core.HPT {
	return t.End - t.Start
}

// extend widens the trace's envelope to include [start, end], used after a
// record has been absorbed.
func (t *Trace) extend(start, end core.HPT) {
	if start < t.Start {
		t.Start = start
	}
	if end > t.End {
		t.End = end
	}
}
