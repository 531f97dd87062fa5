package passctx

import (
	"fmt"
	"os"
	"strings"

	tdigest "github.com/caio/go-tdigest/v4"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/nexus-seis/mseedprune/pruner"
	"github.com/nexus-seis/mseedprune/record"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

// resourceSnapshot captures the process's open-file and memory footprint
// at a labeled point in a pass, following the teacher's gopsutil-based
// resource introspection.
type resourceSnapshot struct {
	label       string
	openFiles   int
	rssBytes    uint64
	sampleError error
}

// TraceSummary is one line of the printtracemap-equivalent report: a
// trace's identity, rate, span, and record count at the moment it was
// recorded.
type TraceSummary struct {
	Identity   string
	SampleRate float64
	Start, End int64
	Records    int
}

// FileSummary mirrors one file's per-file counters after a pass.
type FileSummary struct {
	Path         string
	RecsRead     int
	RecsRemoved  int
	RecsTrimmed  int
	RecsSplit    int
	RecsWritten  int
	ReorderCount int
}

// Diagnostics accumulates the printmodsummary/printtracemap-equivalent
// state across a pass: a t-digest of the effective spans of records left
// live after pruning, resource snapshots, and per-file/per-trace summaries.
type Diagnostics struct {
	trimSizes *tdigest.TDigest

	snapshots []resourceSnapshot
	traces    []TraceSummary
	files     []FileSummary
	pruned    pruner.Stats
}

func newDiagnostics() *Diagnostics {
	td, err := tdigest.New()
	if err != nil {
		// tdigest.New only fails on invalid compression options, which this
		// package never supplies; fall back to a nil digest and skip
		// percentile reporting rather than fail the whole pass over it.
		td = nil
	}
	return &Diagnostics{trimSizes: td}
}

// recordTraceSummary is the printtracemap-equivalent snapshot, taken
// right after the read pass (and group finalization) so it reflects what
// was actually read before the pruner removes or trims anything.
func (d *Diagnostics) recordTraceSummary(t *tracegroup.Trace) {
	d.traces = append(d.traces, TraceSummary{
		Identity:   t.Identity.String(),
		SampleRate: t.SampleRate,
		Start:      int64(t.Start),
		End:        int64(t.End),
		Records:    t.Records.Len(),
	})
}

// recordTrimSizes feeds the percentile digest of effective record spans,
// taken after the pruner runs so EffectiveStart/EffectiveEnd reflect any
// trim the pruner applied rather than each record's original span.
func (d *Diagnostics) recordTrimSizes(t *tracegroup.Trace) {
	if d.trimSizes == nil {
		return
	}
	t.Records.IterateLive(func(_ record.Handle, desc *record.Descriptor) bool {
		span := float64(desc.EffectiveEnd() - desc.EffectiveStart())
		if span > 0 {
			_ = d.trimSizes.AddWeighted(span, 1)
		}
		return true
	})
}

func (d *Diagnostics) recordPruneStats(stats pruner.Stats) {
	d.pruned = stats
}

func (d *Diagnostics) recordFileCounters(files []*record.File) {
	for _, f := range files {
		d.files = append(d.files, FileSummary{
			Path:         f.Path,
			RecsRead:     f.RecsRead,
			RecsRemoved:  f.RecsRemoved,
			RecsTrimmed:  f.RecsTrimmed,
			RecsSplit:    f.RecsSplit,
			RecsWritten:  f.RecsWritten,
			ReorderCount: f.ReorderCount,
		})
	}
}

func (d *Diagnostics) recordResourceSnapshot(label string) {
	snap := resourceSnapshot{label: label}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		snap.sampleError = err
		d.snapshots = append(d.snapshots, snap)
		return
	}

	if fds, err := proc.OpenFiles(); err == nil {
		snap.openFiles = len(fds)
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		snap.rssBytes = mem.RSS
	}

	d.snapshots = append(d.snapshots, snap)
}

// Report renders the full diagnostics as a printtracemap-style text
// summary: one line per trace, one line per file's counters, and the
// resource snapshots taken at pass start/end.
func (d *Diagnostics) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "traces: %d\n", len(d.traces))
	for _, t := range d.traces {
		fmt.Fprintf(&b, "  %-30s rate=%.4f start=%d end=%d records=%d\n",
			t.Identity, t.SampleRate, t.Start, t.End, t.Records)
	}

	fmt.Fprintf(&b, "pruned: removed=%d trimmed=%d\n", d.pruned.Removed, d.pruned.Trimmed)

	for _, f := range d.files {
		fmt.Fprintf(&b, "  %-30s read=%d removed=%d trimmed=%d split=%d written=%d reordered=%d\n",
			f.Path, f.RecsRead, f.RecsRemoved, f.RecsTrimmed, f.RecsSplit, f.RecsWritten, f.ReorderCount)
	}

	for _, s := range d.snapshots {
		if s.sampleError != nil {
			fmt.Fprintf(&b, "resources[%s]: unavailable: %v\n", s.label, s.sampleError)
			continue
		}
		fmt.Fprintf(&b, "resources[%s]: open_files=%d rss=%d\n", s.label, s.openFiles, s.rssBytes)
	}

	if p := d.TrimSizePercentile(50); p >= 0 {
		fmt.Fprintf(&b, "trim size p50=%.1f p90=%.1f p99=%.1f\n",
			p, d.TrimSizePercentile(90), d.TrimSizePercentile(99))
	}

	return b.String()
}

// TrimSizePercentile returns the p-th percentile (0-100) of effective
// record spans observed during the prune stage, or -1 if no samples were
// recorded yet.
func (d *Diagnostics) TrimSizePercentile(p float64) float64 {
	if d.trimSizes == nil || d.trimSizes.Count() == 0 {
		return -1
	}
	return d.trimSizes.Quantile(p / 100.0)
}
