// Package reader implements the reader/indexer (component D): scanning
// input files record by record via the codec collaborator, filtering,
// routing each record into the trace group, and applying first-pass
// window trimming and boundary splitting before the pruner ever runs.
package reader

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/nexus-seis/mseedprune/boundary"
	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/identmatch"
	"github.com/nexus-seis/mseedprune/prune"
	"github.com/nexus-seis/mseedprune/record"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

// Options configures one read pass.
type Options struct {
	Match, Reject identmatch.Matcher // nil disables the corresponding filter

	// WindowStart/WindowEnd bound the global time window. core.HPTUnset
	// disables the corresponding bound.
	WindowStart, WindowEnd core.HPT
	// WindowSampleTrim additionally trims records that straddle a window
	// bound (setting NewStart/NewEnd) rather than only filtering records
	// that fall entirely outside it.
	WindowSampleTrim bool

	Tolerances    tracegroup.Tolerances
	SplitBoundary boundary.Mode

	// ReplaceInput shadows each input file to "<path>.orig" before
	// reading, so the writer's replace-input sink can later target the
	// original name.
	ReplaceInput bool

	// MaxRecordLen bounds the codec's scan of one physical record.
	MaxRecordLen int

	// Logger receives CorruptRecord/InternalMisclassification events as
	// those records are skipped. Nil disables logging.
	Logger *slog.Logger
}

// Stats summarizes one read pass across every input file.
type Stats struct {
	RecordsRead int
	Files       []*record.File
}

// Read scans every path in paths, inserting surviving records into g. A
// per-file error is aggregated via go-multierror rather than aborting the
// whole pass; the caller decides whether any aggregated error is fatal.
func Read(g *tracegroup.Group, paths []string, c codec.Codec, opts Options) (Stats, error) {
	// A zero-value Options (the common case when a caller only cares about
	// some fields) must mean "no window filter", not "window starts at the
	// HPT epoch" — normalize the same way record.Descriptor treats a
	// zero-value NewStart/NewEnd as unset.
	if opts.WindowStart == 0 {
		opts.WindowStart = core.HPTUnset
	}
	if opts.WindowEnd == 0 {
		opts.WindowEnd = core.HPTUnset
	}

	var stats Stats
	var errs *multierror.Error

	for _, path := range paths {
		f, err := readFile(g, path, c, opts)
		if f != nil {
			stats.Files = append(stats.Files, f)
			stats.RecordsRead += f.RecsRead
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}

	return stats, errs.ErrorOrNil()
}

func readFile(g *tracegroup.Group, path string, c codec.Codec, opts Options) (*record.File, error) {
	f := record.NewFile(path)
	readPath := path

	if opts.ReplaceInput {
		shadow := path + ".orig"
		if err := os.Rename(path, shadow); err != nil {
			return nil, fmt.Errorf("shadow rename: %w", err)
		}
		readPath = shadow
		f.Path = shadow
		f.WritePath = path
	}

	in, err := os.Open(readPath)
	if err != nil {
		return f, fmt.Errorf("open: %w", err)
	}
	defer in.Close()

	for {
		hdr, offset, length, err := c.ReadNext(in, opts.MaxRecordLen)
		if err == io.EOF {
			break
		}
		if err != nil {
			// CorruptRecord: the codec is responsible for resynchronizing
			// its scan position; this record is simply dropped.
			if opts.Logger != nil {
				cerr := &prune.CorruptRecordError{Path: readPath, Offset: offset, Message: err.Error()}
				opts.Logger.Warn("skipping corrupt record", "error", fmt.Errorf("reader: %w", cerr))
			}
			continue
		}

		id := core.ChannelID{Network: hdr.Network, Station: hdr.Station, Location: hdr.Location, Channel: hdr.Channel}
		if !passesFilters(hdr, id, opts) {
			continue
		}

		f.RecsRead++

		tr, whence := g.AddRecord(id, hdr.SampRate, hdr.Quality, hdr.Start, hdr.End, opts.Tolerances)

		d := record.Descriptor{
			File: f, Offset: offset, Length: length,
			Start: hdr.Start, End: hdr.End, Quality: hdr.Quality,
			NewStart: core.HPTUnset, NewEnd: core.HPTUnset,
		}
		applyWindowTrim(&d, opts)

		var h record.Handle
		switch whence {
		case tracegroup.WhenceHead:
			h = tr.Records.PrependHead(d)
			f.ReorderCount++
		case tracegroup.WhenceInternal:
			// InternalMisclassification: the record can't be placed at
			// either the head or tail of its trace, so it's dropped.
			if opts.Logger != nil {
				merr := &prune.MisclassificationError{Identifier: id.WithQuality(hdr.Quality), Message: "cannot place at head or tail"}
				opts.Logger.Warn("skipping misclassified record", "error", fmt.Errorf("reader: %w", merr))
			}
			continue
		default:
			h = tr.Records.AppendTail(d)
		}

		if opts.SplitBoundary != boundary.ModeNone {
			boundary.Apply(tr.Records, h, hdr.SampRate, opts.SplitBoundary)
		}
	}

	return f, nil
}

// passesFilters applies the window and regex filters, in that order,
// ahead of group insertion, so discarded records never touch a trace
// envelope.
func passesFilters(hdr codec.Header, id core.ChannelID, opts Options) bool {
	if opts.WindowStart.IsSet() && hdr.End < opts.WindowStart {
		return false
	}
	if opts.WindowEnd.IsSet() && hdr.Start > opts.WindowEnd {
		return false
	}

	identifier := id.WithQuality(hdr.Quality)
	if opts.Match != nil && !opts.Match.Match(identifier) {
		return false
	}
	if opts.Reject != nil && opts.Reject.Match(identifier) {
		return false
	}
	return true
}

// applyWindowTrim sets NewStart/NewEnd when the record straddles a window
// bound and sample-level trimming was requested, never loosening a mark
// that is already stricter (invariant 2).
func applyWindowTrim(d *record.Descriptor, opts Options) {
	if !opts.WindowSampleTrim {
		return
	}
	if opts.WindowStart.IsSet() && d.Start < opts.WindowStart && opts.WindowStart < d.End {
		if !d.NewStart.IsSet() || opts.WindowStart > d.NewStart {
			d.NewStart = opts.WindowStart
		}
	}
	if opts.WindowEnd.IsSet() && d.End > opts.WindowEnd && opts.WindowEnd > d.Start {
		if !d.NewEnd.IsSet() || opts.WindowEnd < d.NewEnd {
			d.NewEnd = opts.WindowEnd
		}
	}
}
