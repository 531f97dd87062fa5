// Package writer streams surviving (and possibly trimmed or restamped)
// records to their configured sinks: a single combined file, per-archive
// templates, or back over the original input files.
package writer

import (
	"fmt"
	"os"

	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/prune"
	"github.com/nexus-seis/mseedprune/record"
	"github.com/nexus-seis/mseedprune/tracegroup"
	"github.com/nexus-seis/mseedprune/trimmer"
)

// Options configures a write pass.
type Options struct {
	OutputFile     string // "" disables the combined sink; "-" is stdout
	Archives       []codec.ArchiveWriter
	ReplaceInput   bool
	RemoveBackups  bool
	RestampQuality core.Quality // zero value disables restamping
}

// Stats summarizes one write pass.
type Stats struct {
	RecordsWritten int
	BytesWritten   int64
}

// Write traverses g in group order and, within each trace, its record-map
// in chain order, emitting every live descriptor's bytes to the sinks
// configured in opts.
func Write(g *tracegroup.Group, c codec.Codec, opts Options) (Stats, error) {
	var stats Stats

	src := newSourceSet()
	defer src.closeAll()

	combined := newCombinedSink(opts.OutputFile)
	defer combined.close()

	replace := newReplaceInputSinks()
	defer replace.closeAll()

	arch := archiveSink{archives: opts.Archives}

	seenFiles := make(map[*record.File]bool)

	scratch := getScratch()
	defer putScratch(scratch)

	var writeErr error
	g.Each(func(tr *tracegroup.Trace) bool {
		period := core.SamplePeriodTicks(tr.SampleRate)

		tr.Records.IterateLive(func(_ record.Handle, d *record.Descriptor) bool {
			if int(d.Length) > minScratchSize {
				writeErr = fmt.Errorf("writer: %w", &prune.OversizeRecordError{
					Path: d.File.Path, Length: d.Length, ScratchCap: minScratchSize,
				})
				return false
			}

			raw, err := src.read(d.File.Path, d.Offset, d.Length, scratch.Bytes()[:0])
			if err != nil {
				writeErr = err
				return false
			}
			seenFiles[d.File] = true

			out := raw
			if d.NewStart.IsSet() || d.NewEnd.IsSet() {
				trimmed, terr := trimmer.Trim(c, d, raw, len(raw))
				if terr != nil {
					// InvalidTrimTimes / repack failure: skip this record, do
					// not write the untrimmed bytes in its place.
					return true
				}
				out = trimmed
			}

			if opts.RestampQuality != 0 && len(out) > 6 {
				out = append([]byte(nil), out...)
				out[6] = byte(opts.RestampQuality)
			}

			if err := combined.write(out); err != nil {
				writeErr = err
				return false
			}

			if len(opts.Archives) > 0 {
				hdr, uerr := c.Unpack(out)
				if uerr == nil {
					if err := arch.write(hdr.Header, out); err != nil {
						writeErr = err
						return false
					}
				}
			}

			if opts.ReplaceInput {
				if err := replace.write(d.File.OutputPath(), out); err != nil {
					writeErr = err
					return false
				}
			}

			updateFileStats(d.File, d.Start, d.End, period, int64(len(out)))
			d.File.RecsWritten++
			stats.RecordsWritten++
			stats.BytesWritten += int64(len(out))
			return true
		})
		return writeErr == nil
	})

	if writeErr != nil {
		return stats, writeErr
	}

	if opts.RemoveBackups && opts.OutputFile == "" {
		for f := range seenFiles {
			if f.WritePath == "" {
				continue
			}
			// Backup-removal failures are ignored: the error is neither
			// logged nor returned, and the pass continues regardless of
			// whether the shadow lingers.
			os.Remove(f.Path)
		}
	}

	return stats, nil
}

// updateFileStats maintains the per-file earliest/latest/bytes-written
// counters the way writetraces() does: latest is extended by one sample
// period past the record's own end time.
func updateFileStats(f *record.File, start, end, period core.HPT, n int64) {
	if !f.Earliest.IsSet() || start < f.Earliest {
		f.Earliest = start
	}
	latest := end + period
	if !f.Latest.IsSet() || latest > f.Latest {
		f.Latest = latest
	}
	f.BytesWritten += n
}
