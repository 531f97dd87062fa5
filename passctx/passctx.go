// Package passctx threads the logger, tracer, and per-pass diagnostics
// digest through a single prune-and-write pass, and orchestrates the
// reader, pruner, and writer stages against one trace group.
package passctx

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/pruner"
	"github.com/nexus-seis/mseedprune/reader"
	"github.com/nexus-seis/mseedprune/tracegroup"
	"github.com/nexus-seis/mseedprune/writer"
)

// Context carries the logger and tracer a pass's components share. It is
// constructed once per pass by New and used through a pointer by the stage
// runners.
type Context struct {
	Logger *slog.Logger
	Tracer trace.Tracer

	group *tracegroup.Group
	diag  *Diagnostics
}

// New builds a pass context. tracerName identifies the instrumentation
// scope registered with the global TracerProvider (set up by the caller,
// e.g. cmd/mseedprune, following the teacher's initTracerProvider).
func New(logger *slog.Logger, tracerName string) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		Logger: logger,
		Tracer: otel.Tracer(tracerName),
		group:  tracegroup.NewGroup(),
		diag:   newDiagnostics(),
	}
}

// RunOptions bundles the reader/pruner/writer options for one pass.
type RunOptions struct {
	Reader reader.Options
	Pruner pruner.Options
	Writer writer.Options
}

// Run executes the read, prune, and write stages in sequence over one
// pass, recording a span per stage under a top-level "mseedprune.pass"
// span. Returns the writer's stats; per-file counters and the
// diagnostics digest are available afterward via Diagnostics().
func (c *Context) Run(ctx context.Context, files []string, dec codec.Codec, opts RunOptions) (writer.Stats, error) {
	ctx, span := c.Tracer.Start(ctx, "mseedprune.pass")
	defer span.End()

	c.diag.recordResourceSnapshot("pass_start")

	readStats, err := c.runRead(ctx, files, dec, opts.Reader)
	if err != nil {
		return writer.Stats{}, fmt.Errorf("passctx: read stage: %w", err)
	}
	c.Logger.Info("read stage complete", "files", len(files), "records", readStats.RecordsRead, "traces", len(c.group.Traces()))

	c.group.Finalize()

	pruneStats := c.runPrune(ctx, opts.Pruner)
	c.Logger.Info("prune stage complete", "removed", pruneStats.Removed, "trimmed", pruneStats.Trimmed)
	c.diag.recordPruneStats(pruneStats)

	writeStats, err := c.runWrite(ctx, dec, opts.Writer)
	if err != nil {
		return writer.Stats{}, fmt.Errorf("passctx: write stage: %w", err)
	}
	c.Logger.Info("write stage complete", "records_written", writeStats.RecordsWritten, "bytes_written", writeStats.BytesWritten)

	c.diag.recordResourceSnapshot("pass_end")
	c.diag.recordFileCounters(readStats.Files)

	return writeStats, nil
}

func (c *Context) runRead(ctx context.Context, files []string, dec codec.Codec, opts reader.Options) (reader.Stats, error) {
	_, span := c.Tracer.Start(ctx, "mseedprune.read")
	defer span.End()
	if opts.Logger == nil {
		opts.Logger = c.Logger
	}
	return reader.Read(c.group, files, dec, opts)
}

func (c *Context) runPrune(ctx context.Context, opts pruner.Options) pruner.Stats {
	_, span := c.Tracer.Start(ctx, "mseedprune.prune")
	defer span.End()

	for _, tr := range c.group.Traces() {
		c.diag.recordTraceSummary(tr)
	}

	stats := pruner.Run(c.group, opts)

	for _, tr := range c.group.Traces() {
		c.diag.recordTrimSizes(tr)
	}

	return stats
}

func (c *Context) runWrite(ctx context.Context, dec codec.Codec, opts writer.Options) (writer.Stats, error) {
	_, span := c.Tracer.Start(ctx, "mseedprune.write")
	defer span.End()
	return writer.Write(c.group, dec, opts)
}

// Group exposes the pass's trace group, mainly for tests and for callers
// that want to inspect it between stages.
func (c *Context) Group() *tracegroup.Group {
	return c.group
}

// Diagnostics returns the diagnostics accumulated by the most recent Run
// call: the printtracemap-equivalent per-trace/per-file summary, resource
// snapshots, and the trim-size digest.
func (c *Context) Diagnostics() *Diagnostics {
	return c.diag
}
