// Command mseedprune wires one prune-and-write pass together from a YAML
// config file: load config, build the logger and tracer provider, resolve
// the reader/pruner/writer/split options, and run the pass. It is a thin
// wiring entrypoint, not a full command-line surface (flag parsing,
// sub-commands, and a real Mini-SEED codec are left to the external
// tooling that links this module in).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nexus-seis/mseedprune/boundary"
	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/codec/fakecodec"
	"github.com/nexus-seis/mseedprune/config"
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/identmatch"
	"github.com/nexus-seis/mseedprune/passctx"
	"github.com/nexus-seis/mseedprune/pruner"
	"github.com/nexus-seis/mseedprune/reader"
	"github.com/nexus-seis/mseedprune/rlimit"
	"github.com/nexus-seis/mseedprune/tracegroup"
	"github.com/nexus-seis/mseedprune/writer"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "mseedprune.yaml", "path to the pass configuration file")
	flag.Parse()

	if err := run(configPath, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "mseedprune:", err)
		os.Exit(1)
	}
}

func run(configPath string, extraInputs []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := passctx.NewLogger(passctx.LoggingConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}

	_, shutdownTracing, err := passctx.NewTracerProvider(passctx.TracingConfig(cfg.Tracing), logger)
	if err != nil {
		return fmt.Errorf("build tracer provider: %w", err)
	}
	defer shutdownTracing()

	inputs := append(append([]string{}, cfg.Inputs...), extraInputs...)
	if len(inputs) == 0 {
		return fmt.Errorf("no input files given (config inputs: or command-line arguments)")
	}

	if cfg.Resources.RaiseOpenFiles {
		want := rlimit.ForPass(len(inputs))
		if cfg.Resources.ExpectedOpenFDs > want {
			want = cfg.Resources.ExpectedOpenFDs
		}
		if got, err := rlimit.RaiseOpenFiles(want); err != nil {
			logger.Warn("failed to raise open-file limit", "wanted", want, "error", err)
		} else {
			logger.Debug("raised open-file limit", "limit", got)
		}
	}

	readerOpts, err := buildReaderOptions(cfg)
	if err != nil {
		return fmt.Errorf("resolve reader options: %w", err)
	}
	prunerOpts := buildPrunerOptions(cfg.Prune)
	writerOpts, err := buildWriterOptions(cfg.Output)
	if err != nil {
		return fmt.Errorf("resolve writer options: %w", err)
	}

	pc := passctx.New(logger, "mseedprune")
	stats, err := pc.Run(context.Background(), inputs, fakecodec.Codec{}, passctx.RunOptions{
		Reader: readerOpts,
		Pruner: prunerOpts,
		Writer: writerOpts,
	})
	if err != nil {
		return err
	}

	if cfg.Resources.ReportDiagnostics {
		fmt.Fprintln(os.Stdout, pc.Diagnostics().Report())
	}

	logger.Info("pass complete", "records_written", stats.RecordsWritten, "bytes_written", stats.BytesWritten)
	return nil
}

func buildReaderOptions(cfg *config.Config) (reader.Options, error) {
	opts := reader.Options{
		WindowStart:      core.HPTUnset,
		WindowEnd:        core.HPTUnset,
		WindowSampleTrim: cfg.Window.SampleTrim,
		Tolerances: tracegroup.Tolerances{
			TimeTolSeconds: cfg.Prune.TimeTolSeconds,
			SampRateTol:    cfg.Prune.SampRateTol,
			BestQuality:    cfg.Prune.BestQuality,
		},
		ReplaceInput: cfg.Output.ReplaceInput,
		MaxRecordLen: 4096,
	}

	if cfg.Window.Start != "" {
		t, err := time.Parse(time.RFC3339, cfg.Window.Start)
		if err != nil {
			return opts, fmt.Errorf("window.start: %w", err)
		}
		opts.WindowStart = core.FromTime(t)
	}
	if cfg.Window.End != "" {
		t, err := time.Parse(time.RFC3339, cfg.Window.End)
		if err != nil {
			return opts, fmt.Errorf("window.end: %w", err)
		}
		opts.WindowEnd = core.FromTime(t)
	}

	if cfg.Match.MatchRegex != "" {
		m, err := identmatch.NewRegex(cfg.Match.MatchRegex)
		if err != nil {
			return opts, fmt.Errorf("match.match_regex: %w", err)
		}
		opts.Match = m
	}
	if cfg.Match.RejectRegex != "" {
		m, err := identmatch.NewRegex(cfg.Match.RejectRegex)
		if err != nil {
			return opts, fmt.Errorf("match.reject_regex: %w", err)
		}
		opts.Reject = m
	}

	switch cfg.Split.Boundary {
	case "", "none":
		opts.SplitBoundary = boundary.ModeNone
	case "day":
		opts.SplitBoundary = boundary.ModeDay
	case "hour":
		opts.SplitBoundary = boundary.ModeHour
	case "minute":
		opts.SplitBoundary = boundary.ModeMinute
	default:
		return opts, fmt.Errorf("split.boundary: unknown value %q", cfg.Split.Boundary)
	}

	return opts, nil
}

func buildPrunerOptions(cfg config.PruneConfig) pruner.Options {
	opts := pruner.Options{
		BestQuality:    cfg.BestQuality,
		TimeTolSeconds: cfg.TimeTolSeconds,
		SampRateTol:    cfg.SampRateTol,
	}
	switch cfg.Mode {
	case "record":
		opts.Mode = pruner.ModeRecord
	case "sample":
		opts.Mode = pruner.ModeSample
	default:
		opts.Mode = pruner.ModeOff
	}
	return opts
}

func buildWriterOptions(cfg config.OutputConfig) (writer.Options, error) {
	opts := writer.Options{
		OutputFile:    cfg.File,
		ReplaceInput:  cfg.ReplaceInput,
		RemoveBackups: cfg.RemoveBackups,
	}

	if cfg.RestampQuality != "" {
		if len(cfg.RestampQuality) != 1 {
			return opts, fmt.Errorf("output.restamp_quality: must be a single character, got %q", cfg.RestampQuality)
		}
		opts.RestampQuality = core.Quality(cfg.RestampQuality[0])
	}

	for _, a := range cfg.Archives {
		opts.Archives = append(opts.Archives, templateArchive{template: a.Template})
	}

	return opts, nil
}

// templateArchive is the minimal codec.ArchiveWriter this entrypoint wires
// by default: it appends every record's raw bytes to a single path
// derived from the record's start time, formatted against the template
// as a Go reference-time layout. A real archive-path engine (arbitrary
// template grammar, per-network directory layout, etc) is the
// out-of-scope external collaborator this stands in for.
type templateArchive struct {
	template string
}

func (a templateArchive) StreamProcess(hdr codec.Header, raw []byte) error {
	path := core.ToTime(hdr.Start).Format(a.template)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("templateArchive: open %s: %w", path, err)
	}
	defer f.Close()
	_, err = f.Write(raw)
	return err
}
