package passctx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// LoggingConfig mirrors the teacher's config.LoggingConfig shape.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Output string // stdout, file, none
	File   string
}

// NewLogger builds a *slog.Logger from cfg, the way createLogger does in
// the teacher's entrypoint: JSON handler, level and output driven by
// configuration. Returns an io.Closer to close a file-backed sink.
func NewLogger(cfg LoggingConfig) (*slog.Logger, io.Closer, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, nil, fmt.Errorf("passctx: invalid log level %q", cfg.Level)
	}

	var output io.Writer
	var closer io.Closer
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		output = os.Stdout
	case "file":
		if cfg.File == "" {
			return nil, nil, fmt.Errorf("passctx: log output is 'file' but no file path is specified")
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, nil, fmt.Errorf("passctx: failed to open log file %s: %w", cfg.File, err)
		}
		output = f
		closer = f
	case "none":
		output = io.Discard
	default:
		return nil, nil, fmt.Errorf("passctx: invalid log output %q", cfg.Output)
	}

	return slog.New(slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})), closer, nil
}

// TracingConfig mirrors the teacher's config.TracingConfig shape.
type TracingConfig struct {
	Enabled  bool
	Endpoint string
	Protocol string // "grpc" or "http"
}

// NewTracerProvider sets up an OTLP-exporting TracerProvider and installs
// it as the global provider, following the teacher's initTracerProvider.
// When tracing is disabled it installs a no-op provider instead of
// reaching out to a collector.
func NewTracerProvider(cfg TracingConfig, logger *slog.Logger) (*sdktrace.TracerProvider, func(), error) {
	if !cfg.Enabled {
		tp := sdktrace.NewTracerProvider()
		otel.SetTracerProvider(tp)
		return tp, func() {}, nil
	}

	ctx := context.Background()

	var exporter sdktrace.SpanExporter
	var err error
	switch strings.ToLower(cfg.Protocol) {
	case "http":
		exporter, err = otlptrace.New(ctx, otlptracehttp.NewClient(otlptracehttp.WithEndpoint(cfg.Endpoint), otlptracehttp.WithInsecure()))
	case "grpc":
		exporter, err = otlptrace.New(ctx, otlptracegrpc.NewClient(otlptracegrpc.WithEndpoint(cfg.Endpoint), otlptracegrpc.WithInsecure()))
	default:
		return nil, nil, fmt.Errorf("passctx: unsupported tracing protocol %q", cfg.Protocol)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("passctx: failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceNameKey.String("mseedprune")))
	if err != nil {
		return nil, nil, fmt.Errorf("passctx: failed to create trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("error shutting down tracer provider", "error", err)
		}
	}

	return tp, cleanup, nil
}
