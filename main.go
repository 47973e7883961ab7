package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sumup/specload/internal/config"
	"github.com/sumup/specload/internal/generator"
	"github.com/sumup/specload/internal/loadtime"
	"github.com/sumup/specload/internal/report"
	"github.com/sumup/specload/internal/spec"
	"github.com/sumup/specload/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// Load .env file if present.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitUsage
	}

	flags := flag.NewFlagSet("specload", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(flags.Output(), "usage: specload [flags] <path-or-uri>")
		flags.PrintDefaults()
	}
	flags.StringVar(&cfg.Parser, "parser", cfg.Parser, "Parser backend ("+strings.Join(spec.Backends(), ", ")+").")
	flags.StringVar(&cfg.Field, "field", cfg.Field, "Document field to report, e.g. info.version. Defaults to the openapi/swagger version.")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Abort the parse after this long (0 disables).")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Reject documents missing required OpenAPI structure.")
	flags.BoolVar(&cfg.Types, "types", cfg.Types, "Also print TypeScript types for components.schemas (libopenapi parser only).")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level (debug, info, warn, error).")
	flags.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "Log format (text or json).")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return exitUsage
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	logger := newLogger(stderr, cfg.Log)
	if err := execute(ctx, cfg, spec.Source(flags.Arg(0)), stdout, logger); err != nil {
		logger.Error("load spec failed", "error", err)
		return exitError
	}
	return exitOK
}

func execute(ctx context.Context, cfg *config.Config, src spec.Source, stdout io.Writer, logger *slog.Logger) error {
	shutdown, err := telemetry.Init(ctx, cfg.OTEL.Endpoint, cfg.OTEL.ServiceName, version, cfg.OTEL.Insecure)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	parser, err := spec.New(cfg.Parser, spec.Options{Strict: cfg.Strict, Logger: logger})
	if err != nil {
		return err
	}
	loader, err := loadtime.New(parser, loadtime.Options{
		Timeout:    cfg.Timeout,
		ParserName: cfg.Parser,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	res, err := loader.LoadAndTime(ctx, src)
	if err != nil {
		return fmt.Errorf("load spec: %w", err)
	}
	if err := report.Write(stdout, res, cfg.Field); err != nil {
		return err
	}
	if !cfg.Types {
		return nil
	}

	gen, err := generator.New(generator.Config{})
	if err != nil {
		return err
	}
	return gen.Run(res.Document, stdout)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, err := cfg.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
