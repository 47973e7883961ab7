// Package loadtime measures how long a document parser takes to load a
// single source.
package loadtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sumup/specload/internal/spec"
)

const instrumentationName = "github.com/sumup/specload/internal/loadtime"

// ErrMeasurement is returned when the clock reports a negative duration.
var ErrMeasurement = errors.New("negative elapsed time")

// Result is a parsed document and the time its parse took.
type Result struct {
	Document *spec.Document
	Elapsed  time.Duration
}

// Options configures a Loader. The zero value is usable.
type Options struct {
	// Timeout bounds a single parse. Zero means no bound.
	Timeout time.Duration
	// ParserName labels logs, spans and metrics.
	ParserName string
	Logger     *slog.Logger
	// Now defaults to time.Now.
	Now    func() time.Time
	Tracer trace.Tracer
	Meter  metric.Meter
}

// Loader times calls to a spec.Parser. It keeps no per-call state and is
// safe for concurrent use.
type Loader struct {
	parser     spec.Parser
	parserName string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
	tracer     trace.Tracer
	duration   metric.Float64Histogram
}

// New returns a Loader around parser.
func New(parser spec.Parser, opts Options) (*Loader, error) {
	if parser == nil {
		return nil, errors.New("loadtime: parser is required")
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("loadtime: negative timeout %s", opts.Timeout)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentationName)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(instrumentationName)
	}

	duration, err := opts.Meter.Float64Histogram("specload.parse.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of a single document parse."),
	)
	if err != nil {
		return nil, fmt.Errorf("loadtime: create histogram: %w", err)
	}

	return &Loader{
		parser:     parser,
		parserName: opts.ParserName,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		now:        opts.Now,
		tracer:     opts.Tracer,
		duration:   duration,
	}, nil
}

// LoadAndTime parses src and returns the document with the elapsed time of
// the parse call alone. It makes a single attempt.
func (l *Loader) LoadAndTime(ctx context.Context, src spec.Source) (Result, error) {
	if src == "" {
		return Result{}, &spec.Error{Kind: spec.ErrEmptySource, Source: src}
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	attrs := []attribute.KeyValue{
		attribute.String("spec.source", src.String()),
		attribute.String("spec.parser", l.parserName),
	}
	ctx, span := l.tracer.Start(ctx, "spec.parse", trace.WithAttributes(attrs...))
	defer span.End()

	start := l.now()
	doc, err := l.parse(ctx, src)
	end := l.now()
	if err == nil && doc == nil {
		err = &spec.Error{Kind: spec.ErrParse, Source: src, Err: errors.New("parser returned no document")}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	elapsed := end.Sub(start)
	if elapsed < 0 {
		err := fmt.Errorf("%w: %s", ErrMeasurement, elapsed)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	span.SetAttributes(attribute.String("spec.version", doc.Version))
	l.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(attrs[1]))
	l.logger.DebugContext(ctx, "spec parsed",
		"source", src,
		"parser", l.parserName,
		"version", doc.Version,
		"elapsed", elapsed,
	)
	return Result{Document: doc, Elapsed: elapsed}, nil
}

// parse calls the parser directly unless ctx can expire, in which case the
// call is raced against ctx so a parser that ignores ctx cannot hang.
func (l *Loader) parse(ctx context.Context, src spec.Source) (*spec.Document, error) {
	if ctx.Done() == nil {
		return l.parser.Parse(ctx, src)
	}

	type outcome struct {
		doc *spec.Document
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		doc, err := l.parser.Parse(ctx, src)
		done <- outcome{doc: doc, err: err}
	}()

	select {
	case o := <-done:
		if o.err != nil && !errors.Is(o.err, spec.ErrTimeout) && errors.Is(o.err, context.DeadlineExceeded) {
			return nil, &spec.Error{Kind: spec.ErrTimeout, Source: src, Err: o.err}
		}
		return o.doc, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &spec.Error{Kind: spec.ErrTimeout, Source: src, Err: ctx.Err()}
		}
		return nil, &spec.Error{Kind: spec.ErrIO, Source: src, Err: ctx.Err()}
	}
}
