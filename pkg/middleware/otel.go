package middleware

import (
	"context"
	"iter"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "iterdiff"

// OTelConfig configures tracing.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "iterdiff").
	TracerName string

	// SpanName names every check span (default: "iterdiff.check").
	SpanName string

	// Provider supplies the tracer. Default: otel.GetTracerProvider().
	Provider trace.TracerProvider

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// OTelOption configures tracing.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithSpanName sets the span name.
func WithSpanName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.SpanName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.Provider = tp
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// TracedDiffer runs each check of a Differ inside an OpenTelemetry span.
type TracedDiffer struct {
	differ differ.Differ
	tracer trace.Tracer
	config OTelConfig
}

// Traced wraps d.
func Traced(d differ.Differ, opts ...OTelOption) *TracedDiffer {
	config := OTelConfig{
		TracerName: defaultTracerName,
		SpanName:   defaultTracerName + ".check",
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &TracedDiffer{
		differ: d,
		tracer: config.Provider.Tracer(config.TracerName),
		config: config,
	}
}

// Diff implements differ.Differ with a background context.
func (t *TracedDiffer) Diff(collection any) (differ.IterableChanges, error) {
	return t.Check(context.Background(), collection)
}

// Check diffs collection inside a span. Change counts are recorded as
// span attributes; errors set the span status.
func (t *TracedDiffer) Check(ctx context.Context, collection any) (differ.IterableChanges, error) {
	_, span := t.tracer.Start(ctx, t.config.SpanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.config.Attributes...),
		trace.WithTimestamp(time.Now()),
	)
	defer span.End()

	changes, err := t.differ.Diff(collection)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Bool("iterdiff.dirty", changes != nil))
	if changes != nil {
		span.SetAttributes(
			attribute.Int("iterdiff.added", count(changes.ForEachAddedItem())),
			attribute.Int("iterdiff.moved", count(changes.ForEachMovedItem())),
			attribute.Int("iterdiff.removed", count(changes.ForEachRemovedItem())),
			attribute.Int("iterdiff.identity_changed", count(changes.ForEachIdentityChange())),
		)
	}
	span.SetStatus(codes.Ok, "")
	return changes, nil
}

// Unwrap returns the wrapped differ.
func (t *TracedDiffer) Unwrap() differ.Differ {
	return t.differ
}

func count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}
