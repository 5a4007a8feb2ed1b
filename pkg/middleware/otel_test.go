package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordedSpan struct {
	noop.Span
	name   string
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetAttributes(kv ...attribute.KeyValue) {
	for _, a := range kv {
		s.attrs[a.Key] = a.Value
	}
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) { s.errs = append(s.errs, err) }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, attrs: map[attribute.Key]attribute.Value{}}
	s.SetAttributes(cfg.Attributes()...)
	r.spans = append(r.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
}

func (p recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer { return p.tracer }

func TestTracedCheck(t *testing.T) {
	rt := &recordingTracer{}
	td := Traced(differ.New(),
		WithTracerProvider(recordingProvider{tracer: rt}),
		WithSpanName("diff"),
		WithAttributes(attribute.String("session", "s1")),
	)

	if _, err := td.Check(context.Background(), []int{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	changes, err := td.Check(context.Background(), []int{3, 1})
	if err != nil {
		t.Fatal(err)
	}
	if changes == nil {
		t.Fatal("Check() changes = nil, want changes")
	}
	if _, err := td.Check(context.Background(), []int{3, 1}); err != nil {
		t.Fatal(err)
	}

	if len(rt.spans) != 3 {
		t.Fatalf("spans = %d, want 3", len(rt.spans))
	}
	s := rt.spans[1]
	if s.name != "diff" || !s.ended || s.status != codes.Ok {
		t.Errorf("span = %q ended=%v status=%v", s.name, s.ended, s.status)
	}
	if got := s.attrs["session"].AsString(); got != "s1" {
		t.Errorf("session attr = %q, want s1", got)
	}
	if got := s.attrs["iterdiff.removed"].AsInt64(); got != 1 {
		t.Errorf("removed attr = %d, want 1", got)
	}
	if got := s.attrs["iterdiff.moved"].AsInt64(); got != 2 {
		t.Errorf("moved attr = %d, want 2", got)
	}
	if rt.spans[2].attrs["iterdiff.dirty"].AsBool() {
		t.Error("clean check span has dirty=true")
	}
}

func TestTracedCheckError(t *testing.T) {
	rt := &recordingTracer{}
	td := Traced(differ.New(), WithTracerProvider(recordingProvider{tracer: rt}))

	_, err := td.Check(context.Background(), 42)
	if !errors.Is(err, differ.ErrInvalidInput) {
		t.Fatalf("Check(42) error = %v, want ErrInvalidInput", err)
	}
	s := rt.spans[0]
	if s.name != "iterdiff.check" {
		t.Errorf("span name = %q", s.name)
	}
	if s.status != codes.Error || len(s.errs) != 1 {
		t.Errorf("status = %v, errs = %v", s.status, s.errs)
	}
}

func TestTracedDefaultProvider(t *testing.T) {
	td := Traced(differ.New())
	changes, err := td.Diff([]string{"a"})
	if err != nil || changes == nil {
		t.Fatalf("Diff() = %v, %v", changes, err)
	}
	if _, ok := td.Unwrap().(*differ.IterableDiffer); !ok {
		t.Errorf("Unwrap() = %T", td.Unwrap())
	}
}
