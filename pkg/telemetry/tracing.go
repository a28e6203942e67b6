package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/canopy/pkg/render"
)

const defaultTracerName = "canopy"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "canopy").
	TracerName string

	// Provider supplies the tracer. Nil means the global provider.
	Provider trace.TracerProvider

	// Attributes are added to every drain span.
	Attributes []attribute.KeyValue

	// Parent is the context drain spans are started from.
	// Default: context.Background()
	Parent context.Context
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// WithParent starts drain spans under ctx, typically a session or request
// span.
func WithParent(ctx context.Context) TracingOption {
	return func(c *TracingConfig) {
		c.Parent = ctx
	}
}

// Tracer is a render.Observer that wraps every drain in a span.
type Tracer struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	parent context.Context

	ctx  context.Context
	span trace.Span
}

// NewTracer resolves the tracer and returns the observer.
func NewTracer(opts ...TracingOption) *Tracer {
	config := TracingConfig{TracerName: defaultTracerName, Parent: context.Background()}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &Tracer{tracer: tracer, attrs: config.Attributes, parent: config.Parent}
}

// DrainStarted implements render.Observer.
func (t *Tracer) DrainStarted() {
	if t.span != nil {
		// The previous drain panicked out of a DOM call and never finished.
		t.span.SetStatus(codes.Error, "drain aborted")
		t.span.End()
	}
	t.ctx, t.span = t.tracer.Start(t.parent, "canopy.drain",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(t.attrs...),
	)
}

// DrainFinished implements render.Observer.
func (t *Tracer) DrainFinished(stats render.DrainStats) {
	if t.span == nil {
		return
	}
	t.span.SetAttributes(
		attribute.String("canopy.mode", drainMode(stats)),
		attribute.Int("canopy.invalidations", stats.Invalidations),
		attribute.Int("canopy.rendered", stats.Rendered),
		attribute.Int("canopy.created", stats.Created),
		attribute.Int("canopy.updated", stats.Updated),
		attribute.Int("canopy.moved", stats.Moved),
		attribute.Int("canopy.removed", stats.Removed),
		attribute.Int("canopy.instances", stats.Instances),
	)
	t.span.SetStatus(codes.Ok, "")
	t.span.End()
	t.span = nil
}

// Context returns the context of the drain in progress, or the parent
// context between drains. Middleware that calls out to other services during
// a render can use it to propagate the trace.
func (t *Tracer) Context() context.Context {
	if t.span != nil {
		return t.ctx
	}
	return t.parent
}
