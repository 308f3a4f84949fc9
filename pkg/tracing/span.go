// Package tracing records timed span trees for the search pipeline and logs
// them through slog when the root span finishes. Spans travel in contexts;
// a nil *Span is valid and ignores every call, so unsampled requests pay
// almost nothing.
package tracing

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
)

type contextKey struct{}

// Span is one timed step of a trace.
type Span struct {
	Name      string
	TraceID   string
	StartTime time.Time
	Duration  time.Duration
	Children  []*Span
	Attrs     map[string]any

	mu     sync.Mutex
	root   bool
	logger *slog.Logger
}

// Tracer decides which requests are traced.
type Tracer struct {
	enabled bool
	rate    float64
	logger  *slog.Logger
	sample  func() float64
}

// New returns a Tracer. A sample rate outside (0, 1] traces every request
// when tracing is enabled.
func New(cfg config.TracingConfig) *Tracer {
	rate := cfg.SampleRate
	if rate <= 0 || rate > 1 {
		rate = 1
	}
	return &Tracer{
		enabled: cfg.Enabled,
		rate:    rate,
		logger:  slog.Default().With("component", "tracing"),
		sample:  rand.Float64,
	}
}

// Start opens a root span. It returns a nil span when the tracer is nil,
// disabled, or the request is not sampled. The request id, if any, becomes
// the trace id.
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, *Span) {
	if t == nil || !t.enabled || t.sample() >= t.rate {
		return ctx, nil
	}
	traceID := logger.RequestID(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	span := newSpan(name, traceID)
	span.root = true
	span.logger = t.logger
	return context.WithValue(ctx, contextKey{}, span), span
}

// StartChild opens a span under the one in ctx. Without a parent it returns
// ctx unchanged and a nil span.
func StartChild(ctx context.Context, name string) (context.Context, *Span) {
	parent := FromContext(ctx)
	if parent == nil {
		return ctx, nil
	}
	child := newSpan(name, parent.TraceID)
	parent.mu.Lock()
	parent.Children = append(parent.Children, child)
	parent.mu.Unlock()
	return context.WithValue(ctx, contextKey{}, child), child
}

func newSpan(name, traceID string) *Span {
	return &Span{
		Name:      name,
		TraceID:   traceID,
		StartTime: time.Now(),
		Attrs:     make(map[string]any),
	}
}

// FromContext returns the current span, or nil.
func FromContext(ctx context.Context) *Span {
	span, _ := ctx.Value(contextKey{}).(*Span)
	return span
}

// SetAttr attaches an attribute.
func (s *Span) SetAttr(key string, value any) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Attrs[key] = value
	s.mu.Unlock()
}

// End records the duration. Ending a root span logs the whole tree.
func (s *Span) End() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.Duration = time.Since(s.StartTime)
	s.mu.Unlock()
	if s.root {
		s.log(s.logger, 0)
	}
}

func (s *Span) log(l *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := make([]any, 0, 8+2*len(s.Attrs))
	attrs = append(attrs,
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_us", s.Duration.Microseconds(),
		"depth", depth,
	)
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	l.Info("span", attrs...)
	for _, child := range children {
		child.log(l, depth+1)
	}
}
