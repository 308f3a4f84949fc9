package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
)

func TestDisabledTracerReturnsNilSpan(t *testing.T) {
	tr := New(config.TracingConfig{Enabled: false})
	ctx, span := tr.Start(context.Background(), "search")
	if span != nil {
		t.Fatal("disabled tracer returned a span")
	}
	// Nil spans must be safe to use.
	_, child := StartChild(ctx, "parse")
	child.SetAttr("k", "v")
	child.End()
	span.End()

	var nilTracer *Tracer
	if _, s := nilTracer.Start(context.Background(), "x"); s != nil {
		t.Error("nil tracer returned a span")
	}
}

func TestSampling(t *testing.T) {
	tr := New(config.TracingConfig{Enabled: true, SampleRate: 0.5})
	tr.sample = func() float64 { return 0.7 }
	if _, s := tr.Start(context.Background(), "x"); s != nil {
		t.Error("sample above rate was traced")
	}
	tr.sample = func() float64 { return 0.2 }
	if _, s := tr.Start(context.Background(), "x"); s == nil {
		t.Error("sample below rate was not traced")
	}
}

func TestSpanTreeLogged(t *testing.T) {
	var buf bytes.Buffer
	tr := New(config.TracingConfig{Enabled: true, SampleRate: 1})
	tr.logger = slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := logger.WithRequestID(context.Background(), "req-42")
	ctx, root := tr.Start(ctx, "search")
	if root.TraceID != "req-42" {
		t.Errorf("TraceID = %q, want req-42", root.TraceID)
	}
	_, parse := StartChild(ctx, "parse")
	parse.SetAttr("conditions", 2)
	parse.End()
	_, sortSpan := StartChild(ctx, "sort")
	sortSpan.End()
	root.End()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("logged %d spans, want 3:\n%s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(lines[1], &rec); err != nil {
		t.Fatalf("decoding span record: %v", err)
	}
	if rec["span"] != "parse" || rec["trace_id"] != "req-42" || rec["depth"] != float64(1) {
		t.Errorf("child record = %v", rec)
	}
	if rec["conditions"] != float64(2) {
		t.Errorf("conditions attr = %v, want 2", rec["conditions"])
	}
}
