package observability

import (
	"context"
	"fmt"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Errorf("request id = %q, want req-42", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("request id = %q, want empty for bare context", got)
	}
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "GET /api/kpis")

	if span.TraceID == "" || span.SpanID == "" {
		t.Error("span ids not assigned")
	}
	if span.Operation != "GET /api/kpis" {
		t.Errorf("operation = %q", span.Operation)
	}
	if got := SpanFromContext(ctx); got != span {
		t.Error("span not reachable from context")
	}
}

func TestChildSpanInheritsTrace(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")

	if child.TraceID != parent.TraceID {
		t.Error("child has a different trace id")
	}
	if child.ParentID != parent.SpanID {
		t.Error("child does not reference its parent span")
	}
	if child.SpanID == parent.SpanID {
		t.Error("child reuses the parent span id")
	}
}

func TestSpanFinishAndError(t *testing.T) {
	_, span := StartSpan(context.Background(), "op")
	span.SetTag("http.status_code", "500")
	span.SetError(fmt.Errorf("boom"))
	span.Finish()

	if span.Duration <= 0 {
		t.Error("duration not recorded")
	}
	if span.Tags["http.status_code"] != "500" {
		t.Error("tag not recorded")
	}
	if span.Err != "boom" {
		t.Errorf("error = %q, want boom", span.Err)
	}
}
