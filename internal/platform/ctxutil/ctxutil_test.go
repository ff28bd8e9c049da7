package ctxutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIdentityRoundTrip(t *testing.T) {
	id := &Identity{UserID: uuid.New(), Email: "a@b.c", Source: "bearer"}
	ctx := WithIdentity(context.Background(), id)
	if got := GetIdentity(ctx); got != id {
		t.Fatalf("GetIdentity()=%v, want %v", got, id)
	}
	if GetIdentity(context.Background()) != nil {
		t.Fatalf("expected nil identity on bare context")
	}
	if GetIdentity(nil) != nil { //nolint:staticcheck
		t.Fatalf("expected nil identity on nil context")
	}
}

func TestTraceDataOnNilContext(t *testing.T) {
	ctx := WithTraceData(nil, &TraceData{TraceID: "t1", RequestID: "r1"}) //nolint:staticcheck
	td := GetTraceData(ctx)
	if td == nil || td.TraceID != "t1" || td.RequestID != "r1" {
		t.Fatalf("unexpected trace data: %+v", td)
	}
}

func TestTraceDataElapsed(t *testing.T) {
	var missing *TraceData
	if missing.Elapsed() != 0 {
		t.Fatalf("nil trace data should report zero")
	}
	if (&TraceData{}).Elapsed() != 0 {
		t.Fatalf("unset start should report zero")
	}
	td := &TraceData{StartedAt: time.Now().Add(-time.Second)}
	if td.Elapsed() < time.Second {
		t.Fatalf("Elapsed()=%v", td.Elapsed())
	}
}
