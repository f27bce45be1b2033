package telemetry

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInstrumenterRecordsRequest(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	inst, err := New(
		Config{ServiceName: "rdscript-test", Version: "test"},
		WithSpanProcessor(recorder),
	)
	if err != nil {
		t.Fatalf("New instrumenter: %v", err)
	}
	t.Cleanup(func() {
		_ = inst.Shutdown(context.Background())
	})

	httpReq, err := http.NewRequestWithContext(
		context.Background(),
		"GET",
		"https://example.com/api/health",
		nil,
	)
	if err != nil {
		t.Fatalf("build http request: %v", err)
	}

	ctx, span := inst.Start(
		context.Background(),
		RequestStart{Name: "health", HTTPRequest: httpReq},
	)
	if ctx == nil || span == nil {
		t.Fatalf("expected span to be created")
	}
	span.End(RequestResult{StatusCode: 200})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	ro := spans[0]
	if got := ro.Name(); got != "health" {
		t.Fatalf("unexpected span name %q", got)
	}
	assertAttribute(t, ro, "http.method", "GET")
	assertAttribute(t, ro, "http.host", "example.com")
	assertAttribute(t, ro, "rdscript.request.name", "health")
	if ro.Status().Code != codes.Ok {
		t.Fatalf("expected span status OK, got %v", ro.Status().Code)
	}
}

func TestInstrumenterErrorStatus(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	inst, err := New(Config{ServiceName: "rdscript-test"}, WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("New instrumenter: %v", err)
	}
	t.Cleanup(func() {
		_ = inst.Shutdown(context.Background())
	})

	httpReq, _ := http.NewRequest("GET", "https://example.com/missing", nil)
	_, span := inst.Start(context.Background(), RequestStart{HTTPRequest: httpReq})
	span.End(RequestResult{StatusCode: 404})

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", spans[0].Status().Code)
	}
	if spans[0].Name() != "GET example.com" {
		t.Fatalf("unexpected span name %q", spans[0].Name())
	}
}

func TestNoopWhenDisabled(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New instrumenter: %v", err)
	}
	if _, ok := inst.(noopInstrumenter); !ok {
		t.Fatalf("expected noop instrumenter, got %T", inst)
	}
}

func assertAttribute(t *testing.T, span sdktrace.ReadOnlySpan, key string, want string) {
	t.Helper()
	for _, attr := range span.Attributes() {
		if string(attr.Key) == key {
			if attr.Value.AsString() != want {
				t.Fatalf("attribute %s mismatch: got %v, want %v", key, attr.Value, want)
			}
			return
		}
	}
	t.Fatalf("attribute %s not found", key)
}
