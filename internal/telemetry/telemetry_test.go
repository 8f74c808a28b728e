package telemetry

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitNoopWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown, err := Init(context.Background(), "explore-test")
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected a noop shutdown")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown error: %v", err)
	}
}

func TestSamplerFromEnv(t *testing.T) {
	always := sdktrace.ParentBased(sdktrace.AlwaysSample()).Description()
	half := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.5)).Description()

	cases := []struct {
		raw  string
		want string
	}{
		{"", always},
		{"0.5", half},
		{"junk", always},
		{"0", always},
		{"1.5", always},
	}
	for _, tc := range cases {
		t.Setenv("OTEL_TRACES_SAMPLER_RATIO", tc.raw)
		if got := samplerFromEnv().Description(); got != tc.want {
			t.Fatalf("ratio %q: got sampler %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestServiceAttributesIncludeVersionWhenSet(t *testing.T) {
	t.Setenv("SERVICE_VERSION", "")
	if got := len(serviceAttributes("explore-test")); got != 1 {
		t.Fatalf("expected only the service name, got %d attributes", got)
	}

	t.Setenv("SERVICE_VERSION", "1.4.0")
	attrs := serviceAttributes("explore-test")
	if len(attrs) != 2 {
		t.Fatalf("expected name and version, got %d attributes", len(attrs))
	}
	if got := attrs[1].Value.AsString(); got != "1.4.0" {
		t.Fatalf("unexpected version attribute %q", got)
	}
}
