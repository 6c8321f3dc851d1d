package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/abhisek/feelio/internal/config"
	"github.com/abhisek/feelio/internal/logger"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), logger.Nop(), config.TelemetryConfig{}, "test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestInit_FileExporterWritesSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	traceFile := filepath.Join(t.TempDir(), "traces", "feelio.jsonl")
	cfg := config.TelemetryConfig{Enabled: true, SampleRatio: 1, ServiceName: "feelio-test"}

	shutdown, err := Init(context.Background(), logger.Nop(), cfg, "test", traceFile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "unit")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	data, err := os.ReadFile(traceFile)
	if err != nil {
		t.Fatalf("read trace file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected span output in trace file")
	}
}
