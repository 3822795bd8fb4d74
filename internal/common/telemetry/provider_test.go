package telemetry

import (
	"context"
	"errors"
	"testing"

	commonconfig "github.com/park285/llm-kakao-bots/arcade-go/internal/common/config"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), commonconfig.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsEnabled() {
		t.Error("disabled provider must report not enabled")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown of no-op provider failed: %v", err)
	}
}

func TestStartSpan_NoopProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test")
	if ctx == nil || span == nil {
		t.Fatal("expected context and span")
	}
	EndSpan(span, errors.New("boom"))
}

func TestRootSampler(t *testing.T) {
	if got := rootSampler(1).Description(); got != "AlwaysOnSampler" {
		t.Errorf("rate 1 sampler = %s", got)
	}
	if got := rootSampler(0).Description(); got != "AlwaysOffSampler" {
		t.Errorf("rate 0 sampler = %s", got)
	}
}
