package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/steemit/postsmanager/pkg/config"
)

func TestScalyrEncoder(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:        "INFO",
		Format:       "json",
		ScalyrFormat: true,
	}

	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	var buf bytes.Buffer
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		MessageKey:    "message",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(NewScalyrEncoder(encoderConfig), zapcore.AddSync(&buf), zapcore.InfoLevel)
	logger := zap.New(core)

	logger.Info("cache hit", zap.String("kind", "posts"), zap.Int64("post_id", 7), zap.Bool("stale", false))

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "cache hit" {
		t.Errorf("Expected message 'cache hit', got: %v", logObj["message"])
	}
	if logObj["kind"] != "posts" {
		t.Errorf("Expected field 'kind'='posts', got: %v", logObj["kind"])
	}
	if logObj["post_id"] != float64(7) {
		t.Errorf("Expected field 'post_id'=7, got: %v", logObj["post_id"])
	}
	if logObj["stale"] != false {
		t.Errorf("Expected field 'stale'=false, got: %v", logObj["stale"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	core := zapcore.NewCore(NewScalyrEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zapcore.InfoLevel)
	base := zap.New(core)

	if got := FromContext(context.Background(), base); got != base {
		t.Error("Expected the same logger when context carries no span")
	}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	FromContext(ctx, base).Info("traced")

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if logObj["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v", logObj["trace_id"])
	}
	if logObj["span_id"] != "00f067aa0ba902b7" {
		t.Errorf("span_id = %v", logObj["span_id"])
	}
}
