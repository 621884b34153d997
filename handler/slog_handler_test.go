package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"

	"github.com/philipp01105/jsonlog/core"
	"github.com/philipp01105/jsonlog/formatter"
)

func newSlogJSON(t *testing.T, format string) (*bytes.Buffer, *SlogHandler) {
	t.Helper()
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{
		Writer:    &buf,
		Formatter: newJSON(t, formatter.Options{Format: format, MixExtra: true}),
	})
	return &buf, NewSlogHandler(h, core.DebugLevel)
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewConsoleHandler(ConsoleConfig{
		Writer:    &bytes.Buffer{},
		Formatter: formatter.NewTextFormatter(formatter.TextOptions{}),
	})

	sh := NewSlogHandler(h, core.InfoLevel)

	if sh.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Debug should not be enabled when level is Info")
	}
	if !sh.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Info should be enabled when level is Info")
	}
	if !sh.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("Warn should be enabled when level is Info")
	}
	if !sh.Enabled(context.Background(), slog.LevelError) {
		t.Error("Error should be enabled when level is Info")
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	buf, sh := newSlogJSON(t, `{"level":"levelname","msg":"message"}`)
	logger := slog.New(sh)

	logger.Info("test message", "key", "value", "count", 42, "ok", true)

	want := "{\"level\":\"INFO\",\"msg\":\"test message\",\"key\":\"value\",\"count\":42,\"ok\":true}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestSlogHandler_WithAttrs(t *testing.T) {
	buf, sh := newSlogJSON(t, `{"msg":"message"}`)
	logger := slog.New(sh).With("request_id", "req-123")

	logger.Info("test message", "n", 1)

	want := "{\"msg\":\"test message\",\"request_id\":\"req-123\",\"n\":1}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestSlogHandler_WithGroup(t *testing.T) {
	buf, sh := newSlogJSON(t, `{"msg":"message"}`)
	logger := slog.New(sh).WithGroup("auth")

	logger.Info("test message", "user_id", 123, slog.Group("session", "id", "s1", "ttl", 60))

	want := "{\"msg\":\"test message\",\"auth.user_id\":123,\"auth.session.id\":\"s1\",\"auth.session.ttl\":60}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestSlogHandler_Error(t *testing.T) {
	buf, sh := newSlogJSON(t, `{"msg":"message","exc":"exc_text"}`)
	slog.New(sh).Error("query failed", "err", errors.New("timeout"), "also", errors.New("second"))

	want := "{\"msg\":\"query failed\\ntimeout\",\"exc\":\"timeout\",\"also\":\"second\"}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestSlogHandler_Trace(t *testing.T) {
	buf, sh := newSlogJSON(t, `{"msg":"message"}`)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	slog.New(sh).InfoContext(ctx, "traced")
	want := "{\"msg\":\"traced\",\"trace_id\":\"4bf92f3577b34da6a3ce929d0e0e4736\",\"span_id\":\"00f067aa0ba902b7\"}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	slog.New(sh).InfoContext(context.Background(), "untraced")
	if strings.Contains(buf.String(), TraceIDKey) {
		t.Errorf("trace id without span: %s", buf.String())
	}
}

func TestSlogHandler_CallerAndName(t *testing.T) {
	buf, sh := newSlogJSON(t, `{"name":"name","file":"filename","func":"funcName"}`)

	slog.New(sh.Named("api")).Info("here")

	out := buf.String()
	if !strings.Contains(out, `"name":"api"`) || !strings.Contains(out, `"file":"slog_handler_test.go"`) {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "TestSlogHandler_CallerAndName") {
		t.Errorf("caller function missing: %s", out)
	}
}

func TestSlogHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewConsoleHandler(ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewTextFormatter(formatter.TextOptions{}),
	})

	sh := NewSlogHandler(h, core.InfoLevel)
	logger := slog.New(sh)

	logger.Debug("should not appear")
	if buf.Len() > 0 {
		t.Error("Debug message should not have been logged")
	}

	logger.Info("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("Expected 'should appear' in output, got: %s", buf.String())
	}
}

func TestSlogLevelToCore(t *testing.T) {
	tests := []struct {
		slogLevel slog.Level
		coreLevel core.Level
	}{
		{slog.LevelDebug, core.DebugLevel},
		{slog.LevelInfo, core.InfoLevel},
		{slog.LevelWarn, core.WarnLevel},
		{slog.LevelError, core.ErrorLevel},
		{slog.LevelError + 4, core.ErrorLevel},
	}

	for _, tt := range tests {
		got := slogLevelToCore(tt.slogLevel)
		if got != tt.coreLevel {
			t.Errorf("slogLevelToCore(%v) = %v, want %v", tt.slogLevel, got, tt.coreLevel)
		}
	}
}
