package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/philipp01105/jsonlog/core"
)

const testConfig = `
formatters:
  app:
    format:
      - {key: level, value: levelname}
      - {key: logger, value: name}
      - {key: msg, value: message}
    mix_extra: true
  strict:
    format: '{"who":"%(user)s"}'
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(append(args, "--no-color"))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestFormatCommand(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	input := strings.Join([]string{
		`{"level":"warning","logger":"db","message":"slow query","extra":{"ms":250,"table":"users"}}`,
		``,
		`{"level":40,"message":"user %s failed","args":["bob"],"error":"denied","request":"r-1"}`,
	}, "\n")

	stdout, stderr, err := run(t, input, "format", "--config", cfg, "--formatter", "app")
	if err != nil {
		t.Fatalf("format error = %v\nstderr: %s", err, stderr)
	}
	want := `{"level":"WARN","logger":"db","msg":"slow query","ms":250,"table":"users"}` + "\n" +
		`{"level":"ERROR","logger":"","msg":"user bob failed\ndenied","request":"r-1"}` + "\n"
	if stdout != want {
		t.Errorf("stdout:\n%s\nwant:\n%s", stdout, want)
	}
}

func TestFormatCommand_SkipsFailures(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	input := strings.Join([]string{
		`{"message":"no user"}`,
		`not json`,
		`{"user":"alice"}`,
		`{"level":"loud"}`,
	}, "\n")

	stdout, stderr, err := run(t, input, "format", "--config", cfg, "--formatter", "strict")
	if err == nil {
		t.Fatal("format succeeded with failing events")
	}
	if !strings.Contains(err.Error(), "3 of 4 events skipped") {
		t.Errorf("error = %v", err)
	}
	if stdout != `{"who":"alice"}`+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
	for _, want := range []string{"line=1", "line=2", "line=4", "skipping"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestFormatCommand_UnknownFormatter(t *testing.T) {
	cfg := writeConfig(t, testConfig)
	_, stderr, err := run(t, "", "format", "--config", cfg, "--formatter", "nope")
	if err == nil || !strings.Contains(stderr, "formatters.nope") {
		t.Errorf("err = %v, stderr = %s", err, stderr)
	}
}

func TestValidateCommand(t *testing.T) {
	stdout, stderr, err := run(t, "", "validate", "--config", writeConfig(t, testConfig))
	if err != nil {
		t.Fatalf("validate error = %v\nstderr: %s", err, stderr)
	}
	if stdout != "ok app\nok strict\n" {
		t.Errorf("stdout = %q", stdout)
	}

	bad := writeConfig(t, `formatters: {a: {style: "#"}, b: {format: '{"x":'}}`)
	_, stderr, err = run(t, "", "validate", "--config", bad)
	if err == nil {
		t.Fatal("validate succeeded with invalid formatters")
	}
	if strings.Count(stderr, "invalid formatter") != 2 {
		t.Errorf("stderr:\n%s", stderr)
	}

	if _, _, err := run(t, "", "validate"); err == nil {
		t.Error("validate succeeded without --config")
	}
}

func TestDecodeEvent(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	e, err := decodeEvent([]byte(`{"time":"2026-05-02T10:00:00Z","level":"debug","message":7,`+
		`"caller":{"file":"/src/app/main.go","line":12,"function":"main.run"},"stack":"trace"}`), clock)
	if err != nil {
		t.Fatalf("decodeEvent() error = %v", err)
	}
	if !e.Time.Equal(time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Time = %v", e.Time)
	}
	if e.Level != core.DebugLevel || e.Message != int64(7) || e.Stack != "trace" {
		t.Errorf("event = %+v", e)
	}
	if e.Caller.ShortFile != "main.go" || e.Caller.Line != 12 || !e.Caller.Defined {
		t.Errorf("Caller = %+v", e.Caller)
	}
	core.PutEvent(e)

	e, err = decodeEvent([]byte(`{"time":1767225600.5,"message":"x"}`), clock)
	if err != nil {
		t.Fatal(err)
	}
	if e.Time.Unix() != 1767225600 || e.Time.Nanosecond() != 500_000_000 {
		t.Errorf("Time = %v", e.Time)
	}
	core.PutEvent(e)

	e, err = decodeEvent([]byte(`{"message":"x"}`), clock)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Time.Equal(now) || e.Level != core.InfoLevel {
		t.Errorf("defaults not applied: %+v", e)
	}
	core.PutEvent(e)

	for _, bad := range []string{
		`[]`,
		`{"time":"yesterday"}`,
		`{"level":"loud"}`,
		`{"level":true}`,
		`{"args":"a"}`,
		`{"extra":[1]}`,
		`{"logger":1}`,
		`{"caller":"main.go"}`,
	} {
		if _, err := decodeEvent([]byte(bad), clock); err == nil {
			t.Errorf("decodeEvent(%s) succeeded", bad)
		}
	}
}
