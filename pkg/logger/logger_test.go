package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_AttachesServiceFields(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	l := Init(Options{Level: "debug", Output: &buf, Service: "user-management-api", Env: "test"})
	l.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log line: %v (%s)", err, buf.String())
	}
	if entry["service"] != "user-management-api" || entry["env"] != "test" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output only on the first writer")
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestFromContext(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if l := FromContext(context.Background()); l.GetLevel() != zerolog.Disabled {
		t.Fatalf("expected a disabled logger before Init")
	}

	var buf bytes.Buffer
	child := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()
	ctx := WithContext(context.Background(), child)
	l := FromContext(ctx)
	l.Info().Msg("scoped")

	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"req-1"`)) {
		t.Fatalf("expected request-scoped field, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromContext_FallsBackToProcessLogger(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	Init(Options{Output: &buf, Service: "svc"})
	l := FromContext(context.Background())
	l.Info().Msg("global")

	if !bytes.Contains(buf.Bytes(), []byte(`"service":"svc"`)) {
		t.Fatalf("expected process logger output, got %s", buf.String())
	}
}

func TestFromContextOr(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var buf bytes.Buffer
	fallback := zerolog.New(&buf)
	l := FromContextOr(context.Background(), fallback)
	l.Info().Msg("fallback")

	if !bytes.Contains(buf.Bytes(), []byte("fallback")) {
		t.Fatalf("expected fallback logger output, got %s", buf.String())
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Output: &buf})
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	if bytes.Contains(buf.Bytes(), []byte("hidden")) || !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}
