package logger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"go.astrophena.name/radecbot/internal/testutil"
)

func TestLogfWriter(t *testing.T) {
	t.Parallel()

	var (
		logged  bool
		message string
	)
	logf := func(format string, args ...any) {
		logged = true
		message = fmt.Sprintf(format, args...)
	}
	Logf(logf).Write([]byte("hello"))
	testutil.AssertEqual(t, logged, true)
	testutil.AssertEqual(t, message, "hello")
}

func TestLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf)

	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug record logged at info level: %q", buf.String())
	}

	l.Level.Set(slog.LevelDebug)
	l.Debug("shown", "body", "moon")
	if !strings.Contains(buf.String(), "msg=shown body=moon") {
		t.Fatalf("debug record not logged: %q", buf.String())
	}
}

func TestLoggerLogf(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf).Logf()("downloading %s\n", "de421.bsp")
	if !strings.Contains(buf.String(), `msg="downloading de421.bsp"`) {
		t.Fatalf("unexpected record: %q", buf.String())
	}
}

func TestContext(t *testing.T) {
	t.Parallel()

	l := New(new(bytes.Buffer))
	ctx := Put(context.Background(), l)
	if Get(ctx) != l {
		t.Fatal("Get did not return the logger stored by Put")
	}
	if Get(context.Background()) == nil {
		t.Fatal("Get returned nil for an empty context")
	}
}
