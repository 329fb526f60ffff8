package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/specialistvlad/shadergen/internal/ctxlog"
)

// LogsEnv turns on dumping captured logs for every test that uses them.
const LogsEnv = "SHADERGEN_TEST_LOGS"

// NewLogger returns a debug-level text logger writing to w.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// ContextWithLogger returns ctx carrying a debug-level logger writing to w.
func ContextWithLogger(ctx context.Context, w io.Writer) context.Context {
	return ctxlog.WithLogger(ctx, NewLogger(w))
}

// CaptureLogs returns a context logging into a buffer. The buffer is dumped
// into the test output on cleanup when SHADERGEN_TEST_LOGS=true.
func CaptureLogs(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv(LogsEnv) == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ContextWithLogger(context.Background(), buf), buf
}
