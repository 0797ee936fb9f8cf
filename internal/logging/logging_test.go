package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/nikbrunner/autotag/internal/ai"
)

var _ ai.Logger = (*Logger)(nil)

func newBufferLogger(debug bool) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return New(slog.New(handler), debug), &buf
}

func TestLogger_LevelsAndDetail(t *testing.T) {
	l, buf := newBufferLogger(true)

	l.Debug("suggested tags", `{"tags":["a"]}`)
	l.Warn("invalid input text", "")
	l.Error("request failed", "status 500")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=\"suggested tags\"",
		"level=WARN", "msg=\"invalid input text\"",
		"level=ERROR", "detail=\"status 500\"",
		"component=autotag",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	if strings.Count(out, "detail=") != 2 {
		t.Errorf("expected detail only on lines that set it:\n%s", out)
	}
}

func TestLogger_DebugDisabled(t *testing.T) {
	l, buf := newBufferLogger(false)

	l.Debug("hidden", "")
	l.Warn("shown", "")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug line should be dropped:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn line missing:\n%s", buf.String())
	}
}
