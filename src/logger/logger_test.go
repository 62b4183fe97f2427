package logger

import (
	"bytes"
	"strings"
	"testing"

	"monitor-dashboard/src/models"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarning},
		{"WARNING", LevelWarning},
		{"ERROR", LevelError},
		{"CRITICAL", LevelCritical},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(&models.MConfig{LogLevel: "WARNING"}, "Test", &buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warning("warning %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below WARNING were written: %q", out)
	}
	if !strings.Contains(out, "[Test] WARNING: warning 3") {
		t.Errorf("missing warning line in %q", out)
	}
	if !strings.Contains(out, "[Test] ERROR: error 4") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestNamedKeepsLevelAndWriter(t *testing.T) {
	var buf bytes.Buffer
	root := NewLoggerWithWriter("ERROR", "Root", &buf)
	child := root.Named("Child")

	child.Info("hidden")
	child.Error("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("child logger ignored parent level: %q", out)
	}
	if !strings.Contains(out, "[Child] ERROR: shown") {
		t.Errorf("child logger output = %q", out)
	}
}

func TestCriticalExits(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(nil, "Fatal", &buf)

	code := -1
	l.exit = func(c int) { code = c }
	l.Critical("boom")

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "CRITICAL: boom") {
		t.Errorf("critical line missing: %q", buf.String())
	}
}
