package cli

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("laid out") }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("placement root") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("placement root") }, true},
		{"warn at error", log.ErrorLevel, func(l *log.Logger) { l.Warn("cache get failed") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestNewLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, log.InfoLevel).Info("computed layout", "document", "orders.yaml")

	out := buf.String()
	if !regexp.MustCompile(`^\d\d:\d\d:\d\d\.\d\d `).MatchString(out) {
		t.Errorf("output %q lacks the HH:MM:SS.ms timestamp", out)
	}
	if !strings.Contains(out, "document=orders.yaml") {
		t.Errorf("output %q lacks the key/value pair", out)
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	w := newStopwatch(newLogger(&buf, log.DebugLevel))
	time.Sleep(5 * time.Millisecond)
	w.lap("layout", "document", "orders.yaml")
	w.done("Laid out 3 of 3 documents")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines %q, want 2", len(lines), lines)
	}
	for _, want := range []string{"phase done", "phase=layout", "took=", "document=orders.yaml"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("lap line %q lacks %q", lines[0], want)
		}
	}
	if !strings.Contains(lines[1], "Laid out 3 of 3 documents (") || !strings.Contains(lines[1], "ms)") {
		t.Errorf("done() line = %q, want the message with the elapsed time", lines[1])
	}
}

func TestStopwatchLapsHiddenAtInfo(t *testing.T) {
	var buf bytes.Buffer
	w := newStopwatch(newLogger(&buf, log.InfoLevel))
	w.lap("render", "format", "svg")
	if buf.Len() != 0 {
		t.Errorf("lap logged %q at info level", buf.String())
	}
}
