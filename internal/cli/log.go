package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Lines carry "HH:MM:SS.ms" timestamps,
// messages below level are dropped, and document, process and error values
// stand out.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	styles.Keys["document"] = StyleTitle
	styles.Values["document"] = StyleValue
	styles.Keys["process"] = StyleTitle
	styles.Keys["error"] = styleStalled
	styles.Values["error"] = styleStalled
	l.SetStyles(styles)
	return l
}

// stopwatch times the phases of a command. Each lap is logged at debug level
// with its own duration; done logs the total at info level. It is not safe
// for concurrent use.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newStopwatch(l *log.Logger) *stopwatch {
	now := time.Now()
	return &stopwatch{logger: l, start: now, last: now}
}

// lap closes phase, e.g. "layout" or "render", and logs how long it took.
func (w *stopwatch) lap(phase string, keyvals ...any) {
	now := time.Now()
	kv := append([]any{"phase", phase, "took", now.Sub(w.last).Round(time.Millisecond)}, keyvals...)
	w.logger.Debug("phase done", kv...)
	w.last = now
}

// done logs msg with the total elapsed time, e.g.
// "Laid out 12 of 12 documents, 3 from cache (1.234s)".
func (w *stopwatch) done(msg string) {
	w.logger.Infof("%s (%s)", msg, time.Since(w.start).Round(time.Millisecond))
}
