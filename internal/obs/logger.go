package obs

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the minimal structured-logging interface used throughout
// the indexing and query pipelines. Nothing outside this package
// imports zerolog directly.
type Logger interface {
	Info(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// ZerologLogger adapts zerolog to the Logger interface.
type ZerologLogger struct {
	log zerolog.Logger
	mu  sync.Mutex
}

// NewLogger builds a ZerologLogger writing JSON lines to stdout.
func NewLogger() *ZerologLogger {
	return &ZerologLogger{log: zerolog.New(os.Stdout).With().Timestamp().Logger()}
}

func (l *ZerologLogger) event(e *zerolog.Event, msg string, fields map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

func (l *ZerologLogger) Info(msg string, fields map[string]any)  { l.event(l.log.Info(), msg, fields) }
func (l *ZerologLogger) Error(msg string, fields map[string]any) { l.event(l.log.Error(), msg, fields) }
func (l *ZerologLogger) Debug(msg string, fields map[string]any) { l.event(l.log.Debug(), msg, fields) }

// NopLogger discards everything; used in tests.
type NopLogger struct{}

func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}
func (NopLogger) Debug(string, map[string]any) {}

// durationMS is a shared helper for stage-timing histogram calls.
func durationMS(d time.Duration) float64 { return float64(d.Microseconds()) / 1000.0 }
