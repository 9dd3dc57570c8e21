package logger

import (
	"context"
	"sort"
)

// Telemetry records listing and command events as debug log lines. It
// satisfies listing.Telemetry and commands.Telemetry.
type Telemetry struct {
	Logger Logger
}

// NewTelemetry wraps l.
func NewTelemetry(l Logger) Telemetry {
	return Telemetry{Logger: l}
}

// Record logs event with its payload as sorted key/value pairs. Events
// ending in ".error" log at warn level.
func (t Telemetry) Record(ctx context.Context, event string, payload map[string]any) {
	l := t.Logger
	if l == nil {
		l = FromContext(ctx)
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	keyvals := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		keyvals = append(keyvals, k, payload[k])
	}
	if isErrorEvent(event) {
		l.Warn(event, keyvals...)
		return
	}
	l.Debug(event, keyvals...)
}

func isErrorEvent(event string) bool {
	const suffix = ".error"
	return len(event) >= len(suffix) && event[len(event)-len(suffix):] == suffix
}
