package ecscore

import "github.com/rs/zerolog"

// zerologLogger adapts a zerolog.Logger to the Logger interface consumed
// by schedulers, executors, and system invocations throughout the runtime.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger. Hosts that want
// structured logging wire this in via InstrumentationConfig or a pipeline
// Executor option instead of the noop default.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return zerologLogger{logger: logger}
}

func (l zerologLogger) With(key string, value any) Logger {
	return zerologLogger{logger: l.logger.With().Interface(key, value).Logger()}
}

func (l zerologLogger) Info(msg string, args ...any) {
	withFields(l.logger.Info(), args).Msg(msg)
}

func (l zerologLogger) Error(msg string, args ...any) {
	withFields(l.logger.Error(), args).Msg(msg)
}

// withFields interprets args as alternating key/value pairs, matching the
// sugared-logger calling convention used across every call site of Logger.
func withFields(event *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, args[i+1])
	}
	return event
}

var _ Logger = zerologLogger{}
