package rewrite

import "context"

// LogField represents a key-value pair in structured logging.
type LogField struct {
	Key   string
	Value any
}

// Field creates a LogField from a key-value pair.
func Field(key string, value any) LogField {
	return LogField{Key: key, Value: value}
}

// Logger is the structured logging capability the engine reports progress
// and recoverable warnings through.
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...LogField)
	Info(ctx context.Context, msg string, fields ...LogField)
	Warn(ctx context.Context, msg string, fields ...LogField)
	Error(ctx context.Context, msg string, err error, fields ...LogField)
}

// NopLogger discards all log entries.
type NopLogger struct{}

func (NopLogger) Debug(context.Context, string, ...LogField)        {}
func (NopLogger) Info(context.Context, string, ...LogField)         {}
func (NopLogger) Warn(context.Context, string, ...LogField)         {}
func (NopLogger) Error(context.Context, string, error, ...LogField) {}
