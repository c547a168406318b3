package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/jjonescz/roslyn-test-updater/pkg/rewrite"
)

// Level represents the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a case-insensitive level name to a Level, defaulting to
// info for unknown or empty input.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelPaint = map[Level]*color.Color{
	LevelDebug: color.New(color.FgHiBlack),
	LevelInfo:  color.New(color.FgCyan),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// StdLogger writes structured log entries to a writer, with the level tag
// colored when the destination supports it. It implements rewrite.Logger.
type StdLogger struct {
	fields   []rewrite.LogField
	minLevel Level
	logger   *log.Logger
}

// NewStdLogger creates a logger with the given minimum level and writer.
// A nil writer discards all entries.
func NewStdLogger(minLevel Level, writer io.Writer) *StdLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &StdLogger{
		minLevel: minLevel,
		logger:   log.New(writer, "", 0), // no prefix, we format our own
	}
}

func (s *StdLogger) log(level Level, msg string, err error, fields ...rewrite.LogField) {
	if level < s.minLevel {
		return
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", time.Now().Format(time.RFC3339)))
	parts = append(parts, levelPaint[level].Sprintf("[%s]", levelNames[level]))
	if err != nil {
		parts = append(parts, fmt.Sprintf("[error=%q]", err.Error()))
	}
	parts = append(parts, msg)

	allFields := append(append([]rewrite.LogField{}, s.fields...), fields...)
	if len(allFields) > 0 {
		var fieldParts []string
		for _, f := range allFields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		parts = append(parts, fmt.Sprintf("fields=[%s]", strings.Join(fieldParts, " ")))
	}

	s.logger.Println(strings.Join(parts, " "))
}

func (s *StdLogger) Debug(_ context.Context, msg string, fields ...rewrite.LogField) {
	s.log(LevelDebug, msg, nil, fields...)
}

func (s *StdLogger) Info(_ context.Context, msg string, fields ...rewrite.LogField) {
	s.log(LevelInfo, msg, nil, fields...)
}

func (s *StdLogger) Warn(_ context.Context, msg string, fields ...rewrite.LogField) {
	s.log(LevelWarn, msg, nil, fields...)
}

func (s *StdLogger) Error(_ context.Context, msg string, err error, fields ...rewrite.LogField) {
	s.log(LevelError, msg, err, fields...)
}

// WithFields returns a logger whose entries all carry the given fields.
func (s *StdLogger) WithFields(fields ...rewrite.LogField) *StdLogger {
	return &StdLogger{
		fields:   append(append([]rewrite.LogField{}, s.fields...), fields...),
		minLevel: s.minLevel,
		logger:   s.logger,
	}
}
