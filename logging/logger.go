package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-profile-cache/redact"
)

// Supported formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// LevelOff disables logging entirely.
const LevelOff = "off"

// Config selects the level, format and redaction of a logger.
type Config struct {
	Level  string
	Format string
	// Development disables secret redaction.
	Development bool
	// Patterns overrides the redaction patterns. Empty means redact.DefaultPatterns.
	Patterns []string
}

// New builds a logger writing to w.
func New(cfg Config, w io.Writer) (*zap.Logger, error) {
	if strings.EqualFold(cfg.Level, LevelOff) {
		return zap.NewNop(), nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoder, err := newEncoder(cfg.Format)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	if !cfg.Development {
		r := redact.Default()
		if len(cfg.Patterns) > 0 {
			if r, err = redact.New(cfg.Patterns...); err != nil {
				return nil, err
			}
		}
		core = NewRedactingCore(core, r)
	}
	return zap.New(core), nil
}

// ParseLevel accepts debug, info, warn and error. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "":
		return zapcore.InfoLevel, nil
	case "debug", "info", "warn", "error":
		return zapcore.ParseLevel(strings.ToLower(s))
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", s)
}

func newEncoder(format string) (zapcore.Encoder, error) {
	config := zap.NewProductionEncoderConfig()
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return zapcore.NewJSONEncoder(config), nil
	case FormatConsole:
		config.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(ts.UTC().Format(time.RFC3339))
		}
		config.EncodeDuration = func(d time.Duration, encoder zapcore.PrimitiveArrayEncoder) {
			encoder.AppendString(d.String())
		}
		return zapcore.NewConsoleEncoder(config), nil
	}
	return nil, fmt.Errorf("logging: unknown format %q", format)
}

// CorrelationIDKey is the field name carrying the correlation id.
const CorrelationIDKey = "correlationId"

// WithCorrelationID returns a child logger tagging every entry with id.
func WithCorrelationID(log *zap.Logger, id string) *zap.Logger {
	return log.With(zap.String(CorrelationIDKey, id))
}

// NewCorrelationID returns a fresh random correlation id.
func NewCorrelationID() string {
	return uuid.NewString()
}
