package logging

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-profile-cache/redact"
)

type redactingCore struct {
	zapcore.Core
	r *redact.Redactor
}

// NewRedactingCore wraps core so that fields under secret-looking keys, and
// secrets nested in structured fields or a JSON message, are masked before
// they reach the encoder.
func NewRedactingCore(core zapcore.Core, r *redact.Redactor) zapcore.Core {
	if r == nil {
		r = redact.Default()
	}
	return &redactingCore{Core: core, r: r}
}

func (c *redactingCore) With(fields []zapcore.Field) zapcore.Core {
	return &redactingCore{Core: c.Core.With(c.redactFields(fields)), r: c.r}
}

func (c *redactingCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *redactingCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	ent.Message = c.redactMessage(ent.Message)
	return c.Core.Write(ent, c.redactFields(fields))
}

func (c *redactingCore) redactFields(fields []zapcore.Field) []zapcore.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zapcore.Field, len(fields))
	for i, f := range fields {
		out[i] = c.redactField(f)
	}
	return out
}

func (c *redactingCore) redactField(f zapcore.Field) zapcore.Field {
	switch f.Type {
	case zapcore.SkipType, zapcore.NamespaceType, zapcore.ErrorType:
		return f
	}

	matches := c.r.Matches(f.Key)
	if !matches && !mayNest(f) {
		return f
	}

	enc := zapcore.NewMapObjectEncoder()
	f.AddTo(enc)
	value, ok := enc.Fields[f.Key]
	if !ok {
		return f
	}
	if f.Type == zapcore.ReflectType {
		value = jsonShape(value)
	}

	redacted := c.r.RedactMap(map[string]any{f.Key: value})
	return zap.Any(f.Key, redacted[f.Key])
}

// mayNest reports whether a field under a non-matching key can still hold a
// matching key somewhere inside it.
func mayNest(f zapcore.Field) bool {
	switch f.Type {
	case zapcore.ObjectMarshalerType, zapcore.ArrayMarshalerType, zapcore.ReflectType:
		return true
	case zapcore.StringType:
		return looksLikeJSON(f.String)
	}
	return false
}

func (c *redactingCore) redactMessage(msg string) string {
	if !looksLikeJSON(msg) {
		return msg
	}
	out := c.r.RedactMap(map[string]any{"message": msg})["message"]
	if s, ok := out.(string); ok {
		return s
	}
	data, err := json.Marshal(out)
	if err != nil {
		return msg
	}
	return string(data)
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && (s[0] == '{' || s[0] == '[')
}

func jsonShape(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
