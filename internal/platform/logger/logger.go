package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger logs key/value pairs. Values under secret-looking keys are redacted and emails are
// hashed before they reach the core (LOG_REDACTION_ENABLED=false turns this off).
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        redactor
}

// New builds a logger for LOG_MODE: "production" (JSON, info), "test" or "nop" (discards),
// anything else is the development console at debug.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "test", "nop":
		return Nop(), nil
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return FromZap(zl), nil
}

// FromZap wraps an existing zap logger with the environment's redaction settings.
func FromZap(zl *zap.Logger) *Logger {
	return &Logger{SugaredLogger: zl.Sugar(), redact: envRedactor()}
}

func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...any) { l.SugaredLogger.Debugw(msg, l.redact.pairs(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.SugaredLogger.Infow(msg, l.redact.pairs(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.SugaredLogger.Warnw(msg, l.redact.pairs(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.SugaredLogger.Errorw(msg, l.redact.pairs(kv)...) }

func (l *Logger) With(kv ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.redact.pairs(kv)...), redact: l.redact}
}

type redactor struct {
	enabled bool
	salt    string
}

var envRedactor = sync.OnceValue(func() redactor {
	r := redactor{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		r.enabled = false
	}
	return r
})

type action int

const (
	keep action = iota
	drop
	hash
)

var secretMarkers = []string{"token", "authorization", "password", "secret", "api_key", "apikey"}

func classify(key string) action {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, m := range secretMarkers {
		if strings.Contains(key, m) {
			return drop
		}
	}
	if strings.Contains(key, "email") {
		return hash
	}
	return keep
}

func (r redactor) pairs(kv []any) []any {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i+1 == len(kv) {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, r.value(key, kv[i+1]))
	}
	return out
}

func (r redactor) value(key string, v any) any {
	switch classify(key) {
	case drop:
		return "[REDACTED]"
	case hash:
		return r.hash(v)
	}
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, mv := range m {
			out[k] = r.value(k, mv)
		}
		return out
	}
	return v
}

// hash keeps repeated values correlatable across lines without logging them.
func (r redactor) hash(v any) string {
	raw := strings.TrimSpace(fmt.Sprint(v))
	if v == nil || raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}
