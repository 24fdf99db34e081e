// Package logger wraps zap's sugared logger with key/value redaction.
package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured key/value logger.
type Logger struct {
	sugar  *zap.SugaredLogger
	redact bool
}

// Options configures New.
type Options struct {
	// Mode is "prod"/"production" for JSON output, anything else for the
	// human-readable development encoder.
	Mode  string
	Level string
	// HashIdentifiers replaces user and session ids with a short hash.
	HashIdentifiers bool
}

// New builds a logger for the given options.
func New(opts Options) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(opts.Mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	z, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &Logger{sugar: z.Sugar(), redact: opts.HashIdentifiers}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{sugar: z.Sugar()}
}

func (l *Logger) Sync() { _ = l.sugar.Sync() }

func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, l.sanitize(kv)...) }
func (l *Logger) Info(msg string, kv ...any)  { l.sugar.Infow(msg, l.sanitize(kv)...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.sugar.Warnw(msg, l.sanitize(kv)...) }
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, l.sanitize(kv)...) }

// With returns a child logger that always carries kv.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{sugar: l.sugar.With(l.sanitize(kv)...), redact: l.redact}
}

func (l *Logger) sanitize(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := fmt.Sprint(kv[i])
		out = append(out, key, l.sanitizeValue(strings.ToLower(key), kv[i+1]))
	}
	return out
}

func (l *Logger) sanitizeValue(key string, val any) any {
	switch {
	case isSecretKey(key):
		return "[REDACTED]"
	case l.redact && isIdentifierKey(key):
		return hashValue(val)
	default:
		return val
	}
}

func isSecretKey(key string) bool {
	for _, s := range []string{"token", "authorization", "password", "secret", "api_key", "apikey"} {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}

func isIdentifierKey(key string) bool {
	return strings.Contains(key, "user_id") || strings.Contains(key, "session_id")
}

func hashValue(v any) string {
	sum := sha256.Sum256([]byte(fmt.Sprint(v)))
	return hex.EncodeToString(sum[:])[:12]
}
