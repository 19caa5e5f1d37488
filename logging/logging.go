package logging

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RedactedText replaces sensitive values in log output.
const RedactedText = "[REDACTED]"

var (
	// key=xxx, api_key=xxx, apikey=xxx in URLs and messages
	apiKeyPattern = regexp.MustCompile(`(?i)\b(api[_-]?key|apikey|key)=[^&\s"']+`)

	// Authorization headers echoed into errors
	bearerPattern = regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._~+/=-]+`)

	// provider key shapes: sk-..., gsk_..., AIza...
	tokenPattern = regexp.MustCompile(`\b(sk-[A-Za-z0-9_-]{16,}|gsk_[A-Za-z0-9]{16,}|AIza[A-Za-z0-9_-]{20,})`)
)

// New builds a zap logger writing to stderr. Development mode uses the
// console encoder; otherwise JSON.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Sampling = nil
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Redact masks a secret, keeping its last four characters when it is long
// enough for that to be safe.
func Redact(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) < 12:
		return RedactedText
	}
	return RedactedText + secret[len(secret)-4:]
}

// SanitizeError returns err's message with credentials removed.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize removes API keys and bearer tokens from s.
func Sanitize(s string) string {
	s = apiKeyPattern.ReplaceAllString(s, "${1}="+RedactedText)
	s = bearerPattern.ReplaceAllString(s, "Bearer "+RedactedText)
	return tokenPattern.ReplaceAllString(s, RedactedText)
}
