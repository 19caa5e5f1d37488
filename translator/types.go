package translator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// TRANSLATOR: natural language → StructuredQuery
// ============================================================================
// Two Parser variants:
//   RuleParser    deterministic keyword matching, no external calls
//   RemoteParser  asks a language model, bounded by a timeout, and falls
//                 back to the RuleParser on any failure
//
// A remote model only ever sees column names, sample values, and the
// question. Never rows.
// ============================================================================

// Parser turns a question into a StructuredQuery.
type Parser interface {
	Parse(ctx context.Context, question string) (engine.StructuredQuery, error)
}

// Completer sends one prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

var (
	// ErrNoCompleter is returned when a remote parser has no backend.
	ErrNoCompleter = errors.New("translator: no completer configured")
	// ErrEmptyCompletion is returned when a model answers with no text.
	ErrEmptyCompletion = errors.New("translator: empty completion")
)

// Provider names a remote model backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai" // any OpenAI-compatible endpoint, Groq by default
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Config holds remote backend configuration.
type Config struct {
	Provider    Provider
	APIKey      string
	Model       string
	Endpoint    string // empty = provider default
	Temperature float64
	MaxTokens   int
}

// DefaultConfig returns provider defaults for apiKey.
func DefaultConfig(provider Provider, apiKey string) Config {
	cfg := Config{Provider: provider, APIKey: apiKey, Temperature: 0.1, MaxTokens: 512}
	switch provider {
	case ProviderAnthropic:
		cfg.Model = "claude-3-5-haiku-latest"
	case ProviderGemini:
		cfg.Model = "gemini-2.5-flash-lite"
		cfg.Endpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	default:
		cfg.Provider = ProviderOpenAI
		cfg.Model = "llama-3.1-8b-instant"
		cfg.Endpoint = "https://api.groq.com/openai/v1"
	}
	return cfg
}

// ============================================================================
// OPTIONS
// ============================================================================

// Option configures a parser.
type Option func(*options)

type options struct {
	logger      *zap.Logger
	gazetteer   *Gazetteer
	timeout     time.Duration
	descriptors []schema.DatasetDescriptor
}

// DefaultTimeout bounds a remote parse.
const DefaultTimeout = 5 * time.Second

// WithLogger routes parser logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithGazetteer replaces the embedded gazetteer.
func WithGazetteer(g *Gazetteer) Option {
	return func(o *options) {
		if g != nil {
			o.gazetteer = g
		}
	}
}

// WithTimeout bounds each remote call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithDatasets describes the loaded datasets to the remote model.
func WithDatasets(descriptors []schema.DatasetDescriptor) Option {
	return func(o *options) { o.descriptors = descriptors }
}

func applyOptions(opts []Option) *options {
	o := &options{logger: zap.NewNop(), gazetteer: DefaultGazetteer(), timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
