package translator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/logging"
)

// NewCompleter builds the Completer for cfg.Provider.
func NewCompleter(cfg Config) (Completer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: missing API key for %s", ErrNoCompleter, cfg.Provider)
	}
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAICompleter(cfg), nil
	case ProviderAnthropic:
		return NewAnthropicCompleter(cfg), nil
	case ProviderGemini:
		return NewGeminiCompleter(cfg), nil
	}
	return nil, fmt.Errorf("translator: unknown provider %q", cfg.Provider)
}

// RemoteParser asks a language model to parse the question and merges its
// answer over the rule parse. Any failure, including the timeout, yields the
// rule parse unchanged.
type RemoteParser struct {
	completer Completer
	fallback  *RuleParser
	logger    *zap.Logger
	timeout   time.Duration
	system    string
}

// NewRemoteParser builds a remote parser. A nil fallback gets a RuleParser
// built from the same options; a nil completer makes every parse a rule parse.
func NewRemoteParser(completer Completer, fallback *RuleParser, opts ...Option) *RemoteParser {
	o := applyOptions(opts)
	if fallback == nil {
		fallback = NewRuleParser(opts...)
	}
	return &RemoteParser{
		completer: completer,
		fallback:  fallback,
		logger:    o.logger.Named("remote-parser"),
		timeout:   o.timeout,
		system:    BuildPrompt(o.descriptors),
	}
}

type completion struct {
	text string
	err  error
}

// Parse implements Parser. It never returns an error.
func (p *RemoteParser) Parse(ctx context.Context, question string) (engine.StructuredQuery, error) {
	base := p.fallback.ParseText(question)
	if p.completer == nil {
		return base, nil
	}

	start := time.Now()
	text, err := p.complete(ctx, question)
	if err != nil {
		p.logger.Warn("Remote parse failed, using rule parse",
			zap.String("error", logging.SanitizeError(err)),
			zap.Duration("elapsed", time.Since(start)))
		return base, nil
	}

	rq, err := DecodeResponse(text)
	if err != nil {
		p.logger.Warn("Remote parse unreadable, using rule parse",
			zap.Error(err),
			zap.String("response", truncate(text, 200)))
		return base, nil
	}

	q := Merge(base, rq)
	p.logger.Info("Remote parse",
		zap.String("action", string(q.Action)),
		zap.Strings("locations", q.Locations),
		zap.Strings("crops", q.Crops),
		zap.Duration("elapsed", time.Since(start)))
	return q, nil
}

// complete runs one completion bounded by the parser timeout. The call runs
// in its own goroutine so a backend that ignores ctx cannot hold the caller.
func (p *RemoteParser) complete(ctx context.Context, question string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		text, err := p.completer.Complete(ctx, p.system, BuildUserPrompt(question))
		done <- completion{text: text, err: err}
	}()

	select {
	case c := <-done:
		return c.text, c.err
	case <-ctx.Done():
		return "", fmt.Errorf("remote parse: %w", ctx.Err())
	}
}
