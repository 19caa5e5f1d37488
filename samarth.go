// Package samarth answers natural-language questions about Indian rainfall
// and crop production tables.
//
// Usage:
//
//	eng, failures, err := samarth.Open(ctx, "data",
//	    samarth.WithLogger(logger),
//	)
//	answer, err := eng.Ask(ctx, "Compare rainfall in Kerala and Punjab")
//
// A Parser (rule based, or a remote model with rule fallback) turns the
// question into an engine.StructuredQuery; the engine computes every figure
// locally from the loaded tables and returns a narrative, tables, a chart,
// a confidence score, and citations.
package samarth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/engine"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/helpers"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/translator"
)

var (
	// ErrNoUsableTables is returned when no table could be loaded.
	ErrNoUsableTables = errors.New("samarth: no usable tables")
	// ErrEmptyQuestion is returned by Ask for a blank question.
	ErrEmptyQuestion = errors.New("samarth: empty question")
)

// Answer is the response to one question.
type Answer struct {
	*engine.Result
	ParseElapsed time.Duration `json:"parseElapsedNs"`
}

// Engine ties a Corpus to a Parser. It is safe for concurrent use.
type Engine struct {
	corpus     *schema.Corpus
	parser     translator.Parser
	logger     *zap.Logger
	engineOpts []engine.Option

	completer  translator.Completer
	remoteOpts []translator.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes all logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithParser replaces the default RuleParser.
func WithParser(p translator.Parser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithRemoteParser parses questions with completer, falling back to the
// rule parser. The model is told about the loaded datasets.
func WithRemoteParser(completer translator.Completer, opts ...translator.Option) Option {
	return func(e *Engine) {
		e.completer = completer
		e.remoteOpts = opts
	}
}

// WithEngineOptions passes options through to engine.Execute.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(e *Engine) { e.engineOpts = append(e.engineOpts, opts...) }
}

func newEngine(opts []Option) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// attach binds the corpus and resolves the parser.
func (e *Engine) attach(corpus *schema.Corpus) {
	e.corpus = corpus
	if e.parser != nil {
		return
	}
	if e.completer != nil {
		opts := append([]translator.Option{
			translator.WithLogger(e.logger),
			translator.WithDatasets(corpus.Descriptors()),
		}, e.remoteOpts...)
		e.parser = translator.NewRemoteParser(e.completer, nil, opts...)
		return
	}
	e.parser = translator.NewRuleParser(translator.WithLogger(e.logger))
}

// New builds an Engine over corpus.
func New(corpus *schema.Corpus, opts ...Option) (*Engine, error) {
	if corpus == nil || corpus.Len() == 0 {
		return nil, ErrNoUsableTables
	}
	e := newEngine(opts)
	e.attach(corpus)
	return e, nil
}

// Open loads every CSV in dir and builds an Engine over the ones that
// parsed. Files that failed are returned alongside the Engine.
func Open(ctx context.Context, dir string, opts ...Option) (*Engine, []helpers.LoadError, error) {
	e := newEngine(opts)

	tables, failures, err := helpers.LoadDir(ctx, dir, e.logger)
	if err != nil {
		return nil, nil, err
	}
	corpus := schema.NewCorpus(e.logger.Named("corpus"), tables...)
	if corpus.Len() == 0 {
		return nil, failures, fmt.Errorf("%s: %w", dir, ErrNoUsableTables)
	}
	e.attach(corpus)
	return e, failures, nil
}

// Corpus returns the loaded datasets.
func (e *Engine) Corpus() *schema.Corpus { return e.corpus }

// Parse interprets question without executing it.
func (e *Engine) Parse(ctx context.Context, question string) (engine.StructuredQuery, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return engine.StructuredQuery{}, ErrEmptyQuestion
	}
	q, err := e.parser.Parse(ctx, question)
	if err != nil {
		return engine.StructuredQuery{}, fmt.Errorf("parse question: %w", err)
	}
	return q, nil
}

// Ask parses question and answers it from the corpus.
func (e *Engine) Ask(ctx context.Context, question string) (*Answer, error) {
	start := time.Now()
	q, err := e.Parse(ctx, question)
	if err != nil {
		return nil, err
	}
	parseElapsed := time.Since(start)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := make([]engine.Option, 0, len(e.engineOpts)+1)
	opts = append(opts, engine.WithLogger(e.logger))
	opts = append(opts, e.engineOpts...)

	res, err := engine.Execute(q, e.corpus, opts...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	return &Answer{Result: res, ParseElapsed: parseElapsed}, nil
}
