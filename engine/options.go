package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/dushyant958/Project-Samarth-Prototype-Bharat-Fellowship/schema"
)

// ============================================================================
// ENGINE OPTIONS: Functional options for Execute() and the executors
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger          *zap.Logger
	Keywords        *schema.Keywords
	LowRainfallMM   float64 // below → low-rainfall bucket
	HighRainfallMM  float64 // above → high-rainfall bucket
	CropSampleLimit int     // distinct crops sampled when none requested
	Now             func() time.Time
}

// WithLogger routes engine logs to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithKeywords replaces the embedded column-role keyword table.
func WithKeywords(kw *schema.Keywords) Option {
	return func(c *config) {
		if kw != nil {
			c.Keywords = kw
		}
	}
}

// WithRainfallThresholds overrides the low/high bucket boundaries (mm/year).
// Ignored unless 0 < low < high.
func WithRainfallThresholds(low, high float64) Option {
	return func(c *config) {
		if low > 0 && high > low {
			c.LowRainfallMM = low
			c.HighRainfallMM = high
		}
	}
}

// WithCropSampleLimit caps how many distinct crops are sampled per location
// when the question names none.
func WithCropSampleLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.CropSampleLimit = n
		}
	}
}

// WithClock replaces time.Now for citation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.Now = now
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:          zap.NewNop(),
		Keywords:        schema.DefaultKeywords(),
		LowRainfallMM:   800,
		HighRainfallMM:  1500,
		CropSampleLimit: 10,
		Now:             time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
