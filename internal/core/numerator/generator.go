// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in the infrastructure layer.
package numerator

import (
	"context"
	"time"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g. "S", "P", "WH")
	Prefix string

	// IncludeYear adds the year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	// ResetPeriod: "year" or "never"
	ResetPeriod string
}

// DefaultConfig returns sensible defaults.
// Pattern: PREFIX-YEAR-XXXXX (e.g. S-2026-00001), counter resets yearly.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Generator generates sequential document numbers.
// Numbers are allocated with UPDATE ... RETURNING so they are gapless
// within a committed sequence.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)

	// SetNextNumber sets the next counter value (for migrations).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
