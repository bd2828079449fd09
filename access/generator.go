package access

import (
	"context"
	"fmt"
	"math/rand/v2"
)

// Bounds of the access code space, both inclusive
const (
	MinCode = 10000
	MaxCode = 19999

	// CodeSpace is the number of distinct access codes
	CodeSpace = MaxCode - MinCode + 1

	DefaultMaxAttempts = 50
)

// TakenFunc reports whether candidate is held by an active access code. An
// implementation that reserves free candidates makes generation race free.
type TakenFunc func(ctx context.Context, candidate int) (bool, error)

// Generator draws access codes uniformly from [MinCode, MaxCode]
type Generator struct {
	maxAttempts int
	intn        func(n int) int
}

// NewGenerator returns a Generator that gives up after maxAttempts draws
func NewGenerator(maxAttempts int) *Generator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Generator{maxAttempts: maxAttempts, intn: rand.IntN}
}

// Generate draws until taken reports a free candidate
func (g *Generator) Generate(ctx context.Context, taken TakenFunc) (int, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		candidate := MinCode + g.intn(CodeSpace)
		isTaken, err := taken(ctx, candidate)
		if err != nil {
			return 0, err
		}
		if !isTaken {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, g.maxAttempts)
}
