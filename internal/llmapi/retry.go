package llmapi

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// WithRetries re-invokes next immediately after a failure, up to attempts
// calls in total. A canceled context stops the loop.
func WithRetries(next Generator, attempts int) Generator {
	if attempts < 1 {
		attempts = 1
	}
	return &retrying{next: next, max: attempts}
}

type retrying struct {
	next Generator
	max  int
}

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		last = err
		if i+1 == r.max {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", r.max).Msg("retrying")
	}
	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.max, last)
}
