package apiclient

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Retry runs fn up to attempts times, waiting delay*attempt between tries.
// Client errors are returned at once since repeating them cannot succeed.
func Retry[T any](ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}
	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err = fn(ctx)
		if err == nil || IsClientError(err) || attempt == attempts {
			return result, err
		}
		log.Warn().Err(err).Int("attempt", attempt).Int("max_attempts", attempts).Msg("Retrying backend call")

		timer := time.NewTimer(delay * time.Duration(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		case <-timer.C:
		}
	}
	return result, err
}
