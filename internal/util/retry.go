package util

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Retry calls fn up to attempts times, doubling the delay between attempts
// starting from initial. It stops early when fn succeeds or the context is
// cancelled, and returns the last error otherwise.
func Retry(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	delay := initial
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		slog.Debug("Retry attempt failed, backing off", "attempt", i+1, "delay", delay, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
