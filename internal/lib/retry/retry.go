// Package retry повторяет операции, проигравшие гонку оптимистичной блокировки.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

const jitterFactor = 0.3

// Func — повторяемая операция.
type Func func(ctx context.Context) error

// WithBackoff выполняет fn до attempts раз, повторяя только ошибки, для которых
// retryable возвращает true. Задержка между попытками растёт экспоненциально
// от baseDelay с 30% джиттером. Последняя ошибка возвращается как есть.
func WithBackoff(ctx context.Context, attempts int, baseDelay time.Duration, retryable func(error) bool, fn Func) error {
	const op = "retry.WithBackoff"
	if attempts < 1 {
		return fmt.Errorf("%s: attempts must be positive, got %d", op, attempts)
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay(baseDelay, attempt)); err != nil {
				return fmt.Errorf("%s: %w", op, errors.Join(err, lastErr))
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func delay(base time.Duration, attempt int) time.Duration {
	d := base * time.Duration(1<<(attempt-1))
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(float64(d) * jitterFactor * (rand.Float64()*2 - 1))
	return d + jitter
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
