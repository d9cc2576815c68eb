package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const connectAttempts = 8

// WaitFor calls check until it succeeds, backing off exponentially between
// attempts. It gives up after a fixed number of attempts or when ctx ends.
func WaitFor(ctx context.Context, name string, logger *zap.Logger, check func(context.Context) error) error {
	return waitFor(ctx, name, logger, check, time.Second)
}

func waitFor(ctx context.Context, name string, logger *zap.Logger, check func(context.Context) error, initial time.Duration) error {
	boff := backoff.NewExponentialBackOff()
	boff.InitialInterval = initial

	attempt := 0
	op := func() error {
		attempt++
		return check(ctx)
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("waiting for dependency",
			zap.String("name", name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(boff, connectAttempts-1), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%s unavailable after %d attempts: %w", name, attempt, err)
	}
	logger.Info("dependency ready", zap.String("name", name))
	return nil
}
