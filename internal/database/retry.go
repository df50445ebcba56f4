package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// retry runs op with exponential backoff until it succeeds, maxElapsed passes
// or ctx is done.
func retry(ctx context.Context, what string, maxElapsed time.Duration, logger *zap.SugaredLogger, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxElapsed
	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warnf("%s not ready, retrying in %s: %v", what, next, err)
	})
}
