package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

const (
	defaultBackoff = 100 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// Reverted reports whether err is an EVM revert rather than a transport
// failure. A revert repeats at the same block.
func Reverted(err error) bool {
	if err == nil {
		return false
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// WithRetry calls fn until it succeeds, maxRetries extra attempts are used
// up, or ctx ends. Reverts are returned at once. The wait doubles after
// every failure, up to maxBackoff.
func WithRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultBackoff
	}

	delay := baseDelay
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if attempt >= maxRetries || Reverted(err) {
			return err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
}
