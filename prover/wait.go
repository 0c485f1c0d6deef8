package prover

import (
	"context"
	"fmt"
	"time"

	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/types"
)

// WaitForFulfillment polls the market every interval until the request is
// fulfilled, failed or expired. A zero expiresAt only relies on the status
// reported by the market. A non positive interval returns
// ErrInvalidPollInterval.
func WaitForFulfillment(ctx context.Context, m Market, id string, interval time.Duration,
	expiresAt time.Time,
) (*types.Fulfillment, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPollInterval, interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		req, f, err := m.Status(ctx, id)
		switch {
		case err != nil:
			log.Warnw("failed to get proof request status, retrying", "id", id, "error", err.Error())
		case req.Status == types.RequestFulfilled && f != nil:
			return f, nil
		case req.Status == types.RequestFailed:
			return nil, fmt.Errorf("%w: %s: %s", ErrRequestFailed, id, req.Error)
		case req.Status == types.RequestExpired:
			return nil, fmt.Errorf("%w: %s", ErrRequestExpired, id)
		}
		if !expiresAt.IsZero() && time.Now().After(expiresAt) {
			return nil, fmt.Errorf("%w: %s", ErrRequestExpired, id)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
