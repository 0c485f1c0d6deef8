package prover

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/types"
)

// DefaultRequestExpiry is how long a request waits for a prover unless the
// request sets its own expiry.
const DefaultRequestExpiry = 10 * time.Minute

// Market is where proof requests are submitted and their status is followed.
type Market interface {
	// Submit publishes the request and returns its id.
	Submit(ctx context.Context, req *types.ProofRequest) (string, error)
	// Status returns the request and, once fulfilled, its fulfillment.
	Status(ctx context.Context, id string) (*types.ProofRequest, *types.Fulfillment, error)
}

// QueueMarket is a Market backed by the storage proof request queue.
type QueueMarket struct {
	stg    *storage.Storage
	expiry time.Duration
}

var _ Market = (*QueueMarket)(nil)

// NewQueueMarket returns a market on the storage queue. Requests without an
// expiry get now+expiry; a zero expiry means DefaultRequestExpiry.
func NewQueueMarket(stg *storage.Storage, expiry time.Duration) *QueueMarket {
	if expiry <= 0 {
		expiry = DefaultRequestExpiry
	}
	return &QueueMarket{stg: stg, expiry: expiry}
}

// Submit implements Market. A request id is generated when missing.
func (m *QueueMarket) Submit(_ context.Context, req *types.ProofRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("nil proof request")
	}
	r := *req
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	now := time.Now()
	r.CreatedAt = now
	if r.ExpiresAt.IsZero() {
		r.ExpiresAt = now.Add(m.expiry)
	}
	if err := m.stg.PushProofRequest(&r); err != nil {
		return "", fmt.Errorf("push proof request: %w", err)
	}
	return r.ID, nil
}

// Status implements Market. A request past its expiry is reported as
// expired even if no worker has marked it yet.
func (m *QueueMarket) Status(_ context.Context, id string) (*types.ProofRequest, *types.Fulfillment, error) {
	req, err := m.stg.ProofRequest(id)
	if err != nil {
		return nil, nil, err
	}
	if req.Status == types.RequestFulfilled {
		f, err := m.stg.Fulfillment(id)
		if err != nil {
			return nil, nil, fmt.Errorf("get fulfillment: %w", err)
		}
		return req, f, nil
	}
	if !req.Status.Final() && req.Expired(time.Now()) {
		req.Status = types.RequestExpired
	}
	return req, nil, nil
}
