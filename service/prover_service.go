package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/types"
)

// ProverService represents a service that serves the proof requests of the
// storage queue in background.
type ProverService struct {
	worker *prover.Worker
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewProver creates a new ProverService running workers concurrent executors
// that poll the queue every interval.
func NewProver(stg *storage.Storage, executor *prover.Executor, workers int, interval time.Duration) (*ProverService, error) {
	w, err := prover.NewWorker(stg, executor, workers, interval)
	if err != nil {
		return nil, err
	}
	w.OnResult = func(_ *types.ProofRequest, err error) {
		if err != nil {
			proofRequests.WithLabelValues("failed").Inc()
			return
		}
		proofRequests.WithLabelValues("fulfilled").Inc()
	}
	return &ProverService{worker: w}, nil
}

// Start begins serving proof requests. It returns an error if the service is
// already running.
func (ps *ProverService) Start(ctx context.Context) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.cancel != nil {
		return fmt.Errorf("prover service already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	if err := ps.worker.Start(ctx); err != nil {
		cancel()
		return err
	}
	ps.cancel = cancel
	return nil
}

// Stop halts the prover service.
func (ps *ProverService) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.cancel == nil {
		return
	}
	if err := ps.worker.Stop(); err != nil {
		log.Warnw("prover service stopped", "error", err)
	}
	ps.cancel()
	ps.cancel = nil
}
