package prover

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/types"
	"golang.org/x/sync/errgroup"
)

// Worker takes proof requests from the storage queue, executes them and
// stores their fulfillments. Program errors are terminal: the request is
// marked as failed and never retried.
type Worker struct {
	stg      *storage.Storage
	executor *Executor
	interval time.Duration
	workers  int

	// OnResult, if set, is called after every processed request with the
	// execution error, nil on success.
	OnResult func(req *types.ProofRequest, err error)

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewWorker creates a worker with the given number of concurrent executors
// polling the queue every interval when it is empty.
func NewWorker(stg *storage.Storage, executor *Executor, workers int, interval time.Duration) (*Worker, error) {
	if stg == nil {
		return nil, fmt.Errorf("storage cannot be nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("executor cannot be nil")
	}
	if workers <= 0 {
		workers = 1
	}
	if interval <= 0 {
		return nil, ErrInvalidPollInterval
	}
	return &Worker{stg: stg, executor: executor, workers: workers, interval: interval}, nil
}

// Start launches the executors in background.
func (w *Worker) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return fmt.Errorf("worker already running")
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < w.workers; i++ {
		id := i
		w.group.Go(func() error {
			w.loop(ctx, id)
			return nil
		})
	}
	w.group.Go(func() error {
		w.expireLoop(ctx)
		return nil
	})
	log.Infow("prover worker started", "workers", w.workers, "address", w.executor.Address().Hex())
	return nil
}

// Stop cancels the executors and waits for them to return. It is safe to
// call Stop multiple times.
func (w *Worker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	err := w.group.Wait()
	w.cancel = nil
	w.group = nil
	log.Infow("prover worker stopped")
	return err
}

func (w *Worker) loop(ctx context.Context, id int) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		req, err := w.stg.NextProofRequest()
		if err != nil {
			if !errors.Is(err, storage.ErrNoMoreElements) {
				log.Errorw(err, "failed to get next proof request")
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			continue
		}
		w.process(req, id)
	}
}

// process executes a locked request and records its outcome.
func (w *Worker) process(req *types.ProofRequest, executorID int) {
	log.Debugw("processing proof request", "id", req.ID, "imageId", req.ImageID.Hex(), "executor", executorID)
	startTime := time.Now()
	f, err := w.executor.Execute(req.ImageID, req.Input)
	if err != nil {
		log.Warnw("proof request failed", "id", req.ID, "error", err.Error())
		if err := w.stg.MarkProofRequestFailed(req.ID, err.Error()); err != nil {
			log.Errorw(err, "failed to mark proof request as failed")
		}
	} else if err = w.stg.MarkProofRequestDone(req.ID, f); err != nil {
		log.Errorw(err, "failed to store fulfillment")
	} else {
		log.Infow("proof request fulfilled", "id", req.ID, "took", time.Since(startTime).String())
	}
	if w.OnResult != nil {
		w.OnResult(req, err)
	}
}

// expireLoop marks stale requests as expired.
func (w *Worker) expireLoop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := w.stg.ExpireProofRequests(now)
			if err != nil {
				log.Warnw("failed to expire proof requests", "error", err.Error())
				continue
			}
			if n > 0 {
				log.Infow("proof requests expired", "count", n)
			}
		}
	}
}
