package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/types"
)

// VoteMonitor represents a service that follows the vote commitments cast on
// the ledger and stores them.
type VoteMonitor struct {
	ledger   Ledger
	storage  *storage.Storage
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewVoteMonitor creates a new VoteMonitor service. If storage is nil, it
// uses a memory storage.
func NewVoteMonitor(ledger Ledger, stg *storage.Storage, interval time.Duration) *VoteMonitor {
	if stg == nil {
		stg = storage.New(nil)
	}
	return &VoteMonitor{
		ledger:   ledger,
		storage:  stg,
		interval: interval,
	}
}

// Start begins monitoring the ledger. It returns an error if the service is
// already running or if it fails to start monitoring.
func (vm *VoteMonitor) Start(ctx context.Context) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.cancel != nil {
		return fmt.Errorf("service already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	votesCh, err := vm.ledger.MonitorVotesCastByPolling(ctx, vm.interval)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to start vote monitoring: %w", err)
	}
	vm.cancel = cancel
	vm.done = make(chan struct{})
	go vm.monitorVotes(ctx, votesCh, vm.done)
	return nil
}

// Stop halts the monitoring service and waits for it to return.
func (vm *VoteMonitor) Stop() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.cancel != nil {
		vm.cancel()
		<-vm.done
		vm.cancel = nil
	}
}

func (vm *VoteMonitor) monitorVotes(ctx context.Context, votesCh <-chan *types.CastVote, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case cv, ok := <-votesCh:
			if !ok {
				return
			}
			added, err := vm.storage.AddCommitment(cv)
			if err != nil {
				log.Warnw("failed to store commitment", "proposalId", cv.ProposalID.String(), "error", err.Error())
				continue
			}
			if !added {
				log.Debugw("commitment already stored", "tx", cv.TxHash.Hex())
				continue
			}
			commitmentsObserved.Inc()
			log.Debugw("new commitment found",
				"proposalId", cv.ProposalID.String(),
				"commitment", cv.Commitment.Hex(),
				"digest", cv.CommitmentsDigest.Hex())
		}
	}
}
