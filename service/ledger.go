package service

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/types"
	"github.com/vocdoni/vocdoni-tally/web3"
)

// Ledger defines the operations of the voting contract used by the services.
type Ledger interface {
	CreateProposal(ctx context.Context, deadline time.Time) (common.Hash, error)
	CastVote(ctx context.Context, proposalID *big.Int, commitment common.Hash) (common.Hash, error)
	ProposalTallyState(ctx context.Context, proposalID *big.Int) (*types.ProposalTallyState, error)
	SettleTally(ctx context.Context, journal, seal []byte) (common.Hash, error)
	ResetAllProposals(ctx context.Context) (common.Hash, error)
	WaitTx(ctx context.Context, hash common.Hash, timeout time.Duration) error
	MonitorVotesCastByPolling(ctx context.Context, interval time.Duration) (<-chan *types.CastVote, error)
}

var (
	_ Ledger = (*web3.Contracts)(nil)
	_ Ledger = (*MockLedger)(nil)
)
