package web3

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/types"
)

// ErrTxReverted is returned by WaitTx when the transaction was mined but
// reverted.
var ErrTxReverted = errors.New("transaction reverted")

// txPollInterval is how often WaitTx asks for the receipt.
const txPollInterval = time.Second

// CreateProposal creates a new proposal open until deadline.
func (c *Contracts) CreateProposal(ctx context.Context, deadline time.Time) (common.Hash, error) {
	return c.transact(ctx, methodCreateProposal, big.NewInt(deadline.Unix()))
}

// CastVote records a vote commitment for a proposal.
func (c *Contracts) CastVote(ctx context.Context, proposalID *big.Int, commitment common.Hash) (common.Hash, error) {
	return c.transact(ctx, methodCastVote, proposalID, [32]byte(commitment))
}

// SettleTally submits a journal and its seal. The contract checks the seal,
// compares the journal digest with its own and records the counts.
func (c *Contracts) SettleTally(ctx context.Context, journal, seal []byte) (common.Hash, error) {
	return c.transact(ctx, methodSettleTally, journal, seal)
}

// ResetAllProposals clears every proposal of the contract.
func (c *Contracts) ResetAllProposals(ctx context.Context) (common.Hash, error) {
	return c.transact(ctx, methodResetAllProposals)
}

// ProposalTallyState returns the tally state of a proposal.
func (c *Contracts) ProposalTallyState(ctx context.Context, proposalID *big.Int) (*types.ProposalTallyState, error) {
	ctx, cancel := context.WithTimeout(ctx, web3QueryTimeout)
	defer cancel()
	var out []any
	if err := c.voting.Call(&bind.CallOpts{Context: ctx}, &out, methodTallyState, proposalID); err != nil {
		return nil, fmt.Errorf("failed to get proposal tally state: %w", err)
	}
	state, err := unpackTallyState(out)
	if err != nil {
		return nil, err
	}
	state.ProposalID = new(types.BigInt).SetBigInt(proposalID)
	return state, nil
}

func unpackTallyState(out []any) (*types.ProposalTallyState, error) {
	if len(out) != 4 {
		return nil, fmt.Errorf("unexpected tally state length %d", len(out))
	}
	digest, ok1 := out[0].([32]byte)
	tallied, ok2 := out[1].(bool)
	yes, ok3 := out[2].(uint32)
	no, ok4 := out[3].(uint32)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("unexpected tally state types %T %T %T %T", out[0], out[1], out[2], out[3])
	}
	return &types.ProposalTallyState{
		CommitmentsDigest: digest,
		Tallied:           tallied,
		YesCount:          yes,
		NoCount:           no,
	}, nil
}

// WaitTx waits until the transaction is mined or the timeout expires. It
// returns ErrTxReverted if the transaction failed.
func (c *Contracts) WaitTx(ctx context.Context, hash common.Hash, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(txPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.cli.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return fmt.Errorf("%w: %s", ErrTxReverted, hash.Hex())
			}
			log.Debugw("transaction mined", "hash", hash.Hex(), "block", receipt.BlockNumber.Uint64())
			return nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			log.Debugw("failed to get receipt, retrying", "hash", hash.Hex(), "error", err.Error())
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for tx %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}

// MonitorVotesCastByPolling reads the VoteCast events of the voting contract
// every interval and sends them on the returned channel in ledger order. The
// channel is closed when ctx is done.
func (c *Contracts) MonitorVotesCastByPolling(ctx context.Context, interval time.Duration) (<-chan *types.CastVote, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %s", interval)
	}
	ch := make(chan *types.CastVote)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Warnw("exiting monitor votes cast")
				return
			case <-ticker.C:
				votes, err := c.pollVotesCast(ctx)
				if err != nil {
					log.Warnw("failed to filter votes cast, retrying", "error", err.Error())
					continue
				}
				for _, v := range votes {
					select {
					case ch <- v:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch, nil
}

func (c *Contracts) pollVotesCast(ctx context.Context) ([]*types.CastVote, error) {
	ctx, cancel := context.WithTimeout(ctx, web3QueryTimeout)
	defer cancel()
	head, err := c.cli.BlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	if head < c.lastWatchBlock {
		return nil, nil
	}
	logs, err := c.cli.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(c.lastWatchBlock),
		ToBlock:   new(big.Int).SetUint64(head),
		Addresses: []common.Address{c.Addrs.Voting},
		Topics:    [][]common.Hash{{VotingABI.Events[eventVoteCast].ID}},
	})
	if err != nil {
		return nil, err
	}
	votes := make([]*types.CastVote, 0, len(logs))
	for i := range logs {
		v, err := parseVoteCast(&logs[i])
		if err != nil {
			log.Warnw("skipping invalid VoteCast log", "tx", logs[i].TxHash.Hex(), "error", err.Error())
			continue
		}
		votes = append(votes, v)
	}
	c.lastWatchBlock = head + 1
	return votes, nil
}

// parseVoteCast decodes a VoteCast log.
func parseVoteCast(l *ethtypes.Log) (*types.CastVote, error) {
	ev := VotingABI.Events[eventVoteCast]
	if len(l.Topics) != 2 || l.Topics[0] != ev.ID {
		return nil, fmt.Errorf("not a VoteCast log")
	}
	values, err := ev.Inputs.NonIndexed().Unpack(l.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack VoteCast data: %w", err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("unexpected VoteCast values %d", len(values))
	}
	commitment, ok1 := values[0].([32]byte)
	digest, ok2 := values[1].([32]byte)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("unexpected VoteCast value types")
	}
	return &types.CastVote{
		ProposalID:        new(types.BigInt).SetBigInt(l.Topics[1].Big()),
		Commitment:        commitment,
		CommitmentsDigest: digest,
		BlockNumber:       l.BlockNumber,
		TxHash:            l.TxHash,
	}, nil
}
