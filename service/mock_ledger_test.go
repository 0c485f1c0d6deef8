package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/tally"
)

func TestMockLedgerDigest(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	ledger := NewMockLedger(common.Address{})

	_, err := ledger.CastVote(ctx, big.NewInt(0), common.Hash{1})
	c.Assert(err, qt.ErrorIs, ErrProposalNotFound)

	hash, err := ledger.CreateProposal(ctx, time.Now().Add(time.Hour))
	c.Assert(err, qt.IsNil)
	c.Assert(ledger.WaitTx(ctx, hash, time.Second), qt.IsNil)
	c.Assert(ledger.WaitTx(ctx, common.Hash{9}, time.Second), qt.IsNotNil)

	state, err := ledger.ProposalTallyState(ctx, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	root, err := tally.ChainDigest(big.NewInt(0), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(state.CommitmentsDigest, qt.Equals, root)
	c.Assert(state.Tallied, qt.IsFalse)

	for _, v := range demoVotes(0) {
		commitment, err := v.Commitment()
		c.Assert(err, qt.IsNil)
		_, err = ledger.CastVote(ctx, v.ProposalId, commitment)
		c.Assert(err, qt.IsNil)
	}
	state, err = ledger.ProposalTallyState(ctx, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(state.CommitmentsDigest, qt.Equals,
		common.HexToHash("0xa06e8520da8ee4d98d26d0c02a0eb4647ce171638453372a67848ba0fb1acc7a"))

	_, err = ledger.ResetAllProposals(ctx)
	c.Assert(err, qt.IsNil)
	_, err = ledger.ProposalTallyState(ctx, big.NewInt(0))
	c.Assert(err, qt.ErrorIs, ErrProposalNotFound)
}

func TestMockLedgerDeadline(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	ledger := NewMockLedger(common.Address{})
	_, err := ledger.CreateProposal(ctx, time.Now().Add(-time.Second))
	c.Assert(err, qt.IsNil)
	_, err = ledger.CastVote(ctx, big.NewInt(0), common.Hash{1})
	c.Assert(err, qt.ErrorIs, ErrProposalClosed)
}

func TestMockLedgerSettle(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	executor := testExecutor(t)
	ledger := NewMockLedger(executor.Address())
	_, err := ledger.CreateProposal(ctx, time.Time{})
	c.Assert(err, qt.IsNil)

	votes := demoVotes(0)
	for _, v := range votes[:2] {
		commitment, err := v.Commitment()
		c.Assert(err, qt.IsNil)
		_, err = ledger.CastVote(ctx, v.ProposalId, commitment)
		c.Assert(err, qt.IsNil)
	}

	witness := &tally.VoteWitness{ProposalId: big.NewInt(0)}
	for _, v := range votes {
		witness.Votes = append(witness.Votes, *v)
	}
	input, err := tally.EncodeWitness(witness)
	c.Assert(err, qt.IsNil)

	// three votes proven, two cast
	f, err := executor.Execute(tally.ImageID, input)
	c.Assert(err, qt.IsNil)
	_, err = ledger.SettleTally(ctx, f.Journal, f.Seal)
	c.Assert(err, qt.ErrorIs, ErrDigestMismatch)

	witness.Votes = witness.Votes[:2]
	input, err = tally.EncodeWitness(witness)
	c.Assert(err, qt.IsNil)
	f, err = executor.Execute(tally.ImageID, input)
	c.Assert(err, qt.IsNil)

	// a seal from an untrusted executor is rejected
	other := testExecutor(t)
	forged, err := other.Execute(tally.ImageID, input)
	c.Assert(err, qt.IsNil)
	_, err = ledger.SettleTally(ctx, forged.Journal, forged.Seal)
	c.Assert(err, qt.ErrorIs, prover.ErrInvalidSeal)

	_, err = ledger.SettleTally(ctx, f.Journal, f.Seal)
	c.Assert(err, qt.IsNil)
	state, err := ledger.ProposalTallyState(ctx, big.NewInt(0))
	c.Assert(err, qt.IsNil)
	c.Assert(state.Tallied, qt.IsTrue)
	c.Assert(state.YesCount, qt.Equals, uint32(1))
	c.Assert(state.NoCount, qt.Equals, uint32(1))

	_, err = ledger.SettleTally(ctx, f.Journal, f.Seal)
	c.Assert(err, qt.ErrorIs, ErrAlreadyTallied)
	_, err = ledger.CastVote(ctx, big.NewInt(0), common.Hash{1})
	c.Assert(err, qt.ErrorIs, ErrAlreadyTallied)
}
