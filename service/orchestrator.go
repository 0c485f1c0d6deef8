package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/types"
)

const (
	// DefaultPollInterval is how often the orchestrator asks the market for
	// the status of a proof request.
	DefaultPollInterval = 5 * time.Second
	// DefaultTxTimeout bounds the wait for a ledger transaction.
	DefaultTxTimeout = 30 * time.Second
)

// Orchestrator drives a proposal from votes to a settled tally: it casts vote
// commitments on the ledger, requests the tally proof from the market and
// settles the proven result.
type Orchestrator struct {
	stg    *storage.Storage
	ledger Ledger
	market prover.Market

	// PollInterval is the interval between proof request status checks.
	PollInterval time.Duration
	// RequestExpiry is how long a proof request stays open.
	RequestExpiry time.Duration
	// TxTimeout bounds the wait for every ledger transaction.
	TxTimeout time.Duration

	// castLock keeps the stored vote order equal to the ledger order.
	castLock sync.Mutex
}

// NewOrchestrator creates an orchestrator with the default intervals.
func NewOrchestrator(stg *storage.Storage, ledger Ledger, market prover.Market) (*Orchestrator, error) {
	if stg == nil || ledger == nil || market == nil {
		return nil, fmt.Errorf("orchestrator needs storage, ledger and market")
	}
	return &Orchestrator{
		stg:           stg,
		ledger:        ledger,
		market:        market,
		PollInterval:  DefaultPollInterval,
		RequestExpiry: prover.DefaultRequestExpiry,
		TxTimeout:     DefaultTxTimeout,
	}, nil
}

// CastVote casts the commitment of vote on the ledger and, once mined, stores
// the vote. It returns the position of the vote and the transaction hash.
func (o *Orchestrator) CastVote(ctx context.Context, vote *tally.Vote) (uint64, common.Hash, error) {
	commitment, err := vote.Commitment()
	if err != nil {
		return 0, common.Hash{}, err
	}
	o.castLock.Lock()
	defer o.castLock.Unlock()

	hash, err := o.ledger.CastVote(ctx, vote.ProposalId, commitment)
	if err != nil {
		return 0, common.Hash{}, fmt.Errorf("cast vote: %w", err)
	}
	if err := o.ledger.WaitTx(ctx, hash, o.TxTimeout); err != nil {
		return 0, hash, fmt.Errorf("wait cast vote tx: %w", err)
	}
	index, err := o.stg.AddVote(vote)
	if err != nil {
		return 0, hash, fmt.Errorf("store vote: %w", err)
	}
	votesCast.Inc()
	log.Infow("vote cast",
		"proposalId", vote.ProposalId.String(),
		"index", index,
		"commitment", commitment.Hex(),
		"tx", hash.Hex())
	return index, hash, nil
}

// Tally proves and settles the tally of a proposal. The votes stored for the
// proposal must chain to the digest recorded by the ledger, otherwise
// ErrDigestMismatch is returned before any proof is requested.
func (o *Orchestrator) Tally(ctx context.Context, proposalID *big.Int) (*types.TallyResult, error) {
	result, err := o.tally(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	talliesSettled.Inc()
	return result, nil
}

func (o *Orchestrator) tally(ctx context.Context, proposalID *big.Int) (*types.TallyResult, error) {
	if o.PollInterval <= 0 {
		return nil, fmt.Errorf("%w: %s", prover.ErrInvalidPollInterval, o.PollInterval)
	}
	witness, err := o.stg.Witness(proposalID)
	if err != nil {
		tallyFailures.WithLabelValues("witness").Inc()
		return nil, fmt.Errorf("build witness: %w", err)
	}
	expected, err := tally.Tally(witness)
	if err != nil {
		tallyFailures.WithLabelValues("witness").Inc()
		return nil, fmt.Errorf("tally witness: %w", err)
	}

	state, err := o.ledger.ProposalTallyState(ctx, proposalID)
	if err != nil {
		tallyFailures.WithLabelValues("ledger").Inc()
		return nil, fmt.Errorf("get tally state: %w", err)
	}
	log.Infow("proposal tally state",
		"proposalId", proposalID.String(),
		"digest", state.CommitmentsDigest.Hex(),
		"tallied", state.Tallied)
	if state.Tallied {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyTallied, proposalID)
	}
	if state.CommitmentsDigest != expected.CommitmentsDigest {
		tallyFailures.WithLabelValues("digest").Inc()
		return nil, fmt.Errorf("%w: ledger %s, stored votes %s",
			ErrDigestMismatch, state.CommitmentsDigest.Hex(), expected.CommitmentsDigest.Hex())
	}
	if err := o.checkObservedCommitments(proposalID, witness); err != nil {
		tallyFailures.WithLabelValues("digest").Inc()
		return nil, err
	}

	input, err := tally.EncodeWitness(witness)
	if err != nil {
		return nil, fmt.Errorf("encode witness: %w", err)
	}
	expiresAt := time.Now().Add(o.RequestExpiry)
	id, err := o.market.Submit(ctx, &types.ProofRequest{
		ImageID:   tally.ImageID,
		Input:     input,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		tallyFailures.WithLabelValues("market").Inc()
		return nil, fmt.Errorf("submit proof request: %w", err)
	}
	log.Infow("waiting for proof request", "id", id, "proposalId", proposalID.String(), "votes", len(witness.Votes))
	f, err := prover.WaitForFulfillment(ctx, o.market, id, o.PollInterval, expiresAt)
	if err != nil {
		tallyFailures.WithLabelValues("market").Inc()
		return nil, err
	}
	if f.ImageID != (common.Hash{}) && f.ImageID != tally.ImageID {
		return nil, fmt.Errorf("%w: fulfillment for image %s", prover.ErrUnknownImage, f.ImageID.Hex())
	}

	out, err := tally.DecodeOutput(f.Journal)
	if err != nil {
		tallyFailures.WithLabelValues("journal").Inc()
		return nil, fmt.Errorf("decode journal: %w", err)
	}
	if err := tally.Verify(witness, out); err != nil {
		tallyFailures.WithLabelValues("journal").Inc()
		return nil, err
	}
	log.Infow("proof request fulfilled", "id", id, "yes", out.Yes, "no", out.No)

	hash, err := o.ledger.SettleTally(ctx, f.Journal, f.Seal)
	if err != nil {
		tallyFailures.WithLabelValues("settle").Inc()
		return nil, fmt.Errorf("settle tally: %w", err)
	}
	if err := o.ledger.WaitTx(ctx, hash, o.TxTimeout); err != nil {
		tallyFailures.WithLabelValues("settle").Inc()
		return nil, fmt.Errorf("wait settle tx: %w", err)
	}

	result := &types.TallyResult{
		ProposalID:        new(types.BigInt).SetBigInt(proposalID),
		CommitmentsDigest: out.CommitmentsDigest,
		Yes:               out.Yes,
		No:                out.No,
		RequestID:         id,
		Journal:           f.Journal,
		Seal:              f.Seal,
		SettleTx:          hash,
	}
	if err := o.stg.SetTallyResult(result); err != nil {
		return nil, fmt.Errorf("store tally result: %w", err)
	}
	log.Infow("tally settled", "proposalId", proposalID.String(), "yes", out.Yes, "no", out.No, "tx", hash.Hex())
	return result, nil
}

// checkObservedCommitments compares the commitments the vote monitor read
// from the ledger with the stored votes. The monitor may lag behind, so the
// observed commitments must be a prefix of the stored ones and the digest of
// the last observed event must chain that same prefix.
func (o *Orchestrator) checkObservedCommitments(proposalID *big.Int, witness *tally.VoteWitness) error {
	observed, err := o.stg.Commitments(proposalID)
	if err != nil {
		return fmt.Errorf("load observed commitments: %w", err)
	}
	if len(observed) == 0 {
		return nil
	}
	if len(observed) > len(witness.Votes) {
		return fmt.Errorf("%w: %d commitments observed on the ledger, %d votes stored",
			ErrDigestMismatch, len(observed), len(witness.Votes))
	}
	prefix := make([]common.Hash, len(observed))
	for i, cv := range observed {
		commitment, err := witness.Votes[i].Commitment()
		if err != nil {
			return fmt.Errorf("vote %d commitment: %w", i, err)
		}
		if commitment != cv.Commitment {
			return fmt.Errorf("%w: commitment %d is %s on the ledger, %s stored",
				ErrDigestMismatch, i, cv.Commitment.Hex(), commitment.Hex())
		}
		prefix[i] = commitment
	}
	digest, err := tally.ChainDigest(proposalID, prefix)
	if err != nil {
		return err
	}
	if last := observed[len(observed)-1]; last.CommitmentsDigest != digest {
		return fmt.Errorf("%w: observed digest %s, stored votes %s",
			ErrDigestMismatch, last.CommitmentsDigest.Hex(), digest.Hex())
	}
	return nil
}
