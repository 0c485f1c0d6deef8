package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/types"
)

type mockProposal struct {
	deadline time.Time
	chain    *tally.Chain
	tallied  bool
	yes, no  uint32
}

// MockLedger implements the voting contract in memory. Proposal ids are
// assigned in creation order starting at zero, casting a vote folds its
// commitment into the proposal digest and settling checks the seal against
// the trusted executor address and the journal digest against the recorded
// one.
type MockLedger struct {
	mu        sync.Mutex
	trusted   common.Address
	imageID   common.Hash
	proposals []*mockProposal
	events    []*types.CastVote
	txs       map[common.Hash]bool
	nonce     uint64
	block     uint64
}

// NewMockLedger creates a mock ledger accepting seals of the tally program
// signed by trusted.
func NewMockLedger(trusted common.Address) *MockLedger {
	return &MockLedger{
		trusted: trusted,
		imageID: tally.ImageID,
		txs:     make(map[common.Hash]bool),
	}
}

// newTx returns a new transaction hash and mines it. The caller must hold mu.
func (m *MockLedger) newTx(ok bool) common.Hash {
	m.nonce++
	m.block++
	hash := ethcrypto.Keccak256Hash(binary.BigEndian.AppendUint64([]byte("mock-tx"), m.nonce))
	m.txs[hash] = ok
	return hash
}

func (m *MockLedger) proposal(proposalID *big.Int) (*mockProposal, error) {
	if proposalID == nil || !proposalID.IsUint64() || proposalID.Uint64() >= uint64(len(m.proposals)) {
		return nil, fmt.Errorf("%w: %v", ErrProposalNotFound, proposalID)
	}
	return m.proposals[proposalID.Uint64()], nil
}

// CreateProposal implements Ledger. The new proposal id is the number of
// proposals created before it.
func (m *MockLedger) CreateProposal(_ context.Context, deadline time.Time) (common.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid := big.NewInt(int64(len(m.proposals)))
	chain, err := tally.NewChain(pid)
	if err != nil {
		return common.Hash{}, err
	}
	m.proposals = append(m.proposals, &mockProposal{deadline: deadline, chain: chain})
	return m.newTx(true), nil
}

// CastVote implements Ledger.
func (m *MockLedger) CastVote(_ context.Context, proposalID *big.Int, commitment common.Hash) (common.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.proposal(proposalID)
	if err != nil {
		return common.Hash{}, err
	}
	if p.tallied {
		return common.Hash{}, ErrAlreadyTallied
	}
	if !p.deadline.IsZero() && time.Now().After(p.deadline) {
		return common.Hash{}, ErrProposalClosed
	}
	p.chain.Fold(commitment)
	hash := m.newTx(true)
	m.events = append(m.events, &types.CastVote{
		ProposalID:        new(types.BigInt).SetBigInt(proposalID),
		Commitment:        commitment,
		CommitmentsDigest: p.chain.Digest(),
		BlockNumber:       m.block,
		TxHash:            hash,
	})
	return hash, nil
}

// ProposalTallyState implements Ledger.
func (m *MockLedger) ProposalTallyState(_ context.Context, proposalID *big.Int) (*types.ProposalTallyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.proposal(proposalID)
	if err != nil {
		return nil, err
	}
	return &types.ProposalTallyState{
		ProposalID:        new(types.BigInt).SetBigInt(proposalID),
		CommitmentsDigest: p.chain.Digest(),
		Tallied:           p.tallied,
		YesCount:          p.yes,
		NoCount:           p.no,
	}, nil
}

// SettleTally implements Ledger.
func (m *MockLedger) SettleTally(_ context.Context, journal, seal []byte) (common.Hash, error) {
	if err := prover.VerifySeal(seal, m.imageID, journal, m.trusted); err != nil {
		return common.Hash{}, err
	}
	out, err := tally.DecodeOutput(journal)
	if err != nil {
		return common.Hash{}, fmt.Errorf("decode journal: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.proposal(out.ProposalId)
	if err != nil {
		return common.Hash{}, err
	}
	if p.tallied {
		return common.Hash{}, ErrAlreadyTallied
	}
	if digest := p.chain.Digest(); digest != out.CommitmentsDigest {
		return common.Hash{}, fmt.Errorf("%w: ledger %s, journal %s",
			ErrDigestMismatch, digest.Hex(), out.CommitmentsDigest.Hex())
	}
	p.tallied = true
	p.yes, p.no = out.Yes, out.No
	return m.newTx(true), nil
}

// ResetAllProposals implements Ledger.
func (m *MockLedger) ResetAllProposals(_ context.Context) (common.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals = nil
	m.events = nil
	return m.newTx(true), nil
}

// WaitTx implements Ledger. Transactions are mined when they are sent.
func (m *MockLedger) WaitTx(_ context.Context, hash common.Hash, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[hash]; !ok {
		return fmt.Errorf("unknown transaction %s", hash.Hex())
	}
	return nil
}

// MonitorVotesCastByPolling implements Ledger. Every event is delivered once
// per monitor.
func (m *MockLedger) MonitorVotesCastByPolling(ctx context.Context, interval time.Duration) (<-chan *types.CastVote, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", prover.ErrInvalidPollInterval, interval)
	}
	ch := make(chan *types.CastVote)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		next := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.mu.Lock()
				if next > len(m.events) {
					// the ledger was reset
					next = 0
				}
				pending := append([]*types.CastVote{}, m.events[next:]...)
				next = len(m.events)
				m.mu.Unlock()
				for _, ev := range pending {
					select {
					case ch <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch, nil
}
