package storage

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/types"
)

func indexedKey(proposalID *big.Int, index uint64) []byte {
	key := make([]byte, 0, types.ProposalKeyLen+indexLen)
	key = append(key, types.ProposalKey(proposalID)...)
	return binary.BigEndian.AppendUint64(key, index)
}

// countArtifacts returns the number of keys under prefix||proposalKey.
func (s *Storage) countArtifacts(prefix []byte, proposalID *big.Int) (uint64, error) {
	var n uint64
	if err := s.iterateArtifacts(prefix, types.ProposalKey(proposalID), func(_, _ []byte) bool {
		n++
		return true
	}); err != nil {
		return 0, err
	}
	return n, nil
}

// AddVote appends a plaintext vote to the list of votes of its proposal and
// returns its position. Votes are kept in the order they were added, which
// is the order of the witness built by Witness.
func (s *Storage) AddVote(v *tally.Vote) (uint64, error) {
	if v == nil || v.ProposalId == nil {
		return 0, fmt.Errorf("vote without proposal id")
	}
	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	index, err := s.countArtifacts(votePrefix, v.ProposalId)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	if err := s.setArtifact(votePrefix, indexedKey(v.ProposalId, index), v); err != nil {
		return 0, fmt.Errorf("store vote: %w", err)
	}
	return index, nil
}

// Votes returns the votes of a proposal in cast order. It returns an empty
// list if the proposal has no votes.
func (s *Storage) Votes(proposalID *big.Int) ([]tally.Vote, error) {
	votes := []tally.Vote{}
	var decodeErr error
	if err := s.iterateArtifacts(votePrefix, types.ProposalKey(proposalID), func(_, v []byte) bool {
		var vote tally.Vote
		if err := decodeArtifact(v, &vote); err != nil {
			decodeErr = err
			return false
		}
		if vote.ProposalId == nil {
			vote.ProposalId = new(big.Int)
		}
		votes = append(votes, vote)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return votes, nil
}

// CountVotes returns the number of votes stored for a proposal.
func (s *Storage) CountVotes(proposalID *big.Int) (uint64, error) {
	return s.countArtifacts(votePrefix, proposalID)
}

// Witness builds the tally witness of a proposal from its stored votes.
func (s *Storage) Witness(proposalID *big.Int) (*tally.VoteWitness, error) {
	if proposalID == nil {
		return nil, fmt.Errorf("nil proposal id")
	}
	votes, err := s.Votes(proposalID)
	if err != nil {
		return nil, err
	}
	return &tally.VoteWitness{
		ProposalId: new(big.Int).Set(proposalID),
		Votes:      votes,
	}, nil
}
