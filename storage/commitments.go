package storage

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/vocdoni-tally/types"
)

// AddCommitment appends a commitment observed on the ledger to the list of
// its proposal. Commitments already stored for the same transaction are
// ignored, so the monitor can safely re-read a block range. It reports
// whether the commitment was added.
func (s *Storage) AddCommitment(cv *types.CastVote) (bool, error) {
	if cv == nil || cv.ProposalID == nil {
		return false, fmt.Errorf("commitment without proposal id")
	}
	pid := cv.ProposalID.MathBigInt()
	txKey := append(cv.TxHash.Bytes(), cv.Commitment.Bytes()...)

	s.globalLock.Lock()
	defer s.globalLock.Unlock()

	if s.isReserved(commitmentTxPrefix, txKey) {
		return false, nil
	}
	index, err := s.countArtifacts(commitmentPrefix, pid)
	if err != nil {
		return false, fmt.Errorf("count commitments: %w", err)
	}
	if err := s.setArtifact(commitmentPrefix, indexedKey(pid, index), cv); err != nil {
		return false, fmt.Errorf("store commitment: %w", err)
	}
	if err := s.setReservation(commitmentTxPrefix, txKey); err != nil {
		return false, fmt.Errorf("store commitment marker: %w", err)
	}
	return true, nil
}

// Commitments returns the ledger commitments of a proposal in the order they
// were observed.
func (s *Storage) Commitments(proposalID *big.Int) ([]*types.CastVote, error) {
	list := []*types.CastVote{}
	var decodeErr error
	if err := s.iterateArtifacts(commitmentPrefix, types.ProposalKey(proposalID), func(_, v []byte) bool {
		cv := &types.CastVote{}
		if err := decodeArtifact(v, cv); err != nil {
			decodeErr = err
			return false
		}
		list = append(list, cv)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate commitments: %w", err)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return list, nil
}
