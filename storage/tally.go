package storage

import (
	"fmt"
	"math/big"

	"github.com/vocdoni/vocdoni-tally/types"
)

// SetTallyResult stores the settled tally of a proposal, replacing any
// previous one.
func (s *Storage) SetTallyResult(r *types.TallyResult) error {
	if r == nil || r.ProposalID == nil {
		return fmt.Errorf("tally result without proposal id")
	}
	return s.setArtifact(tallyPrefix, types.ProposalKey(r.ProposalID.MathBigInt()), r)
}

// TallyResult returns the settled tally of a proposal or ErrNotFound.
func (s *Storage) TallyResult(proposalID *big.Int) (*types.TallyResult, error) {
	r := &types.TallyResult{}
	if err := s.getArtifact(tallyPrefix, types.ProposalKey(proposalID), r); err != nil {
		return nil, err
	}
	return r, nil
}
