package tally

import (
	"fmt"
	"math"
	"math/big"
)

// counter holds the yes/no accumulators of one tally run.
type counter struct {
	yes uint32
	no  uint32
}

// add counts one vote, failing instead of wrapping around.
func (c *counter) add(choice bool) error {
	if choice {
		if c.yes == math.MaxUint32 {
			return fmt.Errorf("%w: yes count exceeds %d", ErrCountOverflow, uint32(math.MaxUint32))
		}
		c.yes++
		return nil
	}
	if c.no == math.MaxUint32 {
		return fmt.Errorf("%w: no count exceeds %d", ErrCountOverflow, uint32(math.MaxUint32))
	}
	c.no++
	return nil
}

// Tally validates the witness, counts its votes and chains their commitments
// in witness order. It either returns the complete public output or an error
// wrapping ErrInputDecode, ErrProposalMismatch or ErrCountOverflow; a partial
// output is never returned.
//
// Tally does not check voter eligibility nor duplicated voters: the witness is
// trusted to be the authoritative list of votes.
func Tally(w *VoteWitness) (*VotePublicOutput, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil witness", ErrInputDecode)
	}
	chain, err := NewChain(w.ProposalId)
	if err != nil {
		return nil, err
	}
	var count counter
	for i := range w.Votes {
		v := &w.Votes[i]
		if v.ProposalId == nil || v.ProposalId.Cmp(w.ProposalId) != 0 {
			return nil, fmt.Errorf("%w: vote %d is for proposal %v, witness is for %v",
				ErrProposalMismatch, i, v.ProposalId, w.ProposalId)
		}
		if err := count.add(v.Choice); err != nil {
			return nil, fmt.Errorf("vote %d: %w", i, err)
		}
		commitment, err := v.Commitment()
		if err != nil {
			return nil, fmt.Errorf("vote %d: %w", i, err)
		}
		chain.Fold(commitment)
	}
	return &VotePublicOutput{
		ProposalId:        new(big.Int).Set(w.ProposalId),
		CommitmentsDigest: chain.Digest(),
		Yes:               count.yes,
		No:                count.no,
	}, nil
}

// Verify recomputes the tally of w and checks that it matches o.
func Verify(w *VoteWitness, o *VotePublicOutput) error {
	if o == nil {
		return fmt.Errorf("%w: nil output", ErrOutputMismatch)
	}
	expected, err := Tally(w)
	if err != nil {
		return err
	}
	switch {
	case o.ProposalId == nil || expected.ProposalId.Cmp(o.ProposalId) != 0:
		return fmt.Errorf("%w: proposal id %v, expected %v", ErrOutputMismatch, o.ProposalId, expected.ProposalId)
	case expected.CommitmentsDigest != o.CommitmentsDigest:
		return fmt.Errorf("%w: commitments digest %s, expected %s", ErrOutputMismatch, o.CommitmentsDigest, expected.CommitmentsDigest)
	case expected.Yes != o.Yes:
		return fmt.Errorf("%w: yes count %d, expected %d", ErrOutputMismatch, o.Yes, expected.Yes)
	case expected.No != o.No:
		return fmt.Errorf("%w: no count %d, expected %d", ErrOutputMismatch, o.No, expected.No)
	}
	return nil
}
