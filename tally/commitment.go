package tally

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Commitment returns keccak256(abi.encode(voter, choice, proposalId)), the
// value that binds the three fields of a vote. It only fails if proposalID is
// not a valid uint256.
func Commitment(voter common.Address, choice bool, proposalID *big.Int) (common.Hash, error) {
	data, err := encodeCommitment(voter, choice, proposalID)
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.Keccak256Hash(data), nil
}

// Commitment returns the commitment of v.
func (v *Vote) Commitment() (common.Hash, error) {
	return Commitment(v.Voter, v.Choice, v.ProposalId)
}
