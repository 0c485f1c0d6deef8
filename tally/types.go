package tally

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Vote is a single ballot for a proposal. Field order matches the ABI tuple
// (uint256 proposalId, address voter, bool choice).
type Vote struct {
	ProposalId *big.Int       `abi:"proposalId" json:"proposalId" cbor:"0,keyasint,omitempty"`
	Voter      common.Address `abi:"voter"      json:"voter"      cbor:"1,keyasint,omitempty"`
	Choice     bool           `abi:"choice"     json:"choice"     cbor:"2,keyasint,omitempty"`
}

// VoteWitness is the private input of a tally run. The order of Votes is part
// of the input: it determines the commitments digest.
type VoteWitness struct {
	ProposalId *big.Int `abi:"proposalId" json:"proposalId"`
	Votes      []Vote   `abi:"votes"      json:"votes"`
}

// VotePublicOutput is the public result of a tally run, written to the
// journal.
type VotePublicOutput struct {
	ProposalId        *big.Int    `abi:"proposalId"        json:"proposalId"`
	CommitmentsDigest common.Hash `abi:"commitmentsDigest" json:"commitmentsDigest"`
	Yes               uint32      `abi:"yes"               json:"yes"`
	No                uint32      `abi:"no"                json:"no"`
}

// Total returns the number of votes counted.
func (o *VotePublicOutput) Total() uint64 {
	return uint64(o.Yes) + uint64(o.No)
}
