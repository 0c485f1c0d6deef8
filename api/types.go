package api

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/types"
)

// ProofRequestResponse is returned when a proof request is accepted.
type ProofRequestResponse struct {
	ID string `json:"id"`
}

// ProofRequestStatus is the status of a proof request and, once fulfilled,
// its fulfillment.
type ProofRequestStatus struct {
	Request     *types.ProofRequest `json:"request"`
	Fulfillment *types.Fulfillment  `json:"fulfillment,omitempty"`
}

// Vote is a plaintext vote submitted for a proposal.
type Vote struct {
	Voter  common.Address `json:"voter"`
	Choice bool           `json:"choice"`
}

// ToTallyVote returns the tally vote for the given proposal.
func (v *Vote) ToTallyVote(proposalID *big.Int) *tally.Vote {
	return &tally.Vote{
		ProposalId: new(big.Int).Set(proposalID),
		Voter:      v.Voter,
		Choice:     v.Choice,
	}
}

// VoteResponse is returned when a vote is accepted.
type VoteResponse struct {
	Index      uint64      `json:"index"`
	Commitment common.Hash `json:"commitment"`
	TxHash     common.Hash `json:"txHash,omitempty"`
}

// ProposalVotes lists the votes of a proposal in cast order.
type ProposalVotes struct {
	ProposalID *types.BigInt `json:"proposalId"`
	Votes      []Vote        `json:"votes"`
}

// ProposalCommitments lists the commitments of a proposal observed on the
// ledger, in ledger order.
type ProposalCommitments struct {
	ProposalID  *types.BigInt     `json:"proposalId"`
	Commitments []*types.CastVote `json:"commitments"`
}

// ProposalWitness is the encoded tally witness of a proposal together with
// the digest its votes chain to.
type ProposalWitness struct {
	ProposalID        *types.BigInt  `json:"proposalId"`
	Votes             int            `json:"votes"`
	CommitmentsDigest common.Hash    `json:"commitmentsDigest"`
	Witness           types.HexBytes `json:"witness"`
	ImageID           common.Hash    `json:"imageId"`
}
