package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/types"
)

// newVote stores a vote for a proposal and, if a ledger is configured, casts
// its commitment
// POST /proposals/{proposalId}/votes
func (a *API) newVote(w http.ResponseWriter, r *http.Request) {
	pid, err := proposalIDParam(r)
	if err != nil {
		ErrMalformedProposalID.WithErr(err).Write(w)
		return
	}
	v := &Vote{}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	vote := v.ToTallyVote(pid)
	commitment, err := vote.Commitment()
	if err != nil {
		ErrInvalidVote.WithErr(err).Write(w)
		return
	}
	res := &VoteResponse{Commitment: commitment}
	if a.voter != nil {
		res.Index, res.TxHash, err = a.voter.CastVote(r.Context(), vote)
	} else {
		res.Index, err = a.storage.AddVote(vote)
	}
	if err != nil {
		ErrGenericInternalServerError.Withf("could not cast vote: %v", err).Write(w)
		return
	}
	log.Infow("new vote", "proposalId", pid.String(), "index", res.Index, "commitment", commitment.Hex())
	httpWriteJSON(w, res)
}

// votes lists the votes of a proposal in cast order
// GET /proposals/{proposalId}/votes
func (a *API) votes(w http.ResponseWriter, r *http.Request) {
	pid, err := proposalIDParam(r)
	if err != nil {
		ErrMalformedProposalID.WithErr(err).Write(w)
		return
	}
	votes, err := a.storage.Votes(pid)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not get votes: %v", err).Write(w)
		return
	}
	res := &ProposalVotes{ProposalID: new(types.BigInt).SetBigInt(pid), Votes: make([]Vote, 0, len(votes))}
	for _, v := range votes {
		res.Votes = append(res.Votes, Vote{Voter: v.Voter, Choice: v.Choice})
	}
	httpWriteJSON(w, res)
}

// witness returns the encoded tally witness of a proposal
// GET /proposals/{proposalId}/witness
func (a *API) witness(w http.ResponseWriter, r *http.Request) {
	pid, err := proposalIDParam(r)
	if err != nil {
		ErrMalformedProposalID.WithErr(err).Write(w)
		return
	}
	witness, err := a.storage.Witness(pid)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not build witness: %v", err).Write(w)
		return
	}
	encoded, err := tally.EncodeWitness(witness)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not encode witness: %v", err).Write(w)
		return
	}
	commitments := make([]common.Hash, 0, len(witness.Votes))
	for i := range witness.Votes {
		c, err := witness.Votes[i].Commitment()
		if err != nil {
			ErrGenericInternalServerError.Withf("could not compute commitment: %v", err).Write(w)
			return
		}
		commitments = append(commitments, c)
	}
	digest, err := tally.ChainDigest(pid, commitments)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not compute digest: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, &ProposalWitness{
		ProposalID:        new(types.BigInt).SetBigInt(pid),
		Votes:             len(witness.Votes),
		CommitmentsDigest: digest,
		Witness:           encoded,
		ImageID:           tally.ImageID,
	})
}

// tallyResult returns the settled tally of a proposal
// GET /proposals/{proposalId}/tally
func (a *API) tallyResult(w http.ResponseWriter, r *http.Request) {
	pid, err := proposalIDParam(r)
	if err != nil {
		ErrMalformedProposalID.WithErr(err).Write(w)
		return
	}
	res, err := a.storage.TallyResult(pid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrProposalNotTallied.Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not get tally result: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, res)
}

// commitments lists the commitments of a proposal observed on the ledger
// GET /proposals/{proposalId}/commitments
func (a *API) commitments(w http.ResponseWriter, r *http.Request) {
	pid, err := proposalIDParam(r)
	if err != nil {
		ErrMalformedProposalID.WithErr(err).Write(w)
		return
	}
	list, err := a.storage.Commitments(pid)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not get commitments: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, &ProposalCommitments{ProposalID: new(types.BigInt).SetBigInt(pid), Commitments: list})
}
