package client

import (
	"math/big"

	"github.com/vocdoni/vocdoni-tally/api"
	"github.com/vocdoni/vocdoni-tally/types"
)

func proposalPath(endpoint string, proposalID *big.Int) string {
	return api.EndpointWithParam(endpoint, api.ProposalURLParam, proposalID.String())
}

func (c *HTTPclient) get(out any, urlPath string) error {
	data, status, err := c.Request(HTTPGET, nil, nil, urlPath)
	if err != nil {
		return err
	}
	return DecodeResponse(data, status, out)
}

func (c *HTTPclient) post(body, out any, urlPath string) error {
	data, status, err := c.Request(HTTPPOST, body, nil, urlPath)
	if err != nil {
		return err
	}
	return DecodeResponse(data, status, out)
}

// CastVote submits a plaintext vote for a proposal.
func (c *HTTPclient) CastVote(proposalID *big.Int, vote *api.Vote) (*api.VoteResponse, error) {
	res := &api.VoteResponse{}
	if err := c.post(vote, res, proposalPath(api.ProposalVotesEndpoint, proposalID)); err != nil {
		return nil, err
	}
	return res, nil
}

// Votes lists the votes of a proposal in cast order.
func (c *HTTPclient) Votes(proposalID *big.Int) (*api.ProposalVotes, error) {
	res := &api.ProposalVotes{}
	if err := c.get(res, proposalPath(api.ProposalVotesEndpoint, proposalID)); err != nil {
		return nil, err
	}
	return res, nil
}

// Witness returns the encoded tally witness of a proposal.
func (c *HTTPclient) Witness(proposalID *big.Int) (*api.ProposalWitness, error) {
	res := &api.ProposalWitness{}
	if err := c.get(res, proposalPath(api.ProposalWitnessEndpoint, proposalID)); err != nil {
		return nil, err
	}
	return res, nil
}

// Commitments lists the commitments of a proposal observed on the ledger.
func (c *HTTPclient) Commitments(proposalID *big.Int) (*api.ProposalCommitments, error) {
	res := &api.ProposalCommitments{}
	if err := c.get(res, proposalPath(api.ProposalCommitmentsEndpoint, proposalID)); err != nil {
		return nil, err
	}
	return res, nil
}

// TallyResult returns the settled tally of a proposal.
func (c *HTTPclient) TallyResult(proposalID *big.Int) (*types.TallyResult, error) {
	res := &types.TallyResult{}
	if err := c.get(res, proposalPath(api.ProposalTallyEndpoint, proposalID)); err != nil {
		return nil, err
	}
	return res, nil
}

// SubmitProofRequest posts a proof request to the market and returns its id.
func (c *HTTPclient) SubmitProofRequest(req *types.ProofRequest) (string, error) {
	res := &api.ProofRequestResponse{}
	if err := c.post(req, res, api.RequestsEndpoint); err != nil {
		return "", err
	}
	return res.ID, nil
}

// ProofRequest returns the status of a proof request.
func (c *HTTPclient) ProofRequest(id string) (*api.ProofRequestStatus, error) {
	res := &api.ProofRequestStatus{}
	if err := c.get(res, api.EndpointWithParam(api.RequestEndpoint, api.RequestURLParam, id)); err != nil {
		return nil, err
	}
	return res, nil
}
