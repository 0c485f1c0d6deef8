package api

import "strings"

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// MetricsEndpoint exposes the prometheus metrics
	MetricsEndpoint = "/metrics"

	// RequestsEndpoint is the endpoint for submitting proof requests
	RequestsEndpoint = "/requests"
	// RequestEndpoint is the endpoint to get the status of a proof request
	RequestURLParam = "requestId"
	RequestEndpoint = "/requests/{" + RequestURLParam + "}"

	// ProposalURLParam is the proposal id, decimal or 0x prefixed hex
	ProposalURLParam = "proposalId"
	// ProposalVotesEndpoint is the endpoint to submit and list the votes of a proposal
	ProposalVotesEndpoint = "/proposals/{" + ProposalURLParam + "}/votes"
	// ProposalWitnessEndpoint returns the encoded tally witness of a proposal
	ProposalWitnessEndpoint = "/proposals/{" + ProposalURLParam + "}/witness"
	// ProposalTallyEndpoint returns the settled tally of a proposal
	ProposalTallyEndpoint = "/proposals/{" + ProposalURLParam + "}/tally"
	// ProposalCommitmentsEndpoint lists the commitments of a proposal read
	// from the ledger by the vote monitor
	ProposalCommitmentsEndpoint = "/proposals/{" + ProposalURLParam + "}/commitments"
)

// EndpointWithParam replaces the URL parameter of an endpoint with value.
func EndpointWithParam(endpoint, param, value string) string {
	return strings.Replace(endpoint, "{"+param+"}", value, 1)
}
