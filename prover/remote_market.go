package prover

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vocdoni/vocdoni-tally/api/client"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/types"
)

// RemoteMarket is a Market served by another node through its HTTP API.
type RemoteMarket struct {
	cli *client.HTTPclient
}

var _ Market = (*RemoteMarket)(nil)

// NewRemoteMarket connects to the API of the node at host.
func NewRemoteMarket(host string) (*RemoteMarket, error) {
	cli, err := client.New(host)
	if err != nil {
		return nil, fmt.Errorf("connect to market %s: %w", host, err)
	}
	return &RemoteMarket{cli: cli}, nil
}

// Submit implements Market.
func (m *RemoteMarket) Submit(_ context.Context, req *types.ProofRequest) (string, error) {
	id, err := m.cli.SubmitProofRequest(req)
	if err != nil {
		return "", fmt.Errorf("submit proof request: %w", err)
	}
	return id, nil
}

// Status implements Market. An unknown request is reported as
// storage.ErrNotFound.
func (m *RemoteMarket) Status(_ context.Context, id string) (*types.ProofRequest, *types.Fulfillment, error) {
	res, err := m.cli.ProofRequest(id)
	if apiErr := (*client.Error)(nil); errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get proof request status: %w", err)
	}
	if res.Request == nil {
		return nil, nil, fmt.Errorf("empty proof request status")
	}
	return res.Request, res.Fulfillment, nil
}
