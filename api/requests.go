package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/types"
)

// newProofRequest publishes a proof request on the market
// POST /requests
func (a *API) newProofRequest(w http.ResponseWriter, r *http.Request) {
	if a.market == nil {
		ErrMarketUnavailable.Write(w)
		return
	}
	req := &types.ProofRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.ImageID == (common.Hash{}) {
		ErrInvalidProofRequest.With("missing image id").Write(w)
		return
	}
	if len(req.Input) == 0 {
		ErrInvalidProofRequest.With("missing input").Write(w)
		return
	}
	id, err := a.market.Submit(r.Context(), req)
	if err != nil {
		ErrGenericInternalServerError.Withf("could not submit proof request: %v", err).Write(w)
		return
	}
	log.Infow("new proof request", "id", id, "imageId", req.ImageID.Hex(), "inputSize", len(req.Input))
	httpWriteJSON(w, &ProofRequestResponse{ID: id})
}

// proofRequest returns the status of a proof request
// GET /requests/{requestId}
func (a *API) proofRequest(w http.ResponseWriter, r *http.Request) {
	if a.market == nil {
		ErrMarketUnavailable.Write(w)
		return
	}
	id := chi.URLParam(r, RequestURLParam)
	req, f, err := a.market.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			ErrRequestNotFound.Write(w)
			return
		}
		ErrGenericInternalServerError.Withf("could not get proof request: %v", err).Write(w)
		return
	}
	httpWriteJSON(w, &ProofRequestStatus{Request: req, Fulfillment: f})
}
