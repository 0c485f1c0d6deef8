package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RequestStatus is the lifecycle state of a proof request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestLocked    RequestStatus = "locked"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestFailed    RequestStatus = "failed"
	RequestExpired   RequestStatus = "expired"
)

// Final reports whether no further transition is possible from s.
func (s RequestStatus) Final() bool {
	return s == RequestFulfilled || s == RequestFailed || s == RequestExpired
}

// ProofRequest asks a prover to execute the program identified by ImageID on
// Input and return the journal together with a seal.
type ProofRequest struct {
	ID         string        `json:"id"                   cbor:"0,keyasint,omitempty"`
	ImageID    common.Hash   `json:"imageId"              cbor:"1,keyasint,omitempty"`
	ProgramURL string        `json:"programUrl,omitempty" cbor:"2,keyasint,omitempty"`
	Input      HexBytes      `json:"input"                cbor:"3,keyasint,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"            cbor:"4,keyasint,omitempty"`
	ExpiresAt  time.Time     `json:"expiresAt"            cbor:"5,keyasint,omitempty"`
	Status     RequestStatus `json:"status"               cbor:"6,keyasint,omitempty"`
	Error      string        `json:"error,omitempty"      cbor:"7,keyasint,omitempty"`
}

// Expired reports whether the request expiry is before now.
func (r *ProofRequest) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// Fulfillment is the response of a prover to a ProofRequest.
type Fulfillment struct {
	RequestID string      `json:"requestId" cbor:"0,keyasint,omitempty"`
	ImageID   common.Hash `json:"imageId"   cbor:"1,keyasint,omitempty"`
	Journal   HexBytes    `json:"journal"   cbor:"2,keyasint,omitempty"`
	Seal      HexBytes    `json:"seal"      cbor:"3,keyasint,omitempty"`
}
