//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// API errors. Codes 4xxxx are client errors, codes 5xxxx are server errors.
// The code is part of the API: codes are never renumbered or reused, new
// errors take the next free code in their range. Code and HTTP status are
// independent.
var (
	ErrResourceNotFound    = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody       = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedProposalID = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed proposal ID")}
	ErrProposalNotTallied  = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("proposal not tallied")}
	ErrRequestNotFound     = Error{Code: 40008, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("proof request not found")}
	ErrInvalidProofRequest = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid proof request")}
	ErrInvalidVote         = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid vote")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrMarketUnavailable          = Error{Code: 50003, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("proof market not available")}
)
