package tally

import (
	"errors"
	"fmt"
)

var (
	// ErrInputDecode is returned when the input bytes are not the canonical
	// encoding of a witness.
	ErrInputDecode = errors.New("input decode error")
	// ErrProposalMismatch is returned when a vote belongs to a proposal other
	// than the one declared by the witness.
	ErrProposalMismatch = errors.New("proposal id mismatch")
	// ErrCountOverflow is returned when a count would not fit in a uint32.
	ErrCountOverflow = errors.New("vote count overflow")
	// ErrOutputMismatch is returned by Verify when a public output does not
	// match the recomputed one.
	ErrOutputMismatch = errors.New("public output mismatch")

	// ErrInvalidProposalID is returned for proposal ids that are nil or do not
	// fit in a uint256. It wraps ErrInputDecode.
	ErrInvalidProposalID = fmt.Errorf("%w: proposal id is not a uint256", ErrInputDecode)
)
