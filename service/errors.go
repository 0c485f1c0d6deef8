package service

import "errors"

var (
	// ErrProposalNotFound is returned by the mock ledger for unknown proposals.
	ErrProposalNotFound = errors.New("proposal not found")
	// ErrProposalClosed is returned when voting on a proposal past its deadline.
	ErrProposalClosed = errors.New("proposal closed")
	// ErrAlreadyTallied is returned when a proposal tally is already settled.
	ErrAlreadyTallied = errors.New("proposal already tallied")
	// ErrDigestMismatch is returned when the commitments digest of the stored
	// votes differs from the one recorded by the ledger.
	ErrDigestMismatch = errors.New("commitments digest mismatch")
)
