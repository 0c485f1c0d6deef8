// Package tally implements the verifiable tally of a yes/no proposal.
//
// Tally consumes a VoteWitness, an ordered list of votes for one proposal, and
// produces a VotePublicOutput holding the yes and no counts plus a digest that
// chains the commitment of every vote in input order:
//
//	digest_0 = keccak256(abi.encode(uint256 proposalId))
//	c_i      = keccak256(abi.encode(address voter, bool choice, uint256 proposalId))
//	digest_i = keccak256(abi.encode(bytes32 digest_{i-1}, bytes32 c_i))
//
// Any party holding the same ordered votes (or only their commitments, see
// Chain) can recompute the digest. The package is pure: it performs no I/O
// besides the reader and writer handed to Run, uses no clocks, randomness or
// goroutines, and keeps no package level mutable state, so its execution can
// be reproduced and attested by a verifiable execution environment.
//
// Witness and output are encoded with the Ethereum ABI, so the journal written
// by Run can be decoded by a Solidity contract with abi.decode.
package tally
