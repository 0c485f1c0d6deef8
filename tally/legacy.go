package tally

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// LegacyWitness is the boolean-only schema used before votes carried the voter
// identity: a narrow proposal id and the bare list of choices.
//
// Deprecated: commitments built from this schema do not bind the voter, so two
// voters with the same choice are indistinguishable. Use VoteWitness. The
// legacy schema has its own decoder and is never accepted by DecodeWitness.
type LegacyWitness struct {
	ProposalId uint32 `abi:"proposalId"`
	Votes      []bool `abi:"votes"`
}

var (
	legacyWitnessArgs = abi.Arguments{{Name: "witness", Type: mustNewType("tuple", "struct LegacyVoteWitness", []abi.ArgumentMarshaling{
		{Name: "proposalId", Type: "uint32"},
		{Name: "votes", Type: "bool[]"},
	})}}
	legacyCommitmentArgs = abi.Arguments{
		{Name: "choice", Type: mustNewType("bool", "", nil)},
		{Name: "proposalId", Type: mustNewType("uint32", "", nil)},
	}
)

// EncodeLegacyWitness returns abi.encode(witness) for the legacy schema.
//
// Deprecated: use EncodeWitness.
func EncodeLegacyWitness(w *LegacyWitness) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil witness", ErrInputDecode)
	}
	votes := w.Votes
	if votes == nil {
		votes = []bool{}
	}
	return legacyWitnessArgs.Pack(LegacyWitness{ProposalId: w.ProposalId, Votes: votes})
}

// DecodeLegacyWitness strictly decodes a legacy witness.
//
// Deprecated: use DecodeWitness.
func DecodeLegacyWitness(data []byte) (*LegacyWitness, error) {
	values, err := legacyWitnessArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: unexpected number of values %d", ErrInputDecode, len(values))
	}
	w := abi.ConvertType(values[0], new(LegacyWitness)).(*LegacyWitness)
	canonical, err := EncodeLegacyWitness(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	if !bytes.Equal(canonical, data) {
		return nil, fmt.Errorf("%w: non canonical legacy witness encoding", ErrInputDecode)
	}
	return w, nil
}

// LegacyCommitment returns keccak256(abi.encode(bool choice, uint32 proposalId)).
//
// Deprecated: use Commitment.
func LegacyCommitment(choice bool, proposalID uint32) common.Hash {
	data, err := legacyCommitmentArgs.Pack(choice, proposalID)
	if err != nil {
		panic(fmt.Sprintf("pack legacy commitment: %v", err))
	}
	return crypto.Keccak256Hash(data)
}

// TallyLegacy counts a legacy witness. The digest chain has the same root and
// fold as Tally but folds LegacyCommitment values, so its digest never equals
// the digest of a structured witness with voters.
//
// Deprecated: use Tally.
func TallyLegacy(w *LegacyWitness) (*VotePublicOutput, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil witness", ErrInputDecode)
	}
	proposalID := new(big.Int).SetUint64(uint64(w.ProposalId))
	chain, err := NewChain(proposalID)
	if err != nil {
		return nil, err
	}
	var count counter
	for i, choice := range w.Votes {
		if err := count.add(choice); err != nil {
			return nil, fmt.Errorf("vote %d: %w", i, err)
		}
		chain.Fold(LegacyCommitment(choice, w.ProposalId))
	}
	return &VotePublicOutput{
		ProposalId:        proposalID,
		CommitmentsDigest: chain.Digest(),
		Yes:               count.yes,
		No:                count.no,
	}, nil
}
