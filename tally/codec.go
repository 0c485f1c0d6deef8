package tally

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// ProgramName names the tally program in proof requests.
	ProgramName = "voting-tally"
	// EncodingVersion pins the witness, journal and commitment encodings. Any
	// change to them must bump it, which changes ImageID.
	EncodingVersion = "abi-v1"
)

// ImageID identifies the tally program and its encoding. Provers attest
// executions against it and verifiers only accept seals bound to it.
var ImageID = crypto.Keccak256Hash([]byte(ProgramName + "/" + EncodingVersion))

var voteComponents = []abi.ArgumentMarshaling{
	{Name: "proposalId", Type: "uint256"},
	{Name: "voter", Type: "address"},
	{Name: "choice", Type: "bool"},
}

var (
	witnessType = mustNewType("tuple", "struct VoteWitness", []abi.ArgumentMarshaling{
		{Name: "proposalId", Type: "uint256"},
		{Name: "votes", Type: "tuple[]", InternalType: "struct Vote[]", Components: voteComponents},
	})
	outputType = mustNewType("tuple", "struct VotePublicOutput", []abi.ArgumentMarshaling{
		{Name: "proposalId", Type: "uint256"},
		{Name: "commitmentsDigest", Type: "bytes32"},
		{Name: "yes", Type: "uint32"},
		{Name: "no", Type: "uint32"},
	})

	// witnessArgs encodes abi.encode(VoteWitness).
	witnessArgs = abi.Arguments{{Name: "witness", Type: witnessType}}
	// outputArgs encodes abi.encode(VotePublicOutput), the journal.
	outputArgs = abi.Arguments{{Name: "output", Type: outputType}}
	// commitmentArgs encodes abi.encode(voter, choice, proposalId).
	commitmentArgs = abi.Arguments{
		{Name: "voter", Type: mustNewType("address", "", nil)},
		{Name: "choice", Type: mustNewType("bool", "", nil)},
		{Name: "proposalId", Type: mustNewType("uint256", "", nil)},
	}
)

func mustNewType(t, internalType string, components []abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, internalType, components)
	if err != nil {
		panic(fmt.Sprintf("invalid abi type %s: %v", t, err))
	}
	return typ
}

// maxUint256 is 2^256 - 1.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func checkUint256(x *big.Int) error {
	if x == nil || x.Sign() < 0 || x.Cmp(maxUint256) > 0 {
		return ErrInvalidProposalID
	}
	return nil
}

// EncodeWitness returns abi.encode(witness).
func EncodeWitness(w *VoteWitness) ([]byte, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil witness", ErrInputDecode)
	}
	if err := checkUint256(w.ProposalId); err != nil {
		return nil, err
	}
	votes := w.Votes
	if votes == nil {
		votes = []Vote{}
	}
	for i := range votes {
		if err := checkUint256(votes[i].ProposalId); err != nil {
			return nil, fmt.Errorf("vote %d: %w", i, err)
		}
	}
	return witnessArgs.Pack(VoteWitness{ProposalId: w.ProposalId, Votes: votes})
}

// DecodeWitness decodes abi.encode(witness). The decoding is strict: the data
// must be exactly the canonical encoding of the decoded value, so trailing
// bytes, dirty padding or non standard offsets are rejected with
// ErrInputDecode.
func DecodeWitness(data []byte) (*VoteWitness, error) {
	values, err := witnessArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: unexpected number of values %d", ErrInputDecode, len(values))
	}
	w := abi.ConvertType(values[0], new(VoteWitness)).(*VoteWitness)
	canonical, err := EncodeWitness(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	if !bytes.Equal(canonical, data) {
		return nil, fmt.Errorf("%w: non canonical witness encoding", ErrInputDecode)
	}
	return w, nil
}

// EncodeOutput returns abi.encode(output), the journal of a tally run.
func EncodeOutput(o *VotePublicOutput) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("nil public output")
	}
	if err := checkUint256(o.ProposalId); err != nil {
		return nil, err
	}
	return outputArgs.Pack(*o)
}

// DecodeOutput decodes a journal produced by EncodeOutput, with the same
// strictness as DecodeWitness.
func DecodeOutput(journal []byte) (*VotePublicOutput, error) {
	values, err := outputArgs.Unpack(journal)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%w: unexpected number of values %d", ErrInputDecode, len(values))
	}
	o := abi.ConvertType(values[0], new(VotePublicOutput)).(*VotePublicOutput)
	canonical, err := EncodeOutput(o)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputDecode, err)
	}
	if !bytes.Equal(canonical, journal) {
		return nil, fmt.Errorf("%w: non canonical journal encoding", ErrInputDecode)
	}
	return o, nil
}

// encodeCommitment returns abi.encode(voter, choice, proposalId).
func encodeCommitment(voter common.Address, choice bool, proposalID *big.Int) ([]byte, error) {
	if err := checkUint256(proposalID); err != nil {
		return nil, err
	}
	return commitmentArgs.Pack(voter, choice, proposalID)
}
