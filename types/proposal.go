package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ProposalKeyLen is the length of the key that identifies a proposal in
// storage: the proposal id as a 32 byte big endian word.
const ProposalKeyLen = common.HashLength

// ProposalKey returns the 32 byte big endian representation of a proposal id,
// the same word the ABI encoding uses for uint256.
func ProposalKey(proposalID *big.Int) []byte {
	if proposalID == nil {
		return make([]byte, ProposalKeyLen)
	}
	return common.BigToHash(proposalID).Bytes()
}

// ProposalTallyState is the tally state of a proposal as recorded by the
// ledger.
type ProposalTallyState struct {
	ProposalID        *BigInt     `json:"proposalId"        cbor:"0,keyasint,omitempty"`
	CommitmentsDigest common.Hash `json:"commitmentsDigest" cbor:"1,keyasint,omitempty"`
	Tallied           bool        `json:"tallied"           cbor:"2,keyasint,omitempty"`
	YesCount          uint32      `json:"yesCount"          cbor:"3,keyasint,omitempty"`
	NoCount           uint32      `json:"noCount"           cbor:"4,keyasint,omitempty"`
}

// CastVote is a vote commitment observed on the ledger.
type CastVote struct {
	ProposalID        *BigInt     `json:"proposalId"        cbor:"0,keyasint,omitempty"`
	Commitment        common.Hash `json:"commitment"        cbor:"1,keyasint,omitempty"`
	CommitmentsDigest common.Hash `json:"commitmentsDigest" cbor:"2,keyasint,omitempty"`
	BlockNumber       uint64      `json:"blockNumber"       cbor:"3,keyasint,omitempty"`
	TxHash            common.Hash `json:"txHash"            cbor:"4,keyasint,omitempty"`
}

// TallyResult is a settled tally together with the artifacts that prove it.
type TallyResult struct {
	ProposalID        *BigInt     `json:"proposalId"        cbor:"0,keyasint,omitempty"`
	CommitmentsDigest common.Hash `json:"commitmentsDigest" cbor:"1,keyasint,omitempty"`
	Yes               uint32      `json:"yes"               cbor:"2,keyasint,omitempty"`
	No                uint32      `json:"no"                cbor:"3,keyasint,omitempty"`
	RequestID         string      `json:"requestId"         cbor:"4,keyasint,omitempty"`
	Journal           HexBytes    `json:"journal"           cbor:"5,keyasint,omitempty"`
	Seal              HexBytes    `json:"seal"              cbor:"6,keyasint,omitempty"`
	SettleTx          common.Hash `json:"settleTx"          cbor:"7,keyasint,omitempty"`
}
