package tally

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"
)

func TestCommitmentVectors(t *testing.T) {
	c := qt.New(t)
	vectors := []struct {
		voter  byte
		choice bool
		want   string
	}{
		{0x01, true, "0x6f9d0caffadb5e607f1302b1f6bf9e52688cf7c0763ee845ac013fb4b5afbef5"},
		{0x02, false, "0xc3cff84c10f074520d029e3067cc037f183acc2a38a25d97590aac76413153a9"},
		{0x03, true, "0x5c2c30448d76c054d500f7d64992b22fd306eb4951c214bdd46d77db6b7b871b"},
	}
	for _, v := range vectors {
		got, err := Commitment(addr(v.voter), v.choice, big.NewInt(0))
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, common.HexToHash(v.want))
	}
}

func TestCommitmentMatchesWordEncoding(t *testing.T) {
	c := qt.New(t)
	voter := common.HexToAddress("0x00000000000000000000000000000000deadbeef")
	pid := new(big.Int).Lsh(big.NewInt(1), 200)

	var data []byte
	data = append(data, common.LeftPadBytes(voter.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes([]byte{1}, 32)...)
	data = append(data, common.LeftPadBytes(pid.Bytes(), 32)...)

	got, err := Commitment(voter, true, pid)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, crypto.Keccak256Hash(data))
}

func TestCommitmentBindsEveryField(t *testing.T) {
	c := qt.New(t)
	base, err := Commitment(addr(0x01), true, big.NewInt(7))
	c.Assert(err, qt.IsNil)

	otherVoter, err := Commitment(addr(0x02), true, big.NewInt(7))
	c.Assert(err, qt.IsNil)
	otherChoice, err := Commitment(addr(0x01), false, big.NewInt(7))
	c.Assert(err, qt.IsNil)
	otherProposal, err := Commitment(addr(0x01), true, big.NewInt(8))
	c.Assert(err, qt.IsNil)

	c.Assert(otherVoter, qt.Not(qt.Equals), base)
	c.Assert(otherChoice, qt.Not(qt.Equals), base)
	c.Assert(otherProposal, qt.Not(qt.Equals), base)

	again, err := Commitment(addr(0x01), true, big.NewInt(7))
	c.Assert(err, qt.IsNil)
	c.Assert(again, qt.Equals, base)
}

func TestCommitmentInvalidProposal(t *testing.T) {
	c := qt.New(t)
	_, err := Commitment(addr(0x01), true, nil)
	c.Assert(err, qt.ErrorIs, ErrInvalidProposalID)
	_, err = Commitment(addr(0x01), true, big.NewInt(-1))
	c.Assert(err, qt.ErrorIs, ErrInputDecode)
	_, err = Commitment(addr(0x01), true, new(big.Int).Lsh(big.NewInt(1), 256))
	c.Assert(err, qt.ErrorIs, ErrInvalidProposalID)
	_, err = Commitment(addr(0x01), true, new(big.Int).Set(maxUint256))
	c.Assert(err, qt.IsNil)
}

func TestChainDigest(t *testing.T) {
	c := qt.New(t)
	root, err := ChainDigest(big.NewInt(0), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(root, qt.Equals, common.HexToHash("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"))

	var commitments []common.Hash
	for _, v := range demoWitness().Votes {
		cm, err := v.Commitment()
		c.Assert(err, qt.IsNil)
		commitments = append(commitments, cm)
	}
	digest, err := ChainDigest(big.NewInt(0), commitments)
	c.Assert(err, qt.IsNil)
	c.Assert(digest, qt.Equals, common.HexToHash("0xa06e8520da8ee4d98d26d0c02a0eb4647ce171638453372a67848ba0fb1acc7a"))

	_, err = ChainDigest(nil, commitments)
	c.Assert(err, qt.ErrorIs, ErrInvalidProposalID)
}
