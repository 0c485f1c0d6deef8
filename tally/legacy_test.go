package tally

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
)

func TestTallyLegacy(t *testing.T) {
	c := qt.New(t)
	w := &LegacyWitness{ProposalId: 7, Votes: []bool{true, false}}

	data, err := EncodeLegacyWitness(w)
	c.Assert(err, qt.IsNil)
	decoded, err := DecodeLegacyWitness(data)
	c.Assert(err, qt.IsNil)
	c.Assert(decoded.ProposalId, qt.Equals, uint32(7))
	c.Assert(decoded.Votes, qt.DeepEquals, []bool{true, false})

	out, err := TallyLegacy(decoded)
	c.Assert(err, qt.IsNil)
	c.Assert(out.ProposalId.Int64(), qt.Equals, int64(7))
	c.Assert(out.Yes, qt.Equals, uint32(1))
	c.Assert(out.No, qt.Equals, uint32(1))
	c.Assert(out.CommitmentsDigest, qt.Equals,
		common.HexToHash("0x43e5110912e9d9e26050a7676537548c0886958357ba77b10cf954daa14dedc4"))

	// the structured schema never yields the same digest
	structured, err := Tally(&VoteWitness{ProposalId: big.NewInt(7), Votes: []Vote{
		{ProposalId: big.NewInt(7), Voter: common.Address{}, Choice: true},
		{ProposalId: big.NewInt(7), Voter: common.Address{}, Choice: false},
	}})
	c.Assert(err, qt.IsNil)
	c.Assert(structured.CommitmentsDigest, qt.Not(qt.Equals), out.CommitmentsDigest)
}

func TestDecodeLegacyWitnessRejectsStructured(t *testing.T) {
	c := qt.New(t)
	data, err := EncodeWitness(demoWitness())
	c.Assert(err, qt.IsNil)
	_, err = DecodeLegacyWitness(data)
	c.Assert(err, qt.ErrorIs, ErrInputDecode)

	_, err = TallyLegacy(nil)
	c.Assert(err, qt.ErrorIs, ErrInputDecode)
}
