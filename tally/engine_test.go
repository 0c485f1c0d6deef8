package tally

import (
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/vocdoni-tally/util"
)

func TestTallyDemoScenario(t *testing.T) {
	c := qt.New(t)
	w := demoWitness()

	out, err := Tally(w)
	c.Assert(err, qt.IsNil)
	c.Assert(out.ProposalId.Int64(), qt.Equals, int64(0))
	c.Assert(out.Yes, qt.Equals, uint32(2))
	c.Assert(out.No, qt.Equals, uint32(1))
	c.Assert(out.CommitmentsDigest, qt.Equals,
		common.HexToHash("0xa06e8520da8ee4d98d26d0c02a0eb4647ce171638453372a67848ba0fb1acc7a"))

	// recompute the chain with the generic abi packer
	bytes32, err := abi.NewType("bytes32", "", nil)
	c.Assert(err, qt.IsNil)
	uint256, err := abi.NewType("uint256", "", nil)
	c.Assert(err, qt.IsNil)
	foldArgs := abi.Arguments{{Type: bytes32}, {Type: bytes32}}
	rootData, err := abi.Arguments{{Type: uint256}}.Pack(big.NewInt(0))
	c.Assert(err, qt.IsNil)
	expected := crypto.Keccak256Hash(rootData)
	for _, v := range w.Votes {
		cm, err := v.Commitment()
		c.Assert(err, qt.IsNil)
		data, err := foldArgs.Pack(expected, cm)
		c.Assert(err, qt.IsNil)
		expected = crypto.Keccak256Hash(data)
	}
	c.Assert(out.CommitmentsDigest, qt.Equals, expected)
}

func TestTallyEmpty(t *testing.T) {
	c := qt.New(t)
	out, err := Tally(&VoteWitness{ProposalId: big.NewInt(5)})
	c.Assert(err, qt.IsNil)
	c.Assert(out.Yes, qt.Equals, uint32(0))
	c.Assert(out.No, qt.Equals, uint32(0))
	c.Assert(out.CommitmentsDigest, qt.Equals,
		common.HexToHash("0x036b6384b5eca791c62761152d0c79bb0604c104a5fb6f4eb0703f3154bb3db0"))
	c.Assert(out.CommitmentsDigest, qt.Equals, crypto.Keccak256Hash(common.BigToHash(big.NewInt(5)).Bytes()))
}

func TestTallyDeterminism(t *testing.T) {
	c := qt.New(t)
	w := demoWitness()
	first, err := Tally(w)
	c.Assert(err, qt.IsNil)
	second, err := Tally(w)
	c.Assert(err, qt.IsNil)

	j1, err := EncodeOutput(first)
	c.Assert(err, qt.IsNil)
	j2, err := EncodeOutput(second)
	c.Assert(err, qt.IsNil)
	c.Assert(j1, qt.DeepEquals, j2)
}

func TestTallyCountConservation(t *testing.T) {
	c := qt.New(t)
	for n := 0; n < 40; n += 7 {
		w := &VoteWitness{ProposalId: big.NewInt(3)}
		for i := 0; i < n; i++ {
			w.Votes = append(w.Votes, Vote{
				ProposalId: big.NewInt(3),
				Voter:      addr(byte(i)),
				Choice:     i%3 == 0,
			})
		}
		out, err := Tally(w)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Total(), qt.Equals, uint64(n))
	}
}

func TestTallyOrderSensitivity(t *testing.T) {
	c := qt.New(t)
	w := demoWitness()
	out, err := Tally(w)
	c.Assert(err, qt.IsNil)

	reordered := copyWitness(w)
	reordered.Votes[0], reordered.Votes[1] = reordered.Votes[1], reordered.Votes[0]
	out2, err := Tally(reordered)
	c.Assert(err, qt.IsNil)

	c.Assert(out2.Yes, qt.Equals, out.Yes)
	c.Assert(out2.No, qt.Equals, out.No)
	c.Assert(out2.CommitmentsDigest, qt.Not(qt.Equals), out.CommitmentsDigest)
	c.Assert(out2.CommitmentsDigest, qt.Equals,
		common.HexToHash("0xfc04c82426e0c1f01b30cc8f0a60e55bfd413728d06280d16e7ed07a52842cee"))
}

func TestTallyTamperDetection(t *testing.T) {
	c := qt.New(t)
	base, err := Tally(demoWitness())
	c.Assert(err, qt.IsNil)

	tampers := map[string]func(w *VoteWitness){
		"choice": func(w *VoteWitness) { w.Votes[1].Choice = !w.Votes[1].Choice },
		"voter":  func(w *VoteWitness) { w.Votes[2].Voter = addr(0x04) },
		"proposal": func(w *VoteWitness) {
			// keep the witness consistent: move every vote to proposal 1
			w.ProposalId = big.NewInt(1)
			for i := range w.Votes {
				w.Votes[i].ProposalId = big.NewInt(1)
			}
		},
		"omission": func(w *VoteWitness) { w.Votes = w.Votes[:2] },
		"insertion": func(w *VoteWitness) {
			w.Votes = append(w.Votes, Vote{ProposalId: big.NewInt(0), Voter: addr(0x05), Choice: false})
		},
	}
	for name, tamper := range tampers {
		c.Run(name, func(c *qt.C) {
			w := copyWitness(demoWitness())
			tamper(w)
			out, err := Tally(w)
			c.Assert(err, qt.IsNil)
			c.Assert(out.CommitmentsDigest, qt.Not(qt.Equals), base.CommitmentsDigest)
			c.Assert(Verify(w, base), qt.ErrorIs, ErrOutputMismatch)
		})
	}
}

func TestTallyProposalMismatch(t *testing.T) {
	c := qt.New(t)
	w := demoWitness()
	w.Votes[1].ProposalId = big.NewInt(1)
	out, err := Tally(w)
	c.Assert(err, qt.ErrorIs, ErrProposalMismatch)
	c.Assert(out, qt.IsNil)

	w = demoWitness()
	w.Votes[2].ProposalId = nil
	_, err = Tally(w)
	c.Assert(err, qt.ErrorIs, ErrProposalMismatch)
}

func TestTallyInvalidWitness(t *testing.T) {
	c := qt.New(t)
	_, err := Tally(nil)
	c.Assert(err, qt.ErrorIs, ErrInputDecode)
	_, err = Tally(&VoteWitness{})
	c.Assert(err, qt.ErrorIs, ErrInputDecode)
}

func TestCounterOverflow(t *testing.T) {
	c := qt.New(t)
	cnt := counter{yes: math.MaxUint32 - 1}
	c.Assert(cnt.add(true), qt.IsNil)
	c.Assert(cnt.yes, qt.Equals, uint32(math.MaxUint32))
	c.Assert(cnt.add(true), qt.ErrorIs, ErrCountOverflow)
	c.Assert(cnt.yes, qt.Equals, uint32(math.MaxUint32))

	cnt = counter{no: math.MaxUint32}
	c.Assert(cnt.add(false), qt.ErrorIs, ErrCountOverflow)
	c.Assert(cnt.add(true), qt.IsNil)
	c.Assert(cnt.yes, qt.Equals, uint32(1))
}

func TestVerify(t *testing.T) {
	c := qt.New(t)
	w := demoWitness()
	out, err := Tally(w)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(w, out), qt.IsNil)

	wrong := *out
	wrong.Yes++
	c.Assert(Verify(w, &wrong), qt.ErrorIs, ErrOutputMismatch)

	wrong = *out
	wrong.ProposalId = big.NewInt(9)
	c.Assert(Verify(w, &wrong), qt.ErrorIs, ErrOutputMismatch)

	c.Assert(Verify(w, nil), qt.ErrorIs, ErrOutputMismatch)
}

func TestTallyRandomWitnesses(t *testing.T) {
	c := qt.New(t)
	for i := 0; i < 20; i++ {
		w := randomWitness(util.RandomInt(0, 30))
		var yes uint32
		commitments := []common.Hash{}
		for _, v := range w.Votes {
			if v.Choice {
				yes++
			}
			cm, err := v.Commitment()
			c.Assert(err, qt.IsNil)
			commitments = append(commitments, cm)
		}

		out, err := Tally(w)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Total(), qt.Equals, uint64(len(w.Votes)))
		c.Assert(out.Yes, qt.Equals, yes)
		c.Assert(out.ProposalId.Cmp(w.ProposalId), qt.Equals, 0)
		digest, err := ChainDigest(w.ProposalId, commitments)
		c.Assert(err, qt.IsNil)
		c.Assert(out.CommitmentsDigest, qt.Equals, digest)
		c.Assert(Verify(w, out), qt.IsNil)

		// the program computes the same output from the encoded witness
		input, err := EncodeWitness(w)
		c.Assert(err, qt.IsNil)
		journal, err := Execute(input)
		c.Assert(err, qt.IsNil)
		expected, err := EncodeOutput(out)
		c.Assert(err, qt.IsNil)
		c.Assert(journal, qt.DeepEquals, expected)
	}
}
