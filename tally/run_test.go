package tally

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestRun(t *testing.T) {
	c := qt.New(t)
	input, err := EncodeWitness(demoWitness())
	c.Assert(err, qt.IsNil)

	journal := &bytes.Buffer{}
	c.Assert(Run(bytes.NewReader(input), journal), qt.IsNil)

	out, err := DecodeOutput(journal.Bytes())
	c.Assert(err, qt.IsNil)
	c.Assert(out.Yes, qt.Equals, uint32(2))
	c.Assert(out.No, qt.Equals, uint32(1))
	c.Assert(Verify(demoWitness(), out), qt.IsNil)
}

func TestRunFailureWritesNothing(t *testing.T) {
	c := qt.New(t)
	w := demoWitness()
	w.Votes[2].ProposalId = big.NewInt(4)
	input, err := EncodeWitness(w)
	c.Assert(err, qt.IsNil)

	journal := &bytes.Buffer{}
	err = Run(bytes.NewReader(input), journal)
	c.Assert(err, qt.ErrorIs, ErrProposalMismatch)
	c.Assert(journal.Len(), qt.Equals, 0)

	err = Run(bytes.NewReader([]byte{0x01, 0x02}), journal)
	c.Assert(err, qt.ErrorIs, ErrInputDecode)
	c.Assert(journal.Len(), qt.Equals, 0)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestRunReadError(t *testing.T) {
	c := qt.New(t)
	journal := &bytes.Buffer{}
	err := Run(failingReader{}, journal)
	c.Assert(err, qt.ErrorMatches, "read witness: broken pipe")
	c.Assert(journal.Len(), qt.Equals, 0)
}
