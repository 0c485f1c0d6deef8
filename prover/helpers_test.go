package prover

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
	"github.com/vocdoni/vocdoni-tally/tally"
)

const testPrivKey = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"

func testExecutor(t *testing.T) *Executor {
	c := qt.New(t)
	signer := ethereum.NewSignKeys()
	c.Assert(signer.AddHexKey(testPrivKey), qt.IsNil)
	e, err := NewExecutor(signer, nil)
	c.Assert(err, qt.IsNil)
	return e
}

func voter(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// demoInput is the encoded three vote witness for proposal 0.
func demoInput(t *testing.T) []byte {
	w := &tally.VoteWitness{
		ProposalId: big.NewInt(0),
		Votes: []tally.Vote{
			{ProposalId: big.NewInt(0), Voter: voter(0x01), Choice: true},
			{ProposalId: big.NewInt(0), Voter: voter(0x02), Choice: false},
			{ProposalId: big.NewInt(0), Voter: voter(0x03), Choice: true},
		},
	}
	data, err := tally.EncodeWitness(w)
	qt.New(t).Assert(err, qt.IsNil)
	return data
}
