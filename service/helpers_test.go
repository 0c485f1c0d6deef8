package service

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/tally"
)

func testExecutor(t *testing.T) *prover.Executor {
	c := qt.New(t)
	signer := ethereum.NewSignKeys()
	c.Assert(signer.Generate(), qt.IsNil)
	e, err := prover.NewExecutor(signer, nil)
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

// demoVotes returns yes, no, yes votes from voters 0x01.., 0x02.., 0x03...
func demoVotes(pid int64) []*tally.Vote {
	return []*tally.Vote{
		{ProposalId: big.NewInt(pid), Voter: voter(0x01), Choice: true},
		{ProposalId: big.NewInt(pid), Voter: voter(0x02), Choice: false},
		{ProposalId: big.NewInt(pid), Voter: voter(0x03), Choice: true},
	}
}
