package tally

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/util"
)

func addr(b byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// demoWitness returns the three vote witness for proposal 0 used by the
// publisher demo: 0x01..01 yes, 0x02..02 no, 0x03..03 yes.
func demoWitness() *VoteWitness {
	return &VoteWitness{
		ProposalId: big.NewInt(0),
		Votes: []Vote{
			{ProposalId: big.NewInt(0), Voter: addr(0x01), Choice: true},
			{ProposalId: big.NewInt(0), Voter: addr(0x02), Choice: false},
			{ProposalId: big.NewInt(0), Voter: addr(0x03), Choice: true},
		},
	}
}

func copyWitness(w *VoteWitness) *VoteWitness {
	c := &VoteWitness{ProposalId: new(big.Int).Set(w.ProposalId)}
	for _, v := range w.Votes {
		c.Votes = append(c.Votes, Vote{
			ProposalId: new(big.Int).Set(v.ProposalId),
			Voter:      v.Voter,
			Choice:     v.Choice,
		})
	}
	return c
}

// randomWitness returns a witness with n votes from random voters for a
// random proposal.
func randomWitness(n int) *VoteWitness {
	pid := new(big.Int).SetBytes(util.RandomBytes(32))
	w := &VoteWitness{ProposalId: pid}
	for i := 0; i < n; i++ {
		w.Votes = append(w.Votes, Vote{
			ProposalId: new(big.Int).Set(pid),
			Voter:      common.BytesToAddress(util.RandomBytes(common.AddressLength)),
			Choice:     util.RandomInt(0, 2) == 1,
		})
	}
	return w
}
