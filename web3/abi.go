package web3

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// votingABIJSON is the ABI of the IVoting contract.
const votingABIJSON = `[
  {"type":"function","name":"createProposal","stateMutability":"nonpayable",
   "inputs":[{"name":"deadline","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"castVote","stateMutability":"nonpayable",
   "inputs":[{"name":"proposalId","type":"uint256"},{"name":"commitment","type":"bytes32"}],"outputs":[]},
  {"type":"function","name":"checkProposalTallyState","stateMutability":"view",
   "inputs":[{"name":"proposalId","type":"uint256"}],
   "outputs":[{"name":"commitmentsDigest","type":"bytes32"},{"name":"tallied","type":"bool"},
              {"name":"yesCount","type":"uint32"},{"name":"noCount","type":"uint32"}]},
  {"type":"function","name":"settleTallyManually","stateMutability":"nonpayable",
   "inputs":[{"name":"journal","type":"bytes"},{"name":"seal","type":"bytes"}],"outputs":[]},
  {"type":"function","name":"resetAllProposals","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"event","name":"ProposalCreated","anonymous":false,
   "inputs":[{"name":"proposalId","type":"uint256","indexed":true},{"name":"deadline","type":"uint256","indexed":false}]},
  {"type":"event","name":"VoteCast","anonymous":false,
   "inputs":[{"name":"proposalId","type":"uint256","indexed":true},{"name":"commitment","type":"bytes32","indexed":false},
             {"name":"commitmentsDigest","type":"bytes32","indexed":false}]},
  {"type":"event","name":"TallySettled","anonymous":false,
   "inputs":[{"name":"proposalId","type":"uint256","indexed":true},{"name":"yesCount","type":"uint32","indexed":false},
             {"name":"noCount","type":"uint32","indexed":false}]}
]`

const (
	methodCreateProposal    = "createProposal"
	methodCastVote          = "castVote"
	methodTallyState        = "checkProposalTallyState"
	methodSettleTally       = "settleTallyManually"
	methodResetAllProposals = "resetAllProposals"

	eventVoteCast = "VoteCast"
)

// VotingABI is the parsed ABI of the IVoting contract.
var VotingABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(votingABIJSON))
	if err != nil {
		panic(fmt.Sprintf("invalid voting ABI: %v", err))
	}
	return parsed
}()
