package tally

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Chain is the sequential accumulator of vote commitments. It starts at
// keccak256(abi.encode(uint256 proposalId)) and every Fold replaces the digest
// with keccak256(abi.encode(bytes32 digest, bytes32 commitment)). The result
// depends on the order of the folded commitments.
//
// Both abi encodings are single 32 byte words per argument, so they are
// computed here without going through the abi packer.
type Chain struct {
	digest common.Hash
}

// NewChain returns a chain rooted at the given proposal.
func NewChain(proposalID *big.Int) (*Chain, error) {
	if err := checkUint256(proposalID); err != nil {
		return nil, err
	}
	return &Chain{digest: chainRoot(proposalID)}, nil
}

func chainRoot(proposalID *big.Int) common.Hash {
	return crypto.Keccak256Hash(common.BigToHash(proposalID).Bytes())
}

// Fold appends a commitment to the chain.
func (c *Chain) Fold(commitment common.Hash) {
	c.digest = crypto.Keccak256Hash(c.digest.Bytes(), commitment.Bytes())
}

// Digest returns the current digest.
func (c *Chain) Digest() common.Hash {
	return c.digest
}

// ChainDigest folds the given commitments, in order, into a chain rooted at
// proposalID. It is what a verifier that only knows the commitments (for
// example, from the ledger) computes.
func ChainDigest(proposalID *big.Int, commitments []common.Hash) (common.Hash, error) {
	chain, err := NewChain(proposalID)
	if err != nil {
		return common.Hash{}, err
	}
	for _, c := range commitments {
		chain.Fold(c)
	}
	return chain.Digest(), nil
}
