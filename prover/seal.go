package prover

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
)

// SealDigest returns the digest signed by a seal:
// keccak256(imageID || keccak256(journal)).
func SealDigest(imageID common.Hash, journal []byte) common.Hash {
	return ethcrypto.Keccak256Hash(imageID.Bytes(), ethcrypto.Keccak256(journal))
}

// Seal signs the journal of imageID with the given keys.
func Seal(signer *ethereum.SignKeys, imageID common.Hash, journal []byte) ([]byte, error) {
	return signer.SignHash(SealDigest(imageID, journal).Bytes())
}

// VerifySeal checks that seal was produced by the trusted executor for the
// journal of imageID.
func VerifySeal(seal []byte, imageID common.Hash, journal []byte, trusted common.Address) error {
	signer, err := ethereum.AddrFromHashSignature(SealDigest(imageID, journal).Bytes(), seal)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeal, err)
	}
	if signer != trusted {
		return fmt.Errorf("%w: signed by %s, expected %s", ErrInvalidSeal, signer.Hex(), trusted.Hex())
	}
	return nil
}
