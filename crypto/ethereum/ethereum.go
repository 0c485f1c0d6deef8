// Package ethereum wraps secp256k1 keys with the Ethereum signed message
// conventions used by the prover to seal journals and by the ledger client to
// sign transactions.
package ethereum

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/vocdoni-tally/util"
)

const (
	// SignatureLength is the size of a [R || S || V] signature.
	SignatureLength = ethcrypto.SignatureLength
	// PubKeyLengthBytes is the size of a compressed public key.
	PubKeyLengthBytes = 33

	signedMessagePrefix = "\x19Ethereum Signed Message:\n"
)

// SignKeys holds a secp256k1 key pair.
type SignKeys struct {
	Public  ecdsa.PublicKey
	Private ecdsa.PrivateKey
}

// NewSignKeys returns an empty SignKeys. Use Generate or AddHexKey to fill it.
func NewSignKeys() *SignKeys {
	return &SignKeys{}
}

// Generate creates a new random key pair.
func (k *SignKeys) Generate() error {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return err
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// AddHexKey imports a private key from its hex representation, with or
// without the 0x prefix.
func (k *SignKeys) AddHexKey(privHex string) error {
	key, err := ethcrypto.HexToECDSA(util.TrimHex(privHex))
	if err != nil {
		return fmt.Errorf("invalid private key: %w", err)
	}
	k.Private = *key
	k.Public = key.PublicKey
	return nil
}

// HexString returns the compressed public key and the private key, both hex
// encoded without prefix.
func (k *SignKeys) HexString() (string, string) {
	if k.Private.D == nil {
		return "", ""
	}
	pub := hex.EncodeToString(ethcrypto.CompressPubkey(&k.Public))
	priv := hex.EncodeToString(ethcrypto.FromECDSA(&k.Private))
	return pub, priv
}

// PublicKey returns the compressed public key.
func (k *SignKeys) PublicKey() []byte {
	if k.Public.X == nil {
		return nil
	}
	return ethcrypto.CompressPubkey(&k.Public)
}

// Address returns the Ethereum address of the key pair.
func (k *SignKeys) Address() common.Address {
	if k.Public.X == nil {
		return common.Address{}
	}
	return ethcrypto.PubkeyToAddress(k.Public)
}

// AddressString returns the checksummed address.
func (k *SignKeys) AddressString() string {
	return k.Address().Hex()
}

// SignEthereum signs the message using the Ethereum signed message prefix.
// The recovery byte of the returned signature is 0 or 1.
func (k *SignKeys) SignEthereum(message []byte) ([]byte, error) {
	return k.SignHash(Hash(message))
}

// SignHash signs a precomputed 32 byte digest.
func (k *SignKeys) SignHash(digest []byte) ([]byte, error) {
	if k.Private.D == nil {
		return nil, fmt.Errorf("no private key available")
	}
	return ethcrypto.Sign(digest, &k.Private)
}

// Hash returns keccak256 of the message with the Ethereum signed message
// prefix and length.
func Hash(message []byte) []byte {
	return ethcrypto.Keccak256(
		[]byte(signedMessagePrefix),
		[]byte(strconv.Itoa(len(message))),
		message,
	)
}

// AddrFromPublicKey derives the address of a compressed or uncompressed
// public key.
func AddrFromPublicKey(pub []byte) (common.Address, error) {
	var (
		key *ecdsa.PublicKey
		err error
	)
	switch len(pub) {
	case PubKeyLengthBytes:
		key, err = ethcrypto.DecompressPubkey(pub)
	default:
		key, err = ethcrypto.UnmarshalPubkey(pub)
	}
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*key), nil
}

// AddrFromSignature recovers the signer address of an Ethereum signed message.
func AddrFromSignature(message, signature []byte) (common.Address, error) {
	return AddrFromHashSignature(Hash(message), signature)
}

// AddrFromHashSignature recovers the signer address of a signed digest. It
// accepts recovery bytes 0/1 and 27/28.
func AddrFromHashSignature(digest, signature []byte) (common.Address, error) {
	if len(signature) != SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}
	sig := make([]byte, SignatureLength)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := ethcrypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("cannot recover signer: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}
