package ethereum

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	qt "github.com/frankban/quicktest"
)

const (
	testPrivKey = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	testAddress = "0x96216849c49358b10257cb55b28ea603c874b05e"
	// signature of "hello" with testPrivKey
	testHelloSignature = "a0d0ebc374d2a4d6357eaca3da2f5f3ff547c3560008206bc234f9032a866ace6279ffb4093fb39c8bbc39021f6a5c36ef0e813c8c94f325a53f4f395a5c82de01"
)

func TestKeyImport(t *testing.T) {
	c := qt.New(t)
	for _, key := range []string{testPrivKey, "0x" + testPrivKey} {
		s := NewSignKeys()
		c.Assert(s.AddHexKey(key), qt.IsNil)
		c.Assert(s.Address(), qt.Equals, common.HexToAddress(testAddress))
		_, priv := s.HexString()
		c.Assert(priv, qt.Equals, testPrivKey)

		addr, err := AddrFromPublicKey(s.PublicKey())
		c.Assert(err, qt.IsNil)
		c.Assert(addr, qt.Equals, s.Address())
		addr, err = AddrFromPublicKey(ethcrypto.FromECDSAPub(&s.Public))
		c.Assert(err, qt.IsNil)
		c.Assert(addr, qt.Equals, s.Address())
	}
	c.Assert(NewSignKeys().AddHexKey("0xnothex"), qt.ErrorMatches, "invalid private key: .*")
	_, err := AddrFromPublicKey([]byte{0x02, 0x01})
	c.Assert(err, qt.IsNotNil)
}

func TestGeneratedKeys(t *testing.T) {
	c := qt.New(t)
	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)
	pub, priv := s.HexString()

	imported := NewSignKeys()
	c.Assert(imported.AddHexKey(priv), qt.IsNil)
	importedPub, _ := imported.HexString()
	c.Assert(importedPub, qt.Equals, pub)
	c.Assert(imported.AddressString(), qt.Equals, s.AddressString())
}

func TestSignEthereum(t *testing.T) {
	c := qt.New(t)
	s := NewSignKeys()
	c.Assert(s.AddHexKey(testPrivKey), qt.IsNil)

	sig, err := s.SignEthereum([]byte("hello"))
	c.Assert(err, qt.IsNil)
	c.Assert(hex.EncodeToString(sig), qt.Equals, testHelloSignature)

	addr, err := AddrFromSignature([]byte("hello"), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, s.Address())

	// 27/28 recovery bytes are accepted too
	sig[64] += 27
	addr, err = AddrFromSignature([]byte("hello"), sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, s.Address())

	if addr, err := AddrFromSignature([]byte("bye"), sig); err == nil {
		c.Assert(addr, qt.Not(qt.Equals), s.Address())
	}

	_, err = AddrFromSignature([]byte("hello"), sig[:10])
	c.Assert(err, qt.ErrorMatches, "invalid signature length 10")

	_, err = NewSignKeys().SignEthereum([]byte("hello"))
	c.Assert(err, qt.ErrorMatches, "no private key available")
}

func TestSignHash(t *testing.T) {
	c := qt.New(t)
	s := NewSignKeys()
	c.Assert(s.Generate(), qt.IsNil)

	for _, digest := range []common.Hash{
		ethcrypto.Keccak256Hash([]byte("journal")),
		ethcrypto.Keccak256Hash([]byte("another journal")),
	} {
		sig, err := s.SignHash(digest.Bytes())
		c.Assert(err, qt.IsNil)
		c.Assert(sig, qt.HasLen, SignatureLength)
		addr, err := AddrFromHashSignature(digest.Bytes(), sig)
		c.Assert(err, qt.IsNil)
		c.Assert(addr, qt.Equals, s.Address())
	}

	// digests are signed as they are, without the message prefix
	msg := []byte("journal")
	sig, err := s.SignHash(Hash(msg))
	c.Assert(err, qt.IsNil)
	addr, err := AddrFromSignature(msg, sig)
	c.Assert(err, qt.IsNil)
	c.Assert(addr, qt.Equals, s.Address())
}
