package types

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"
)

// BigInt is a big.Int wrapper which marshals JSON and text as a decimal string
// and CBOR as a native CBOR bignum.
type BigInt big.Int

// MarshalText implements the encoding.TextMarshaler interface.
func (i *BigInt) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (i *BigInt) UnmarshalText(data []byte) error {
	if _, ok := i.MathBigInt().SetString(string(data), 0); !ok {
		return fmt.Errorf("invalid BigInt: %q", data)
	}
	return nil
}

// MarshalCBOR implements the cbor.Marshaler interface.
func (i *BigInt) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(i.MathBigInt())
}

// UnmarshalCBOR implements the cbor.Unmarshaler interface.
func (i *BigInt) UnmarshalCBOR(data []byte) error {
	n := new(big.Int)
	if err := cbor.Unmarshal(data, n); err != nil {
		return err
	}
	i.MathBigInt().Set(n)
	return nil
}

// String returns the decimal representation of the number.
func (i *BigInt) String() string {
	if i == nil {
		return "0"
	}
	return i.MathBigInt().String()
}

// MathBigInt returns the underlying *big.Int, sharing memory with i.
func (i *BigInt) MathBigInt() *big.Int {
	return (*big.Int)(i)
}

// SetUint64 sets the value to x and returns i.
func (i *BigInt) SetUint64(x uint64) *BigInt {
	i.MathBigInt().SetUint64(x)
	return i
}

// SetBigInt sets the value to x and returns i.
func (i *BigInt) SetBigInt(x *big.Int) *BigInt {
	i.MathBigInt().Set(x)
	return i
}

// Equal reports whether i and j hold the same value. A nil BigInt is zero.
func (i *BigInt) Equal(j *BigInt) bool {
	if i == nil || j == nil {
		return i.String() == j.String()
	}
	return i.MathBigInt().Cmp(j.MathBigInt()) == 0
}
