package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexBytes is a []byte which encodes as hexadecimal in json, as opposed to the
// base64 default.
type HexBytes []byte

// String returns the hexadecimal representation of the bytes, prefixed by 0x.
func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

// MarshalJSON implements the json.Marshaler interface.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	enc := make([]byte, hex.EncodedLen(len(b))+4)
	enc[0] = '"'
	enc[1] = '0'
	enc[2] = 'x'
	hex.Encode(enc[3:], b)
	enc[len(enc)-1] = '"'
	return enc, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface. It accepts the hex
// string with or without the 0x prefix.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid JSON string: %q", data)
	}
	s := strings.TrimPrefix(string(data[1:len(data)-1]), "0x")
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}
	*b = decoded
	return nil
}

// HexStringToHexBytes decodes a hex string (optionally 0x prefixed).
func HexStringToHexBytes(s string) (HexBytes, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
