package util

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestTrimHex(t *testing.T) {
	c := qt.New(t)
	c.Assert(TrimHex("0xabcd"), qt.Equals, "abcd")
	c.Assert(TrimHex("0Xabcd"), qt.Equals, "abcd")
	c.Assert(TrimHex("abcd"), qt.Equals, "abcd")
	c.Assert(TrimHex("0"), qt.Equals, "0")
}

func TestRandom(t *testing.T) {
	c := qt.New(t)
	c.Assert(RandomBytes(16), qt.HasLen, 16)
	for i := 0; i < 100; i++ {
		n := RandomInt(3, 7)
		c.Assert(n >= 3 && n < 7, qt.IsTrue)
	}
}
