package rpc

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestWeb3Iterator(t *testing.T) {
	c := qt.New(t)

	it := NewWeb3Iterator()
	_, err := it.Next()
	c.Assert(err, qt.IsNotNil)

	it.Add(&Web3Endpoint{URI: "a"}, &Web3Endpoint{URI: "b"}, &Web3Endpoint{URI: "c"})
	c.Assert(it.Available(), qt.Equals, 3)

	var seen []string
	for i := 0; i < 4; i++ {
		e, err := it.Next()
		c.Assert(err, qt.IsNil)
		seen = append(seen, e.URI)
	}
	c.Assert(seen, qt.DeepEquals, []string{"a", "b", "c", "a"})

	it.Disable("b")
	c.Assert(it.Available(), qt.Equals, 2)
	c.Assert(it.Disabled(), qt.Equals, 1)
	for i := 0; i < 4; i++ {
		e, err := it.Next()
		c.Assert(err, qt.IsNil)
		c.Assert(e.URI, qt.Not(qt.Equals), "b")
	}

	// when every endpoint fails, all of them are enabled again
	it.Disable("a")
	it.Disable("c")
	c.Assert(it.Available(), qt.Equals, 0)
	e, err := it.Next()
	c.Assert(err, qt.IsNil)
	c.Assert(e.URI, qt.Equals, "b")
	c.Assert(it.Available(), qt.Equals, 3)
	c.Assert(it.Disabled(), qt.Equals, 0)
}

func TestWeb3PoolNoEndpoints(t *testing.T) {
	c := qt.New(t)
	pool := NewWeb3Pool()
	_, err := pool.Endpoint(1)
	c.Assert(err, qt.IsNotNil)
	_, err = pool.Client(1)
	c.Assert(err, qt.IsNotNil)
	c.Assert(pool.NumberOfEndpoints(1, false), qt.Equals, 0)

	pool.addEndpoint(&Web3Endpoint{ChainID: 5, URI: "x"})
	pool.addEndpoint(&Web3Endpoint{ChainID: 5, URI: "y"})
	c.Assert(pool.NumberOfEndpoints(5, true), qt.Equals, 2)
	pool.DisableEndpoint(5, "x")
	c.Assert(pool.NumberOfEndpoints(5, true), qt.Equals, 1)
	c.Assert(pool.NumberOfEndpoints(5, false), qt.Equals, 2)
	cli, err := pool.Client(5)
	c.Assert(err, qt.IsNil)
	c.Assert(cli, qt.IsNotNil)
}
