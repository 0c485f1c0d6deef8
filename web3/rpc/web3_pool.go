// Package rpc balances calls to the voting contract across several web3
// endpoints of the same chain. Endpoints that fail are disabled and the next
// one is tried; once every endpoint of a chain has failed all of them are
// enabled again.
package rpc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vocdoni/vocdoni-tally/log"
)

const (
	// DefaultMaxWeb3ClientRetries is the number of endpoints a call, or a
	// dial, is attempted on before giving up.
	DefaultMaxWeb3ClientRetries = 5
	// dialTimeout bounds dialing an endpoint and reading its chain id.
	dialTimeout = 10 * time.Second
)

// Web3Pool groups web3 endpoints by chain id.
type Web3Pool struct {
	mtx       sync.RWMutex
	endpoints map[uint64]*Web3Iterator
}

// NewWeb3Pool returns an empty pool.
func NewWeb3Pool() *Web3Pool {
	return &Web3Pool{endpoints: make(map[uint64]*Web3Iterator)}
}

// AddEndpoint dials uri and adds it to the pool under the chain id it
// reports, which is returned.
func (p *Web3Pool) AddEndpoint(uri string) (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	client, err := dial(ctx, uri)
	if err != nil {
		return 0, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return 0, fmt.Errorf("error getting the chainID from the web3 provider '%s': %w", uri, err)
	}
	p.addEndpoint(&Web3Endpoint{ChainID: chainID.Uint64(), URI: uri, client: client})
	log.Debugw("web3 endpoint added", "chainID", chainID.Uint64(), "uri", uri)
	return chainID.Uint64(), nil
}

func (p *Web3Pool) addEndpoint(endpoint *Web3Endpoint) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if it, ok := p.endpoints[endpoint.ChainID]; ok {
		it.Add(endpoint)
		return
	}
	p.endpoints[endpoint.ChainID] = NewWeb3Iterator(endpoint)
}

func (p *Web3Pool) iterator(chainID uint64) (*Web3Iterator, bool) {
	p.mtx.RLock()
	defer p.mtx.RUnlock()
	it, ok := p.endpoints[chainID]
	return it, ok
}

// Endpoint returns the next available endpoint of chainID.
func (p *Web3Pool) Endpoint(chainID uint64) (*Web3Endpoint, error) {
	it, ok := p.iterator(chainID)
	if !ok {
		return nil, fmt.Errorf("no endpoint found for chainID %d", chainID)
	}
	return it.Next()
}

// DisableEndpoint marks uri as failed for chainID.
func (p *Web3Pool) DisableEndpoint(chainID uint64, uri string) {
	if it, ok := p.iterator(chainID); ok {
		it.Disable(uri)
	}
}

// NumberOfEndpoints counts the endpoints of chainID, only the available ones
// when onlyAvailable is set.
func (p *Web3Pool) NumberOfEndpoints(chainID uint64, onlyAvailable bool) int {
	it, ok := p.iterator(chainID)
	if !ok {
		return 0
	}
	if onlyAvailable {
		return it.Available()
	}
	return it.Available() + it.Disabled()
}

// Client returns a contract backend that spreads calls over the endpoints of
// chainID.
func (p *Web3Pool) Client(chainID uint64) (*Client, error) {
	if _, err := p.Endpoint(chainID); err != nil {
		return nil, fmt.Errorf("error getting endpoint for chainID %d: %w", chainID, err)
	}
	return &Client{w3p: p, chainID: chainID, retries: DefaultMaxWeb3ClientRetries}, nil
}

func dial(ctx context.Context, uri string) (*ethclient.Client, error) {
	var err error
	for i := 0; i < DefaultMaxWeb3ClientRetries; i++ {
		var client *ethclient.Client
		if client, err = ethclient.DialContext(ctx, uri); err == nil {
			return client, nil
		}
	}
	return nil, fmt.Errorf("error dialing web3 provider uri '%s': %w", uri, err)
}
