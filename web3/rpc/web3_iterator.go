package rpc

import (
	"fmt"
	"sync"
)

// Web3Iterator struct is a round robin iterator over the endpoints of a
// single chainID. Endpoints that fail are disabled and skipped until every
// endpoint is disabled, then all of them are enabled again.
type Web3Iterator struct {
	mtx       sync.Mutex
	available []*Web3Endpoint
	disabled  []*Web3Endpoint
	next      int
}

// NewWeb3Iterator creates a new iterator with the endpoints provided.
func NewWeb3Iterator(endpoints ...*Web3Endpoint) *Web3Iterator {
	return &Web3Iterator{available: endpoints}
}

// Add appends new endpoints to the available list.
func (w3i *Web3Iterator) Add(endpoints ...*Web3Endpoint) {
	w3i.mtx.Lock()
	defer w3i.mtx.Unlock()
	w3i.available = append(w3i.available, endpoints...)
}

// Available returns the number of available endpoints.
func (w3i *Web3Iterator) Available() int {
	w3i.mtx.Lock()
	defer w3i.mtx.Unlock()
	return len(w3i.available)
}

// Disabled returns the number of disabled endpoints.
func (w3i *Web3Iterator) Disabled() int {
	w3i.mtx.Lock()
	defer w3i.mtx.Unlock()
	return len(w3i.disabled)
}

// Next returns the next available endpoint. If every endpoint is disabled,
// they are all made available again before picking one.
func (w3i *Web3Iterator) Next() (*Web3Endpoint, error) {
	w3i.mtx.Lock()
	defer w3i.mtx.Unlock()
	if len(w3i.available) == 0 {
		if len(w3i.disabled) == 0 {
			return nil, fmt.Errorf("no endpoints available")
		}
		w3i.available = w3i.disabled
		w3i.disabled = nil
		w3i.next = 0
	}
	if w3i.next >= len(w3i.available) {
		w3i.next = 0
	}
	endpoint := w3i.available[w3i.next]
	w3i.next++
	return endpoint, nil
}

// Disable moves the endpoint with the given URI to the disabled list.
func (w3i *Web3Iterator) Disable(uri string) {
	w3i.mtx.Lock()
	defer w3i.mtx.Unlock()
	for i, e := range w3i.available {
		if e.URI == uri {
			w3i.available = append(w3i.available[:i:i], w3i.available[i+1:]...)
			w3i.disabled = append(w3i.disabled, e)
			if w3i.next > i {
				w3i.next--
			}
			return
		}
	}
}
