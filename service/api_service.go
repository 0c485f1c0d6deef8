package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vocdoni/vocdoni-tally/api"
	"github.com/vocdoni/vocdoni-tally/storage"
)

// apiShutdownTimeout bounds the graceful shutdown of the HTTP server.
const apiShutdownTimeout = 5 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	storage *storage.Storage
	api     *api.API
	mu      sync.Mutex
	host    string
	port    int

	// Market and Voter are passed to the API when it starts.
	Market api.Market
	Voter  api.VoteCaster
}

// NewAPI creates a new APIService instance.
func NewAPI(storage *storage.Storage, host string, port int) *APIService {
	return &APIService{
		storage: storage,
		host:    host,
		port:    port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start.
func (as *APIService) Start(_ context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.api != nil {
		return fmt.Errorf("service already running")
	}

	a, err := api.New(&api.APIConfig{
		Host:    as.host,
		Port:    as.port,
		Storage: as.storage,
		Market:  as.Market,
		Voter:   as.Voter,
	})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	as.api = a
	return nil
}

// Stop halts the API server. The storage is left open.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.api == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), apiShutdownTimeout)
	defer cancel()
	_ = as.api.Close(ctx)
	as.api = nil
}

// Addr returns the address the API server listens on, or an empty string if
// it is not running.
func (as *APIService) Addr() string {
	as.mu.Lock()
	defer as.mu.Unlock()
	if as.api == nil {
		return ""
	}
	return as.api.Addr()
}

// HostPort returns the configured host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	return as.host, as.port
}
