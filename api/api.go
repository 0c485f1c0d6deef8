package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vocdoni/vocdoni-tally/log"
	stg "github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/types"
)

// Market accepts proof requests and reports their status.
type Market interface {
	Submit(ctx context.Context, req *types.ProofRequest) (string, error)
	Status(ctx context.Context, id string) (*types.ProofRequest, *types.Fulfillment, error)
}

// VoteCaster stores a vote and casts its commitment on the ledger.
type VoteCaster interface {
	CastVote(ctx context.Context, vote *tally.Vote) (uint64, common.Hash, error)
}

// APIConfig type represents the configuration for the API HTTP server.
// It includes the host, port and an existing storage instance. Market and
// Voter are optional: without Market the proof request endpoints are not
// available, without Voter votes are only stored.
type APIConfig struct {
	Host    string
	Port    int
	Storage *stg.Storage
	Market  Market
	Voter   VoteCaster
}

// API type represents the API HTTP server.
type API struct {
	router   *chi.Mux
	storage  *stg.Storage
	market   Market
	voter    VoteCaster
	server   *http.Server
	listener net.Listener
}

// New creates a new API instance with the given configuration and starts
// the HTTP server in background.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil {
		return nil, fmt.Errorf("missing storage instance")
	}
	a := &API{
		storage: conf.Storage,
		market:  conf.Market,
		voter:   conf.Voter,
	}

	// Initialize router
	a.initRouter()
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", conf.Host, conf.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s:%d: %w", conf.Host, conf.Port, err)
	}
	a.listener = listener
	a.server = &http.Server{Handler: a.router, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infow("starting API server", "address", listener.Addr().String())
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw(err, "API server stopped")
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// Addr returns the address the server listens on.
func (a *API) Addr() string {
	return a.listener.Addr().String()
}

// Close gracefully stops the HTTP server.
func (a *API) Close(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", MetricsEndpoint, "method", "GET")
	a.router.Handle(MetricsEndpoint, promhttp.Handler())
	log.Infow("register handler", "endpoint", RequestsEndpoint, "method", "POST")
	a.router.Post(RequestsEndpoint, a.newProofRequest)
	log.Infow("register handler", "endpoint", RequestEndpoint, "method", "GET")
	a.router.Get(RequestEndpoint, a.proofRequest)
	log.Infow("register handler", "endpoint", ProposalVotesEndpoint, "method", "POST")
	a.router.Post(ProposalVotesEndpoint, a.newVote)
	log.Infow("register handler", "endpoint", ProposalVotesEndpoint, "method", "GET")
	a.router.Get(ProposalVotesEndpoint, a.votes)
	log.Infow("register handler", "endpoint", ProposalWitnessEndpoint, "method", "GET")
	a.router.Get(ProposalWitnessEndpoint, a.witness)
	log.Infow("register handler", "endpoint", ProposalTallyEndpoint, "method", "GET")
	a.router.Get(ProposalTallyEndpoint, a.tallyResult)
	log.Infow("register handler", "endpoint", ProposalCommitmentsEndpoint, "method", "GET")
	a.router.Get(ProposalCommitmentsEndpoint, a.commitments)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
