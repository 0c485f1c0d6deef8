package tests

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/vocdoni-tally/api/client"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/service"
	"github.com/vocdoni/vocdoni-tally/storage"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

// testPollInterval is used for every polling loop of the test nodes.
const testPollInterval = 50 * time.Millisecond

// TestNode is a tally node with an in memory ledger.
type TestNode struct {
	Storage  *storage.Storage
	Ledger   *service.MockLedger
	Market   prover.Market
	Orch     *service.Orchestrator
	API      *service.APIService
	Executor *prover.Executor
}

// NewTestSigner creates and initializes a new ethereum signer for testing.
func NewTestSigner() (*ethereum.SignKeys, error) {
	signer := ethereum.NewSignKeys()
	if err := signer.Generate(); err != nil {
		return nil, err
	}
	return signer, nil
}

// NewTestNode starts a node backed by a pebble database in a temporary
// directory. If market is nil, the node serves its own queue with a local
// prover; otherwise the requests go to market and seals from trusted are
// accepted by the ledger.
func NewTestNode(ctx context.Context, t *testing.T, market prover.Market, trusted *prover.Executor) *TestNode {
	c := qt.New(t)
	database, err := metadb.New(db.TypePebble, filepath.Join(t.TempDir(), "db"))
	c.Assert(err, qt.IsNil)
	stg := storage.New(database)
	t.Cleanup(stg.Close)

	n := &TestNode{Storage: stg, Market: market, Executor: trusted}
	if market == nil {
		signer, err := NewTestSigner()
		c.Assert(err, qt.IsNil)
		n.Executor, err = prover.NewExecutor(signer, nil)
		c.Assert(err, qt.IsNil)
		ps, err := service.NewProver(stg, n.Executor, 2, testPollInterval)
		c.Assert(err, qt.IsNil)
		c.Assert(ps.Start(ctx), qt.IsNil)
		t.Cleanup(ps.Stop)
		n.Market = prover.NewQueueMarket(stg, time.Minute)
	}
	n.Ledger = service.NewMockLedger(n.Executor.Address())

	monitor := service.NewVoteMonitor(n.Ledger, stg, testPollInterval)
	c.Assert(monitor.Start(ctx), qt.IsNil)
	t.Cleanup(monitor.Stop)

	n.Orch, err = service.NewOrchestrator(stg, n.Ledger, n.Market)
	c.Assert(err, qt.IsNil)
	n.Orch.PollInterval = testPollInterval

	n.API = service.NewAPI(stg, "127.0.0.1", 0)
	n.API.Market = n.Market
	n.API.Voter = n.Orch
	c.Assert(n.API.Start(ctx), qt.IsNil)
	t.Cleanup(n.API.Stop)
	return n
}

// Client returns an API client connected to the node.
func (n *TestNode) Client(t *testing.T) *client.HTTPclient {
	cli, err := client.New(fmt.Sprintf("http://%s", n.API.Addr()))
	qt.New(t).Assert(err, qt.IsNil)
	return cli
}
