// Command tallyd runs a tally node: the HTTP API, the local proof request
// queue and, when configured, the prover worker and the ledger services.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/config"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/service"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/web3"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
)

func main() {
	cfg := &config.Node{}
	cfg.Version.SVN = "dev"
	cfg.Version.Desc = "verifiable vote tally node"
	if err := config.Parse(os.Args[1:], cfg); err != nil {
		if errors.Is(err, config.ErrExit) {
			return
		}
		log.Fatal(err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infof("config:\n%s", config.String(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// storage
	var stg *storage.Storage
	if cfg.Storage.Dir == "" {
		stg = storage.New(nil)
	} else {
		database, err := metadb.New(db.TypePebble, cfg.Storage.Dir)
		if err != nil {
			log.Fatalf("failed to open storage: %v", err)
		}
		stg = storage.New(database)
	}
	defer stg.Close()

	// proof market
	var market prover.Market = prover.NewQueueMarket(stg, cfg.Prover.Expiry)
	if cfg.Prover.MarketURL != "" {
		remote, err := prover.NewRemoteMarket(cfg.Prover.MarketURL)
		if err != nil {
			log.Fatal(err)
		}
		market = remote
	}

	// local prover
	if cfg.Prover.Key != "" {
		signer := ethereum.NewSignKeys()
		if err := signer.AddHexKey(cfg.Prover.Key); err != nil {
			log.Fatalf("invalid prover key: %v", err)
		}
		executor, err := prover.NewExecutor(signer, nil)
		if err != nil {
			log.Fatal(err)
		}
		ps, err := service.NewProver(stg, executor, cfg.Prover.Workers, cfg.Prover.PollInterval)
		if err != nil {
			log.Fatal(err)
		}
		if err := ps.Start(ctx); err != nil {
			log.Fatal(err)
		}
		defer ps.Stop()
	}

	apiService := service.NewAPI(stg, cfg.API.Host, cfg.API.Port)
	apiService.Market = market

	// ledger services
	if len(cfg.Web3.RPC) > 0 {
		contracts, err := web3.Dial(&web3.Addresses{
			Voting: common.HexToAddress(cfg.Web3.VotingContract),
		}, cfg.Web3.RPC, cfg.Web3.PrivateKey)
		if err != nil {
			log.Fatal(err)
		}
		monitor := service.NewVoteMonitor(contracts, stg, cfg.Web3.MonitorInterval)
		if err := monitor.Start(ctx); err != nil {
			log.Fatal(err)
		}
		defer monitor.Stop()

		if cfg.Web3.PrivateKey != "" {
			orch, err := service.NewOrchestrator(stg, contracts, market)
			if err != nil {
				log.Fatal(err)
			}
			orch.PollInterval = cfg.Prover.PollInterval
			orch.RequestExpiry = cfg.Prover.Expiry
			orch.TxTimeout = cfg.Web3.TxTimeout
			apiService.Voter = orch
		}
	}

	if err := apiService.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer apiService.Stop()
	log.Infow("tally node started", "api", apiService.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Infow("shutting down")
}
