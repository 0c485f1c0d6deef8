// Command publisher runs the complete tally flow against a voting contract:
// it resets the proposals, creates a new one, casts three votes, requests the
// tally proof, settles it and prints the resulting tally state.
package main

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/vocdoni/vocdoni-tally/config"
	"github.com/vocdoni/vocdoni-tally/crypto/ethereum"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/prover"
	"github.com/vocdoni/vocdoni-tally/service"
	"github.com/vocdoni/vocdoni-tally/storage"
	"github.com/vocdoni/vocdoni-tally/tally"
	"github.com/vocdoni/vocdoni-tally/web3"
)

// proposalDuration is how long the created proposal stays open.
const proposalDuration = time.Hour

func main() {
	cfg := &config.Publisher{}
	cfg.Version.SVN = "dev"
	cfg.Version.Desc = "verifiable vote tally publisher"
	if err := config.Parse(os.Args[1:], cfg); err != nil {
		if errors.Is(err, config.ErrExit) {
			return
		}
		log.Fatal(err)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Publisher) error {
	ctx := context.Background()
	stg := storage.New(nil)
	defer stg.Close()

	// the local prover is used unless a remote market is configured
	var market prover.Market
	var trusted common.Address
	if cfg.Prover.MarketURL != "" {
		remote, err := prover.NewRemoteMarket(cfg.Prover.MarketURL)
		if err != nil {
			return err
		}
		market = remote
		trusted = common.HexToAddress(cfg.Prover.Trusted)
	} else {
		signer := ethereum.NewSignKeys()
		if cfg.Prover.Key != "" {
			if err := signer.AddHexKey(cfg.Prover.Key); err != nil {
				return err
			}
		} else if err := signer.Generate(); err != nil {
			return err
		}
		executor, err := prover.NewExecutor(signer, nil)
		if err != nil {
			return err
		}
		ps, err := service.NewProver(stg, executor, cfg.Prover.Workers, time.Second)
		if err != nil {
			return err
		}
		if err := ps.Start(ctx); err != nil {
			return err
		}
		defer ps.Stop()
		market = prover.NewQueueMarket(stg, cfg.Prover.Expiry)
		trusted = executor.Address()
	}

	var ledger service.Ledger
	if cfg.Mock {
		ledger = service.NewMockLedger(trusted)
	} else {
		contracts, err := web3.Dial(&web3.Addresses{
			Voting: common.HexToAddress(cfg.Web3.VotingContract),
		}, cfg.Web3.RPC, cfg.Web3.PrivateKey)
		if err != nil {
			return err
		}
		ledger = contracts
	}

	orch, err := service.NewOrchestrator(stg, ledger, market)
	if err != nil {
		return err
	}
	orch.PollInterval = cfg.Prover.PollInterval
	orch.RequestExpiry = cfg.Prover.Expiry
	orch.TxTimeout = cfg.Web3.TxTimeout

	// reset proposals on the contract and create a new one
	log.Infow("resetting all proposals on the voting contract")
	hash, err := ledger.ResetAllProposals(ctx)
	if err != nil {
		return err
	}
	if err := ledger.WaitTx(ctx, hash, cfg.Web3.TxTimeout); err != nil {
		return err
	}
	log.Infow("creating new proposal")
	hash, err = ledger.CreateProposal(ctx, time.Now().Add(proposalDuration))
	if err != nil {
		return err
	}
	if err := ledger.WaitTx(ctx, hash, cfg.Web3.TxTimeout); err != nil {
		return err
	}

	pid := big.NewInt(0)
	if err := logState(ctx, ledger, pid); err != nil {
		return err
	}
	log.Infow("casting votes")
	for i, choice := range []bool{true, false, true} {
		vote := &tally.Vote{
			ProposalId: pid,
			Voter:      common.BytesToAddress(bytes.Repeat([]byte{byte(i + 1)}, common.AddressLength)),
			Choice:     choice,
		}
		if _, _, err := orch.CastVote(ctx, vote); err != nil {
			return err
		}
	}
	log.Infow("cast all votes, submitting tally request")
	if err := logState(ctx, ledger, pid); err != nil {
		return err
	}

	result, err := orch.Tally(ctx, pid)
	if err != nil {
		return err
	}
	log.Infow("vote tally results", "proposalId", pid.String(), "yes", result.Yes, "no", result.No,
		"requestId", result.RequestID)

	// query the proposal to check the tally was completed
	state, err := ledger.ProposalTallyState(ctx, pid)
	if err != nil {
		return err
	}
	log.Infow("proposal tally state",
		"proposalId", pid.String(),
		"tallied", state.Tallied,
		"yes", state.YesCount,
		"no", state.NoCount)
	return nil
}

func logState(ctx context.Context, ledger service.Ledger, pid *big.Int) error {
	state, err := ledger.ProposalTallyState(ctx, pid)
	if err != nil {
		return err
	}
	log.Infow("current commitments digest on contract", "proposalId", pid.String(), "digest", state.CommitmentsDigest.Hex())
	return nil
}
