// Package config holds the configuration of the tally commands. Values are
// read from command line flags and from environment variables prefixed with
// TALLY_, for example --api-port or TALLY_API_PORT.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/conf"
)

// Prefix is the namespace of the environment variables.
const Prefix = "TALLY"

// ErrExit is returned by Parse when the help or the version was printed and
// the command should exit without error.
var ErrExit = errors.New("exit requested")

type Log struct {
	Level  string `conf:"default:info,help:log level (debug info warn error)"`
	Output string `conf:"default:stdout,help:log output (stdout stderr or a file path)"`
}

type API struct {
	Host string `conf:"default:0.0.0.0"`
	Port int    `conf:"default:9090"`
}

type Storage struct {
	Dir string `conf:"default:tally-data,help:storage directory. Empty means in memory"`
}

// Web3 fields carry explicit env and flag names, otherwise the section name
// would be split as web-3.
type Web3 struct {
	RPC             []string      `conf:"env:WEB3_RPC,flag:web3-rpc,help:web3 rpc endpoints separated by ;"`
	VotingContract  string        `conf:"env:WEB3_VOTING_CONTRACT,flag:web3-voting-contract,help:address of the voting contract"`
	PrivateKey      string        `conf:"noprint,env:WEB3_PRIVATE_KEY,flag:web3-private-key,help:hex key used to sign transactions"`
	TxTimeout       time.Duration `conf:"default:30s,env:WEB3_TX_TIMEOUT,flag:web3-tx-timeout"`
	MonitorInterval time.Duration `conf:"default:5s,env:WEB3_MONITOR_INTERVAL,flag:web3-monitor-interval,help:interval between VoteCast event polls"`
}

type Prover struct {
	Key          string        `conf:"noprint,help:hex key used to seal journals. Empty disables the local prover"`
	Workers      int           `conf:"default:2"`
	PollInterval time.Duration `conf:"default:5s,help:interval between proof request status checks"`
	Expiry       time.Duration `conf:"default:10m,help:proof request expiry"`
	MarketURL    string        `conf:"help:API url of a remote proof market. Empty uses the local queue"`
	Trusted      string        `conf:"help:address of the trusted prover. Defaults to the local prover address"`
}

// Node is the configuration of the tallyd daemon.
type Node struct {
	conf.Version
	Log     Log
	API     API
	Storage Storage
	Web3    Web3
	Prover  Prover
}

// Publisher is the configuration of the publisher command.
type Publisher struct {
	conf.Version
	Log    Log
	Web3   Web3
	Prover Prover
	// Mock uses an in memory ledger instead of the voting contract.
	Mock bool `conf:"help:use an in memory ledger instead of the voting contract"`
}

// Parse fills cfg from args and the environment. If the help or the version
// was requested, it is printed and ErrExit is returned.
func Parse(args []string, cfg any) error {
	if err := conf.Parse(args, Prefix, cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(Prefix, cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return ErrExit
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(Prefix, cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return ErrExit
		}
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// String returns the printable configuration, without secrets.
func String(cfg any) string {
	out, err := conf.String(cfg)
	if err != nil {
		return fmt.Sprintf("cannot print config: %v", err)
	}
	return out
}
