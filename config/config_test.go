package config

import (
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestParseDefaults(t *testing.T) {
	c := qt.New(t)
	cfg := &Node{}
	c.Assert(Parse(nil, cfg), qt.IsNil)
	c.Assert(cfg.Log.Level, qt.Equals, "info")
	c.Assert(cfg.API.Port, qt.Equals, 9090)
	c.Assert(cfg.Storage.Dir, qt.Equals, "tally-data")
	c.Assert(cfg.Prover.Workers, qt.Equals, 2)
	c.Assert(cfg.Prover.PollInterval, qt.Equals, 5*time.Second)
	c.Assert(cfg.Prover.Expiry, qt.Equals, 10*time.Minute)
	c.Assert(cfg.Web3.RPC, qt.HasLen, 0)
}

func TestParseFlagsAndEnv(t *testing.T) {
	c := qt.New(t)
	t.Setenv("TALLY_API_PORT", "7000")
	t.Setenv("TALLY_WEB3_RPC", "http://a:8545;http://b:8545")
	t.Setenv("TALLY_PROVER_KEY", "secret")

	cfg := &Node{}
	c.Assert(Parse([]string{"--log-level", "debug", "--prover-poll-interval=1s", "--api-port", "7100"}, cfg), qt.IsNil)
	c.Assert(cfg.Log.Level, qt.Equals, "debug")
	c.Assert(cfg.Prover.PollInterval, qt.Equals, time.Second)
	// flags take precedence over the environment
	c.Assert(cfg.API.Port, qt.Equals, 7100)
	c.Assert(cfg.Web3.RPC, qt.DeepEquals, []string{"http://a:8545", "http://b:8545"})

	out := String(cfg)
	c.Assert(strings.Contains(out, "--api-port=7100"), qt.IsTrue)
	c.Assert(strings.Contains(out, "secret"), qt.IsFalse)
}

func TestParseHelpAndErrors(t *testing.T) {
	c := qt.New(t)
	c.Assert(Parse([]string{"--help"}, &Publisher{}), qt.Equals, ErrExit)
	c.Assert(Parse([]string{"--version"}, &Publisher{}), qt.Equals, ErrExit)
	c.Assert(Parse([]string{"--api-port", "nan"}, &Node{}), qt.ErrorMatches, "parsing config: .*")

	cfg := &Publisher{}
	c.Assert(Parse([]string{"--mock"}, cfg), qt.IsNil)
	c.Assert(cfg.Mock, qt.IsTrue)
}

func TestParseWeb3Names(t *testing.T) {
	c := qt.New(t)
	t.Setenv("TALLY_WEB3_RPC", "http://env:8545")
	t.Setenv("TALLY_WEB3_VOTING_CONTRACT", "0x00000000000000000000000000000000000000aa")
	t.Setenv("TALLY_WEB3_PRIVATE_KEY", "envkey")
	t.Setenv("TALLY_WEB3_TX_TIMEOUT", "45s")
	t.Setenv("TALLY_WEB3_MONITOR_INTERVAL", "3s")

	env := &Node{}
	c.Assert(Parse(nil, env), qt.IsNil)
	c.Assert(env.Web3.RPC, qt.DeepEquals, []string{"http://env:8545"})
	c.Assert(env.Web3.VotingContract, qt.Equals, "0x00000000000000000000000000000000000000aa")
	c.Assert(env.Web3.PrivateKey, qt.Equals, "envkey")
	c.Assert(env.Web3.TxTimeout, qt.Equals, 45*time.Second)
	c.Assert(env.Web3.MonitorInterval, qt.Equals, 3*time.Second)

	flags := &Publisher{}
	c.Assert(Parse([]string{
		"--web3-rpc", "http://flag:8545",
		"--web3-voting-contract", "0x00000000000000000000000000000000000000bb",
		"--web3-private-key", "flagkey",
		"--web3-tx-timeout=10s",
		"--web3-monitor-interval=2s",
	}, flags), qt.IsNil)
	c.Assert(flags.Web3.RPC, qt.DeepEquals, []string{"http://flag:8545"})
	c.Assert(flags.Web3.VotingContract, qt.Equals, "0x00000000000000000000000000000000000000bb")
	c.Assert(flags.Web3.PrivateKey, qt.Equals, "flagkey")
	c.Assert(flags.Web3.TxTimeout, qt.Equals, 10*time.Second)
	c.Assert(flags.Web3.MonitorInterval, qt.Equals, 2*time.Second)

	out := String(flags)
	c.Assert(strings.Contains(out, "--web3-tx-timeout=10s"), qt.IsTrue)
	c.Assert(strings.Contains(out, "--web-3"), qt.IsFalse)
	c.Assert(strings.Contains(out, "flagkey"), qt.IsFalse)
}
