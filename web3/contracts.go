package web3

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/vocdoni/vocdoni-tally/log"
	"github.com/vocdoni/vocdoni-tally/util"
	"github.com/vocdoni/vocdoni-tally/web3/rpc"
)

const (
	web3QueryTimeout = 10 * time.Second
	// defaultGasLimit is used for every transaction sent to the voting
	// contract.
	defaultGasLimit = 10000000
)

// Addresses contains the addresses of the contracts deployed in the network.
type Addresses struct {
	Voting common.Address
}

// Contracts contains the bindings to the deployed voting contract.
type Contracts struct {
	ChainID  uint64
	Addrs    *Addresses
	voting   *bind.BoundContract
	web3pool *rpc.Web3Pool
	cli      *rpc.Client
	privKey  *ecdsa.PrivateKey
	address  common.Address

	// txLock serializes transactions so nonces are not reused.
	txLock         sync.Mutex
	lastWatchBlock uint64
}

// NewContracts creates a new Contracts instance with the given web3 endpoint.
func NewContracts(addresses *Addresses, web3rpc string) (*Contracts, error) {
	if addresses == nil {
		return nil, fmt.Errorf("no contract addresses provided")
	}
	w3pool := rpc.NewWeb3Pool()
	chainID, err := w3pool.AddEndpoint(web3rpc)
	if err != nil {
		return nil, fmt.Errorf("failed to add web3 endpoint: %w", err)
	}
	cli, err := w3pool.Client(chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &Contracts{
		ChainID:  chainID,
		Addrs:    addresses,
		voting:   bind.NewBoundContract(addresses.Voting, VotingABI, cli, cli, cli),
		web3pool: w3pool,
		cli:      cli,
	}, nil
}

// AddWeb3Endpoint adds a new web3 endpoint to the pool.
func (c *Contracts) AddWeb3Endpoint(web3rpc string) error {
	_, err := c.web3pool.AddEndpoint(web3rpc)
	return err
}

// SetAccountPrivateKey sets the private key to be used for signing transactions.
func (c *Contracts) SetAccountPrivateKey(hexPrivKey string) error {
	var err error
	c.privKey, err = crypto.HexToECDSA(util.TrimHex(hexPrivKey))
	if err != nil {
		return fmt.Errorf("failed to parse private key: %w", err)
	}
	c.address = crypto.PubkeyToAddress(c.privKey.PublicKey)
	return nil
}

// AccountAddress returns the address of the account used to sign transactions.
func (c *Contracts) AccountAddress() common.Address {
	return c.address
}

// authTransactOpts helper method creates the transact options with the private
// key configured. It sets the nonce, gas tip cap, and gas limit. If something
// goes wrong creating the signer, getting the nonce, or getting the gas price,
// it returns an error.
func (c *Contracts) authTransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if c.privKey == nil {
		return nil, fmt.Errorf("no private key set")
	}
	bChainID := new(big.Int).SetUint64(c.ChainID)
	auth, err := bind.NewKeyedTransactorWithChainID(c.privKey, bChainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	// create the context with a timeout
	qctx, cancel := context.WithTimeout(ctx, web3QueryTimeout)
	defer cancel()
	// set the nonce
	log.Debugw("getting nonce", "address", c.address.Hex())
	nonce, err := c.cli.PendingNonceAt(qctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)
	// set the gas tip cap
	if auth.GasTipCap, err = c.cli.SuggestGasTipCap(qctx); err != nil {
		return nil, fmt.Errorf("failed to get gas tip cap: %w", err)
	}
	auth.GasLimit = defaultGasLimit
	auth.Context = ctx
	return auth, nil
}

// transact sends a transaction calling method with params and returns its
// hash.
func (c *Contracts) transact(ctx context.Context, method string, params ...any) (common.Hash, error) {
	c.txLock.Lock()
	defer c.txLock.Unlock()
	txOpts, err := c.authTransactOpts(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to create transact options: %w", err)
	}
	tx, err := c.voting.Transact(txOpts, method, params...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to call %s: %w", method, err)
	}
	log.Debugw("transaction sent", "method", method, "hash", tx.Hash().Hex())
	return tx.Hash(), nil
}

// Dial connects to the voting contract through every given endpoint and, if
// hexPrivKey is not empty, configures the transaction signer. Endpoints
// other than the first one that cannot be added are skipped.
func Dial(addresses *Addresses, rpcs []string, hexPrivKey string) (*Contracts, error) {
	if len(rpcs) == 0 {
		return nil, fmt.Errorf("no web3 endpoints provided")
	}
	c, err := NewContracts(addresses, rpcs[0])
	if err != nil {
		return nil, err
	}
	for _, endpoint := range rpcs[1:] {
		if err := c.AddWeb3Endpoint(endpoint); err != nil {
			log.Warnw("failed to add web3 endpoint", "rpc", endpoint, "error", err.Error())
		}
	}
	if hexPrivKey != "" {
		if err := c.SetAccountPrivateKey(hexPrivKey); err != nil {
			return nil, err
		}
	}
	log.Infow("contracts initialized", "chainId", c.ChainID, "voting", addresses.Voting.Hex(), "account", c.address.Hex())
	return c, nil
}
