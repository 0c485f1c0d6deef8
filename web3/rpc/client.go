package rpc

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vocdoni/vocdoni-tally/log"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultRetrySleep = 200 * time.Millisecond
)

// Client struct implements bind.ContractBackend interface for a web3 pool
// with an specific chainID. Every call is sent to the next available
// endpoint of the pool and retried on the following ones if it fails.
type Client struct {
	w3p     *Web3Pool
	chainID uint64
	retries int
}

var _ bind.ContractBackend = (*Client)(nil)

// EthClient returns the ethclient of the next available endpoint.
func (c *Client) EthClient() (*ethclient.Client, error) {
	endpoint, err := c.w3p.Endpoint(c.chainID)
	if err != nil {
		return nil, fmt.Errorf("error getting endpoint for chainID %d: %w", c.chainID, err)
	}
	return endpoint.client, nil
}

// CodeAt method wraps the CodeAt method from the ethclient.Client.
func (c *Client) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.CodeAt(ctx, contract, blockNumber)
	})
}

// CallContract method wraps the CallContract method from the ethclient.Client.
func (c *Client) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.CallContract(ctx, call, blockNumber)
	})
}

// HeaderByNumber method wraps the HeaderByNumber method from the ethclient.Client.
func (c *Client) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (*types.Header, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.HeaderByNumber(ctx, number)
	})
}

// PendingCodeAt method wraps the PendingCodeAt method from the ethclient.Client.
func (c *Client) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.PendingCodeAt(ctx, account)
	})
}

// PendingNonceAt method wraps the PendingNonceAt method from the ethclient.Client.
func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (uint64, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.PendingNonceAt(ctx, account)
	})
}

// SuggestGasPrice method wraps the SuggestGasPrice method from the ethclient.Client.
func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (*big.Int, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.SuggestGasPrice(ctx)
	})
}

// SuggestGasTipCap method wraps the SuggestGasTipCap method from the ethclient.Client.
func (c *Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (*big.Int, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.SuggestGasTipCap(ctx)
	})
}

// EstimateGas method wraps the EstimateGas method from the ethclient.Client.
func (c *Client) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (uint64, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.EstimateGas(ctx, call)
	})
}

// SendTransaction method wraps the SendTransaction method from the
// ethclient.Client. It is not retried on other endpoints to avoid
// broadcasting the same transaction twice.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	cli, err := c.EthClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return cli.SendTransaction(ctx, tx)
}

// FilterLogs method wraps the FilterLogs method from the ethclient.Client.
func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) ([]types.Log, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.FilterLogs(ctx, query)
	})
}

// SubscribeFilterLogs method wraps the SubscribeFilterLogs method from the
// ethclient.Client.
func (c *Client) SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (ethereum.Subscription, error) {
		return cli.SubscribeFilterLogs(ctx, query, ch)
	})
}

// TransactionReceipt method wraps the TransactionReceipt method from the
// ethclient.Client. A missing receipt is returned as ethereum.NotFound
// without disabling the endpoint.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	cli, err := c.EthClient()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return cli.TransactionReceipt(ctx, hash)
}

// BlockNumber method wraps the BlockNumber method from the ethclient.Client.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return retryAndCheckErr(c, func(cli *ethclient.Client) (uint64, error) {
		ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
		return cli.BlockNumber(ctx)
	})
}

// retryAndCheckErr calls fn with the clients of the pool endpoints until it
// succeeds or the retries are exhausted. Endpoints that fail are disabled.
func retryAndCheckErr[T any](c *Client, fn func(*ethclient.Client) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for i := 0; i < c.retries; i++ {
		endpoint, err := c.w3p.Endpoint(c.chainID)
		if err != nil {
			return zero, fmt.Errorf("error getting endpoint for chainID %d: %w", c.chainID, err)
		}
		res, err := fn(endpoint.client)
		if err == nil {
			return res, nil
		}
		lastErr = err
		log.Debugw("web3 call failed, disabling endpoint", "chainID", c.chainID, "uri", endpoint.URI, "error", err.Error())
		c.w3p.DisableEndpoint(c.chainID, endpoint.URI)
		time.Sleep(defaultRetrySleep)
	}
	return zero, fmt.Errorf("web3 call failed after %d retries: %w", c.retries, lastErr)
}
