package rpc

import "github.com/ethereum/go-ethereum/ethclient"

// Web3Endpoint is a dialed web3 provider.
type Web3Endpoint struct {
	ChainID uint64 `json:"chainId"`
	URI     string `json:"uri"`
	client  *ethclient.Client
}
