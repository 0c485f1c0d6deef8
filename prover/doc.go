// Package prover runs programs in an attested execution environment and
// serves proof requests.
//
// A proof request names a program by its image id and carries the program
// input. The Executor runs the program and returns its journal together with a
// seal: a secp256k1 signature of the executor key over
//
//	keccak256(imageID || keccak256(journal))
//
// Anyone trusting the executor address can check a journal with VerifySeal.
// Requests are exchanged through a Market: QueueMarket is backed by the local
// storage queue and served by a Worker, RemoteMarket talks to another node
// through its HTTP API.
package prover
