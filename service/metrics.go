package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tally"

var (
	votesCast = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "votes_cast_total",
		Help:      "Votes stored and cast on the ledger.",
	})
	commitmentsObserved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "commitments_observed_total",
		Help:      "Vote commitments read from the ledger events.",
	})
	talliesSettled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tallies_settled_total",
		Help:      "Proposal tallies settled on the ledger.",
	})
	tallyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "tally_failures_total",
		Help:      "Failed tally attempts by stage.",
	}, []string{"stage"})
	proofRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "proof_requests_total",
		Help:      "Proof requests processed by the local prover by outcome.",
	}, []string{"outcome"})
)
