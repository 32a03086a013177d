package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// GatewayRequests counts catalog gateway calls by HTTP method and outcome.
	GatewayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_gateway_requests_total",
		Help: "The total number of catalog gateway requests",
	}, []string{"method", "outcome"})

	// OptimisticRollbacks counts optimistic view changes reverted after a failed update.
	OptimisticRollbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_optimistic_rollbacks_total",
		Help: "The total number of optimistic updates rolled back",
	}, []string{"operation"})
)

// ObserveGatewayRequest records the outcome of one gateway call.
func ObserveGatewayRequest(method string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	GatewayRequests.WithLabelValues(method, outcome).Inc()
}
