package schemavalidator

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opRegister = "register"
	opValidate = "validate"

	resultSuccess  = "success"
	resultFailure  = "failure"
	resultValid    = "valid"
	resultInvalid  = "invalid"
	resultRejected = "rejected" // refused before reaching the engine
)

type metrics struct {
	initTotal         *prometheus.CounterVec
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// newMetrics creates the Validator's collectors and registers them with reg.
// Validators sharing a registry share the collectors, so the series count
// all of them together.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		initTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemavalidator",
			Name:      "init_total",
			Help:      "Total number of engine initialization attempts by result.",
		}, []string{"result"})),
		operationsTotal: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemavalidator",
			Name:      "operations_total",
			Help:      "Total number of schema registrations and validations by result.",
		}, []string{"operation", "result"})),
		operationDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schemavalidator",
			Name:      "operation_duration_seconds",
			Help:      "Time (in seconds) spent inside the engine per operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"operation"})),
	}
}

// register adds c to reg, returning the collector already registered under
// the same descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
