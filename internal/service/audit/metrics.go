package audit

import "github.com/prometheus/client_golang/prometheus"

var integrityFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "voicedoc",
	Subsystem: "audit",
	Name:      "integrity_failures_total",
	Help:      "Number of audit hash chain verification failures.",
})

func init() {
	prometheus.MustRegister(integrityFailures)
}
