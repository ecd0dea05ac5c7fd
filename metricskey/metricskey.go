package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfCSROperation is perf metric
	PerfCSROperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_csr",
		Help:         "perf_csr provides the sample metrics of key and CSR operations",
		RequiredTags: []string{"algo", "action"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfCSROperation,
}
