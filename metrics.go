package docstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "docstore"

// Operation names used as the "op" metric label.
const (
	opInsert = "insert"
	opGet    = "get"
	opQuery  = "query"
	opExists = "exists"
	opCount  = "count"
)

// metrics holds the store's Prometheus collectors. A nil *metrics records
// nothing, which is what you get without Options.Registerer.
type metrics struct {
	Operations    *prometheus.CounterVec
	Errors        *prometheus.CounterVec
	DocumentBytes prometheus.Histogram
	DanglingRefs  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Total number of document store operations",
		}, []string{"collection", "op"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operation_errors_total",
			Help:      "Total number of failed document store operations by error kind",
		}, []string{"collection", "op", "kind"}),
		DocumentBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "document_bytes",
			Help:      "Encoded size of inserted documents",
			Buckets:   []float64{64, 128, 256, 512, 1024, 2048, MaxDocumentSize},
		}),
		DanglingRefs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dangling_index_refs_total",
			Help:      "Secondary index entries that did not resolve to a document during a query",
		}, []string{"collection"}),
	}
}

func (m *metrics) observe(coll, op string, err error) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(coll, op).Inc()
	if err != nil {
		m.Errors.WithLabelValues(coll, op, errorKind(err)).Inc()
	}
}

func (m *metrics) documentSize(n int) {
	if m == nil {
		return
	}
	m.DocumentBytes.Observe(float64(n))
}

func (m *metrics) dangling(coll string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.DanglingRefs.WithLabelValues(coll).Add(float64(n))
}
