package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PagesFetched       *prometheus.CounterVec
	DocumentsExtracted prometheus.Counter
	FetchFailures      prometheus.Counter
	ChunksIndexed      prometheus.Counter
	EmbeddingBatches   *prometheus.CounterVec
	RunDuration        prometheus.Histogram
)

var initOnce sync.Once

// Init registers the pipeline metrics. It is safe to call more than once.
func Init() {
	initOnce.Do(func() {
		PagesFetched = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_fetched_total",
				Help: "Total number of pages fetched per source database.",
			},
			[]string{"database"},
		)

		DocumentsExtracted = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "documents_extracted_total",
				Help: "Total number of documents extracted across all runs.",
			},
		)

		FetchFailures = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fetch_failures_total",
				Help: "Total number of absorbed upstream fetch failures.",
			},
		)

		ChunksIndexed = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "chunks_indexed_total",
				Help: "Total number of chunks embedded and upserted.",
			},
		)

		EmbeddingBatches = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedding_batches_total",
				Help: "Total number of embedding batches by outcome.",
			},
			[]string{"status"}, // status: success, failure
		)

		RunDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "run_duration_seconds",
				Help:    "Duration of full pipeline runs.",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
		)
	})
}
