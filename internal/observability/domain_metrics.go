package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	AskOutcomeAnswered      = "answered"
	AskOutcomeEmptyQuestion = "empty_question"
	AskOutcomeNoSQL         = "no_sql"
	AskOutcomeRejected      = "rejected"
	AskOutcomeFailed        = "failed"
)

var (
	askRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsight_ask_requests_total",
			Help: "Total number of natural-language questions by outcome.",
		},
		[]string{"outcome"},
	)
	llmRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adsight_llm_request_duration_seconds",
			Help:    "Language model call latency by operation.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"operation", "status"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adsight_query_duration_seconds",
			Help:    "SQL execution latency against the analytics database.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)
	queryErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adsight_query_errors_total",
			Help: "Total number of SQL executions that failed.",
		},
	)
	rowsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsight_rows_loaded_total",
			Help: "Total number of dataset rows loaded by table.",
		},
		[]string{"table"},
	)
	nulledCellsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsight_load_nulled_cells_total",
			Help: "Total number of source cells that failed to parse and were loaded as NULL.",
		},
		[]string{"table", "column"},
	)
	historyWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adsight_history_writes_total",
			Help: "Total number of query history writes by status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		askRequestsTotal,
		llmRequestDurationSeconds,
		queryDurationSeconds,
		queryErrorsTotal,
		rowsLoadedTotal,
		nulledCellsTotal,
		historyWritesTotal,
	)
}

func ObserveAsk(outcome string) {
	askRequestsTotal.WithLabelValues(outcome).Inc()
}

func ObserveLLMCall(operation string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	llmRequestDurationSeconds.WithLabelValues(operation, status).Observe(elapsed.Seconds())
}

func ObserveQuery(elapsed time.Duration, err error) {
	queryDurationSeconds.Observe(elapsed.Seconds())
	if err != nil {
		queryErrorsTotal.Inc()
	}
}

func AddRowsLoaded(table string, rows int64) {
	if rows <= 0 {
		return
	}
	rowsLoadedTotal.WithLabelValues(table).Add(float64(rows))
}

func AddNulledCells(table, column string, cells int64) {
	if cells <= 0 {
		return
	}
	nulledCellsTotal.WithLabelValues(table, column).Add(float64(cells))
}

func ObserveHistoryWrite(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	historyWritesTotal.WithLabelValues(status).Inc()
}
