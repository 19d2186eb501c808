package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strategy_scanner",
		Name:      "runs_total",
		Help:      "Completed aggregation runs.",
	})

	itemsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strategy_scanner",
		Name:      "items_fetched_total",
		Help:      "Raw candidate items returned by source adapters.",
	}, []string{"source"})

	itemsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strategy_scanner",
		Name:      "items_dropped_total",
		Help:      "Items dropped before filtering, by stage (text, extract, normalize).",
	}, []string{"source", "stage"})

	recordsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strategy_scanner",
		Name:      "records_accepted_total",
		Help:      "Normalized records accepted by the filter engine.",
	}, []string{"source"})

	recordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strategy_scanner",
		Name:      "records_rejected_total",
		Help:      "Normalized records rejected by the filter engine.",
	}, []string{"source"})

	adapterFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strategy_scanner",
		Name:      "adapter_failures_total",
		Help:      "Source adapters whose upstream fetch failed entirely.",
	}, []string{"source"})
)

func RecordRun()                              { runsTotal.Inc() }
func RecordItemsFetched(source string, n int) { itemsFetched.WithLabelValues(source).Add(float64(n)) }
func RecordItemDropped(source, stage string)  { itemsDropped.WithLabelValues(source, stage).Inc() }
func RecordAccepted(source string)            { recordsAccepted.WithLabelValues(source).Inc() }
func RecordRejected(source string)            { recordsRejected.WithLabelValues(source).Inc() }
func RecordAdapterFailure(source string)      { adapterFailures.WithLabelValues(source).Inc() }
