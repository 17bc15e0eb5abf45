// internal/metrics/collector.go
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/rovshanmuradov/tokenlists/internal/reconcile"
	"github.com/rovshanmuradov/tokenlists/internal/source"
)

const namespace = "tokenlists"

// Collector метрики одного запуска. Каждый Collector держит собственный
// реестр, поэтому запуски и тесты не мешают друг другу.
type Collector struct {
	registry *prometheus.Registry

	rpcRequests    *prometheus.CounterVec
	rpcLatency     *prometheus.HistogramVec
	batches        *prometheus.CounterVec
	batchDuration  prometheus.Histogram
	fetchedTokens  *prometheus.GaugeVec
	droppedTokens  *prometheus.CounterVec
	mismatches     *prometheus.CounterVec
	publishedCount *prometheus.GaugeVec
	runDuration    *prometheus.HistogramVec
}

// NewCollector создает новый экземпляр коллектора метрик
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "RPC requests by method and status",
			},
			[]string{"method", "status"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_latency_seconds",
				Help:      "RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"method"},
		),
		batches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "oracle_addresses_total",
				Help:      "Addresses read through multicall batches by result",
			},
			[]string{"status"},
		),
		batchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "oracle_batch_duration_seconds",
				Help:      "Duration of one multicall batch",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		fetchedTokens: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "source_tokens",
				Help:      "Tokens in the fetched source list by stage",
			},
			[]string{"source", "stage"},
		),
		droppedTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_tokens_total",
				Help:      "Candidates dropped during reconciliation by reason",
			},
			[]string{"source", "reason"},
		),
		mismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_mismatches_total",
				Help:      "Candidate fields that disagree with the contract",
			},
			[]string{"source", "field"},
		),
		publishedCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "published_tokens",
				Help:      "Tokens written to the snapshot or list",
			},
			[]string{"name"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Command duration by status",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
			},
			[]string{"command", "status"},
		),
	}

	c.registry.MustRegister(
		c.rpcRequests,
		c.rpcLatency,
		c.batches,
		c.batchDuration,
		c.fetchedTokens,
		c.droppedTokens,
		c.mismatches,
		c.publishedCount,
		c.runDuration,
	)
	return c
}

// Registry возвращает реестр коллектора
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRPC записывает метрики RPC-запроса
func (c *Collector) ObserveRPC(method string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	c.rpcRequests.WithLabelValues(method, status).Inc()
	c.rpcLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveBatch записывает результат одного multicall пакета
func (c *Collector) ObserveBatch(addresses, failed int, duration time.Duration) {
	c.batches.WithLabelValues("success").Add(float64(addresses - failed))
	c.batches.WithLabelValues("failure").Add(float64(failed))
	c.batchDuration.Observe(duration.Seconds())
}

// RecordFetch записывает статистику загрузки источника
func (c *Collector) RecordFetch(sourceID string, stats source.Stats) {
	c.fetchedTokens.WithLabelValues(sourceID, "raw").Set(float64(stats.Raw))
	c.fetchedTokens.WithLabelValues(sourceID, "malformed").Set(float64(stats.Malformed))
	c.fetchedTokens.WithLabelValues(sourceID, "excluded").Set(float64(stats.Excluded))
	c.fetchedTokens.WithLabelValues(sourceID, "wrong_chain").Set(float64(stats.WrongChain))
	c.fetchedTokens.WithLabelValues(sourceID, "candidates").Set(float64(stats.Candidates))
}

// RecordReconcile записывает причины отбрасывания и расхождения полей
func (c *Collector) RecordReconcile(sourceID string, stats reconcile.Stats) {
	c.droppedTokens.WithLabelValues(sourceID, string(reconcile.ReasonBadAddress)).Add(float64(stats.BadAddress))
	c.droppedTokens.WithLabelValues(sourceID, string(reconcile.ReasonDuplicate)).Add(float64(stats.Duplicate))
	c.droppedTokens.WithLabelValues(sourceID, string(reconcile.ReasonInvalidNameOrSymbol)).Add(float64(stats.InvalidNameOrSymbol))

	c.mismatches.WithLabelValues(sourceID, "decimals").Add(float64(stats.Mismatches.Decimals))
	c.mismatches.WithLabelValues(sourceID, "name").Add(float64(stats.Mismatches.Name))
	c.mismatches.WithLabelValues(sourceID, "symbol").Add(float64(stats.Mismatches.Symbol))
}

// RecordPublished записывает размер записанного файла
func (c *Collector) RecordPublished(name string, tokens int) {
	c.publishedCount.WithLabelValues(name).Set(float64(tokens))
}

// RecordRun записывает длительность команды
func (c *Collector) RecordRun(command string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	c.runDuration.WithLabelValues(command, status).Observe(duration.Seconds())
}

// Push отправляет метрики в Prometheus Pushgateway
func (c *Collector) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(c.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
