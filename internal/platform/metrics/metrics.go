// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus collectors exposed on /metrics.

Every collector is registered on a private [prometheus.Registry] instead of the
global default, so tests can build as many independent instances as they need.

Families:

  - HTTP: request counts and latency per route pattern.
  - GraphQL: operations by type and outcome.
  - Authorization: directive denials by directive and wire code.
  - Realtime: open WebSocket connections and published events.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sitegraph"

// Metrics holds all Prometheus collectors of the process.
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// GraphQL metrics
	OperationsTotal *prometheus.CounterVec

	// Authorization metrics
	AuthzDeniedTotal *prometheus.CounterVec

	// Realtime metrics
	WebSocketConnections prometheus.Gauge
	EventsPublishedTotal *prometheus.CounterVec
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	metrics := &Metrics{
		Registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graphql_operations_total",
				Help:      "GraphQL operations executed, by operation type and outcome",
			},
			[]string{"operation", "outcome"},
		),
		AuthzDeniedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "authz_denied_total",
				Help:      "Field resolutions rejected by an authorization directive",
			},
			[]string{"directive", "code"},
		),
		WebSocketConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "websocket_connections",
				Help:      "Currently open GraphQL WebSocket connections",
			},
		),
		EventsPublishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Subscription events published, by channel and outcome",
			},
			[]string{"channel", "outcome"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.HTTPRequestsTotal,
		metrics.HTTPRequestDuration,
		metrics.OperationsTotal,
		metrics.AuthzDeniedTotal,
		metrics.WebSocketConnections,
		metrics.EventsPublishedTotal,
	)

	return metrics
}

// Handler returns the scrape endpoint for this registry.
func (metrics *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
}

// # Recorders
//
// The methods below are nil-safe so consumers can run without metrics in tests.

// ObserveHTTP records one finished HTTP request.
func (metrics *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if metrics == nil {
		return
	}
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveOperation records one executed GraphQL operation.
func (metrics *Metrics) ObserveOperation(operation string, failed bool) {
	if metrics == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	metrics.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveDenial records one rejected field resolution.
func (metrics *Metrics) ObserveDenial(directive string, code int) {
	if metrics == nil {
		return
	}
	metrics.AuthzDeniedTotal.WithLabelValues(directive, strconv.Itoa(code)).Inc()
}

// ObservePublish records one published event.
func (metrics *Metrics) ObservePublish(channel string, err error) {
	if metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.EventsPublishedTotal.WithLabelValues(channel, outcome).Inc()
}

// ConnectionOpened and ConnectionClosed track the WebSocket gauge.
func (metrics *Metrics) ConnectionOpened() {
	if metrics != nil {
		metrics.WebSocketConnections.Inc()
	}
}

func (metrics *Metrics) ConnectionClosed() {
	if metrics != nil {
		metrics.WebSocketConnections.Dec()
	}
}
