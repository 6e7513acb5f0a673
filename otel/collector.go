// Package otel provides OpenTelemetry integration for nubdb metrics.
//
// This package implements the nubdb.MetricsCollector interface using
// OpenTelemetry, enabling percentile calculation (p50, p95, p99) for
// operation latencies and multi-backend export (Prometheus, Jaeger,
// DataDog, Grafana) without the core module depending on the OTEL SDK.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/agilira/nubdb"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements nubdb.MetricsCollector using
// OpenTelemetry. All instruments are thread-safe and lock-free.
type OTelMetricsCollector struct {
	getLatency        metric.Int64Histogram
	setLatency        metric.Int64Histogram
	deleteLatency     metric.Int64Histogram
	compactionLatency metric.Int64Histogram
	compactionBytes   metric.Int64Histogram
	hits              metric.Int64Counter
	misses            metric.Int64Counter
}

// Options configures an OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/nubdb"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple engine instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates the OTEL instruments and returns a
// collector ready to pass as Config.MetricsCollector. provider must not
// be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/agilira/nubdb"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	collector := &OTelMetricsCollector{}

	var err error
	collector.getLatency, err = meter.Int64Histogram(
		"nubdb_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.setLatency, err = meter.Int64Histogram(
		"nubdb_set_latency_ns",
		metric.WithDescription("Latency of Set/Increment/Decrement operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.deleteLatency, err = meter.Int64Histogram(
		"nubdb_delete_latency_ns",
		metric.WithDescription("Latency of Delete operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.compactionLatency, err = meter.Int64Histogram(
		"nubdb_compaction_latency_ns",
		metric.WithDescription("Latency of background log compaction runs in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	collector.compactionBytes, err = meter.Int64Histogram(
		"nubdb_compaction_result_bytes",
		metric.WithDescription("Size of the rewritten log after a compaction run"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	collector.hits, err = meter.Int64Counter(
		"nubdb_get_hits_total",
		metric.WithDescription("Total number of Get/Exists hits"),
	)
	if err != nil {
		return nil, err
	}

	collector.misses, err = meter.Int64Counter(
		"nubdb_get_misses_total",
		metric.WithDescription("Total number of Get/Exists misses"),
	)
	if err != nil {
		return nil, err
	}

	return collector, nil
}

// RecordGet records a Get/Exists lookup's latency and hit/miss outcome.
func (c *OTelMetricsCollector) RecordGet(latencyNanos int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNanos)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordSet records a Set (including Increment/Decrement) latency.
func (c *OTelMetricsCollector) RecordSet(latencyNanos int64) {
	c.setLatency.Record(context.Background(), latencyNanos)
}

// RecordDelete records a Delete latency.
func (c *OTelMetricsCollector) RecordDelete(latencyNanos int64) {
	c.deleteLatency.Record(context.Background(), latencyNanos)
}

// RecordCompaction records a completed compaction's latency and the
// resulting rewritten log size.
func (c *OTelMetricsCollector) RecordCompaction(latencyNanos int64, resultBytes int64) {
	ctx := context.Background()
	c.compactionLatency.Record(ctx, latencyNanos)
	c.compactionBytes.Record(ctx, resultBytes)
}

var _ nubdb.MetricsCollector = (*OTelMetricsCollector)(nil)
