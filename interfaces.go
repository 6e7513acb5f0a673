// interfaces.go: public collaborator interfaces for nubdb
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// This interface allows injecting optimized time implementations.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	// This method must be very fast and allocation-free.
	Now() int64
}

// MetricsCollector collects operation metrics for observability
// integrations (Prometheus, OpenTelemetry, StatsD, ...). Implementations
// must be safe for concurrent use and should be fast and non-blocking;
// the engine calls these synchronously on the operation's hot path.
type MetricsCollector interface {
	// RecordGet records the latency and outcome of a Get/Exists lookup.
	RecordGet(latencyNanos int64, hit bool)

	// RecordSet records the latency of a Set (including Increment/Decrement).
	RecordSet(latencyNanos int64)

	// RecordDelete records the latency of a Delete.
	RecordDelete(latencyNanos int64)

	// RecordCompaction records the latency and resulting size of a
	// completed log compaction.
	RecordCompaction(latencyNanos int64, resultBytes int64)
}

// NoOpMetricsCollector is a MetricsCollector that does nothing. Used as
// the default so the engine never needs to nil-check its collector.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordGet(latencyNanos int64, hit bool)               {}
func (NoOpMetricsCollector) RecordSet(latencyNanos int64)                        {}
func (NoOpMetricsCollector) RecordDelete(latencyNanos int64)                     {}
func (NoOpMetricsCollector) RecordCompaction(latencyNanos int64, resultBytes int64) {}
