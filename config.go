// config.go: configuration for the nubdb storage engine
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"time"

	"github.com/agilira/go-timecache"
)

// FlushPolicy selects when the AOF writer makes appended frames durable.
type FlushPolicy int

const (
	// FlushAlways flushes after every append. Loses nothing on crash.
	FlushAlways FlushPolicy = iota

	// FlushEveryNOps flushes once ops-since-flush reaches Config.FlushEveryN.
	// Loses at most FlushEveryN-1 frames on crash.
	FlushEveryNOps

	// FlushEveryNSeconds flushes once Config.FlushEverySeconds has elapsed
	// since the last flush. Loses at most that many seconds of appends.
	FlushEveryNSeconds
)

// Config holds configuration parameters for the storage engine.
type Config struct {
	// AOFPath is the path to the append-only log file. If empty,
	// DefaultAOFFileName is used in the working directory. Persistence
	// can be disabled entirely by setting DisableAOF.
	AOFPath string

	// DisableAOF runs the engine as a pure in-memory store: no log is
	// opened, no replay happens at startup, and no compaction worker runs.
	DisableAOF bool

	// InitialCapacity is the starting capacity of the hash index. Must be
	// a positive number; rounded to a sane minimum if too small.
	// Default: DefaultInitialCapacity.
	InitialCapacity int

	// FlushPolicy selects the durability/throughput tradeoff for appends.
	// Default: FlushAlways.
	FlushPolicy FlushPolicy

	// FlushEveryN is the op count threshold for FlushEveryNOps.
	// Default: DefaultCleanupOpsInterval.
	FlushEveryN int

	// FlushEverySeconds is the wall-clock threshold for FlushEveryNSeconds.
	// Default: 1 second.
	FlushEverySeconds time.Duration

	// RewriteThresholdBytes is the log size that triggers a compaction
	// rewrite. Default: DefaultRewriteThresholdBytes.
	RewriteThresholdBytes int64

	// CompactionInterval is how often the compactor worker wakes to check
	// whether a rewrite is due. Default: DefaultCompactionInterval seconds.
	CompactionInterval time.Duration

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for TTL and flush-policy
	// calculations. If nil, a default implementation is used.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector
}

// Validate checks configuration parameters and applies sensible defaults.
// It returns nil; it only normalizes the configuration in place.
//
// This method is automatically called by NewEngine, so callers typically
// don't need to invoke it directly. It is exported so callers may inspect
// the normalized configuration before constructing an engine.
//
// Default values applied:
//   - InitialCapacity: DefaultInitialCapacity if <= 0
//   - FlushEveryN: DefaultCleanupOpsInterval if <= 0 and FlushPolicy is FlushEveryNOps
//   - FlushEverySeconds: 1s if <= 0 and FlushPolicy is FlushEveryNSeconds
//   - RewriteThresholdBytes: DefaultRewriteThresholdBytes if <= 0
//   - CompactionInterval: DefaultCompactionInterval seconds if <= 0
//   - AOFPath: DefaultAOFFileName if empty and DisableAOF is false
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.InitialCapacity <= 0 {
		c.InitialCapacity = DefaultInitialCapacity
	}

	if c.FlushPolicy == FlushEveryNOps && c.FlushEveryN <= 0 {
		c.FlushEveryN = DefaultCleanupOpsInterval
	}

	if c.FlushPolicy == FlushEveryNSeconds && c.FlushEverySeconds <= 0 {
		c.FlushEverySeconds = time.Second
	}

	if c.RewriteThresholdBytes <= 0 {
		c.RewriteThresholdBytes = DefaultRewriteThresholdBytes
	}

	if c.CompactionInterval <= 0 {
		c.CompactionInterval = DefaultCompactionInterval * time.Second
	}

	if c.AOFPath == "" && !c.DisableAOF {
		c.AOFPath = DefaultAOFFileName
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}

	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}

	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapacity:       DefaultInitialCapacity,
		FlushPolicy:           FlushAlways,
		RewriteThresholdBytes: DefaultRewriteThresholdBytes,
		CompactionInterval:    DefaultCompactionInterval * time.Second,
		AOFPath:               DefaultAOFFileName,
		Logger:                NoOpLogger{},
		TimeProvider:          &systemTimeProvider{},
		MetricsCollector:      NoOpMetricsCollector{},
	}
}

// systemTimeProvider is the default time provider using go-timecache.
// This provides much faster time access than time.Now() with zero
// allocations, at the cost of coarser granularity (cache refreshed
// periodically rather than read from the OS on every call).
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
