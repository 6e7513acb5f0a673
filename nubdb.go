// Package nubdb provides a durable, in-memory key-value store with
// append-only file (AOF) persistence, crash recovery, and background
// compaction.
//
// The core is a Robin Hood open-addressed hash index protected by a
// reader-writer lock, paired with a binary-framed append-only log. Writes
// are serialized; reads proceed concurrently. A dedicated goroutine
// periodically rewrites the log into a minimal equivalent once it grows
// past a configurable threshold.
//
// Example usage:
//
//	engine, err := nubdb.NewEngine(nubdb.Config{
//		AOFPath: "nubdb.aof",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close()
//
//	engine.Set("key", "value", 0)
//	value, found := engine.Get("key")
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

const (
	// Version of the nubdb store library.
	Version = "v0.1.0-dev"

	// DefaultInitialCapacity is the starting capacity of the hash index.
	DefaultInitialCapacity = 1024

	// LoadFactorThresholdPercent is the fixed load-factor threshold (90%)
	// past which the index resizes.
	LoadFactorThresholdPercent = 90

	// KeyMax is the largest key accepted at replay time, in bytes.
	KeyMax = 4096

	// ValueMax is the largest value accepted at replay time, in bytes (1 MiB).
	ValueMax = 1 << 20

	// DefaultAOFFileName is the name of the log file created in the
	// working directory when Config.AOFPath is left empty.
	DefaultAOFFileName = "nubdb.aof"

	// DefaultRewriteThresholdBytes is the log size that triggers a
	// compaction rewrite.
	DefaultRewriteThresholdBytes = 64 << 20 // 64 MiB

	// DefaultCompactionInterval is how often the compactor worker wakes
	// to check whether a rewrite is due.
	DefaultCompactionInterval = 10 // seconds

	// DefaultCleanupOpsInterval is how often CleanupExpired is expected to be
	// invoked by a caller driving the engine (e.g. every 100 operations).
	DefaultCleanupOpsInterval = 100
)
