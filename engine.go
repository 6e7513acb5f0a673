// engine.go: the Storage Engine — the top-level public surface
//
// Grounded on the lock/field layout of the teacher's wtinyLFUCache
// struct in cache.go (a single owned object holding its data structure,
// its optional persistence collaborator, and its atomic stat counters),
// and on the lock-ordering discipline (mutation applied to memory, then
// appended to the log, under one lock) of
// other_examples/7871adb5_taitelee-kvstore__internal-kv-engine.go.go's
// Engine type.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Engine is the top-level storage object: it owns the hash index, the
// optional AOF writer, and the reader-writer lock that serializes
// mutators against readers and against the background compactor's
// iteration. Construct with NewEngine; multiple independent Engines
// (distinct AOFPath) may coexist in one process.
type Engine struct {
	mu    sync.RWMutex
	index *index

	writer     *aofWriter // nil when Config.DisableAOF
	compactor  *compactor // nil when Config.DisableAOF

	timeProvider TimeProvider
	logger       Logger
	metrics      MetricsCollector
}

// NewEngine constructs a Storage Engine, replaying any existing log
// before accepting operations (§4.3). Persistence is skipped entirely
// when cfg.DisableAOF is set.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		index:        newIndex(cfg.InitialCapacity),
		timeProvider: cfg.TimeProvider,
		logger:       cfg.Logger,
		metrics:      cfg.MetricsCollector,
	}

	if cfg.DisableAOF {
		return e, nil
	}

	if err := replayAOF(cfg.AOFPath, e.index); err != nil {
		return nil, err
	}

	w, err := openAOFWriter(cfg.AOFPath, cfg)
	if err != nil {
		return nil, err
	}
	e.writer = w

	e.compactor = newCompactor(e, cfg.RewriteThresholdBytes, cfg.CompactionInterval)
	e.compactor.start()

	return e, nil
}

// recordExpired reports whether rec has a TTL that has passed as of
// nowNanos. ExpireAt is stored in whole seconds since the epoch (§3);
// nowNanos is the TimeProvider's native nanosecond resolution.
func recordExpired(rec Record, nowNanos int64) bool {
	if rec.ExpireAt == 0 {
		return false
	}
	return nowNanos/int64(time.Second) >= rec.ExpireAt
}

// validateKey enforces the protocol-layer key constraints referenced by
// §4.5: non-empty, and free of bytes the line protocol treats as
// delimiters.
func validateKey(key string) error {
	if key == "" {
		return NewErrEmptyKey("validate")
	}
	if strings.ContainsAny(key, "\n\r ") {
		return NewErrInvalidKey(key)
	}
	return nil
}

// Set stores key with value and an optional TTL (0 means no expiry).
// It validates the key, mutates the index, and appends a SET frame to
// the log under the write lock, per the dataflow in §2.
func (e *Engine) Set(key, value string, ttlSeconds int64) error {
	if err := validateKey(key); err != nil {
		return err
	}

	start := e.timeProvider.Now()

	var expireAt int64
	if ttlSeconds > 0 {
		expireAt = start/int64(time.Second) + ttlSeconds
	}

	e.mu.Lock()
	e.index.put(key, Record{Value: []byte(value), ExpireAt: expireAt})
	var appendErr error
	if e.writer != nil {
		appendErr = e.writer.append(opSet, []byte(key), []byte(value))
	}
	e.mu.Unlock()

	e.metrics.RecordSet(e.timeProvider.Now() - start)
	return appendErr
}

// Get returns the value stored for key. A logically expired entry is
// treated as absent; it is left in place for CleanupExpired rather than
// mutated under a read lock (§4.5).
func (e *Engine) Get(key string) (string, bool) {
	start := e.timeProvider.Now()

	e.mu.RLock()
	rec, found := e.index.get(key)
	e.mu.RUnlock()

	if !found || recordExpired(rec, start) {
		e.metrics.RecordGet(e.timeProvider.Now()-start, false)
		return "", false
	}

	e.metrics.RecordGet(e.timeProvider.Now()-start, true)
	return string(rec.Value), true
}

// Delete removes key. Returns whether a removal occurred; if so, a
// DELETE frame is appended to the log.
func (e *Engine) Delete(key string) (bool, error) {
	start := e.timeProvider.Now()

	e.mu.Lock()
	removed := e.index.remove(key)
	var appendErr error
	if removed && e.writer != nil {
		appendErr = e.writer.append(opDelete, []byte(key), nil)
	}
	e.mu.Unlock()

	e.metrics.RecordDelete(e.timeProvider.Now() - start)
	return removed, appendErr
}

// Exists reports whether key is present and unexpired, without
// returning its value.
func (e *Engine) Exists(key string) bool {
	_, found := e.Get(key)
	return found
}

// Increment parses the current value of key as a base-10 signed 64-bit
// integer (absent or non-numeric treated as 0), adds delta, stores the
// result as text, clears any TTL, and appends a SET frame. Returns the
// new value. Overflow wraps per Go's signed-integer arithmetic; callers
// needing exact overflow detection should watch for a sign flip.
func (e *Engine) Increment(key string, delta int64) (int64, error) {
	if err := validateKey(key); err != nil {
		return 0, err
	}

	start := e.timeProvider.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	var current int64
	if rec, found := e.index.get(key); found && !recordExpired(rec, start) {
		parsed, err := strconv.ParseInt(string(rec.Value), 10, 64)
		if err == nil {
			current = parsed
		}
	}

	next := current + delta
	text := strconv.FormatInt(next, 10)

	e.index.put(key, Record{Value: []byte(text), ExpireAt: 0})

	var appendErr error
	if e.writer != nil {
		appendErr = e.writer.append(opSet, []byte(key), []byte(text))
	}

	e.metrics.RecordSet(e.timeProvider.Now() - start)
	return next, appendErr
}

// Size returns the number of entries currently in the index, which may
// include ghost-expired entries pending lazy cleanup (§9).
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.count
}

// Clear empties the index. No log entry is appended (§4.5, §9): after a
// crash following Clear, replay restores every key present beforehand,
// until the next compaction rewrites the log from the (now empty) index.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.index.clear()
}

// CleanupExpired scans the index for TTL-expired entries and removes
// them, without appending any log entries. Intended to be invoked
// periodically by the caller driving the engine (e.g. every
// DefaultCleanupOpsInterval operations). Returns the number removed.
func (e *Engine) CleanupExpired() int {
	now := e.timeProvider.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	var expiredKeys []string
	e.index.forEach(func(key string, rec Record) {
		if recordExpired(rec, now) {
			expiredKeys = append(expiredKeys, key)
		}
	})
	for _, key := range expiredKeys {
		e.index.remove(key)
	}
	return len(expiredKeys)
}

// Close flushes any pending log writes, stops the compaction worker,
// and releases the log file handle.
func (e *Engine) Close() error {
	if e.compactor != nil {
		e.compactor.shutdown()
	}
	if e.writer != nil {
		return e.writer.close()
	}
	return nil
}
