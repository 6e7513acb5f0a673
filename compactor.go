// compactor.go: background log compaction
//
// Grounded on the temp-file / flush / close / rename / reopen sequence
// of other_examples/1ebce939_rishabhverma17-HyperCache__internal-persistence-aof.go.go's
// Compact method, adapted to binary SET frames, a shared (read) index
// lock during iteration instead of a full exclusive lock, and a
// ticker-driven background worker grounded on the poll-loop pattern of
// the teacher's hot-reload.go watcher.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"os"
	"sync/atomic"
	"time"
)

// compactor periodically rewrites the engine's log into a minimal
// equivalent once it grows past RewriteThresholdBytes. Only one rewrite
// runs at a time; a rewrite in progress is tracked so the worker never
// overlaps itself.
type compactor struct {
	engine    *Engine
	threshold int64
	interval  time.Duration

	stop chan struct{}
	done chan struct{}

	running int32 // atomic guard, 1 while a rewrite is in flight
}

func newCompactor(e *Engine, threshold int64, interval time.Duration) *compactor {
	return &compactor{
		engine:    e,
		threshold: threshold,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// start launches the background worker goroutine.
func (c *compactor) start() {
	go c.loop()
}

// shutdown signals the worker to exit and waits for it to do so.
func (c *compactor) shutdown() {
	close(c.stop)
	<-c.done
}

func (c *compactor) loop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if c.engine.writer.size() >= atomic.LoadInt64(&c.threshold) {
				if err := c.rewrite(); err != nil {
					c.engine.logger.Error("compaction failed", "error", err)
				}
			}
		}
	}
}

// rewrite performs the 8-step compaction algorithm of §4.4.
func (c *compactor) rewrite() error {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return nil // a rewrite is already in flight
	}
	defer atomic.StoreInt32(&c.running, 0)

	start := c.engine.timeProvider.Now()
	e := c.engine
	tmpPath := e.writer.path + ".tmp"

	// Steps 1-5: snapshot live entries under a shared index lock, write
	// them as SET frames to a fresh temp file, flush it durable, release
	// the lock.
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return NewErrOpenFailed(tmpPath, err)
	}

	var writeErr, syncErr error
	var resultBytes int64

	e.mu.RLock()
	e.index.forEach(func(key string, rec Record) {
		if writeErr != nil {
			return
		}
		// TTL-expired entries are skipped; unexpired TTL entries are
		// written without their TTL (§4.4 step 3 / §9 known limitation).
		if recordExpired(rec, e.timeProvider.Now()) {
			return
		}
		frame := encodeFrame(start, opSet, []byte(key), rec.Value)
		if _, err := tmp.Write(frame); err != nil {
			writeErr = err
			return
		}
		resultBytes += int64(len(frame))
	})
	if writeErr == nil {
		syncErr = tmp.Sync()
	}
	e.mu.RUnlock()

	if writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return NewErrAppendFailed(writeErr)
	}

	if syncErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return NewErrFlushFailed(syncErr)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return NewErrOpenFailed(tmpPath, err)
	}

	// Steps 6-8: under the log's exclusive lock, close the live handle,
	// rename the temp file over it, reopen, and reset the counters. The
	// rename is the linearization point: a crash before it leaves the old
	// complete log, a crash after leaves the new complete log.
	if err := e.writer.swapFile(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	e.metrics.RecordCompaction(e.timeProvider.Now()-start, resultBytes)
	return nil
}
