// aof_writer.go: append-only log writer with configurable flush policy
//
// Grounded on the append/flush/stats structure of
// other_examples/1ebce939_rishabhverma17-HyperCache__internal-persistence-aof.go.go,
// adapted from its newline-delimited text format to the binary frame
// format mandated by §3 of the specification, and from its string sync
// policy to the FlushPolicy enum of config.go.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"encoding/binary"
	"os"
	"sync"
	"sync/atomic"
)

// Log frame op bytes (§3).
const (
	opSet    byte = 1
	opDelete byte = 2
)

// aofWriter serializes mutation intents into the log file and flushes to
// stable storage per policy. It also owns the exclusive "log mutex"
// described in §5: append, forceFlush, and the compactor's file swap all
// hold aofWriter.mu.
type aofWriter struct {
	mu   sync.Mutex
	file *os.File
	path string

	policy       FlushPolicy
	flushEveryN  int64 // atomic; op-count threshold for FlushEveryNOps
	flushEvery   int64 // atomic; FlushEverySeconds threshold, in nanoseconds
	timeProvider TimeProvider

	opsSinceFlush int64 // atomic
	logSizeBytes  int64 // atomic
	lastFlushTime int64 // atomic, nanoseconds
}

// openAOFWriter opens (creating if necessary) the log file for appending
// and returns a writer positioned at end-of-file.
func openAOFWriter(path string, cfg Config) (*aofWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, NewErrOpenFailed(path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, NewErrOpenFailed(path, err)
	}

	w := &aofWriter{
		file:          f,
		path:          path,
		policy:        cfg.FlushPolicy,
		flushEveryN:   int64(cfg.FlushEveryN),
		flushEvery:    int64(cfg.FlushEverySeconds),
		timeProvider:  cfg.TimeProvider,
		logSizeBytes:  info.Size(),
		lastFlushTime: cfg.TimeProvider.Now(),
	}
	return w, nil
}

// encodeFrame serializes one log frame per §3:
// [timestamp i64 LE][op u8][key_len u32 LE][key][value_len u32 LE][value]
func encodeFrame(timestamp int64, op byte, key, value []byte) []byte {
	buf := make([]byte, 8+1+4+len(key)+4+len(value))
	binary.LittleEndian.PutUint64(buf[0:8], uint64(timestamp))
	buf[8] = op
	binary.LittleEndian.PutUint32(buf[9:13], uint32(len(key)))
	n := 13
	n += copy(buf[n:], key)
	binary.LittleEndian.PutUint32(buf[n:n+4], uint32(len(value)))
	n += 4
	copy(buf[n:], value)
	return buf
}

// append writes one frame and applies the configured flush policy. It is
// safe for concurrent use; concurrent appends are serialized by mu.
func (w *aofWriter) append(op byte, key, value []byte) error {
	frame := encodeFrame(w.timeProvider.Now(), op, key, value)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(frame); err != nil {
		return NewErrAppendFailed(err)
	}

	atomic.AddInt64(&w.logSizeBytes, int64(len(frame)))
	ops := atomic.AddInt64(&w.opsSinceFlush, 1)

	switch w.policy {
	case FlushAlways:
		return w.flushLocked()
	case FlushEveryNOps:
		if ops >= atomic.LoadInt64(&w.flushEveryN) {
			return w.flushLocked()
		}
	case FlushEveryNSeconds:
		now := w.timeProvider.Now()
		if now-atomic.LoadInt64(&w.lastFlushTime) >= atomic.LoadInt64(&w.flushEvery) {
			return w.flushLocked()
		}
	}
	return nil
}

// forceFlush unconditionally flushes and resets counters. Clean shutdown
// flushes through close rather than this method, and swapFile does not
// flush the old handle before closing it.
func (w *aofWriter) forceFlush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked assumes w.mu is held.
func (w *aofWriter) flushLocked() error {
	if err := w.file.Sync(); err != nil {
		return NewErrFlushFailed(err)
	}
	atomic.StoreInt64(&w.opsSinceFlush, 0)
	atomic.StoreInt64(&w.lastFlushTime, w.timeProvider.Now())
	return nil
}

// size returns the writer's current view of the log size in bytes.
func (w *aofWriter) size() int64 {
	return atomic.LoadInt64(&w.logSizeBytes)
}

// swapFile is used exclusively by the compactor (§4.4 steps 6-8): it
// closes the live log handle, renames tmpPath over the writer's path,
// reopens it for appends, and resets the size/ops counters to reflect
// the new file. Held under the same mutex as append/forceFlush so a
// writer never observes a half-swapped file.
func (w *aofWriter) swapFile(tmpPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.file.Close(); err != nil {
		return NewErrOpenFailed(w.path, err)
	}

	if err := os.Rename(tmpPath, w.path); err != nil {
		return NewErrRenameFailed(tmpPath, w.path, err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return NewErrOpenFailed(w.path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return NewErrOpenFailed(w.path, err)
	}

	w.file = f
	atomic.StoreInt64(&w.logSizeBytes, info.Size())
	atomic.StoreInt64(&w.opsSinceFlush, 0)
	return nil
}

// close flushes and closes the underlying file handle.
func (w *aofWriter) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.flushLocked(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}
