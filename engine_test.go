// engine_test.go: end-to-end tests for the Storage Engine
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"
)

func newTestEngine(t *testing.T, clock TimeProvider) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.aof")
	e, err := NewEngine(Config{
		AOFPath:      path,
		TimeProvider: clock,
	})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e, path
}

func TestEngine_BasicRoundTrip(t *testing.T) {
	e, _ := newTestEngine(t, &fakeTimeProvider{})

	if err := e.Set("name", "gopher", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found := e.Get("name")
	if !found || value != "gopher" {
		t.Fatalf("Get() = (%q, %v), want (gopher, true)", value, found)
	}

	if !e.Exists("name") {
		t.Error("Exists(name) = false, want true")
	}

	removed, err := e.Delete("name")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if !removed {
		t.Error("Delete(name) = false, want true")
	}
	if _, found := e.Get("name"); found {
		t.Error("Get(name) after delete = true, want false")
	}
}

func TestEngine_Increment(t *testing.T) {
	e, _ := newTestEngine(t, &fakeTimeProvider{})

	got, err := e.Increment("counter", 1)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if got != 1 {
		t.Fatalf("Increment() = %d, want 1", got)
	}

	got, err = e.Increment("counter", 1)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if got != 2 {
		t.Fatalf("Increment() = %d, want 2", got)
	}

	got, err = e.Increment("counter", -5)
	if err != nil {
		t.Fatalf("Increment() error = %v", err)
	}
	if got != -3 {
		t.Fatalf("Increment() = %d, want -3", got)
	}

	value, _ := e.Get("counter")
	if value != "-3" {
		t.Errorf("Get(counter) = %q, want -3", value)
	}
}

func TestEngine_TTLExpiry(t *testing.T) {
	clock := &fakeTimeProvider{}
	e, _ := newTestEngine(t, clock)

	if err := e.Set("session", "token", 5); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, found := e.Get("session"); !found {
		t.Fatal("Get(session) = false immediately after Set, want true")
	}

	clock.advance(6 * time.Second)

	if _, found := e.Get("session"); found {
		t.Error("Get(session) = true after TTL expiry, want false")
	}

	removed := e.CleanupExpired()
	if removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if e.Size() != 0 {
		t.Errorf("Size() = %d after cleanup, want 0", e.Size())
	}
}

func TestEngine_CrashRecovery(t *testing.T) {
	clock := &fakeTimeProvider{}
	path := filepath.Join(t.TempDir(), "test.aof")

	e1, err := NewEngine(Config{AOFPath: path, TimeProvider: clock})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := e1.Set("a", "1", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := e1.Set("b", "2", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := e1.Delete("a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// No Close(): simulates a crash after durable appends without a
	// graceful shutdown.

	e2, err := NewEngine(Config{AOFPath: path, TimeProvider: clock})
	if err != nil {
		t.Fatalf("NewEngine() (recovery) error = %v", err)
	}
	t.Cleanup(func() { e2.Close() })

	if _, found := e2.Get("a"); found {
		t.Error("Get(a) after recovery = true, want false (was deleted)")
	}
	value, found := e2.Get("b")
	if !found || value != "2" {
		t.Errorf("Get(b) after recovery = (%q, %v), want (2, true)", value, found)
	}
}

func TestEngine_CompactionEquivalence(t *testing.T) {
	clock := &fakeTimeProvider{}
	e, path := newTestEngine(t, clock)

	for i := 0; i < 50; i++ {
		key := "key"
		if err := e.Set(key, "v1", 0); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := e.Set("key", "final", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	sizeBefore := e.writer.size()

	if err := e.compactor.rewrite(); err != nil {
		t.Fatalf("rewrite() error = %v", err)
	}

	sizeAfter := e.writer.size()
	if sizeAfter >= sizeBefore {
		t.Errorf("size after compaction = %d, want < %d", sizeAfter, sizeBefore)
	}

	value, found := e.Get("key")
	if !found || value != "final" {
		t.Fatalf("Get(key) after compaction = (%q, %v), want (final, true)", value, found)
	}

	// Recovery from the compacted log must reach the same state.
	ix := newIndex(8)
	if err := replayAOF(path, ix); err != nil {
		t.Fatalf("replayAOF() error = %v", err)
	}
	rec, found := ix.get("key")
	if !found || string(rec.Value) != "final" {
		t.Fatalf("replayed value = (%v, %v), want (final, true)", rec, found)
	}
}

func TestEngine_RobinHoodProbeBound(t *testing.T) {
	// Matches index_test.go's TestIndex_MaxPSLBound at the Engine layer:
	// 10,000 random keys against the default initial capacity of 1024
	// land the index at capacity 16,384 after resizing at the 90% load
	// factor. Robin Hood's "rich steals from poor" reordering keeps the
	// worst-case probe sequence length at O(log n) even at this load; a
	// broken swap degrades into ordinary linear-probing clustering and
	// pushes this well past the bound.
	const n = 10000
	const maxAllowedPSL = 40

	e, _ := newTestEngine(t, &fakeTimeProvider{})

	r := rand.New(rand.NewSource(1))
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("probe-%d", r.Int63())
		if err := e.Set(key, "v", 0); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	e.mu.RLock()
	maxPSL := e.index.maxPSL()
	capacity := e.index.capacity
	e.mu.RUnlock()

	if capacity != 16384 {
		t.Fatalf("capacity = %d, want 16384 after inserting %d keys", capacity, n)
	}
	if maxPSL >= maxAllowedPSL {
		t.Errorf("maxPSL() = %d, want < %d at capacity %d", maxPSL, maxAllowedPSL, capacity)
	}
}

func TestEngine_Clear(t *testing.T) {
	e, _ := newTestEngine(t, &fakeTimeProvider{})

	e.Set("a", "1", 0)
	e.Set("b", "2", 0)
	e.Clear()

	if e.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", e.Size())
	}
}

func TestEngine_ValidateKeyRejectsDelimiters(t *testing.T) {
	e, _ := newTestEngine(t, &fakeTimeProvider{})

	if err := e.Set("", "v", 0); err == nil {
		t.Error("Set(\"\") error = nil, want error for empty key")
	}
	if err := e.Set("has space", "v", 0); err == nil {
		t.Error("Set(\"has space\") error = nil, want error for space in key")
	}
}

func TestEngine_DisableAOF(t *testing.T) {
	e, err := NewEngine(Config{DisableAOF: true})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer e.Close()

	if err := e.Set("a", "1", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if value, found := e.Get("a"); !found || value != "1" {
		t.Fatalf("Get(a) = (%q, %v), want (1, true)", value, found)
	}
	if e.writer != nil {
		t.Error("writer should be nil when DisableAOF is set")
	}
}
