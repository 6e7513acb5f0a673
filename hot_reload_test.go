// hot_reload_test.go: tests for dynamic AOF/compaction reconfiguration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestEngineForHotConfig(t *testing.T) *Engine {
	t.Helper()
	aofPath := filepath.Join(t.TempDir(), "test.aof")
	e, err := NewEngine(Config{AOFPath: aofPath, TimeProvider: &fakeTimeProvider{}})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewHotConfig(t *testing.T) {
	e := newTestEngineForHotConfig(t)
	configPath := filepath.Join(t.TempDir(), "tuning.yaml")

	initial := `aof:
  flush_every_n: 50
  flush_every_seconds: "2s"
  rewrite_threshold_bytes: 1048576
`
	if err := os.WriteFile(configPath, []byte(initial), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	hc, err := NewHotConfig(e, HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig() error = %v", err)
	}
	defer hc.Stop()

	if hc.engine != e {
		t.Error("HotConfig engine reference mismatch")
	}
	if hc.watcher == nil {
		t.Error("expected non-nil watcher")
	}
}

func TestNewHotConfig_EmptyPath(t *testing.T) {
	e := newTestEngineForHotConfig(t)

	if _, err := NewHotConfig(e, HotConfigOptions{ConfigPath: ""}); err == nil {
		t.Error("expected error for empty config path")
	}
}

func TestHotConfig_StartStop(t *testing.T) {
	e := newTestEngineForHotConfig(t)
	configPath := filepath.Join(t.TempDir(), "tuning.yaml")

	if err := os.WriteFile(configPath, []byte(`aof:
  flush_every_n: 10
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	hc, err := NewHotConfig(e, HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig() error = %v", err)
	}

	if err := hc.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !hc.watcher.IsRunning() {
		t.Error("watcher should be running after Start()")
	}

	if err := hc.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}

func TestHotConfig_ApplyChangesUpdatesLiveEngine(t *testing.T) {
	e := newTestEngineForHotConfig(t)
	configPath := filepath.Join(t.TempDir(), "tuning.yaml")

	if err := os.WriteFile(configPath, []byte(`aof:
  flush_every_n: 5
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan AOFTuning, 1)
	hc, err := NewHotConfig(e, HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 50 * time.Millisecond,
		OnReload: func(old, next AOFTuning) {
			reloaded <- next
		},
	})
	if err != nil {
		t.Fatalf("NewHotConfig() error = %v", err)
	}
	defer hc.Stop()

	if err := hc.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case tuning := <-reloaded:
		if tuning.FlushEveryN != 5 {
			t.Errorf("FlushEveryN = %d, want 5", tuning.FlushEveryN)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for initial config load")
	}

	if got := atomic.LoadInt64(&e.writer.flushEveryN); got != 5 {
		t.Errorf("writer.flushEveryN = %d, want 5", got)
	}
}

func TestHotConfig_GetTuning(t *testing.T) {
	e := newTestEngineForHotConfig(t)
	configPath := filepath.Join(t.TempDir(), "tuning.yaml")

	if err := os.WriteFile(configPath, []byte(`aof:
  flush_every_n: 7
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	hc, err := NewHotConfig(e, HotConfigOptions{
		ConfigPath:   configPath,
		PollInterval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHotConfig() error = %v", err)
	}
	defer hc.Stop()

	if err := hc.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hc.GetTuning().FlushEveryN == 7 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("tuning never reflected the config file's flush_every_n")
}
