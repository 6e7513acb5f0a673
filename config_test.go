// config_test.go: unit tests for nubdb configuration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import (
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   Config
	}{
		{
			name:   "empty config uses defaults",
			config: Config{},
			want: Config{
				InitialCapacity:       DefaultInitialCapacity,
				FlushPolicy:           FlushAlways,
				RewriteThresholdBytes: DefaultRewriteThresholdBytes,
				CompactionInterval:    DefaultCompactionInterval * time.Second,
				AOFPath:               DefaultAOFFileName,
			},
		},
		{
			name:   "disabled AOF leaves path empty",
			config: Config{DisableAOF: true},
			want: Config{
				InitialCapacity:       DefaultInitialCapacity,
				FlushPolicy:           FlushAlways,
				RewriteThresholdBytes: DefaultRewriteThresholdBytes,
				CompactionInterval:    DefaultCompactionInterval * time.Second,
				AOFPath:               "",
				DisableAOF:            true,
			},
		},
		{
			name: "invalid capacity uses default",
			config: Config{
				InitialCapacity: -5,
			},
			want: Config{
				InitialCapacity:       DefaultInitialCapacity,
				RewriteThresholdBytes: DefaultRewriteThresholdBytes,
				CompactionInterval:    DefaultCompactionInterval * time.Second,
				AOFPath:               DefaultAOFFileName,
			},
		},
		{
			name: "EveryNOps policy without N fills default",
			config: Config{
				FlushPolicy: FlushEveryNOps,
			},
			want: Config{
				InitialCapacity:       DefaultInitialCapacity,
				FlushPolicy:           FlushEveryNOps,
				FlushEveryN:           DefaultCleanupOpsInterval,
				RewriteThresholdBytes: DefaultRewriteThresholdBytes,
				CompactionInterval:    DefaultCompactionInterval * time.Second,
				AOFPath:               DefaultAOFFileName,
			},
		},
		{
			name: "EveryNSeconds policy without duration fills one second",
			config: Config{
				FlushPolicy: FlushEveryNSeconds,
			},
			want: Config{
				InitialCapacity:       DefaultInitialCapacity,
				FlushPolicy:           FlushEveryNSeconds,
				FlushEverySeconds:     time.Second,
				RewriteThresholdBytes: DefaultRewriteThresholdBytes,
				CompactionInterval:    DefaultCompactionInterval * time.Second,
				AOFPath:               DefaultAOFFileName,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); err != nil {
				t.Fatalf("Config.Validate() error = %v", err)
			}

			if tt.config.InitialCapacity != tt.want.InitialCapacity {
				t.Errorf("InitialCapacity = %v, want %v", tt.config.InitialCapacity, tt.want.InitialCapacity)
			}
			if tt.config.FlushPolicy != tt.want.FlushPolicy {
				t.Errorf("FlushPolicy = %v, want %v", tt.config.FlushPolicy, tt.want.FlushPolicy)
			}
			if tt.config.FlushEveryN != tt.want.FlushEveryN {
				t.Errorf("FlushEveryN = %v, want %v", tt.config.FlushEveryN, tt.want.FlushEveryN)
			}
			if tt.config.FlushEverySeconds != tt.want.FlushEverySeconds {
				t.Errorf("FlushEverySeconds = %v, want %v", tt.config.FlushEverySeconds, tt.want.FlushEverySeconds)
			}
			if tt.config.RewriteThresholdBytes != tt.want.RewriteThresholdBytes {
				t.Errorf("RewriteThresholdBytes = %v, want %v", tt.config.RewriteThresholdBytes, tt.want.RewriteThresholdBytes)
			}
			if tt.config.AOFPath != tt.want.AOFPath {
				t.Errorf("AOFPath = %v, want %v", tt.config.AOFPath, tt.want.AOFPath)
			}
			if tt.config.Logger == nil {
				t.Error("Logger should default to NoOpLogger, got nil")
			}
			if tt.config.TimeProvider == nil {
				t.Error("TimeProvider should default to systemTimeProvider, got nil")
			}
			if tt.config.MetricsCollector == nil {
				t.Error("MetricsCollector should default to NoOpMetricsCollector, got nil")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.AOFPath != DefaultAOFFileName {
		t.Errorf("AOFPath = %v, want %v", cfg.AOFPath, DefaultAOFFileName)
	}
	if cfg.FlushPolicy != FlushAlways {
		t.Errorf("FlushPolicy = %v, want FlushAlways", cfg.FlushPolicy)
	}
}
