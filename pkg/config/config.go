// Package config loads the replica observability core's configuration
// from environment variables, with an optional YAML file overlay.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// StatsDMode selects how the packet emitter dispatches datagrams.
type StatsDMode string

const (
	// StatsDModeLog formats and logs lines instead of sending them, for
	// deterministic local runs and tests.
	StatsDModeLog StatsDMode = "log"
	// StatsDModeUDP sends datagrams to StatsDAddr over a connected UDP
	// socket.
	StatsDModeUDP StatsDMode = "udp"
)

const defaultClusterID = "00000000000000000000000000000000"

// Config is the observability core's full configuration surface.
type Config struct {
	// TracePath, if non-empty, names the file the Chrome-trace JSON
	// stream is appended to. Empty means no trace sink is configured.
	TracePath string

	StatsDMode StatsDMode
	StatsDAddr string

	Cluster [16]byte
	Replica uint8

	LogLevel  string
	LogFormat string // json, text

	// EmitInterval is how often the harness calls EmitMetrics.
	EmitInterval time.Duration
}

// fileOverlay holds the subset of Config that may be supplied by a YAML
// file named by REPLICATRACE_CONFIG_FILE. Every field is optional; a
// present environment variable always wins over a value from this file,
// and this file always wins over the built-in default.
type fileOverlay struct {
	TracePath    *string `yaml:"trace_path"`
	StatsDMode   *string `yaml:"statsd_mode"`
	StatsDAddr   *string `yaml:"statsd_addr"`
	ClusterID    *string `yaml:"cluster_id"`
	Replica      *int    `yaml:"replica_index"`
	LogLevel     *string `yaml:"log_level"`
	LogFormat    *string `yaml:"log_format"`
	EmitInterval *string `yaml:"emit_interval"`
}

func loadFileOverlay(path string) (*fileOverlay, error) {
	if path == "" {
		return &fileOverlay{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &overlay, nil
}

// Load reads Config from an optional REPLICATRACE_CONFIG_FILE YAML file
// and the REPLICATRACE_* environment variables, in that precedence order
// (environment wins), applying defaults for anything left unset.
func Load() (*Config, error) {
	overlay, err := loadFileOverlay(getEnv("REPLICATRACE_CONFIG_FILE", ""))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TracePath:    getEnv("REPLICATRACE_TRACE_PATH", derefString(overlay.TracePath, "")),
		StatsDMode:   parseStatsDMode(getEnv("REPLICATRACE_STATSD_MODE", derefString(overlay.StatsDMode, "log"))),
		StatsDAddr:   getEnv("REPLICATRACE_STATSD_ADDR", derefString(overlay.StatsDAddr, "127.0.0.1:8125")),
		LogLevel:     getEnv("REPLICATRACE_LOG_LEVEL", derefString(overlay.LogLevel, "info")),
		LogFormat:    getEnv("REPLICATRACE_LOG_FORMAT", derefString(overlay.LogFormat, "text")),
		EmitInterval: getEnvDuration("REPLICATRACE_EMIT_INTERVAL", parseDurationOr(derefString(overlay.EmitInterval, ""), time.Second)),
	}

	cluster, err := parseClusterID(getEnv("REPLICATRACE_CLUSTER_ID", derefString(overlay.ClusterID, defaultClusterID)))
	if err != nil {
		return nil, err
	}
	cfg.Cluster = cluster

	replicaDefault := 0
	if overlay.Replica != nil {
		replicaDefault = *overlay.Replica
	}
	replica := getEnvInt("REPLICATRACE_REPLICA_INDEX", replicaDefault)
	if replica < 0 || replica > 255 {
		return nil, fmt.Errorf("config: REPLICATRACE_REPLICA_INDEX must be in [0, 255], got %d", replica)
	}
	cfg.Replica = uint8(replica)

	return cfg, nil
}

func derefString(s *string, defaultValue string) string {
	if s == nil {
		return defaultValue
	}
	return *s
}

func parseDurationOr(s string, defaultValue time.Duration) time.Duration {
	if s == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return defaultValue
}

func parseStatsDMode(s string) StatsDMode {
	if s == string(StatsDModeUDP) {
		return StatsDModeUDP
	}
	return StatsDModeLog
}

func parseClusterID(s string) ([16]byte, error) {
	var out [16]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("config: REPLICATRACE_CLUSTER_ID is not valid hex: %w", err)
	}
	if len(b) != len(out) {
		return out, fmt.Errorf("config: REPLICATRACE_CLUSTER_ID must decode to %d bytes, got %d", len(out), len(b))
	}
	copy(out[:], b)
	return out, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
