// Package config resolves the broker's runtime configuration from
// defaults, an optional YAML file, and CLI flags, in that precedence
// order.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the broker needs to start serving.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	PersistencePath string `yaml:"persistence_path"`
	FrameCap        uint32 `yaml:"frame_cap"`

	HeartbeatIntervalSeconds int `yaml:"heartbeat_interval_s"`
	LivenessWindowSeconds    int `yaml:"liveness_window_s"`
	StatsIntervalSeconds     int `yaml:"stats_interval_s"`
	ShutdownGraceSeconds     int `yaml:"shutdown_grace_s"`

	MetricsAddr string `yaml:"metrics_addr"`
}

// Defaults returns the broker's built-in configuration, matching the
// original service's defaults: bind 0.0.0.0:5000, a 30s liveness
// window, a 10s heartbeat sweep, and a 60s stats sweep.
func Defaults() Config {
	return Config{
		Host:                     "0.0.0.0",
		Port:                     5000,
		PersistencePath:          "tasks.json",
		FrameCap:                 1 << 20,
		HeartbeatIntervalSeconds: 10,
		LivenessWindowSeconds:    30,
		StatsIntervalSeconds:     60,
		ShutdownGraceSeconds:     10,
		MetricsAddr:              "127.0.0.1:9090",
	}
}

// LoadFile merges a YAML file's contents onto base. A missing path is
// not an error; it simply leaves base untouched, matching a broker run
// with no config file supplied.
func LoadFile(base Config, path string) (Config, error) {
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("reading config file: %w", err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the broker's wire listener should bind.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
