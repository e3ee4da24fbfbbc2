// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads flowserver configuration from an optional YAML file
// with environment variable overrides. Environment wins, so a
// container deployment can override any file setting without rebuilding
// the config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full flowserver configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port"`

	// DataDir is the BadgerDB directory for flows and the persistent
	// cache. Empty means in-memory only.
	DataDir string `yaml:"data_dir"`

	// UploadDir is where per-flow uploads land.
	UploadDir string `yaml:"upload_dir"`

	// ComponentPaths are custom component descriptor directories.
	ComponentPaths []string `yaml:"component_paths"`

	// TaskBackend selects the dispatch strategy: "local" or "redis".
	TaskBackend string `yaml:"task_backend"`

	// RedisURL is the redis address for the distributed backend and the
	// shared cache, e.g. "localhost:6379".
	RedisURL string `yaml:"redis_url"`

	// Workers is the distributed worker pool size.
	Workers int `yaml:"workers"`

	// AwaitTimeout bounds synchronous waits on the distributed backend.
	AwaitTimeout Duration `yaml:"await_timeout"`

	// CacheCapacity bounds the in-memory cache store.
	CacheCapacity int `yaml:"cache_capacity"`

	// RateLimitRPS throttles launch endpoints per client. Zero disables.
	RateLimitRPS float64 `yaml:"rate_limit_rps"`

	// OTLPEndpoint is the OTLP collector address for tracing. Empty
	// disables tracing.
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Duration wraps time.Duration so YAML can carry "30s"-style strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		Port:          "7860",
		DataDir:       "data/flowserver",
		UploadDir:     "data/uploads",
		TaskBackend:   "local",
		Workers:       4,
		AwaitTimeout:  Duration(5 * time.Minute),
		CacheCapacity: 512,
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays LANGFLOW_* environment variables.
func (c *Config) applyEnv() {
	setString(&c.Port, "LANGFLOW_PORT")
	setString(&c.DataDir, "LANGFLOW_DATA_DIR")
	setString(&c.UploadDir, "LANGFLOW_UPLOAD_DIR")
	setString(&c.TaskBackend, "LANGFLOW_TASK_BACKEND")
	setString(&c.RedisURL, "LANGFLOW_REDIS_URL")
	setString(&c.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if v := os.Getenv("LANGFLOW_COMPONENTS_PATH"); v != "" {
		c.ComponentPaths = append(c.ComponentPaths, v)
	}
	if v := os.Getenv("LANGFLOW_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
	if v := os.Getenv("LANGFLOW_AWAIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.AwaitTimeout = Duration(d)
		}
	}
	if v := os.Getenv("LANGFLOW_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.CacheCapacity = n
		}
	}
	if v := os.Getenv("LANGFLOW_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.RateLimitRPS = f
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
