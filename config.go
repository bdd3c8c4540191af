// Copyright 2025 OpenRelay Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package arbiter

import (
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	dataDir         string
	blobPlugin      string
	metadataPlugin  string
	treasuryFloor   uint64
	treasuryTopUp   uint64
	tracing         bool
	tracingStdout   bool
	shutdownTimeout time.Duration
}

// ConfigOptionFunc is a type that represents functions that modify the Engine config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new arbiter config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithDatabasePath specifies the persistent data directory to use. The default is to store everything in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithPrometheusRegistry specifies the prometheus registry for component metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTreasuryFloor specifies the vault balance below which EnsureTreasury
// tops the vault up
func WithTreasuryFloor(floor uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.treasuryFloor = floor
	}
}

// WithTreasuryTopUp specifies the top-up amount used by EnsureTreasury.
// Zero means the package default
func WithTreasuryTopUp(topUp uint64) ConfigOptionFunc {
	return func(c *Config) {
		c.treasuryTopUp = topUp
	}
}

// WithTracing enables the tracing provider
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout enables the stdout trace exporter instead of OTLP-HTTP
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout specifies the timeout for graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
