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

// Package arbiter wires the settlement engine together: the two-store
// database, the ledger on top of it, the event bus, and the five
// settlement components (relayer authority, oracle requests, governance,
// treasury and match escrow).
package arbiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/governance"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/match"
	"github.com/openrelay-io/arbiter/oracle"
	"github.com/openrelay-io/arbiter/relayer"
	"github.com/openrelay-io/arbiter/treasury"
)

type Engine struct {
	db            *database.Database
	ledger        *ledger.Ledger
	eventBus      *event.EventBus
	relayer       *relayer.Authority
	oracle        *oracle.Oracle
	governance    *governance.Engine
	treasury      *treasury.Treasury
	match         *match.Escrow
	shutdownFuncs []func(context.Context) error
	config        Config
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Engine, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	e := &Engine{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	return e, nil
}

// Run opens storage, builds the components, and blocks until Stop is
// called
func (e *Engine) Run() error {
	// Configure tracing
	if e.config.tracing {
		if err := e.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	dbConfig := &database.Config{
		DataDir:        e.config.dataDir,
		Logger:         e.config.logger,
		PromRegistry:   e.config.promRegistry,
		BlobPlugin:     e.config.blobPlugin,
		MetadataPlugin: e.config.metadataPlugin,
	}
	db, err := database.New(dbConfig)
	if db == nil {
		e.config.logger.Error(
			"failed to create database",
			"error",
			"empty database returned",
		)
		return errors.New("empty database returned")
	}
	e.db = db
	if err != nil {
		var dbErr database.CommitTimestampError
		if !errors.As(err, &dbErr) {
			return fmt.Errorf("failed to open database: %w", err)
		}
		// The blob store is authoritative and the metadata store is a
		// rebuildable index, so a timestamp mismatch is not fatal here
		e.config.logger.Warn(
			"database stores out of sync, metadata index may be stale",
			"error",
			err,
		)
	}
	e.ledger = ledger.New(e.db, e.config.logger)
	e.relayer = relayer.New(e.ledger, e.eventBus, e.config.logger)
	e.oracle = oracle.New(
		e.ledger,
		e.eventBus,
		e.config.logger,
		e.config.promRegistry,
	)
	e.governance = governance.New(
		e.ledger,
		e.eventBus,
		e.config.logger,
		e.config.promRegistry,
	)
	e.treasury = treasury.New(e.ledger, e.eventBus, e.config.logger)
	e.match = match.New(
		e.ledger,
		e.eventBus,
		e.config.logger,
		e.config.promRegistry,
	)
	e.config.logger.Info(
		"engine started",
		"component", "engine",
		"data_dir", e.config.dataDir,
	)

	// Wait for shutdown signal
	<-e.done
	return nil
}

// Ledger returns the underlying ledger
func (e *Engine) Ledger() *ledger.Ledger {
	return e.ledger
}

// EventBus returns the engine's event bus
func (e *Engine) EventBus() *event.EventBus {
	return e.eventBus
}

// Relayer returns the relayer authority component
func (e *Engine) Relayer() *relayer.Authority {
	return e.relayer
}

// Oracle returns the request ledger component
func (e *Engine) Oracle() *oracle.Oracle {
	return e.oracle
}

// Governance returns the governance engine component
func (e *Engine) Governance() *governance.Engine {
	return e.governance
}

// Treasury returns the treasury vault component
func (e *Engine) Treasury() *treasury.Treasury {
	return e.treasury
}

// Match returns the match escrow component
func (e *Engine) Match() *match.Escrow {
	return e.match
}

// EnsureTreasury initializes and tops up the treasury vault per the
// configured floor and top-up amounts
func (e *Engine) EnsureTreasury(payer ledger.Address) error {
	return e.treasury.EnsureTreasury(
		payer,
		e.config.treasuryFloor,
		e.config.treasuryTopUp,
	)
}

func (e *Engine) Stop() error {
	var err error
	e.shutdownOnce.Do(func() {
		err = e.shutdown()
	})
	return err
}

func (e *Engine) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if e.config.shutdownTimeout > 0 {
		shutdownTimeout = e.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	e.config.logger.Debug("starting graceful shutdown")

	// Phase 1: stop accepting new work
	if e.eventBus != nil {
		e.eventBus.Stop()
	}

	// Phase 2: run registered shutdown functions
	for _, fn := range e.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	e.shutdownFuncs = nil

	// Phase 3: flush and close storage
	if e.db != nil {
		if closeErr := e.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	e.config.logger.Debug("graceful shutdown complete")
	close(e.done)
	return err
}
