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

package relayer

import (
	"errors"
	"io"
	"log/slog"

	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

// ConfigSeed derives the singleton config record address
const ConfigSeed = "config"

var (
	ErrAlreadyInitialized = errors.New("relayer config already initialized")
	ErrNotInitialized     = errors.New("relayer config not initialized")
	ErrBadRelayer         = errors.New("caller is not the configured relayer")
)

// Config is the singleton deployment configuration record. It is written
// once by InitConfig and never mutated afterwards
type Config struct {
	Admin   ledger.Address
	Relayer ledger.Address
}

// ConfigAddress returns the derived address of the config record
func ConfigAddress() ledger.Address {
	return ledger.DeriveAddress([]byte(ConfigSeed))
}

// Authority manages the deployment's relayer identity
type Authority struct {
	ledger   *ledger.Ledger
	eventBus *event.EventBus
	logger   *slog.Logger
}

// New creates an Authority component
func New(
	l *ledger.Ledger,
	eventBus *event.EventBus,
	logger *slog.Logger,
) *Authority {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Authority{
		ledger:   l,
		eventBus: eventBus,
		logger:   logger,
	}
}

// InitConfig stores the admin and relayer identities. It can succeed at
// most once per deployment; the config record is never updated afterwards
func (a *Authority) InitConfig(admin ledger.Address, relayerAddr ledger.Address) error {
	addr := ConfigAddress()
	err := a.ledger.Update(func(txn *ledger.Txn) error {
		err := txn.CreateRecord(
			addr,
			&Config{Admin: admin, Relayer: relayerAddr},
			admin,
			ledger.SignerAuthority(admin),
		)
		if errors.Is(err, ledger.ErrRecordExists) {
			return ErrAlreadyInitialized
		}
		return err
	})
	if err != nil {
		return err
	}
	a.logger.Info(
		"relayer config initialized",
		"component", "relayer",
		"admin", admin.String(),
		"relayer", relayerAddr.String(),
	)
	return nil
}

// Config reads the stored deployment configuration
func (a *Authority) Config() (*Config, error) {
	var cfg Config
	err := a.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(ConfigAddress(), &cfg)
	})
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return nil, ErrNotInitialized
		}
		return nil, err
	}
	return &cfg, nil
}

// Authorize checks that the caller is the configured relayer. It is used
// by every relay-gated operation within the same transaction that
// performs the state change
func Authorize(txn *ledger.Txn, caller ledger.Address) error {
	var cfg Config
	if err := txn.GetRecord(ConfigAddress(), &cfg); err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return ErrNotInitialized
		}
		return err
	}
	if cfg.Relayer != caller {
		return ErrBadRelayer
	}
	return nil
}
