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

// Package treasury manages the shared vault account that funds approved
// governance actions. Anyone can pay in; the only outbound path is the
// governance engine acting with the vault's derived-key authority.
package treasury

import (
	"errors"
	"io"
	"log/slog"

	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

const (
	// TreasurySeed derives the custody marker record address
	TreasurySeed = "treasury"
	// VaultSeed derives the fund-holding account address
	VaultSeed = "treasury_vault"

	// DefaultTopUpAmount is the amount EnsureTreasury pays in when the
	// vault balance sits below the configured floor
	DefaultTopUpAmount = 2_000_000
)

var ErrAlreadyInitialized = errors.New("treasury already initialized")

// Marker is the custody marker record, written once at treasury
// initialization
type Marker struct {
	Payer ledger.Address
}

// TreasuryAddress returns the derived address of the custody marker
func TreasuryAddress() ledger.Address {
	return ledger.DeriveAddress([]byte(TreasurySeed))
}

// VaultAddress returns the derived address of the vault account
func VaultAddress() ledger.Address {
	return ledger.DeriveAddress([]byte(VaultSeed))
}

// Treasury manages the vault account
type Treasury struct {
	ledger   *ledger.Ledger
	eventBus *event.EventBus
	logger   *slog.Logger
}

// New creates a Treasury component
func New(
	l *ledger.Ledger,
	eventBus *event.EventBus,
	logger *slog.Logger,
) *Treasury {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Treasury{
		ledger:   l,
		eventBus: eventBus,
		logger:   logger,
	}
}

// InitTreasury writes the custody marker. It can succeed at most once
func (t *Treasury) InitTreasury(payer ledger.Address) error {
	err := t.ledger.Update(func(txn *ledger.Txn) error {
		err := txn.CreateRecord(
			TreasuryAddress(),
			&Marker{Payer: payer},
			payer,
			ledger.SignerAuthority(payer),
		)
		if errors.Is(err, ledger.ErrRecordExists) {
			return ErrAlreadyInitialized
		}
		return err
	})
	if err != nil {
		return err
	}
	t.logger.Info(
		"treasury initialized",
		"component", "treasury",
		"payer", payer.String(),
	)
	return nil
}

// InitVault seeds the vault account with the minimum reserve. It is
// idempotent: when the vault already exists the call succeeds as a
// no-op, so callers can retry freely
func (t *Treasury) InitVault(payer ledger.Address) error {
	return t.ledger.Update(func(txn *ledger.Txn) error {
		exists, err := txn.HasAccount(VaultAddress())
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		return txn.Transfer(
			payer,
			VaultAddress(),
			ledger.MinBalanceReserve,
			ledger.SignerAuthority(payer),
		)
	})
}

// Fund moves amount from the funder into the vault. No authorization is
// required beyond the funder covering its own debit
func (t *Treasury) Fund(funder ledger.Address, amount uint64) error {
	err := t.ledger.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(
			funder,
			VaultAddress(),
			amount,
			ledger.SignerAuthority(funder),
		)
	})
	if err != nil {
		return err
	}
	if t.eventBus != nil {
		t.eventBus.Publish(
			event.TreasuryFundedEventType,
			event.NewEvent(
				event.TreasuryFundedEventType,
				event.TreasuryFundedEvent{
					Funder: funder.Bytes(),
					Amount: amount,
				},
			),
		)
	}
	t.logger.Info(
		"treasury funded",
		"component", "treasury",
		"funder", funder.String(),
		"amount", amount,
	)
	return nil
}

// Balance returns the current vault balance
func (t *Treasury) Balance() (uint64, error) {
	var balance uint64
	err := t.ledger.View(func(txn *ledger.Txn) error {
		var err error
		balance, err = txn.Balance(VaultAddress())
		return err
	})
	return balance, err
}

// EnsureTreasury initializes the marker and vault if needed and tops the
// vault up when its balance sits below floor. Safe to call repeatedly;
// a partially completed earlier attempt is picked up where it left off
func (t *Treasury) EnsureTreasury(
	payer ledger.Address,
	floor uint64,
	topUp uint64,
) error {
	if err := t.InitTreasury(payer); err != nil &&
		!errors.Is(err, ErrAlreadyInitialized) {
		return err
	}
	if err := t.InitVault(payer); err != nil {
		return err
	}
	balance, err := t.Balance()
	if err != nil {
		return err
	}
	if balance >= floor {
		return nil
	}
	if topUp == 0 {
		topUp = DefaultTopUpAmount
	}
	return t.Fund(payer, topUp)
}
