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

// Package match implements staked two-player matches: both players
// escrow an equal stake at creation, the relayer records a verdict, and
// settlement pays the escrow out exactly once.
package match

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openrelay-io/arbiter/database/models"
	"github.com/openrelay-io/arbiter/database/types"
	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

const (
	// MatchSeed prefixes match record derivation
	MatchSeed = "match"
	// EscrowSeed prefixes escrow account derivation
	EscrowSeed = "match_escrow"

	MaxCriteriaLen = 512
	MaxInputLen    = 512
	MaxExtraLen    = 512
	MaxModelIDLen  = 64
)

// Match lifecycle
const (
	StatusOpen      uint8 = 0
	StatusFinalized uint8 = 1
	StatusSettled   uint8 = 2
)

// Verdicts. Zero is reserved as unset
const (
	VerdictPlayerA uint8 = 1
	VerdictPlayerB uint8 = 2
	VerdictDraw    uint8 = 3
)

var (
	ErrBadMatchPlayer    = errors.New("match players must differ")
	ErrBadMatchType      = errors.New("bad match type")
	ErrBadStake          = errors.New("stake must be positive")
	ErrCriteriaTooLong   = errors.New("criteria too long")
	ErrInputTooLong      = errors.New("input too long")
	ErrExtraTooLong      = errors.New("extra payload too long")
	ErrModelIDTooLong    = errors.New("model id too long")
	ErrBadVerdict        = errors.New("bad match verdict")
	ErrAlreadyFinalized  = errors.New("match already finalized")
	ErrNotFinalized      = errors.New("match not finalized")
	ErrPlayerMismatch    = errors.New("players do not match stored match")
	ErrEscrowBalanceLow  = errors.New("escrow balance below required amount")
)

// Match records one staked contest between two players. PromptHash,
// ReceiptRoot and ModelID are written by the relayer at finalization
type Match struct {
	PlayerA     ledger.Address
	PlayerB     ledger.Address
	Status      uint8
	Nonce       uint64
	MatchType   uint8
	Stake       uint64
	Verdict     uint8
	PromptHash  [32]byte
	ReceiptRoot [32]byte
	ModelID     string
	Criteria    string
	InputA      string
	InputB      string
	Extra       string
	Executor    ledger.Address
}

// Escrow manages match lifecycles and their escrowed stakes
type Escrow struct {
	ledger   *ledger.Ledger
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  *matchMetrics
}

// New creates an Escrow component
func New(
	l *ledger.Ledger,
	eventBus *event.EventBus,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Escrow {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &Escrow{
		ledger:   l,
		eventBus: eventBus,
		logger:   logger,
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

// MatchAddress returns the derived address for a match record
func MatchAddress(playerA ledger.Address, nonce uint64) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(MatchSeed),
		playerA.Bytes(),
		ledger.Uint64Seed(nonce),
	)
}

// EscrowAddress returns the derived address of a match's escrow account
func EscrowAddress(matchAddr ledger.Address) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(EscrowSeed),
		matchAddr.Bytes(),
	)
}

func (e *Escrow) setMatchIndex(
	txn *ledger.Txn,
	addr ledger.Address,
	m *Match,
) error {
	return txn.DB().SetMatch(
		&models.Match{
			Address:   addr.Bytes(),
			PlayerA:   m.PlayerA.Bytes(),
			PlayerB:   m.PlayerB.Bytes(),
			Nonce:     types.Uint64(m.Nonce),
			MatchType: m.MatchType,
			Status:    m.Status,
			Stake:     types.Uint64(m.Stake),
			Verdict:   m.Verdict,
			Executor:  m.Executor.Bytes(),
			ModelID:   m.ModelID,
		},
		txn.DatabaseTxn(),
	)
}

func (e *Escrow) publish(eventType event.EventType, data any) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}

// GetMatch reads a match record
func (e *Escrow) GetMatch(addr ledger.Address) (*Match, error) {
	var m Match
	err := e.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(addr, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// EscrowBalance returns the current balance of a match's escrow account
func (e *Escrow) EscrowBalance(matchAddr ledger.Address) (uint64, error) {
	var balance uint64
	err := e.ledger.View(func(txn *ledger.Txn) error {
		var err error
		balance, err = txn.Balance(EscrowAddress(matchAddr))
		return err
	})
	return balance, err
}
