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

// Package oracle implements the request ledger: bounded judge and
// proposal requests created by users and fulfilled exactly once by the
// configured relayer.
package oracle

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

const (
	// JudgeRequestSeed prefixes judge request address derivation
	JudgeRequestSeed = "req"
	// ProposalRequestSeed prefixes proposal request address derivation
	ProposalRequestSeed = "proposal"

	MaxCriteriaLen     = 512
	MaxInputLen        = 512
	MaxProposalTextLen = 512
	MaxModelIDLen      = 64
)

// Request lifecycle. A request is pending from creation until the
// relayer fulfills it; fulfilled is terminal
const (
	StatusPending   uint8 = 0
	StatusFulfilled uint8 = 1
)

// Outcome codes for decisions and verdicts. Zero is reserved as unset
// and is never a valid input
const (
	CodeApprove       uint8 = 1
	CodeReject        uint8 = 2
	CodeNeedsRevision uint8 = 3
)

var (
	ErrCriteriaTooLong  = errors.New("criteria too long")
	ErrInputTooLong     = errors.New("input too long")
	ErrProposalTooLong  = errors.New("proposal text too long")
	ErrModelIDTooLong   = errors.New("model id too long")
	ErrAlreadyFulfilled = errors.New("request already fulfilled")
	ErrBadDecision      = errors.New("bad decision value")
	ErrBadVerdict       = errors.New("bad verdict code")
)

// Oracle manages judge and proposal requests
type Oracle struct {
	ledger   *ledger.Ledger
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  *oracleMetrics
}

// New creates an Oracle component
func New(
	l *ledger.Ledger,
	eventBus *event.EventBus,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Oracle {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	o := &Oracle{
		ledger:   l,
		eventBus: eventBus,
		logger:   logger,
	}
	if promRegistry != nil {
		o.initMetrics(promRegistry)
	}
	return o
}

// JudgeRequestAddress returns the derived address for a judge request
func JudgeRequestAddress(owner ledger.Address, nonce uint64) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(JudgeRequestSeed),
		owner.Bytes(),
		ledger.Uint64Seed(nonce),
	)
}

// ProposalRequestAddress returns the derived address for a proposal
// request
func ProposalRequestAddress(owner ledger.Address, nonce uint64) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(ProposalRequestSeed),
		owner.Bytes(),
		ledger.Uint64Seed(nonce),
	)
}

func (o *Oracle) publish(eventType event.EventType, data any) {
	if o.eventBus == nil {
		return
	}
	o.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
