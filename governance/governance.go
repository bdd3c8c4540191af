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

// Package governance implements the proposal lifecycle: bounded-text
// proposals with append-only revisions, open community voting, a
// three-judge quorum, majority-rule finalization and a single treasury
// disbursement per approved proposal.
package governance

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

const (
	// ProposalSeed prefixes proposal address derivation
	ProposalSeed = "proposal_v2"
	// RevisionSeed prefixes revision record derivation
	RevisionSeed = "revision"
	// VoteSeed prefixes vote record derivation
	VoteSeed = "vote"
	// JudgeSeed prefixes judge result derivation
	JudgeSeed = "judge"
	// ActionSeed prefixes action request derivation
	ActionSeed = "action"

	// MaxTextLen bounds proposal and revision text
	MaxTextLen = 512

	// QuorumSize is the exact number of judge results required before a
	// proposal can be finalized
	QuorumSize = 3

	// ActionAmount is the fixed disbursement paid to the owner of an
	// approved proposal
	ActionAmount = 1_000_000
)

// Proposal lifecycle
const (
	StatusOpen      uint8 = 0
	StatusFinalized uint8 = 1
)

// Final verdicts and judge verdict codes. Zero is reserved as unset
const (
	VerdictApprove       uint8 = 1
	VerdictReject        uint8 = 2
	VerdictNeedsRevision uint8 = 3
)

// Community vote choices
const (
	ChoiceFor     uint8 = 1
	ChoiceAgainst uint8 = 2
	ChoiceAbstain uint8 = 3
)

// Action request lifecycle. A rejected action is created terminal
const (
	ActionPending  uint8 = 0
	ActionExecuted uint8 = 1
	ActionRejected uint8 = 2
)

var (
	ErrTextTooLong       = errors.New("proposal text too long")
	ErrNotOwner          = errors.New("caller is not the proposal owner")
	ErrProposalFinalized = errors.New("proposal already finalized")
	ErrBadRevisionNumber = errors.New("revision number out of sequence")
	ErrBadChoice         = errors.New("bad vote choice")
	ErrBadVerdict        = errors.New("bad judge verdict")
	ErrTooManyJudges     = errors.New("judge quorum already full")
	ErrNotEnoughJudges   = errors.New("judge quorum incomplete")
	ErrNotApproved       = errors.New("proposal was not approved")
	ErrActionNotPending  = errors.New("action request is not pending")
	ErrRecipientMismatch = errors.New("recipient does not match action request")
)

// Engine drives proposals from creation through finalization and payout
type Engine struct {
	ledger   *ledger.Ledger
	eventBus *event.EventBus
	logger   *slog.Logger
	metrics  *governanceMetrics
}

// New creates a governance Engine
func New(
	l *ledger.Ledger,
	eventBus *event.EventBus,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) *Engine {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &Engine{
		ledger:   l,
		eventBus: eventBus,
		logger:   logger,
	}
	if promRegistry != nil {
		e.initMetrics(promRegistry)
	}
	return e
}

// ProposalAddress returns the derived address for a proposal
func ProposalAddress(owner ledger.Address, nonce uint64) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(ProposalSeed),
		owner.Bytes(),
		ledger.Uint64Seed(nonce),
	)
}

// RevisionAddress returns the derived address for a revision record
func RevisionAddress(proposal ledger.Address, number uint32) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(RevisionSeed),
		proposal.Bytes(),
		ledger.Uint64Seed(uint64(number)),
	)
}

// VoteAddress returns the derived address for a vote record. Deriving
// from (proposal, voter) is what makes double voting structurally
// impossible
func VoteAddress(proposal ledger.Address, voter ledger.Address) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(VoteSeed),
		proposal.Bytes(),
		voter.Bytes(),
	)
}

// JudgeAddress returns the derived address for a judge result
func JudgeAddress(proposal ledger.Address, judge ledger.Address) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(JudgeSeed),
		proposal.Bytes(),
		judge.Bytes(),
	)
}

// ActionAddress returns the derived address for a proposal's action
// request. One action per proposal, tied 1:1 by derivation
func ActionAddress(proposal ledger.Address) ledger.Address {
	return ledger.DeriveAddress(
		[]byte(ActionSeed),
		proposal.Bytes(),
	)
}

func (e *Engine) publish(eventType event.EventType, data any) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.Publish(eventType, event.NewEvent(eventType, data))
}
