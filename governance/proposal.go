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

package governance

import (
	"github.com/openrelay-io/arbiter/database/models"
	"github.com/openrelay-io/arbiter/database/types"
	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

// Proposal tracks the full voting state of one governance proposal.
// Text always mirrors the latest revision; earlier revisions stay
// readable through their own records
type Proposal struct {
	Owner              ledger.Address
	Status             uint8
	Nonce              uint64
	RevisionCount      uint32
	Text               string
	VotesFor           uint64
	VotesAgainst       uint64
	VotesAbstain       uint64
	JudgeApprove       uint8
	JudgeReject        uint8
	JudgeNeedsRevision uint8
	FinalVerdict       uint8
}

func (p *Proposal) judgeSum() uint8 {
	// Individual tallies are capped before increment, so the sum fits
	return p.JudgeApprove + p.JudgeReject + p.JudgeNeedsRevision
}

// Revision is an immutable snapshot of proposal text at one sequence
// number. Revision 0 is written when the proposal is created
type Revision struct {
	Proposal ledger.Address
	Number   uint32
	Text     string
}

func (e *Engine) setProposalIndex(
	txn *ledger.Txn,
	addr ledger.Address,
	p *Proposal,
) error {
	return txn.DB().SetProposal(
		&models.Proposal{
			Address:       addr.Bytes(),
			Owner:         p.Owner.Bytes(),
			Nonce:         types.Uint64(p.Nonce),
			Status:        p.Status,
			Outcome:       p.FinalVerdict,
			RevisionCount: p.RevisionCount,
			JudgeCount:    p.judgeSum(),
			VotesFor:      types.Uint64(p.VotesFor),
			VotesAgainst:  types.Uint64(p.VotesAgainst),
			VotesAbstain:  types.Uint64(p.VotesAbstain),
		},
		txn.DatabaseTxn(),
	)
}

// CreateProposal stores a new open proposal and its revision-0 record in
// one transaction. The owner pays the reserve for both records
func (e *Engine) CreateProposal(
	owner ledger.Address,
	nonce uint64,
	text string,
) (ledger.Address, error) {
	if len(text) > MaxTextLen {
		return ledger.Address{}, ErrTextTooLong
	}
	addr := ProposalAddress(owner, nonce)
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		proposal := Proposal{
			Owner:         owner,
			Status:        StatusOpen,
			Nonce:         nonce,
			RevisionCount: 1,
			Text:          text,
		}
		auth := ledger.SignerAuthority(owner)
		if err := txn.CreateRecord(addr, &proposal, owner, auth); err != nil {
			return err
		}
		revision := Revision{Proposal: addr, Number: 0, Text: text}
		err := txn.CreateRecord(
			RevisionAddress(addr, 0),
			&revision,
			owner,
			auth,
		)
		if err != nil {
			return err
		}
		return e.setProposalIndex(txn, addr, &proposal)
	})
	if err != nil {
		return ledger.Address{}, err
	}
	if e.metrics != nil {
		e.metrics.proposalsCreated.Inc()
	}
	e.publish(
		event.ProposalCreatedEventType,
		event.ProposalCreatedEvent{
			Address: addr.Bytes(),
			Owner:   owner.Bytes(),
			Nonce:   nonce,
		},
	)
	e.logger.Info(
		"proposal created",
		"component", "governance",
		"address", addr.String(),
		"nonce", nonce,
	)
	return addr, nil
}

// AddRevision appends a new text revision to an open proposal. Only the
// owner may revise, and revisionNumber must equal the current revision
// count, which rejects duplicate and out-of-order submissions
func (e *Engine) AddRevision(
	owner ledger.Address,
	proposalAddr ledger.Address,
	revisionNumber uint32,
	text string,
) error {
	if len(text) > MaxTextLen {
		return ErrTextTooLong
	}
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		var proposal Proposal
		if err := txn.GetRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		if proposal.Status != StatusOpen {
			return ErrProposalFinalized
		}
		if proposal.Owner != owner {
			return ErrNotOwner
		}
		if revisionNumber != proposal.RevisionCount {
			return ErrBadRevisionNumber
		}
		revision := Revision{
			Proposal: proposalAddr,
			Number:   revisionNumber,
			Text:     text,
		}
		err := txn.CreateRecord(
			RevisionAddress(proposalAddr, revisionNumber),
			&revision,
			owner,
			ledger.SignerAuthority(owner),
		)
		if err != nil {
			return err
		}
		newCount, err := ledger.CheckedAdd32(proposal.RevisionCount, 1)
		if err != nil {
			return err
		}
		proposal.RevisionCount = newCount
		proposal.Text = text
		if err := txn.PutRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		return e.setProposalIndex(txn, proposalAddr, &proposal)
	})
	if err != nil {
		return err
	}
	e.logger.Info(
		"proposal revised",
		"component", "governance",
		"address", proposalAddr.String(),
		"revision", revisionNumber,
	)
	return nil
}

// GetProposal reads a proposal record
func (e *Engine) GetProposal(addr ledger.Address) (*Proposal, error) {
	var proposal Proposal
	err := e.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(addr, &proposal)
	})
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetRevision reads one revision record of a proposal
func (e *Engine) GetRevision(
	proposalAddr ledger.Address,
	number uint32,
) (*Revision, error) {
	var revision Revision
	err := e.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(RevisionAddress(proposalAddr, number), &revision)
	})
	if err != nil {
		return nil, err
	}
	return &revision, nil
}
