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
	"github.com/openrelay-io/arbiter/treasury"
)

// ActionRequest is the single treasury disbursement attached to a
// finalized proposal. It is created pending only when the verdict is
// approve; otherwise it is created already rejected
type ActionRequest struct {
	Proposal  ledger.Address
	Recipient ledger.Address
	Amount    uint64
	Status    uint8
	Executor  ledger.Address
}

func (e *Engine) setActionIndex(
	txn *ledger.Txn,
	addr ledger.Address,
	action *ActionRequest,
) error {
	return txn.DB().SetAction(
		&models.Action{
			Address:   addr.Bytes(),
			Proposal:  action.Proposal.Bytes(),
			Recipient: action.Recipient.Bytes(),
			Amount:    types.Uint64(action.Amount),
			Status:    action.Status,
			Executor:  action.Executor.Bytes(),
		},
		txn.DatabaseTxn(),
	)
}

// finalVerdict applies the fixed majority rule: approve on a 2-of-3
// approve majority, then reject on a 2-of-3 reject majority, and
// needs-revision only when no side reaches two votes (the 1/1/1 split)
func finalVerdict(p *Proposal) uint8 {
	if p.JudgeApprove >= 2 {
		return VerdictApprove
	}
	if p.JudgeReject >= 2 {
		return VerdictReject
	}
	return VerdictNeedsRevision
}

// FinalizeConsensus tallies a complete judge quorum, seals the proposal
// and creates its action request, all in one transaction. The caller
// pays the reserve for the action record. Finalization cannot happen
// before exactly QuorumSize judge results have been submitted
func (e *Engine) FinalizeConsensus(
	caller ledger.Address,
	proposalAddr ledger.Address,
) (uint8, error) {
	var verdict uint8
	actionAddr := ActionAddress(proposalAddr)
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		var proposal Proposal
		if err := txn.GetRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		if proposal.Status != StatusOpen {
			return ErrProposalFinalized
		}
		if proposal.judgeSum() != QuorumSize {
			return ErrNotEnoughJudges
		}
		verdict = finalVerdict(&proposal)
		proposal.Status = StatusFinalized
		proposal.FinalVerdict = verdict
		action := ActionRequest{
			Proposal:  proposalAddr,
			Recipient: proposal.Owner,
			Amount:    ActionAmount,
			Status:    ActionRejected,
		}
		if verdict == VerdictApprove {
			action.Status = ActionPending
		}
		err := txn.CreateRecord(
			actionAddr,
			&action,
			caller,
			ledger.SignerAuthority(caller),
		)
		if err != nil {
			return err
		}
		if err := txn.PutRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		if err := e.setProposalIndex(txn, proposalAddr, &proposal); err != nil {
			return err
		}
		return e.setActionIndex(txn, actionAddr, &action)
	})
	if err != nil {
		return 0, err
	}
	if e.metrics != nil {
		e.metrics.proposalsFinalized.WithLabelValues(verdictLabel(verdict)).Inc()
	}
	e.publish(
		event.ProposalFinalizedEventType,
		event.ProposalFinalizedEvent{
			Proposal: proposalAddr.Bytes(),
			Action:   actionAddr.Bytes(),
			Verdict:  verdict,
		},
	)
	e.logger.Info(
		"proposal finalized",
		"component", "governance",
		"proposal", proposalAddr.String(),
		"verdict", verdict,
	)
	return verdict, nil
}

// CompleteAction pays an approved proposal's action out of the treasury
// vault. The transfer is authorized by the vault's derived-key
// authority, never by an end user; the status flip and the payout
// commit together so an action executes at most once
func (e *Engine) CompleteAction(
	executor ledger.Address,
	proposalAddr ledger.Address,
	recipient ledger.Address,
) error {
	actionAddr := ActionAddress(proposalAddr)
	var amount uint64
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		var proposal Proposal
		if err := txn.GetRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		if proposal.FinalVerdict != VerdictApprove {
			return ErrNotApproved
		}
		var action ActionRequest
		if err := txn.GetRecord(actionAddr, &action); err != nil {
			return err
		}
		if action.Status != ActionPending {
			return ErrActionNotPending
		}
		if action.Recipient != recipient {
			return ErrRecipientMismatch
		}
		vault := treasury.VaultAddress()
		err := txn.Transfer(
			vault,
			action.Recipient,
			action.Amount,
			ledger.VaultAuthority(vault),
		)
		if err != nil {
			return err
		}
		action.Status = ActionExecuted
		action.Executor = executor
		amount = action.Amount
		if err := txn.PutRecord(actionAddr, &action); err != nil {
			return err
		}
		return e.setActionIndex(txn, actionAddr, &action)
	})
	if err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.actionsExecuted.Inc()
		e.metrics.valueDisbursed.Add(float64(amount))
	}
	e.publish(
		event.ActionExecutedEventType,
		event.ActionExecutedEvent{
			Action:    actionAddr.Bytes(),
			Recipient: recipient.Bytes(),
			Executor:  executor.Bytes(),
			Amount:    amount,
		},
	)
	e.logger.Info(
		"action executed",
		"component", "governance",
		"action", actionAddr.String(),
		"amount", amount,
	)
	return nil
}

// GetAction reads a proposal's action request
func (e *Engine) GetAction(
	proposalAddr ledger.Address,
) (*ActionRequest, error) {
	var action ActionRequest
	err := e.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(ActionAddress(proposalAddr), &action)
	})
	if err != nil {
		return nil, err
	}
	return &action, nil
}
