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
	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
)

// VoteRecord marks that a voter has voted on a proposal. Its address is
// derived from (proposal, voter), so a second vote fails at record
// creation rather than in application logic
type VoteRecord struct {
	Proposal ledger.Address
	Voter    ledger.Address
	Choice   uint8
}

// JudgeResult marks one judge's verdict on a proposal, keyed the same
// way as votes
type JudgeResult struct {
	Proposal ledger.Address
	Judge    ledger.Address
	Verdict  uint8
}

// CastVote records a community vote on an open proposal and bumps the
// matching tally. The voter pays the reserve for the vote record
func (e *Engine) CastVote(
	voter ledger.Address,
	proposalAddr ledger.Address,
	choice uint8,
) error {
	if choice < ChoiceFor || choice > ChoiceAbstain {
		return ErrBadChoice
	}
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		var proposal Proposal
		if err := txn.GetRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		if proposal.Status != StatusOpen {
			return ErrProposalFinalized
		}
		vote := VoteRecord{
			Proposal: proposalAddr,
			Voter:    voter,
			Choice:   choice,
		}
		err := txn.CreateRecord(
			VoteAddress(proposalAddr, voter),
			&vote,
			voter,
			ledger.SignerAuthority(voter),
		)
		if err != nil {
			return err
		}
		var tally *uint64
		switch choice {
		case ChoiceFor:
			tally = &proposal.VotesFor
		case ChoiceAgainst:
			tally = &proposal.VotesAgainst
		case ChoiceAbstain:
			tally = &proposal.VotesAbstain
		}
		newTally, err := ledger.CheckedAdd(*tally, 1)
		if err != nil {
			return err
		}
		*tally = newTally
		if err := txn.PutRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		return e.setProposalIndex(txn, proposalAddr, &proposal)
	})
	if err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.votesCast.WithLabelValues(choiceLabel(choice)).Inc()
	}
	e.publish(
		event.VoteCastEventType,
		event.VoteCastEvent{
			Proposal: proposalAddr.Bytes(),
			Voter:    voter.Bytes(),
			Choice:   choice,
		},
	)
	return nil
}

// SubmitJudgeResult records one judge's verdict on an open proposal.
// At most QuorumSize results are accepted; the (proposal, judge) key
// stops a judge from voting twice
func (e *Engine) SubmitJudgeResult(
	judge ledger.Address,
	proposalAddr ledger.Address,
	verdict uint8,
) error {
	if verdict < VerdictApprove || verdict > VerdictNeedsRevision {
		return ErrBadVerdict
	}
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		var proposal Proposal
		if err := txn.GetRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		if proposal.Status != StatusOpen {
			return ErrProposalFinalized
		}
		if proposal.judgeSum() >= QuorumSize {
			return ErrTooManyJudges
		}
		result := JudgeResult{
			Proposal: proposalAddr,
			Judge:    judge,
			Verdict:  verdict,
		}
		err := txn.CreateRecord(
			JudgeAddress(proposalAddr, judge),
			&result,
			judge,
			ledger.SignerAuthority(judge),
		)
		if err != nil {
			return err
		}
		var tally *uint8
		switch verdict {
		case VerdictApprove:
			tally = &proposal.JudgeApprove
		case VerdictReject:
			tally = &proposal.JudgeReject
		case VerdictNeedsRevision:
			tally = &proposal.JudgeNeedsRevision
		}
		newTally, err := ledger.CheckedAdd8(*tally, 1)
		if err != nil {
			return err
		}
		*tally = newTally
		if err := txn.PutRecord(proposalAddr, &proposal); err != nil {
			return err
		}
		return e.setProposalIndex(txn, proposalAddr, &proposal)
	})
	if err != nil {
		return err
	}
	e.publish(
		event.JudgeResultEventType,
		event.JudgeResultEvent{
			Proposal: proposalAddr.Bytes(),
			Judge:    judge.Bytes(),
			Verdict:  verdict,
		},
	)
	e.logger.Info(
		"judge result submitted",
		"component", "governance",
		"proposal", proposalAddr.String(),
		"verdict", verdict,
	)
	return nil
}

// GetVote reads a vote record for the given voter, if one exists
func (e *Engine) GetVote(
	proposalAddr ledger.Address,
	voter ledger.Address,
) (*VoteRecord, error) {
	var vote VoteRecord
	err := e.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(VoteAddress(proposalAddr, voter), &vote)
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}
