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

package oracle

import (
	"github.com/openrelay-io/arbiter/database/models"
	"github.com/openrelay-io/arbiter/database/types"
	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/relayer"
)

// ProposalRequest asks the relayer to judge a bounded proposal text.
// The verdict, result hashes and model identifier are written by the
// relayer at fulfillment
type ProposalRequest struct {
	Owner        ledger.Address
	Status       uint8
	Nonce        uint64
	VerdictCode  uint8
	SummaryHash  [32]byte
	ReceiptRoot  [32]byte
	PromptHash   [32]byte
	ModelID      string
	ProposalText string
}

// CreateProposalRequest stores a new pending proposal request owned by
// the caller
func (o *Oracle) CreateProposalRequest(
	owner ledger.Address,
	nonce uint64,
	proposalText string,
) (ledger.Address, error) {
	if len(proposalText) > MaxProposalTextLen {
		return ledger.Address{}, ErrProposalTooLong
	}
	addr := ProposalRequestAddress(owner, nonce)
	err := o.ledger.Update(func(txn *ledger.Txn) error {
		req := ProposalRequest{
			Owner:        owner,
			Status:       StatusPending,
			Nonce:        nonce,
			ProposalText: proposalText,
		}
		err := txn.CreateRecord(
			addr,
			&req,
			owner,
			ledger.SignerAuthority(owner),
		)
		if err != nil {
			return err
		}
		return txn.DB().SetProposalRequest(
			&models.ProposalRequest{
				Address: addr.Bytes(),
				Owner:   owner.Bytes(),
				Nonce:   types.Uint64(nonce),
				Status:  StatusPending,
			},
			txn.DatabaseTxn(),
		)
	})
	if err != nil {
		return ledger.Address{}, err
	}
	o.observeCreated("proposal")
	o.publish(
		event.RequestCreatedEventType,
		event.RequestCreatedEvent{
			Address: addr.Bytes(),
			Owner:   owner.Bytes(),
			Nonce:   nonce,
			Kind:    "proposal",
		},
	)
	o.logger.Info(
		"proposal request created",
		"component", "oracle",
		"address", addr.String(),
		"nonce", nonce,
	)
	return addr, nil
}

// FulfillProposalRequest writes the relayer's verdict to a pending
// proposal request
func (o *Oracle) FulfillProposalRequest(
	caller ledger.Address,
	addr ledger.Address,
	verdictCode uint8,
	summaryHash [32]byte,
	receiptRoot [32]byte,
	promptHash [32]byte,
	modelID string,
) error {
	if verdictCode < CodeApprove || verdictCode > CodeNeedsRevision {
		return ErrBadVerdict
	}
	if len(modelID) > MaxModelIDLen {
		return ErrModelIDTooLong
	}
	var req ProposalRequest
	err := o.ledger.Update(func(txn *ledger.Txn) error {
		if err := relayer.Authorize(txn, caller); err != nil {
			return err
		}
		if err := txn.GetRecord(addr, &req); err != nil {
			return err
		}
		if req.Status != StatusPending {
			return ErrAlreadyFulfilled
		}
		req.Status = StatusFulfilled
		req.VerdictCode = verdictCode
		req.SummaryHash = summaryHash
		req.ReceiptRoot = receiptRoot
		req.PromptHash = promptHash
		req.ModelID = modelID
		if err := txn.PutRecord(addr, &req); err != nil {
			return err
		}
		return txn.DB().SetProposalRequest(
			&models.ProposalRequest{
				Address: addr.Bytes(),
				Owner:   req.Owner.Bytes(),
				Nonce:   types.Uint64(req.Nonce),
				Status:  StatusFulfilled,
				Verdict: verdictCode,
				ModelID: modelID,
			},
			txn.DatabaseTxn(),
		)
	})
	if err != nil {
		return err
	}
	o.observeFulfilled("proposal")
	o.publish(
		event.RequestFulfilledEventType,
		event.RequestFulfilledEvent{
			Address: addr.Bytes(),
			Owner:   req.Owner.Bytes(),
			Kind:    "proposal",
			Code:    verdictCode,
		},
	)
	o.logger.Info(
		"proposal request fulfilled",
		"component", "oracle",
		"address", addr.String(),
		"verdict", verdictCode,
	)
	return nil
}

// GetProposalRequest reads a proposal request record
func (o *Oracle) GetProposalRequest(
	addr ledger.Address,
) (*ProposalRequest, error) {
	var req ProposalRequest
	err := o.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(addr, &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
