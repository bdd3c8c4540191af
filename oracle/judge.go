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

// JudgeRequest asks the relayer to decide between two bounded inputs
// against a criteria string. Outcome fields stay zeroed until the
// relayer fulfills the request
type JudgeRequest struct {
	Owner        ledger.Address
	Status       uint8
	Nonce        uint64
	Decision     uint8
	ResponseHash [32]byte
	ReceiptRoot  [32]byte
	Criteria     string
	InputA       string
	InputB       string
}

// CreateJudgeRequest stores a new pending judge request owned by the
// caller. The owner pays the record reserve; a duplicate (owner, nonce)
// pair fails with ledger.ErrRecordExists
func (o *Oracle) CreateJudgeRequest(
	owner ledger.Address,
	nonce uint64,
	criteria string,
	inputA string,
	inputB string,
) (ledger.Address, error) {
	if len(criteria) > MaxCriteriaLen {
		return ledger.Address{}, ErrCriteriaTooLong
	}
	if len(inputA) > MaxInputLen || len(inputB) > MaxInputLen {
		return ledger.Address{}, ErrInputTooLong
	}
	addr := JudgeRequestAddress(owner, nonce)
	err := o.ledger.Update(func(txn *ledger.Txn) error {
		req := JudgeRequest{
			Owner:    owner,
			Status:   StatusPending,
			Nonce:    nonce,
			Criteria: criteria,
			InputA:   inputA,
			InputB:   inputB,
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
		return txn.DB().SetJudgeRequest(
			&models.JudgeRequest{
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
	o.observeCreated("judge")
	o.publish(
		event.RequestCreatedEventType,
		event.RequestCreatedEvent{
			Address: addr.Bytes(),
			Owner:   owner.Bytes(),
			Nonce:   nonce,
			Kind:    "judge",
		},
	)
	o.logger.Info(
		"judge request created",
		"component", "oracle",
		"address", addr.String(),
		"nonce", nonce,
	)
	return addr, nil
}

// FulfillJudgeRequest writes the relayer's decision to a pending judge
// request. The status check and the outcome write happen in the same
// transaction, so a request can be fulfilled at most once
func (o *Oracle) FulfillJudgeRequest(
	caller ledger.Address,
	addr ledger.Address,
	decision uint8,
	responseHash [32]byte,
	receiptRoot [32]byte,
) error {
	if decision < CodeApprove || decision > CodeNeedsRevision {
		return ErrBadDecision
	}
	var req JudgeRequest
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
		req.Decision = decision
		req.ResponseHash = responseHash
		req.ReceiptRoot = receiptRoot
		if err := txn.PutRecord(addr, &req); err != nil {
			return err
		}
		return txn.DB().SetJudgeRequest(
			&models.JudgeRequest{
				Address:  addr.Bytes(),
				Owner:    req.Owner.Bytes(),
				Nonce:    types.Uint64(req.Nonce),
				Status:   StatusFulfilled,
				Decision: decision,
			},
			txn.DatabaseTxn(),
		)
	})
	if err != nil {
		return err
	}
	o.observeFulfilled("judge")
	o.publish(
		event.RequestFulfilledEventType,
		event.RequestFulfilledEvent{
			Address: addr.Bytes(),
			Owner:   req.Owner.Bytes(),
			Kind:    "judge",
			Code:    decision,
		},
	)
	o.logger.Info(
		"judge request fulfilled",
		"component", "oracle",
		"address", addr.String(),
		"decision", decision,
	)
	return nil
}

// GetJudgeRequest reads a judge request record
func (o *Oracle) GetJudgeRequest(addr ledger.Address) (*JudgeRequest, error) {
	var req JudgeRequest
	err := o.ledger.View(func(txn *ledger.Txn) error {
		return txn.GetRecord(addr, &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
