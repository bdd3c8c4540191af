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

package database

import (
	"fmt"

	"github.com/openrelay-io/arbiter/database/models"
	"github.com/openrelay-io/arbiter/database/types"
)

// GetProposal retrieves a governance proposal index row by derived address
func (d *Database) GetProposal(
	addr []byte,
	txn *Txn,
) (*models.Proposal, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetProposal(addr, mTxn)
}

// GetProposalsByOwner retrieves all governance proposal index rows for
// the given owner
func (d *Database) GetProposalsByOwner(
	owner []byte,
	txn *Txn,
) ([]*models.Proposal, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetProposalsByOwner(owner, mTxn)
}

// GetOpenProposals retrieves all governance proposal index rows with the
// given open status code
func (d *Database) GetOpenProposals(
	openStatus uint8,
	txn *Txn,
) ([]*models.Proposal, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetOpenProposals(openStatus, mTxn)
}

// SetProposal creates or updates a governance proposal index row
func (d *Database) SetProposal(
	proposal *models.Proposal,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.MetadataTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetProposal(proposal, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set proposal: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}

// GetAction retrieves a governance action index row by derived address
func (d *Database) GetAction(
	addr []byte,
	txn *Txn,
) (*models.Action, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetAction(addr, mTxn)
}

// GetActionsByProposal retrieves all action index rows attached to the
// given proposal address
func (d *Database) GetActionsByProposal(
	proposalAddr []byte,
	txn *Txn,
) ([]*models.Action, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetActionsByProposal(proposalAddr, mTxn)
}

// SetAction creates or updates a governance action index row
func (d *Database) SetAction(
	action *models.Action,
	txn *Txn,
) error {
	owned := false
	if txn == nil {
		txn = d.MetadataTxn(true)
		owned = true
		defer func() {
			if owned {
				txn.Rollback() //nolint:errcheck
			}
		}()
	}
	if err := d.metadata.SetAction(action, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set action: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
