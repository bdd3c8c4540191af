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

// GetProposalRequest retrieves a proposal request index row by derived address
func (d *Database) GetProposalRequest(
	addr []byte,
	txn *Txn,
) (*models.ProposalRequest, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetProposalRequest(addr, mTxn)
}

// GetProposalRequestsByOwner retrieves all proposal request index rows
// for the given owner
func (d *Database) GetProposalRequestsByOwner(
	owner []byte,
	txn *Txn,
) ([]*models.ProposalRequest, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetProposalRequestsByOwner(owner, mTxn)
}

// SetProposalRequest creates or updates a proposal request index row
func (d *Database) SetProposalRequest(
	request *models.ProposalRequest,
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
	if err := d.metadata.SetProposalRequest(request, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set proposal request: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
