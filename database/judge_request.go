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

// GetJudgeRequest retrieves a judge request index row by derived address
func (d *Database) GetJudgeRequest(
	addr []byte,
	txn *Txn,
) (*models.JudgeRequest, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetJudgeRequest(addr, mTxn)
}

// GetJudgeRequestsByOwner retrieves all judge request index rows for
// the given owner
func (d *Database) GetJudgeRequestsByOwner(
	owner []byte,
	txn *Txn,
) ([]*models.JudgeRequest, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetJudgeRequestsByOwner(owner, mTxn)
}

// SetJudgeRequest creates or updates a judge request index row
func (d *Database) SetJudgeRequest(
	request *models.JudgeRequest,
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
	if err := d.metadata.SetJudgeRequest(request, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set judge request: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
