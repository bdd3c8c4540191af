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

// GetMatch retrieves a match index row by derived address
func (d *Database) GetMatch(
	addr []byte,
	txn *Txn,
) (*models.Match, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetMatch(addr, mTxn)
}

// GetMatchesByPlayer retrieves all match index rows where the given
// account is either player
func (d *Database) GetMatchesByPlayer(
	player []byte,
	txn *Txn,
) ([]*models.Match, error) {
	var mTxn types.Txn
	if txn != nil {
		mTxn = txn.Metadata()
	}
	return d.metadata.GetMatchesByPlayer(player, mTxn)
}

// SetMatch creates or updates a match index row
func (d *Database) SetMatch(
	match *models.Match,
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
	if err := d.metadata.SetMatch(match, txn.Metadata()); err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return fmt.Errorf("commit transaction: %w", err)
		}
		owned = false
	}
	return nil
}
