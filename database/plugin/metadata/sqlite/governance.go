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

package sqlite

import (
	"errors"

	"github.com/openrelay-io/arbiter/database/models"
	"github.com/openrelay-io/arbiter/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetProposal retrieves a governance proposal index row by derived
// address. Returns nil if no row exists
func (d *MetadataStoreSqlite) GetProposal(
	addr []byte,
	txn types.Txn,
) (*models.Proposal, error) {
	var proposal models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"address = ?",
		addr,
	).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposalsByOwner retrieves all governance proposal index rows
// created by the given owner
func (d *MetadataStoreSqlite) GetProposalsByOwner(
	owner []byte,
	txn types.Txn,
) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"owner = ?",
		owner,
	).Order("nonce").Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// GetOpenProposals retrieves all governance proposal index rows that have
// not been finalized. The status code is defined by the governance engine
func (d *MetadataStoreSqlite) GetOpenProposals(
	openStatus uint8,
	txn types.Txn,
) ([]*models.Proposal, error) {
	var proposals []*models.Proposal
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"status = ?",
		openStatus,
	).Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// SetProposal creates or updates a governance proposal index row
func (d *MetadataStoreSqlite) SetProposal(
	proposal *models.Proposal,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"outcome",
			"revision_count",
			"judge_count",
			"votes_for",
			"votes_against",
			"votes_abstain",
		}),
	}
	if result := db.Clauses(onConflict).Create(proposal); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetAction retrieves a governance action index row by derived address.
// Returns nil if no row exists
func (d *MetadataStoreSqlite) GetAction(
	addr []byte,
	txn types.Txn,
) (*models.Action, error) {
	var action models.Action
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"address = ?",
		addr,
	).First(&action); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &action, nil
}

// GetActionsByProposal retrieves all action index rows attached to the
// given proposal address
func (d *MetadataStoreSqlite) GetActionsByProposal(
	proposalAddr []byte,
	txn types.Txn,
) ([]*models.Action, error) {
	var actions []*models.Action
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"proposal = ?",
		proposalAddr,
	).Find(&actions); result.Error != nil {
		return nil, result.Error
	}
	return actions, nil
}

// SetAction creates or updates a governance action index row
func (d *MetadataStoreSqlite) SetAction(
	action *models.Action,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	onConflict := clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status",
			"executor",
		}),
	}
	if result := db.Clauses(onConflict).Create(action); result.Error != nil {
		return result.Error
	}
	return nil
}
