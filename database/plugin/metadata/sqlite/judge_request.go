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

// GetJudgeRequest retrieves a judge request index row by derived address.
// Returns nil if no row exists
func (d *MetadataStoreSqlite) GetJudgeRequest(
	addr []byte,
	txn types.Txn,
) (*models.JudgeRequest, error) {
	var request models.JudgeRequest
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"address = ?",
		addr,
	).First(&request); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &request, nil
}

// GetJudgeRequestsByOwner retrieves all judge request index rows
// created by the given owner
func (d *MetadataStoreSqlite) GetJudgeRequestsByOwner(
	owner []byte,
	txn types.Txn,
) ([]*models.JudgeRequest, error) {
	var requests []*models.JudgeRequest
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"owner = ?",
		owner,
	).Order("nonce").Find(&requests); result.Error != nil {
		return nil, result.Error
	}
	return requests, nil
}

// SetJudgeRequest creates or updates a judge request index row
func (d *MetadataStoreSqlite) SetJudgeRequest(
	request *models.JudgeRequest,
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
			"decision",
		}),
	}
	if result := db.Clauses(onConflict).Create(request); result.Error != nil {
		return result.Error
	}
	return nil
}
