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

// GetMatch retrieves a match index row by derived address. Returns nil if
// no row exists
func (d *MetadataStoreSqlite) GetMatch(
	addr []byte,
	txn types.Txn,
) (*models.Match, error) {
	var match models.Match
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"address = ?",
		addr,
	).First(&match); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &match, nil
}

// GetMatchesByPlayer retrieves all match index rows where the given
// account is either player
func (d *MetadataStoreSqlite) GetMatchesByPlayer(
	player []byte,
	txn types.Txn,
) ([]*models.Match, error) {
	var matches []*models.Match
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	if result := db.Where(
		"player_a = ? OR player_b = ?",
		player,
		player,
	).Order("nonce").Find(&matches); result.Error != nil {
		return nil, result.Error
	}
	return matches, nil
}

// SetMatch creates or updates a match index row
func (d *MetadataStoreSqlite) SetMatch(
	match *models.Match,
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
			"verdict",
			"executor",
			"model_id",
		}),
	}
	if result := db.Clauses(onConflict).Create(match); result.Error != nil {
		return result.Error
	}
	return nil
}
