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

package models

import "github.com/openrelay-io/arbiter/database/types"

// Match is the query index row for a staked match. Lifecycle:
// open -> finalized -> settled
type Match struct {
	ID        uint         `gorm:"primarykey"`
	Address   []byte       `gorm:"uniqueIndex;size:32;not null"`
	PlayerA   []byte       `gorm:"index;size:32;not null"`
	PlayerB   []byte       `gorm:"index;size:32;not null"`
	Nonce     types.Uint64 `gorm:"index"`
	MatchType uint8        `gorm:"not null"`
	Status    uint8        `gorm:"index;not null"`
	Stake     types.Uint64 `gorm:"not null"`
	Verdict   uint8
	Executor  []byte `gorm:"size:32"`
	ModelID   string `gorm:"size:64"`
}

// TableName returns the table name
func (Match) TableName() string {
	return "match"
}
