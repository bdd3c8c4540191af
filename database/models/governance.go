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

// Proposal is the query index row for a governance proposal. Proposals
// have a lifecycle: open -> finalized, with revisions and judge results
// accumulating while open
type Proposal struct {
	ID            uint         `gorm:"primarykey"`
	Address       []byte       `gorm:"uniqueIndex;size:32;not null"`
	Owner         []byte       `gorm:"index;size:32;not null"`
	Nonce         types.Uint64 `gorm:"index"`
	Status        uint8        `gorm:"index;not null"`
	Outcome       uint8
	RevisionCount uint32
	JudgeCount    uint8
	VotesFor      types.Uint64
	VotesAgainst  types.Uint64
	VotesAbstain  types.Uint64
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "governance_proposal"
}

// Action is the query index row for a governance action funded from the
// treasury after a proposal is approved
type Action struct {
	ID        uint         `gorm:"primarykey"`
	Address   []byte       `gorm:"uniqueIndex;size:32;not null"`
	Proposal  []byte       `gorm:"index;size:32;not null"`
	Recipient []byte       `gorm:"size:32;not null"`
	Amount    types.Uint64 `gorm:"not null"`
	Status    uint8        `gorm:"index;not null"`
	Executor  []byte       `gorm:"size:32"`
}

// TableName returns the table name
func (Action) TableName() string {
	return "governance_action"
}
