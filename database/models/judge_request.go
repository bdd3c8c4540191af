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

// JudgeRequest is the query index row for a judge request. The
// authoritative record lives in the blob store; this row only exists to
// make lookups by owner cheap
type JudgeRequest struct {
	ID        uint         `gorm:"primarykey"`
	Address   []byte       `gorm:"uniqueIndex;size:32;not null"`
	Owner     []byte       `gorm:"index;size:32;not null"`
	Nonce     types.Uint64 `gorm:"index"`
	Status    uint8        `gorm:"index;not null"`
	Decision  uint8
}

// TableName returns the table name
func (JudgeRequest) TableName() string {
	return "judge_request"
}
