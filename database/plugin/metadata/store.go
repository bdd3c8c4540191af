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

package metadata

import (
	"log/slog"

	"github.com/openrelay-io/arbiter/database/models"
	"github.com/openrelay-io/arbiter/database/plugin/metadata/sqlite"
	"github.com/openrelay-io/arbiter/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Judge requests
	GetJudgeRequest([]byte, types.Txn) (*models.JudgeRequest, error)
	GetJudgeRequestsByOwner(
		[]byte,
		types.Txn,
	) ([]*models.JudgeRequest, error)
	SetJudgeRequest(*models.JudgeRequest, types.Txn) error

	// Proposal requests
	GetProposalRequest([]byte, types.Txn) (*models.ProposalRequest, error)
	GetProposalRequestsByOwner(
		[]byte,
		types.Txn,
	) ([]*models.ProposalRequest, error)
	SetProposalRequest(*models.ProposalRequest, types.Txn) error

	// Governance
	GetProposal([]byte, types.Txn) (*models.Proposal, error)
	GetProposalsByOwner([]byte, types.Txn) ([]*models.Proposal, error)
	GetOpenProposals(uint8, types.Txn) ([]*models.Proposal, error)
	SetProposal(*models.Proposal, types.Txn) error
	GetAction([]byte, types.Txn) (*models.Action, error)
	GetActionsByProposal([]byte, types.Txn) ([]*models.Action, error)
	SetAction(*models.Action, types.Txn) error

	// Matches
	GetMatch([]byte, types.Txn) (*models.Match, error)
	GetMatchesByPlayer([]byte, types.Txn) ([]*models.Match, error)
	SetMatch(*models.Match, types.Txn) error
}

// For now, this always returns a sqlite plugin
func New(
	pluginName, dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	return sqlite.New(dataDir, logger, promRegistry)
}
