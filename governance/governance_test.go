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

package governance_test

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/governance"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/treasury"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ledger *ledger.Ledger
	engine *governance.Engine
}

func setupTestEngine(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	l := ledger.New(db, nil)
	return &testEnv{
		ledger: l,
		engine: governance.New(l, nil, nil, nil),
	}
}

func randomAddress(t *testing.T) ledger.Address {
	t.Helper()
	var seed [32]byte
	_, err := rand.Read(seed[:])
	require.NoError(t, err)
	return ledger.DeriveAddress(seed[:])
}

func fundedAddress(t *testing.T, l *ledger.Ledger, amount uint64) ledger.Address {
	t.Helper()
	addr := randomAddress(t)
	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(addr, amount)
	})
	require.NoError(t, err)
	return addr
}

func createTestProposal(
	t *testing.T,
	env *testEnv,
) (ledger.Address, ledger.Address) {
	t.Helper()
	owner := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*10)
	addr, err := env.engine.CreateProposal(owner, 1, "initial text")
	require.NoError(t, err)
	return owner, addr
}

// submitJudgeVerdicts funds one judge per verdict and submits them all
func submitJudgeVerdicts(
	t *testing.T,
	env *testEnv,
	proposalAddr ledger.Address,
	verdicts []uint8,
) {
	t.Helper()
	for _, verdict := range verdicts {
		judge := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
		err := env.engine.SubmitJudgeResult(judge, proposalAddr, verdict)
		require.NoError(t, err)
	}
}

func TestCreateProposal(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := createTestProposal(t, env)
	assert.Equal(t, governance.ProposalAddress(owner, 1), addr)

	proposal, err := env.engine.GetProposal(addr)
	require.NoError(t, err)
	assert.Equal(t, governance.StatusOpen, proposal.Status)
	assert.Equal(t, uint32(1), proposal.RevisionCount)
	assert.Equal(t, "initial text", proposal.Text)
	assert.Equal(t, uint8(0), proposal.FinalVerdict)

	revision, err := env.engine.GetRevision(addr, 0)
	require.NoError(t, err)
	assert.Equal(t, "initial text", revision.Text)

	row, err := env.ledger.DB().GetProposal(addr.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, governance.StatusOpen, row.Status)
	assert.Equal(t, uint32(1), row.RevisionCount)
}

func TestCreateProposalTooLong(t *testing.T) {
	env := setupTestEngine(t)
	owner := randomAddress(t)
	_, err := env.engine.CreateProposal(
		owner, 1, strings.Repeat("x", governance.MaxTextLen+1),
	)
	assert.ErrorIs(t, err, governance.ErrTextTooLong)
}

func TestAddRevision(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := createTestProposal(t, env)

	require.NoError(t, env.engine.AddRevision(owner, addr, 1, "second draft"))

	proposal, err := env.engine.GetProposal(addr)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), proposal.RevisionCount)
	assert.Equal(t, "second draft", proposal.Text)

	// Revision 0 stays readable with the original text
	revision, err := env.engine.GetRevision(addr, 0)
	require.NoError(t, err)
	assert.Equal(t, "initial text", revision.Text)
}

func TestAddRevisionSequence(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := createTestProposal(t, env)

	// Current revision count is 1; 0 and 2 are both out of sequence
	err := env.engine.AddRevision(owner, addr, 0, "dup")
	assert.ErrorIs(t, err, governance.ErrBadRevisionNumber)
	err = env.engine.AddRevision(owner, addr, 2, "skip")
	assert.ErrorIs(t, err, governance.ErrBadRevisionNumber)
}

func TestAddRevisionNotOwner(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	other := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)

	err := env.engine.AddRevision(other, addr, 1, "hijack")
	assert.ErrorIs(t, err, governance.ErrNotOwner)
}

func TestCastVote(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	voter := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)

	require.NoError(t, env.engine.CastVote(voter, addr, governance.ChoiceFor))

	proposal, err := env.engine.GetProposal(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.VotesFor)
	assert.Equal(t, uint64(0), proposal.VotesAgainst)

	vote, err := env.engine.GetVote(addr, voter)
	require.NoError(t, err)
	assert.Equal(t, governance.ChoiceFor, vote.Choice)

	// Second vote by the same voter fails structurally, even with a
	// different choice
	err = env.engine.CastVote(voter, addr, governance.ChoiceAgainst)
	assert.ErrorIs(t, err, ledger.ErrRecordExists)
	proposal, err = env.engine.GetProposal(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposal.VotesFor)
	assert.Equal(t, uint64(0), proposal.VotesAgainst)
}

func TestCastVoteBadChoice(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	voter := randomAddress(t)

	for _, choice := range []uint8{0, 4} {
		err := env.engine.CastVote(voter, addr, choice)
		assert.ErrorIs(t, err, governance.ErrBadChoice)
	}
}

func TestSubmitJudgeResult(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	judge := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)

	err := env.engine.SubmitJudgeResult(judge, addr, governance.VerdictApprove)
	require.NoError(t, err)

	proposal, err := env.engine.GetProposal(addr)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), proposal.JudgeApprove)

	// A judge cannot submit twice
	err = env.engine.SubmitJudgeResult(judge, addr, governance.VerdictReject)
	assert.ErrorIs(t, err, ledger.ErrRecordExists)
}

func TestSubmitJudgeResultQuorumCap(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	submitJudgeVerdicts(t, env, addr, []uint8{
		governance.VerdictApprove,
		governance.VerdictReject,
		governance.VerdictNeedsRevision,
	})

	late := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
	err := env.engine.SubmitJudgeResult(late, addr, governance.VerdictApprove)
	assert.ErrorIs(t, err, governance.ErrTooManyJudges)
}

func TestFinalizeConsensusMajority(t *testing.T) {
	testDefs := []struct {
		name         string
		verdicts     []uint8
		wantVerdict  uint8
		wantPending  bool
	}{
		{
			name: "unanimous approve",
			verdicts: []uint8{
				governance.VerdictApprove,
				governance.VerdictApprove,
				governance.VerdictApprove,
			},
			wantVerdict: governance.VerdictApprove,
			wantPending: true,
		},
		{
			name: "two approve one reject",
			verdicts: []uint8{
				governance.VerdictApprove,
				governance.VerdictReject,
				governance.VerdictApprove,
			},
			wantVerdict: governance.VerdictApprove,
			wantPending: true,
		},
		{
			name: "two reject one approve",
			verdicts: []uint8{
				governance.VerdictReject,
				governance.VerdictApprove,
				governance.VerdictReject,
			},
			wantVerdict: governance.VerdictReject,
		},
		{
			name: "two needs-revision one approve",
			verdicts: []uint8{
				governance.VerdictNeedsRevision,
				governance.VerdictApprove,
				governance.VerdictNeedsRevision,
			},
			wantVerdict: governance.VerdictNeedsRevision,
		},
		{
			name: "even three-way split",
			verdicts: []uint8{
				governance.VerdictApprove,
				governance.VerdictReject,
				governance.VerdictNeedsRevision,
			},
			wantVerdict: governance.VerdictNeedsRevision,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := setupTestEngine(t)
			owner, addr := createTestProposal(t, env)
			submitJudgeVerdicts(t, env, addr, testDef.verdicts)

			caller := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
			verdict, err := env.engine.FinalizeConsensus(caller, addr)
			require.NoError(t, err)
			assert.Equal(t, testDef.wantVerdict, verdict)

			proposal, err := env.engine.GetProposal(addr)
			require.NoError(t, err)
			assert.Equal(t, governance.StatusFinalized, proposal.Status)
			assert.Equal(t, testDef.wantVerdict, proposal.FinalVerdict)

			action, err := env.engine.GetAction(addr)
			require.NoError(t, err)
			assert.Equal(t, owner, action.Recipient)
			assert.Equal(t, uint64(governance.ActionAmount), action.Amount)
			if testDef.wantPending {
				assert.Equal(t, governance.ActionPending, action.Status)
			} else {
				assert.Equal(t, governance.ActionRejected, action.Status)
			}
		})
	}
}

func TestFinalizeConsensusIncompleteQuorum(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	submitJudgeVerdicts(t, env, addr, []uint8{
		governance.VerdictApprove,
		governance.VerdictApprove,
	})

	caller := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
	_, err := env.engine.FinalizeConsensus(caller, addr)
	assert.ErrorIs(t, err, governance.ErrNotEnoughJudges)
}

func TestFinalizeConsensusTwice(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := createTestProposal(t, env)
	submitJudgeVerdicts(t, env, addr, []uint8{
		governance.VerdictApprove,
		governance.VerdictApprove,
		governance.VerdictApprove,
	})

	caller := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*4)
	_, err := env.engine.FinalizeConsensus(caller, addr)
	require.NoError(t, err)
	_, err = env.engine.FinalizeConsensus(caller, addr)
	assert.ErrorIs(t, err, governance.ErrProposalFinalized)
}

func TestFinalizedProposalRejectsVotesAndJudges(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := createTestProposal(t, env)
	submitJudgeVerdicts(t, env, addr, []uint8{
		governance.VerdictReject,
		governance.VerdictReject,
		governance.VerdictApprove,
	})
	caller := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
	_, err := env.engine.FinalizeConsensus(caller, addr)
	require.NoError(t, err)

	voter := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
	err = env.engine.CastVote(voter, addr, governance.ChoiceFor)
	assert.ErrorIs(t, err, governance.ErrProposalFinalized)

	err = env.engine.SubmitJudgeResult(voter, addr, governance.VerdictApprove)
	assert.ErrorIs(t, err, governance.ErrProposalFinalized)

	err = env.engine.AddRevision(owner, addr, 1, "too late")
	assert.ErrorIs(t, err, governance.ErrProposalFinalized)
}

func approvedProposal(
	t *testing.T,
	env *testEnv,
) (ledger.Address, ledger.Address) {
	t.Helper()
	owner, addr := createTestProposal(t, env)
	submitJudgeVerdicts(t, env, addr, []uint8{
		governance.VerdictApprove,
		governance.VerdictApprove,
		governance.VerdictReject,
	})
	caller := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
	_, err := env.engine.FinalizeConsensus(caller, addr)
	require.NoError(t, err)
	return owner, addr
}

func fundVault(t *testing.T, env *testEnv, amount uint64) {
	t.Helper()
	err := env.ledger.Update(func(txn *ledger.Txn) error {
		return txn.Credit(treasury.VaultAddress(), amount)
	})
	require.NoError(t, err)
}

func TestCompleteAction(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := approvedProposal(t, env)
	fundVault(t, env, governance.ActionAmount*2)

	var ownerBefore uint64
	err := env.ledger.View(func(txn *ledger.Txn) error {
		var err error
		ownerBefore, err = txn.Balance(owner)
		return err
	})
	require.NoError(t, err)

	executor := randomAddress(t)
	require.NoError(t, env.engine.CompleteAction(executor, addr, owner))

	action, err := env.engine.GetAction(addr)
	require.NoError(t, err)
	assert.Equal(t, governance.ActionExecuted, action.Status)
	assert.Equal(t, executor, action.Executor)

	err = env.ledger.View(func(txn *ledger.Txn) error {
		ownerAfter, err := txn.Balance(owner)
		if err != nil {
			return err
		}
		assert.Equal(
			t,
			ownerBefore+governance.ActionAmount,
			ownerAfter,
		)
		vaultBalance, err := txn.Balance(treasury.VaultAddress())
		if err != nil {
			return err
		}
		assert.Equal(t, uint64(governance.ActionAmount), vaultBalance)
		return nil
	})
	require.NoError(t, err)

	// Exactly one execution per action
	err = env.engine.CompleteAction(executor, addr, owner)
	assert.ErrorIs(t, err, governance.ErrActionNotPending)
}

func TestCompleteActionNotApproved(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := createTestProposal(t, env)
	submitJudgeVerdicts(t, env, addr, []uint8{
		governance.VerdictReject,
		governance.VerdictReject,
		governance.VerdictReject,
	})
	caller := fundedAddress(t, env.ledger, ledger.MinBalanceReserve*2)
	_, err := env.engine.FinalizeConsensus(caller, addr)
	require.NoError(t, err)
	fundVault(t, env, governance.ActionAmount*2)

	err = env.engine.CompleteAction(randomAddress(t), addr, owner)
	assert.ErrorIs(t, err, governance.ErrNotApproved)
}

func TestCompleteActionRecipientMismatch(t *testing.T) {
	env := setupTestEngine(t)
	_, addr := approvedProposal(t, env)
	fundVault(t, env, governance.ActionAmount*2)

	err := env.engine.CompleteAction(randomAddress(t), addr, randomAddress(t))
	assert.ErrorIs(t, err, governance.ErrRecipientMismatch)
}

func TestCompleteActionInsufficientVault(t *testing.T) {
	env := setupTestEngine(t)
	owner, addr := approvedProposal(t, env)
	fundVault(t, env, governance.ActionAmount/2)

	err := env.engine.CompleteAction(randomAddress(t), addr, owner)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// Failed payout leaves the action pending for a retry
	action, err := env.engine.GetAction(addr)
	require.NoError(t, err)
	assert.Equal(t, governance.ActionPending, action.Status)
}
