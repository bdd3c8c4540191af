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

package oracle_test

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/oracle"
	"github.com/openrelay-io/arbiter/relayer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	ledger *ledger.Ledger
	oracle *oracle.Oracle
	relay  ledger.Address
}

func setupTestOracle(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	l := ledger.New(db, nil)
	admin := randomAddress(t)
	relay := randomAddress(t)
	fund(t, l, admin, ledger.MinBalanceReserve*2)
	require.NoError(t, relayer.New(l, nil, nil).InitConfig(admin, relay))
	return &testEnv{
		ledger: l,
		oracle: oracle.New(l, nil, nil, nil),
		relay:  relay,
	}
}

func randomAddress(t *testing.T) ledger.Address {
	t.Helper()
	var seed [32]byte
	_, err := rand.Read(seed[:])
	require.NoError(t, err)
	return ledger.DeriveAddress(seed[:])
}

func fund(t *testing.T, l *ledger.Ledger, addr ledger.Address, amount uint64) {
	t.Helper()
	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(addr, amount)
	})
	require.NoError(t, err)
}

func TestCreateJudgeRequest(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*2)

	addr, err := env.oracle.CreateJudgeRequest(
		owner, 1, "shorter is better", "abc", "abcdef",
	)
	require.NoError(t, err)
	assert.Equal(t, oracle.JudgeRequestAddress(owner, 1), addr)

	req, err := env.oracle.GetJudgeRequest(addr)
	require.NoError(t, err)
	assert.Equal(t, oracle.StatusPending, req.Status)
	assert.Equal(t, owner, req.Owner)
	assert.Equal(t, uint8(0), req.Decision)

	rows, err := env.ledger.DB().GetJudgeRequestsByOwner(owner.Bytes(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, addr.Bytes(), rows[0].Address)
}

func TestCreateJudgeRequestFieldTooLong(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	long := strings.Repeat("x", oracle.MaxCriteriaLen+1)

	_, err := env.oracle.CreateJudgeRequest(owner, 1, long, "a", "b")
	assert.ErrorIs(t, err, oracle.ErrCriteriaTooLong)

	_, err = env.oracle.CreateJudgeRequest(owner, 1, "c", long, "b")
	assert.ErrorIs(t, err, oracle.ErrInputTooLong)

	_, err = env.oracle.CreateJudgeRequest(owner, 1, "c", "a", long)
	assert.ErrorIs(t, err, oracle.ErrInputTooLong)
}

func TestCreateJudgeRequestDuplicate(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*4)

	_, err := env.oracle.CreateJudgeRequest(owner, 7, "c", "a", "b")
	require.NoError(t, err)
	_, err = env.oracle.CreateJudgeRequest(owner, 7, "other", "x", "y")
	assert.ErrorIs(t, err, ledger.ErrRecordExists)

	// A different nonce derives a fresh address
	_, err = env.oracle.CreateJudgeRequest(owner, 8, "c", "a", "b")
	assert.NoError(t, err)
}

func TestFulfillJudgeRequest(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*2)
	addr, err := env.oracle.CreateJudgeRequest(owner, 1, "c", "a", "b")
	require.NoError(t, err)

	respHash := [32]byte{1}
	receiptRoot := [32]byte{2}
	err = env.oracle.FulfillJudgeRequest(
		env.relay, addr, oracle.CodeApprove, respHash, receiptRoot,
	)
	require.NoError(t, err)

	req, err := env.oracle.GetJudgeRequest(addr)
	require.NoError(t, err)
	assert.Equal(t, oracle.StatusFulfilled, req.Status)
	assert.Equal(t, oracle.CodeApprove, req.Decision)
	assert.Equal(t, respHash, req.ResponseHash)
	assert.Equal(t, receiptRoot, req.ReceiptRoot)

	row, err := env.ledger.DB().GetJudgeRequest(addr.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, oracle.StatusFulfilled, row.Status)
	assert.Equal(t, oracle.CodeApprove, row.Decision)
}

func TestFulfillJudgeRequestWrongRelayer(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*2)
	addr, err := env.oracle.CreateJudgeRequest(owner, 1, "c", "a", "b")
	require.NoError(t, err)

	err = env.oracle.FulfillJudgeRequest(
		owner, addr, oracle.CodeApprove, [32]byte{}, [32]byte{},
	)
	assert.ErrorIs(t, err, relayer.ErrBadRelayer)
}

func TestFulfillJudgeRequestTwice(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*2)
	addr, err := env.oracle.CreateJudgeRequest(owner, 1, "c", "a", "b")
	require.NoError(t, err)

	err = env.oracle.FulfillJudgeRequest(
		env.relay, addr, oracle.CodeReject, [32]byte{9}, [32]byte{},
	)
	require.NoError(t, err)

	err = env.oracle.FulfillJudgeRequest(
		env.relay, addr, oracle.CodeApprove, [32]byte{}, [32]byte{},
	)
	assert.ErrorIs(t, err, oracle.ErrAlreadyFulfilled)

	// First outcome is untouched
	req, err := env.oracle.GetJudgeRequest(addr)
	require.NoError(t, err)
	assert.Equal(t, oracle.CodeReject, req.Decision)
	assert.Equal(t, [32]byte{9}, req.ResponseHash)
}

func TestFulfillJudgeRequestBadDecision(t *testing.T) {
	env := setupTestOracle(t)
	addr := randomAddress(t)

	for _, decision := range []uint8{0, 4, 255} {
		err := env.oracle.FulfillJudgeRequest(
			env.relay, addr, decision, [32]byte{}, [32]byte{},
		)
		assert.ErrorIs(t, err, oracle.ErrBadDecision)
	}
}

func TestCreateProposalRequest(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*2)

	addr, err := env.oracle.CreateProposalRequest(owner, 3, "fund the bridge")
	require.NoError(t, err)
	assert.Equal(t, oracle.ProposalRequestAddress(owner, 3), addr)

	req, err := env.oracle.GetProposalRequest(addr)
	require.NoError(t, err)
	assert.Equal(t, oracle.StatusPending, req.Status)
	assert.Equal(t, "fund the bridge", req.ProposalText)
}

func TestCreateProposalRequestTooLong(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)

	_, err := env.oracle.CreateProposalRequest(
		owner, 1, strings.Repeat("x", oracle.MaxProposalTextLen+1),
	)
	assert.ErrorIs(t, err, oracle.ErrProposalTooLong)
}

func TestFulfillProposalRequest(t *testing.T) {
	env := setupTestOracle(t)
	owner := randomAddress(t)
	fund(t, env.ledger, owner, ledger.MinBalanceReserve*2)
	addr, err := env.oracle.CreateProposalRequest(owner, 3, "fund the bridge")
	require.NoError(t, err)

	err = env.oracle.FulfillProposalRequest(
		env.relay,
		addr,
		oracle.CodeNeedsRevision,
		[32]byte{1},
		[32]byte{2},
		[32]byte{3},
		"model-7b",
	)
	require.NoError(t, err)

	req, err := env.oracle.GetProposalRequest(addr)
	require.NoError(t, err)
	assert.Equal(t, oracle.StatusFulfilled, req.Status)
	assert.Equal(t, oracle.CodeNeedsRevision, req.VerdictCode)
	assert.Equal(t, "model-7b", req.ModelID)

	row, err := env.ledger.DB().GetProposalRequest(addr.Bytes(), nil)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, oracle.CodeNeedsRevision, row.Verdict)
	assert.Equal(t, "model-7b", row.ModelID)
}

func TestFulfillProposalRequestValidation(t *testing.T) {
	env := setupTestOracle(t)
	addr := randomAddress(t)

	err := env.oracle.FulfillProposalRequest(
		env.relay, addr, 0, [32]byte{}, [32]byte{}, [32]byte{}, "m",
	)
	assert.ErrorIs(t, err, oracle.ErrBadVerdict)

	err = env.oracle.FulfillProposalRequest(
		env.relay,
		addr,
		oracle.CodeApprove,
		[32]byte{},
		[32]byte{},
		[32]byte{},
		strings.Repeat("m", oracle.MaxModelIDLen+1),
	)
	assert.ErrorIs(t, err, oracle.ErrModelIDTooLong)
}
