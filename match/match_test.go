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

package match_test

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/match"
	"github.com/openrelay-io/arbiter/relayer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStake = 1_000_000

type testEnv struct {
	ledger *ledger.Ledger
	escrow *match.Escrow
	relay  ledger.Address
}

func setupTestEscrow(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	l := ledger.New(db, nil)
	admin := fundedAddress(t, l, ledger.MinBalanceReserve*2)
	relay := randomAddress(t)
	require.NoError(t, relayer.New(l, nil, nil).InitConfig(admin, relay))
	return &testEnv{
		ledger: l,
		escrow: match.New(l, nil, nil, nil),
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

func fundedAddress(t *testing.T, l *ledger.Ledger, amount uint64) ledger.Address {
	t.Helper()
	addr := randomAddress(t)
	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(addr, amount)
	})
	require.NoError(t, err)
	return addr
}

func balanceOf(t *testing.T, l *ledger.Ledger, addr ledger.Address) uint64 {
	t.Helper()
	var balance uint64
	err := l.View(func(txn *ledger.Txn) error {
		var err error
		balance, err = txn.Balance(addr)
		return err
	})
	require.NoError(t, err)
	return balance
}

func createTestMatch(
	t *testing.T,
	env *testEnv,
) (ledger.Address, ledger.Address, ledger.Address) {
	t.Helper()
	playerA := fundedAddress(
		t, env.ledger, testStake+ledger.MinBalanceReserve*2,
	)
	playerB := fundedAddress(t, env.ledger, testStake)
	addr, err := env.escrow.CreateMatch(
		playerA, playerB, 1, 1, testStake, "best of three", "a", "b", "",
	)
	require.NoError(t, err)
	return addr, playerA, playerB
}

func TestCreateMatch(t *testing.T) {
	env := setupTestEscrow(t)
	addr, playerA, playerB := createTestMatch(t, env)

	m, err := env.escrow.GetMatch(addr)
	require.NoError(t, err)
	assert.Equal(t, match.StatusOpen, m.Status)
	assert.Equal(t, playerA, m.PlayerA)
	assert.Equal(t, playerB, m.PlayerB)
	assert.Equal(t, uint64(testStake), m.Stake)

	// Escrow holds the reserve plus both stakes; both players are drained
	escrowBalance, err := env.escrow.EscrowBalance(addr)
	require.NoError(t, err)
	assert.Equal(
		t,
		uint64(testStake*2+ledger.MinBalanceReserve),
		escrowBalance,
	)
	assert.Equal(t, uint64(0), balanceOf(t, env.ledger, playerB))

	rows, err := env.ledger.DB().GetMatchesByPlayer(playerB.Bytes(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, addr.Bytes(), rows[0].Address)
}

func TestCreateMatchValidation(t *testing.T) {
	env := setupTestEscrow(t)
	playerA := randomAddress(t)
	playerB := randomAddress(t)
	long := strings.Repeat("x", match.MaxCriteriaLen+1)

	_, err := env.escrow.CreateMatch(
		playerA, playerA, 1, 1, testStake, "", "", "", "",
	)
	assert.ErrorIs(t, err, match.ErrBadMatchPlayer)

	_, err = env.escrow.CreateMatch(
		playerA, playerB, 1, 0, testStake, "", "", "", "",
	)
	assert.ErrorIs(t, err, match.ErrBadMatchType)

	_, err = env.escrow.CreateMatch(
		playerA, playerB, 1, 1, 0, "", "", "", "",
	)
	assert.ErrorIs(t, err, match.ErrBadStake)

	_, err = env.escrow.CreateMatch(
		playerA, playerB, 1, 1, testStake, long, "", "", "",
	)
	assert.ErrorIs(t, err, match.ErrCriteriaTooLong)

	_, err = env.escrow.CreateMatch(
		playerA, playerB, 1, 1, testStake, "", long, "", "",
	)
	assert.ErrorIs(t, err, match.ErrInputTooLong)

	_, err = env.escrow.CreateMatch(
		playerA, playerB, 1, 1, testStake, "", "", "", long,
	)
	assert.ErrorIs(t, err, match.ErrExtraTooLong)
}

func TestCreateMatchUnderfundedPlayerRollsBack(t *testing.T) {
	env := setupTestEscrow(t)
	playerA := fundedAddress(
		t, env.ledger, testStake+ledger.MinBalanceReserve*2,
	)
	// Player B cannot cover the stake
	playerB := fundedAddress(t, env.ledger, testStake/2)

	_, err := env.escrow.CreateMatch(
		playerA, playerB, 1, 1, testStake, "", "", "", "",
	)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// Nothing moved: player A keeps the full balance
	assert.Equal(
		t,
		uint64(testStake+ledger.MinBalanceReserve*2),
		balanceOf(t, env.ledger, playerA),
	)
	addr := match.MatchAddress(playerA, 1)
	_, err = env.escrow.GetMatch(addr)
	assert.ErrorIs(t, err, ledger.ErrRecordNotFound)
}

func TestFinalizeMatch(t *testing.T) {
	env := setupTestEscrow(t)
	addr, _, _ := createTestMatch(t, env)

	promptHash := [32]byte{1}
	receiptRoot := [32]byte{2}
	err := env.escrow.FinalizeMatch(
		env.relay, addr, match.VerdictPlayerA, promptHash, receiptRoot, "m",
	)
	require.NoError(t, err)

	m, err := env.escrow.GetMatch(addr)
	require.NoError(t, err)
	assert.Equal(t, match.StatusFinalized, m.Status)
	assert.Equal(t, match.VerdictPlayerA, m.Verdict)
	assert.Equal(t, promptHash, m.PromptHash)

	// Only once
	err = env.escrow.FinalizeMatch(
		env.relay, addr, match.VerdictPlayerB, [32]byte{}, [32]byte{}, "",
	)
	assert.ErrorIs(t, err, match.ErrAlreadyFinalized)
}

func TestFinalizeMatchWrongRelayer(t *testing.T) {
	env := setupTestEscrow(t)
	addr, playerA, _ := createTestMatch(t, env)

	err := env.escrow.FinalizeMatch(
		playerA, addr, match.VerdictPlayerA, [32]byte{}, [32]byte{}, "",
	)
	assert.ErrorIs(t, err, relayer.ErrBadRelayer)
}

func TestFinalizeMatchValidation(t *testing.T) {
	env := setupTestEscrow(t)
	addr, _, _ := createTestMatch(t, env)

	err := env.escrow.FinalizeMatch(
		env.relay, addr, 0, [32]byte{}, [32]byte{}, "",
	)
	assert.ErrorIs(t, err, match.ErrBadVerdict)

	err = env.escrow.FinalizeMatch(
		env.relay,
		addr,
		match.VerdictDraw,
		[32]byte{},
		[32]byte{},
		strings.Repeat("m", match.MaxModelIDLen+1),
	)
	assert.ErrorIs(t, err, match.ErrModelIDTooLong)
}

func TestExecuteMatchConservation(t *testing.T) {
	testDefs := []struct {
		name      string
		verdict   uint8
		wantPaidA uint64
		wantPaidB uint64
	}{
		{
			name:      "player a wins",
			verdict:   match.VerdictPlayerA,
			wantPaidA: testStake * 2,
		},
		{
			name:      "player b wins",
			verdict:   match.VerdictPlayerB,
			wantPaidB: testStake * 2,
		},
		{
			name:      "draw splits evenly",
			verdict:   match.VerdictDraw,
			wantPaidA: testStake,
			wantPaidB: testStake,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			env := setupTestEscrow(t)
			addr, playerA, playerB := createTestMatch(t, env)
			err := env.escrow.FinalizeMatch(
				env.relay, addr, testDef.verdict, [32]byte{}, [32]byte{}, "",
			)
			require.NoError(t, err)

			escrowBefore, err := env.escrow.EscrowBalance(addr)
			require.NoError(t, err)

			executor := randomAddress(t)
			err = env.escrow.ExecuteMatch(executor, addr, playerA, playerB)
			require.NoError(t, err)

			assert.Equal(
				t, testDef.wantPaidA, balanceOf(t, env.ledger, playerA),
			)
			assert.Equal(
				t, testDef.wantPaidB, balanceOf(t, env.ledger, playerB),
			)

			// Exactly 2x stake leaves the escrow regardless of verdict
			escrowAfter, err := env.escrow.EscrowBalance(addr)
			require.NoError(t, err)
			assert.Equal(t, uint64(testStake*2), escrowBefore-escrowAfter)

			m, err := env.escrow.GetMatch(addr)
			require.NoError(t, err)
			assert.Equal(t, match.StatusSettled, m.Status)
			assert.Equal(t, executor, m.Executor)
		})
	}
}

func TestExecuteMatchPreconditions(t *testing.T) {
	env := setupTestEscrow(t)
	addr, playerA, playerB := createTestMatch(t, env)
	executor := randomAddress(t)

	// Not finalized yet
	err := env.escrow.ExecuteMatch(executor, addr, playerA, playerB)
	assert.ErrorIs(t, err, match.ErrNotFinalized)

	err = env.escrow.FinalizeMatch(
		env.relay, addr, match.VerdictDraw, [32]byte{}, [32]byte{}, "",
	)
	require.NoError(t, err)

	// Supplied players must match the stored ones
	err = env.escrow.ExecuteMatch(executor, addr, playerB, playerA)
	assert.ErrorIs(t, err, match.ErrPlayerMismatch)

	require.NoError(t, env.escrow.ExecuteMatch(executor, addr, playerA, playerB))

	// Exactly one settlement
	err = env.escrow.ExecuteMatch(executor, addr, playerA, playerB)
	assert.ErrorIs(t, err, match.ErrNotFinalized)
}

func TestExecuteMatchEscrowDrift(t *testing.T) {
	env := setupTestEscrow(t)
	addr, playerA, playerB := createTestMatch(t, env)
	err := env.escrow.FinalizeMatch(
		env.relay, addr, match.VerdictPlayerA, [32]byte{}, [32]byte{}, "",
	)
	require.NoError(t, err)

	// Drain part of the escrow to simulate unexpected balance drift
	escrowAddr := match.EscrowAddress(addr)
	err = env.ledger.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(
			escrowAddr,
			randomAddress(t),
			ledger.MinBalanceReserve,
			ledger.VaultAuthority(escrowAddr),
		)
	})
	require.NoError(t, err)

	err = env.escrow.ExecuteMatch(randomAddress(t), addr, playerA, playerB)
	assert.ErrorIs(t, err, match.ErrEscrowBalanceLow)
}
