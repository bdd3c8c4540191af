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

package treasury_test

import (
	"crypto/rand"
	"testing"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/treasury"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestTreasury(t *testing.T) (*ledger.Ledger, *treasury.Treasury) {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	l := ledger.New(db, nil)
	return l, treasury.New(l, nil, nil)
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

func TestInitTreasuryOnce(t *testing.T) {
	l, tr := setupTestTreasury(t)
	payer := randomAddress(t)
	fund(t, l, payer, ledger.MinBalanceReserve*4)

	require.NoError(t, tr.InitTreasury(payer))
	err := tr.InitTreasury(payer)
	assert.ErrorIs(t, err, treasury.ErrAlreadyInitialized)
}

func TestInitVaultIdempotent(t *testing.T) {
	l, tr := setupTestTreasury(t)
	payer := randomAddress(t)
	fund(t, l, payer, ledger.MinBalanceReserve*4)

	require.NoError(t, tr.InitVault(payer))
	balance, err := tr.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(ledger.MinBalanceReserve), balance)

	// Retry is a no-op, not a second reserve payment
	require.NoError(t, tr.InitVault(payer))
	balance, err = tr.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(ledger.MinBalanceReserve), balance)
}

func TestFund(t *testing.T) {
	l, tr := setupTestTreasury(t)
	funder := randomAddress(t)
	fund(t, l, funder, 500_000)

	require.NoError(t, tr.Fund(funder, 300_000))
	balance, err := tr.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(300_000), balance)

	err = tr.Fund(funder, 300_000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestEnsureTreasury(t *testing.T) {
	l, tr := setupTestTreasury(t)
	payer := randomAddress(t)
	fund(t, l, payer, 10_000_000)

	floor := uint64(1_000_000)
	require.NoError(t, tr.EnsureTreasury(payer, floor, 0))
	balance, err := tr.Balance()
	require.NoError(t, err)
	assert.Equal(
		t,
		uint64(ledger.MinBalanceReserve+treasury.DefaultTopUpAmount),
		balance,
	)

	// Above the floor now, so a second call changes nothing
	require.NoError(t, tr.EnsureTreasury(payer, floor, 0))
	balance2, err := tr.Balance()
	require.NoError(t, err)
	assert.Equal(t, balance, balance2)
}
