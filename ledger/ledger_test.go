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

package ledger_test

import (
	"crypto/rand"
	"math"
	"testing"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("failed to close database: %v", err)
		}
	})
	return ledger.New(db, nil)
}

func randomAddress(t *testing.T) ledger.Address {
	t.Helper()
	var seed [32]byte
	_, err := rand.Read(seed[:])
	require.NoError(t, err)
	return ledger.DeriveAddress(seed[:])
}

type testRecord struct {
	Name  string
	Count uint64
}

func TestDeriveAddressDeterministic(t *testing.T) {
	a := ledger.DeriveAddress([]byte("config"))
	b := ledger.DeriveAddress([]byte("config"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, ledger.DeriveAddress([]byte("treasury")))
}

func TestDeriveAddressSeedBoundaries(t *testing.T) {
	// Length prefixing means moving bytes between adjacent seeds must
	// produce a different address
	a := ledger.DeriveAddress([]byte("ab"), []byte("c"))
	b := ledger.DeriveAddress([]byte("a"), []byte("bc"))
	assert.NotEqual(t, a, b)
}

func TestCreateRecordPaysReserve(t *testing.T) {
	l := setupTestLedger(t)
	payer := randomAddress(t)
	recordAddr := ledger.DeriveAddress([]byte("rec"), payer.Bytes())

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(payer, ledger.MinBalanceReserve*2)
	})
	require.NoError(t, err)

	err = l.Update(func(txn *ledger.Txn) error {
		return txn.CreateRecord(
			recordAddr,
			&testRecord{Name: "first", Count: 1},
			payer,
			ledger.SignerAuthority(payer),
		)
	})
	require.NoError(t, err)

	err = l.View(func(txn *ledger.Txn) error {
		payerBalance, err := txn.Balance(payer)
		require.NoError(t, err)
		assert.Equal(t, uint64(ledger.MinBalanceReserve), payerBalance)
		recordBalance, err := txn.Balance(recordAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(ledger.MinBalanceReserve), recordBalance)
		var rec testRecord
		require.NoError(t, txn.GetRecord(recordAddr, &rec))
		assert.Equal(t, "first", rec.Name)
		return nil
	})
	require.NoError(t, err)
}

func TestCreateRecordDuplicate(t *testing.T) {
	l := setupTestLedger(t)
	payer := randomAddress(t)
	recordAddr := ledger.DeriveAddress([]byte("dup"), payer.Bytes())

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(payer, ledger.MinBalanceReserve*3)
	})
	require.NoError(t, err)

	create := func() error {
		return l.Update(func(txn *ledger.Txn) error {
			return txn.CreateRecord(
				recordAddr,
				&testRecord{Name: "only"},
				payer,
				ledger.SignerAuthority(payer),
			)
		})
	}
	require.NoError(t, create())
	require.ErrorIs(t, create(), ledger.ErrRecordExists)
}

func TestCreateRecordInsufficientReserve(t *testing.T) {
	l := setupTestLedger(t)
	payer := randomAddress(t)

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.CreateRecord(
			ledger.DeriveAddress([]byte("poor"), payer.Bytes()),
			&testRecord{},
			payer,
			ledger.SignerAuthority(payer),
		)
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestPutRecordRequiresExisting(t *testing.T) {
	l := setupTestLedger(t)
	err := l.Update(func(txn *ledger.Txn) error {
		return txn.PutRecord(randomAddress(t), &testRecord{})
	})
	require.ErrorIs(t, err, ledger.ErrRecordNotFound)
}

func TestTransferAuthorization(t *testing.T) {
	l := setupTestLedger(t)
	from := randomAddress(t)
	to := randomAddress(t)
	other := randomAddress(t)

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(from, 500)
	})
	require.NoError(t, err)

	// Wrong signer cannot debit
	err = l.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(from, to, 100, ledger.SignerAuthority(other))
	})
	require.ErrorIs(t, err, ledger.ErrNotAuthorized)

	// Vault authority for a different address cannot debit either
	err = l.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(from, to, 100, ledger.VaultAuthority(other))
	})
	require.ErrorIs(t, err, ledger.ErrNotAuthorized)

	err = l.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(from, to, 100, ledger.SignerAuthority(from))
	})
	require.NoError(t, err)

	err = l.View(func(txn *ledger.Txn) error {
		fromBalance, err := txn.Balance(from)
		require.NoError(t, err)
		toBalance, err := txn.Balance(to)
		require.NoError(t, err)
		assert.Equal(t, uint64(400), fromBalance)
		assert.Equal(t, uint64(100), toBalance)
		return nil
	})
	require.NoError(t, err)
}

func TestTransferInsufficientBalance(t *testing.T) {
	l := setupTestLedger(t)
	from := randomAddress(t)
	to := randomAddress(t)

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(from, to, 1, ledger.SignerAuthority(from))
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}

func TestTransferZeroAmount(t *testing.T) {
	l := setupTestLedger(t)
	from := randomAddress(t)

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Transfer(
			from,
			randomAddress(t),
			0,
			ledger.SignerAuthority(from),
		)
	})
	require.ErrorIs(t, err, ledger.ErrZeroAmount)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	l := setupTestLedger(t)
	acct := randomAddress(t)

	err := l.Update(func(txn *ledger.Txn) error {
		if err := txn.Credit(acct, 1000); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	err = l.View(func(txn *ledger.Txn) error {
		balance, err := txn.Balance(acct)
		require.NoError(t, err)
		assert.Zero(t, balance)
		return nil
	})
	require.NoError(t, err)
}

func TestCheckedMath(t *testing.T) {
	_, err := ledger.CheckedAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, ledger.ErrOverflow)
	sum, err := ledger.CheckedAdd(2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sum)

	_, err = ledger.CheckedSub(1, 2)
	require.ErrorIs(t, err, ledger.ErrOverflow)

	_, err = ledger.CheckedAdd8(math.MaxUint8, 1)
	require.ErrorIs(t, err, ledger.ErrOverflow)

	_, err = ledger.CheckedMul(math.MaxUint64, 2)
	require.ErrorIs(t, err, ledger.ErrOverflow)
	product, err := ledger.CheckedMul(1_000_000, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_000_000), product)
}

func TestCreditOverflow(t *testing.T) {
	l := setupTestLedger(t)
	acct := randomAddress(t)

	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(acct, math.MaxUint64)
	})
	require.NoError(t, err)
	err = l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(acct, 1)
	})
	require.ErrorIs(t, err, ledger.ErrOverflow)
}
