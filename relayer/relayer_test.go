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

package relayer_test

import (
	"crypto/rand"
	"testing"

	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/relayer"
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

func fund(t *testing.T, l *ledger.Ledger, addr ledger.Address, amount uint64) {
	t.Helper()
	err := l.Update(func(txn *ledger.Txn) error {
		return txn.Credit(addr, amount)
	})
	require.NoError(t, err)
}

func TestInitConfigOnce(t *testing.T) {
	l := setupTestLedger(t)
	auth := relayer.New(l, nil, nil)
	admin := randomAddress(t)
	relay := randomAddress(t)
	fund(t, l, admin, ledger.MinBalanceReserve*2)

	require.NoError(t, auth.InitConfig(admin, relay))

	cfg, err := auth.Config()
	require.NoError(t, err)
	assert.Equal(t, admin, cfg.Admin)
	assert.Equal(t, relay, cfg.Relayer)

	// A second init must fail even with a different relayer
	err = auth.InitConfig(admin, randomAddress(t))
	assert.ErrorIs(t, err, relayer.ErrAlreadyInitialized)
}

func TestInitConfigRequiresReserve(t *testing.T) {
	l := setupTestLedger(t)
	auth := relayer.New(l, nil, nil)
	admin := randomAddress(t)

	err := auth.InitConfig(admin, randomAddress(t))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// Failed init leaves the config absent
	_, err = auth.Config()
	assert.ErrorIs(t, err, relayer.ErrNotInitialized)
}

func TestAuthorize(t *testing.T) {
	l := setupTestLedger(t)
	auth := relayer.New(l, nil, nil)
	admin := randomAddress(t)
	relay := randomAddress(t)
	fund(t, l, admin, ledger.MinBalanceReserve*2)
	require.NoError(t, auth.InitConfig(admin, relay))

	err := l.View(func(txn *ledger.Txn) error {
		return relayer.Authorize(txn, relay)
	})
	assert.NoError(t, err)

	err = l.View(func(txn *ledger.Txn) error {
		return relayer.Authorize(txn, admin)
	})
	assert.ErrorIs(t, err, relayer.ErrBadRelayer)
}

func TestAuthorizeBeforeInit(t *testing.T) {
	l := setupTestLedger(t)

	err := l.View(func(txn *ledger.Txn) error {
		return relayer.Authorize(txn, randomAddress(t))
	})
	assert.ErrorIs(t, err, relayer.ErrNotInitialized)
}
