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

package ledger

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/openrelay-io/arbiter/database"
	"github.com/openrelay-io/arbiter/database/types"
)

// MinBalanceReserve is the balance debited from the payer whenever a
// record or engine-owned account is created. It keeps every created
// address funded and makes record creation non-free
const MinBalanceReserve = 100_000

// Ledger provides atomic, serialized access to records and account
// balances. Every public engine operation maps to exactly one Update or
// View call; a mutex enforces one writer at a time, which is what makes
// read-modify-write sequences inside Update safe
type Ledger struct {
	db     *database.Database
	logger *slog.Logger
	mutex  sync.Mutex
}

// New creates a ledger on top of the given database
func New(db *database.Database, logger *slog.Logger) *Ledger {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Ledger{
		db:     db,
		logger: logger,
	}
}

// DB returns the underlying database
func (l *Ledger) DB() *database.Database {
	return l.db
}

// Logger returns the logger instance
func (l *Ledger) Logger() *slog.Logger {
	return l.logger
}

// Update runs fn inside a single serialized read-write transaction. If fn
// returns an error nothing is persisted; otherwise both stores commit
func (l *Ledger) Update(fn func(*Txn) error) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	dbTxn := l.db.Transaction(true)
	return dbTxn.Do(func(dbTxn *database.Txn) error {
		return fn(&Txn{ledger: l, dbTxn: dbTxn, readWrite: true})
	})
}

// View runs fn inside a read-only transaction
func (l *Ledger) View(fn func(*Txn) error) error {
	dbTxn := l.db.Transaction(false)
	defer dbTxn.Release()
	return fn(&Txn{ledger: l, dbTxn: dbTxn})
}

// Txn is a handle to an in-progress ledger transaction. Record and
// account operations within one Txn commit or roll back together
type Txn struct {
	ledger    *Ledger
	dbTxn     *database.Txn
	readWrite bool
}

// DB returns the underlying database, for metadata index lookups
func (t *Txn) DB() *database.Database {
	return t.ledger.db
}

// DatabaseTxn returns the underlying database transaction, so index rows
// can be written in the same atomic unit as record state
func (t *Txn) DatabaseTxn() *database.Txn {
	return t.dbTxn
}

// HasRecord reports whether a record exists at the given address
func (t *Txn) HasRecord(addr Address) (bool, error) {
	_, err := t.ledger.db.Blob().Get(
		t.dbTxn.Blob(),
		types.RecordBlobKey(addr.Bytes()),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetRecord reads and decodes the record at the given address into v
func (t *Txn) GetRecord(addr Address, v any) error {
	data, err := t.ledger.db.Blob().Get(
		t.dbTxn.Blob(),
		types.RecordBlobKey(addr.Bytes()),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return ErrRecordNotFound
		}
		return err
	}
	return cbor.Unmarshal(data, v)
}

// CreateRecord stores a new record at the given address, failing with
// ErrRecordExists if one is already present. The reserve is paid by the
// payer into the new record's account, so creation requires the payer's
// authority and sufficient balance
func (t *Txn) CreateRecord(
	addr Address,
	v any,
	payer Address,
	auth Authority,
) error {
	exists, err := t.HasRecord(addr)
	if err != nil {
		return err
	}
	if exists {
		return ErrRecordExists
	}
	if err := t.Transfer(payer, addr, MinBalanceReserve, auth); err != nil {
		return err
	}
	return t.putRecord(addr, v)
}

// PutRecord overwrites an existing record. The record must already exist;
// creation always goes through CreateRecord so the reserve cannot be
// skipped
func (t *Txn) PutRecord(addr Address, v any) error {
	exists, err := t.HasRecord(addr)
	if err != nil {
		return err
	}
	if !exists {
		return ErrRecordNotFound
	}
	return t.putRecord(addr, v)
}

func (t *Txn) putRecord(addr Address, v any) error {
	data, err := cbor.Marshal(v)
	if err != nil {
		return err
	}
	return t.ledger.db.Blob().Set(
		t.dbTxn.Blob(),
		types.RecordBlobKey(addr.Bytes()),
		data,
	)
}
