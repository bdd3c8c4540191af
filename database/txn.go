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

package database

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openrelay-io/arbiter/database/types"
)

// Txn coordinates a blob transaction and a metadata transaction as
// siblings. The blob store is authoritative, so its commit always
// happens first; a metadata commit failure after that point leaves the
// index stale but the record state intact.
type Txn struct {
	db          *Database
	blobTxn     types.Txn
	metadataTxn types.Txn
	mutex       sync.Mutex
	closed      bool
	readWrite   bool
}

func newTxn(db *Database, readWrite, useBlob, useMetadata bool) *Txn {
	t := &Txn{db: db, readWrite: readWrite}
	if useBlob {
		if bs := db.Blob(); bs != nil {
			t.blobTxn = bs.NewTransaction(readWrite)
		}
	}
	if useMetadata {
		if ms := db.Metadata(); ms != nil {
			t.metadataTxn = ms.Transaction()
		}
	}
	return t
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, true, true)
}

func NewBlobOnlyTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, true, false)
}

func NewMetadataOnlyTxn(db *Database, readWrite bool) *Txn {
	return newTxn(db, readWrite, false, true)
}

func (t *Txn) DB() *Database {
	return t.db
}

// Metadata returns the underlying metadata transaction handle
func (t *Txn) Metadata() types.Txn {
	return t.metadataTxn
}

// Blob returns the blob transaction handle
func (t *Txn) Blob() types.Txn {
	return t.blobTxn
}

// Do runs fn inside the transaction, committing on nil and rolling back
// on error
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return fmt.Errorf(
				"rollback failed: %w: original error: %w",
				rbErr,
				err,
			)
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	return nil
}

func (t *Txn) Commit() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.closed {
		return nil
	}
	if t.readWrite && t.blobTxn == nil && t.metadataTxn == nil {
		t.closed = true
		return types.ErrNoStoreAvailable
	}
	// Read-only transactions have nothing to commit, just resources to free
	if !t.readWrite {
		return t.rollback()
	}
	// Stamp both stores with the same commit timestamp so divergence can
	// be detected on the next open
	if t.blobTxn != nil && t.metadataTxn != nil {
		stamp := time.Now().UnixMilli()
		if err := t.db.updateCommitTimestamp(t, stamp); err != nil {
			_ = t.blobTxn.Rollback()
			_ = t.metadataTxn.Rollback()
			t.closed = true
			return fmt.Errorf("failed to update commit timestamp: %w", err)
		}
	}
	// Blob commits first; if it fails the metadata side never lands
	if t.blobTxn != nil {
		if err := t.blobTxn.Commit(); err != nil {
			if t.metadataTxn != nil {
				_ = t.metadataTxn.Rollback()
			}
			t.closed = true
			return fmt.Errorf("blob commit failed: %w", err)
		}
	}
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Commit(); err != nil {
			t.db.logger.Error(
				"partial commit: blob committed, metadata failed",
				"error", err,
			)
			_ = t.metadataTxn.Rollback()
			t.closed = true
			return fmt.Errorf(
				"partial commit: metadata commit failed after blob commit: %w",
				err,
			)
		}
	}
	t.closed = true
	return nil
}

func (t *Txn) Rollback() error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.closed {
		return nil
	}
	t.closed = true
	var errs []error
	if t.blobTxn != nil {
		if err := t.blobTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("blob rollback: %w", err))
		}
	}
	if t.metadataTxn != nil {
		if err := t.metadataTxn.Rollback(); err != nil {
			errs = append(errs, fmt.Errorf("metadata rollback: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Release rolls the transaction back, logging instead of returning any
// error. Safe for deferred calls
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
