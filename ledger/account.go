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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/openrelay-io/arbiter/database/types"
)

// Account balances are stored as 8-byte big-endian values in the blob
// store. An absent account reads as a zero balance.

// HasAccount reports whether an account has ever been credited at the
// given address
func (t *Txn) HasAccount(addr Address) (bool, error) {
	_, err := t.ledger.db.Blob().Get(
		t.dbTxn.Blob(),
		types.AccountBlobKey(addr.Bytes()),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Balance returns the balance of the account at the given address. An
// account that has never been credited has a zero balance
func (t *Txn) Balance(addr Address) (uint64, error) {
	data, err := t.ledger.db.Blob().Get(
		t.dbTxn.Blob(),
		types.AccountBlobKey(addr.Bytes()),
	)
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf(
			"malformed balance for account %s: %d bytes",
			addr,
			len(data),
		)
	}
	return binary.BigEndian.Uint64(data), nil
}

func (t *Txn) setBalance(addr Address, balance uint64) error {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], balance)
	return t.ledger.db.Blob().Set(
		t.dbTxn.Blob(),
		types.AccountBlobKey(addr.Bytes()),
		data[:],
	)
}

// Credit adds funds to an account, creating it if needed. This is the
// genesis/dev-mode funding path; normal movement of value goes through
// Transfer
func (t *Txn) Credit(addr Address, amount uint64) error {
	balance, err := t.Balance(addr)
	if err != nil {
		return err
	}
	newBalance, err := CheckedAdd(balance, amount)
	if err != nil {
		return err
	}
	return t.setBalance(addr, newBalance)
}

// Transfer moves funds between accounts within the transaction. The
// authority must cover the source address and the source must hold the
// full amount; the destination is created if needed
func (t *Txn) Transfer(
	from Address,
	to Address,
	amount uint64,
	auth Authority,
) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if auth == nil || !auth.CanDebit(from) {
		return ErrNotAuthorized
	}
	fromBalance, err := t.Balance(from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	toBalance, err := t.Balance(to)
	if err != nil {
		return err
	}
	newToBalance, err := CheckedAdd(toBalance, amount)
	if err != nil {
		return err
	}
	if err := t.setBalance(from, fromBalance-amount); err != nil {
		return err
	}
	return t.setBalance(to, newToBalance)
}
