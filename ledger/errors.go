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

import "errors"

// ErrRecordExists is returned when creating a record at an address that
// already holds one. Address derivation is the only dedup mechanism, so
// this is how duplicate submissions surface
var ErrRecordExists = errors.New("record already exists")

// ErrRecordNotFound is returned when reading a record that doesn't exist
var ErrRecordNotFound = errors.New("record not found")

// ErrAccountExists is returned when creating an account at an address
// that already holds one
var ErrAccountExists = errors.New("account already exists")

// ErrNotAuthorized is returned when the presented authority cannot debit
// the source of a transfer
var ErrNotAuthorized = errors.New("not authorized")

// ErrInsufficientBalance is returned when a debit would exceed the
// source account's balance
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrZeroAmount is returned when a transfer amount is zero
var ErrZeroAmount = errors.New("amount must be greater than zero")
