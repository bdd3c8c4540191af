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

// Authority controls which accounts a transfer may debit. Callers are
// trusted to present authenticated identities; authorization is an
// equality check, not cryptography
type Authority interface {
	CanDebit(addr Address) bool
}

// signerAuthority authorizes debits from the signer's own account
type signerAuthority struct {
	id Address
}

func (a signerAuthority) CanDebit(addr Address) bool {
	return addr == a.id
}

// SignerAuthority returns an authority for the given external identity
func SignerAuthority(id Address) Authority {
	return signerAuthority{id: id}
}

// vaultAuthority authorizes debits from a single derived address. It is
// how the engine moves funds out of accounts it owns (treasury vault,
// match escrow); no external identity maps to these addresses
type vaultAuthority struct {
	vault Address
}

func (a vaultAuthority) CanDebit(addr Address) bool {
	return addr == a.vault
}

// VaultAuthority returns an authority for the given derived address
func VaultAuthority(vault Address) Authority {
	return vaultAuthority{vault: vault}
}
