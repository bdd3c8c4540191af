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

package types

const (
	RecordBlobKeyPrefix  = "r"
	AccountBlobKeyPrefix = "a"
)

// RecordBlobKey returns the blob store key for a record at the given
// derived address
func RecordBlobKey(addr []byte) []byte {
	key := []byte(RecordBlobKeyPrefix)
	key = append(key, addr...)
	return key
}

// AccountBlobKey returns the blob store key for an account balance at the
// given address
func AccountBlobKey(addr []byte) []byte {
	key := []byte(AccountBlobKeyPrefix)
	key = append(key, addr...)
	return key
}
