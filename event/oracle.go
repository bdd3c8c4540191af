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

package event

// RequestCreatedEventType is the event type for new judge or proposal requests
const RequestCreatedEventType = EventType("oracle.request.created")

// RequestCreatedEvent is emitted when a judge or proposal request is
// accepted onto the ledger
type RequestCreatedEvent struct {
	Address []byte
	Owner   []byte
	Nonce   uint64
	// Kind is "judge" or "proposal"
	Kind string
}

// RequestFulfilledEventType is the event type for fulfilled requests
const RequestFulfilledEventType = EventType("oracle.request.fulfilled")

// RequestFulfilledEvent is emitted when the relayer writes an outcome to
// a pending request
type RequestFulfilledEvent struct {
	Address []byte
	Owner   []byte
	Kind    string
	// Code is the decision or verdict code (1..3)
	Code uint8
}
