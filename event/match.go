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

// MatchCreatedEventType is the event type for newly opened matches
const MatchCreatedEventType = EventType("match.created")

// MatchCreatedEvent is emitted when a match opens and both stakes land in
// escrow
type MatchCreatedEvent struct {
	Address []byte
	PlayerA []byte
	PlayerB []byte
	Stake   uint64
}

// MatchFinalizedEventType is the event type for relay-finalized matches
const MatchFinalizedEventType = EventType("match.finalized")

type MatchFinalizedEvent struct {
	Address []byte
	Verdict uint8
}

// MatchSettledEventType is the event type for settled matches
const MatchSettledEventType = EventType("match.settled")

// MatchSettledEvent is emitted when escrowed stakes pay out. PaidA and
// PaidB always sum to twice the stake
type MatchSettledEvent struct {
	Address  []byte
	Executor []byte
	PaidA    uint64
	PaidB    uint64
}
