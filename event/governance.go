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

// ProposalCreatedEventType is the event type for new governance proposals
const ProposalCreatedEventType = EventType("governance.proposal.created")

type ProposalCreatedEvent struct {
	Address []byte
	Owner   []byte
	Nonce   uint64
}

// VoteCastEventType is the event type for community votes
const VoteCastEventType = EventType("governance.vote.cast")

type VoteCastEvent struct {
	Proposal []byte
	Voter    []byte
	Choice   uint8
}

// JudgeResultEventType is the event type for judge verdict submissions
const JudgeResultEventType = EventType("governance.judge.result")

type JudgeResultEvent struct {
	Proposal []byte
	Judge    []byte
	Verdict  uint8
}

// ProposalFinalizedEventType is the event type for consensus finalization
const ProposalFinalizedEventType = EventType("governance.proposal.finalized")

// ProposalFinalizedEvent is emitted when judge consensus is tallied and
// the action request is created
type ProposalFinalizedEvent struct {
	Proposal []byte
	Action   []byte
	Verdict  uint8
}

// ActionExecutedEventType is the event type for executed treasury actions
const ActionExecutedEventType = EventType("governance.action.executed")

// ActionExecutedEvent is emitted when an approved action pays out from
// the treasury vault
type ActionExecutedEvent struct {
	Action    []byte
	Recipient []byte
	Executor  []byte
	Amount    uint64
}
