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

package match

import (
	"github.com/openrelay-io/arbiter/event"
	"github.com/openrelay-io/arbiter/ledger"
	"github.com/openrelay-io/arbiter/relayer"
)

// CreateMatch opens a match between two distinct players and escrows an
// equal stake from each. PlayerA is the creator and also pays the
// reserve for the match record and the escrow account. Both transfers
// and the record creation commit together; any failure leaves both
// players' balances untouched
func (e *Escrow) CreateMatch(
	playerA ledger.Address,
	playerB ledger.Address,
	nonce uint64,
	matchType uint8,
	stake uint64,
	criteria string,
	inputA string,
	inputB string,
	extra string,
) (ledger.Address, error) {
	if playerA == playerB {
		return ledger.Address{}, ErrBadMatchPlayer
	}
	if matchType < 1 || matchType > 3 {
		return ledger.Address{}, ErrBadMatchType
	}
	if stake == 0 {
		return ledger.Address{}, ErrBadStake
	}
	if len(criteria) > MaxCriteriaLen {
		return ledger.Address{}, ErrCriteriaTooLong
	}
	if len(inputA) > MaxInputLen || len(inputB) > MaxInputLen {
		return ledger.Address{}, ErrInputTooLong
	}
	if len(extra) > MaxExtraLen {
		return ledger.Address{}, ErrExtraTooLong
	}
	addr := MatchAddress(playerA, nonce)
	escrowAddr := EscrowAddress(addr)
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		m := Match{
			PlayerA:   playerA,
			PlayerB:   playerB,
			Status:    StatusOpen,
			Nonce:     nonce,
			MatchType: matchType,
			Stake:     stake,
			Criteria:  criteria,
			InputA:    inputA,
			InputB:    inputB,
			Extra:     extra,
		}
		authA := ledger.SignerAuthority(playerA)
		if err := txn.CreateRecord(addr, &m, playerA, authA); err != nil {
			return err
		}
		// Escrow holds the reserve plus both stakes
		err := txn.Transfer(playerA, escrowAddr, ledger.MinBalanceReserve, authA)
		if err != nil {
			return err
		}
		if err := txn.Transfer(playerA, escrowAddr, stake, authA); err != nil {
			return err
		}
		err = txn.Transfer(
			playerB,
			escrowAddr,
			stake,
			ledger.SignerAuthority(playerB),
		)
		if err != nil {
			return err
		}
		return e.setMatchIndex(txn, addr, &m)
	})
	if err != nil {
		return ledger.Address{}, err
	}
	if e.metrics != nil {
		e.metrics.matchesCreated.Inc()
		e.metrics.valueEscrowed.Add(float64(stake) * 2)
	}
	e.publish(
		event.MatchCreatedEventType,
		event.MatchCreatedEvent{
			Address: addr.Bytes(),
			PlayerA: playerA.Bytes(),
			PlayerB: playerB.Bytes(),
			Stake:   stake,
		},
	)
	e.logger.Info(
		"match created",
		"component", "match",
		"address", addr.String(),
		"stake", stake,
	)
	return addr, nil
}

// FinalizeMatch records the relayer's verdict on an open match. The
// status check and the verdict write are one transaction, so a match
// finalizes at most once
func (e *Escrow) FinalizeMatch(
	caller ledger.Address,
	matchAddr ledger.Address,
	verdict uint8,
	promptHash [32]byte,
	receiptRoot [32]byte,
	modelID string,
) error {
	if verdict < VerdictPlayerA || verdict > VerdictDraw {
		return ErrBadVerdict
	}
	if len(modelID) > MaxModelIDLen {
		return ErrModelIDTooLong
	}
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		if err := relayer.Authorize(txn, caller); err != nil {
			return err
		}
		var m Match
		if err := txn.GetRecord(matchAddr, &m); err != nil {
			return err
		}
		if m.Status != StatusOpen {
			return ErrAlreadyFinalized
		}
		m.Status = StatusFinalized
		m.Verdict = verdict
		m.PromptHash = promptHash
		m.ReceiptRoot = receiptRoot
		m.ModelID = modelID
		if err := txn.PutRecord(matchAddr, &m); err != nil {
			return err
		}
		return e.setMatchIndex(txn, matchAddr, &m)
	})
	if err != nil {
		return err
	}
	e.publish(
		event.MatchFinalizedEventType,
		event.MatchFinalizedEvent{
			Address: matchAddr.Bytes(),
			Verdict: verdict,
		},
	)
	e.logger.Info(
		"match finalized",
		"component", "match",
		"address", matchAddr.String(),
		"verdict", verdict,
	)
	return nil
}

// ExecuteMatch settles a finalized match, paying the escrowed stakes
// out under the escrow's derived-key authority: the full 2x stake to
// the winner, or one stake back to each player on a draw. Total paid
// out is always exactly twice the stake. The supplied players must
// match the stored ones, and a match settles at most once
func (e *Escrow) ExecuteMatch(
	executor ledger.Address,
	matchAddr ledger.Address,
	playerA ledger.Address,
	playerB ledger.Address,
) error {
	escrowAddr := EscrowAddress(matchAddr)
	var paidA, paidB uint64
	var verdict uint8
	err := e.ledger.Update(func(txn *ledger.Txn) error {
		var m Match
		if err := txn.GetRecord(matchAddr, &m); err != nil {
			return err
		}
		if m.Status != StatusFinalized {
			return ErrNotFinalized
		}
		if m.PlayerA != playerA || m.PlayerB != playerB {
			return ErrPlayerMismatch
		}
		doubleStake, err := ledger.CheckedMul(m.Stake, 2)
		if err != nil {
			return err
		}
		required, err := ledger.CheckedAdd(doubleStake, ledger.MinBalanceReserve)
		if err != nil {
			return err
		}
		balance, err := txn.Balance(escrowAddr)
		if err != nil {
			return err
		}
		if balance < required {
			return ErrEscrowBalanceLow
		}
		auth := ledger.VaultAuthority(escrowAddr)
		verdict = m.Verdict
		switch m.Verdict {
		case VerdictPlayerA:
			paidA = doubleStake
			if err := txn.Transfer(escrowAddr, playerA, paidA, auth); err != nil {
				return err
			}
		case VerdictPlayerB:
			paidB = doubleStake
			if err := txn.Transfer(escrowAddr, playerB, paidB, auth); err != nil {
				return err
			}
		case VerdictDraw:
			paidA, paidB = m.Stake, m.Stake
			if err := txn.Transfer(escrowAddr, playerA, paidA, auth); err != nil {
				return err
			}
			if err := txn.Transfer(escrowAddr, playerB, paidB, auth); err != nil {
				return err
			}
		default:
			return ErrBadVerdict
		}
		m.Status = StatusSettled
		m.Executor = executor
		if err := txn.PutRecord(matchAddr, &m); err != nil {
			return err
		}
		return e.setMatchIndex(txn, matchAddr, &m)
	})
	if err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.matchesSettled.WithLabelValues(verdictLabel(verdict)).Inc()
		e.metrics.valuePaidOut.Add(float64(paidA + paidB))
	}
	e.publish(
		event.MatchSettledEventType,
		event.MatchSettledEvent{
			Address:  matchAddr.Bytes(),
			Executor: executor.Bytes(),
			PaidA:    paidA,
			PaidB:    paidB,
		},
	)
	e.logger.Info(
		"match settled",
		"component", "match",
		"address", matchAddr.String(),
		"paid_a", paidA,
		"paid_b", paidB,
	)
	return nil
}
