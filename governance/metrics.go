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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
)

type governanceMetrics struct {
	proposalsCreated   prometheus.Counter
	proposalsFinalized *prometheus.CounterVec
	votesCast          *prometheus.CounterVec
	actionsExecuted    prometheus.Counter
	valueDisbursed     prometheus.Counter
}

func (e *Engine) initMetrics(promRegistry prometheus.Registerer) {
	e.metrics = &governanceMetrics{
		proposalsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "governance_proposals_created_total",
				Help: "total number of proposals created",
			},
		),
		proposalsFinalized: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "governance_proposals_finalized_total",
				Help: "total number of proposals finalized by verdict",
			},
			[]string{"verdict"},
		),
		votesCast: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "governance_votes_cast_total",
				Help: "total number of community votes cast by choice",
			},
			[]string{"choice"},
		),
		actionsExecuted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "governance_actions_executed_total",
				Help: "total number of treasury actions executed",
			},
		),
		valueDisbursed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "governance_value_disbursed_total",
				Help: "total value paid out of the treasury vault",
			},
		),
	}
	promRegistry.MustRegister(
		e.metrics.proposalsCreated,
		e.metrics.proposalsFinalized,
		e.metrics.votesCast,
		e.metrics.actionsExecuted,
		e.metrics.valueDisbursed,
	)
}

func verdictLabel(verdict uint8) string {
	switch verdict {
	case VerdictApprove:
		return "approve"
	case VerdictReject:
		return "reject"
	case VerdictNeedsRevision:
		return "needs_revision"
	}
	return "unset"
}

func choiceLabel(choice uint8) string {
	switch choice {
	case ChoiceFor:
		return "for"
	case ChoiceAgainst:
		return "against"
	case ChoiceAbstain:
		return "abstain"
	}
	return "unset"
}
