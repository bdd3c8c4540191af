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
	"github.com/prometheus/client_golang/prometheus"
)

type matchMetrics struct {
	matchesCreated prometheus.Counter
	matchesSettled *prometheus.CounterVec
	valueEscrowed  prometheus.Counter
	valuePaidOut   prometheus.Counter
}

func (e *Escrow) initMetrics(promRegistry prometheus.Registerer) {
	e.metrics = &matchMetrics{
		matchesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "match_created_total",
				Help: "total number of matches created",
			},
		),
		matchesSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "match_settled_total",
				Help: "total number of matches settled by verdict",
			},
			[]string{"verdict"},
		),
		valueEscrowed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "match_value_escrowed_total",
				Help: "total stake value paid into escrow",
			},
		),
		valuePaidOut: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "match_value_paid_out_total",
				Help: "total value paid out of escrow at settlement",
			},
		),
	}
	promRegistry.MustRegister(
		e.metrics.matchesCreated,
		e.metrics.matchesSettled,
		e.metrics.valueEscrowed,
		e.metrics.valuePaidOut,
	)
}

func verdictLabel(verdict uint8) string {
	switch verdict {
	case VerdictPlayerA:
		return "player_a"
	case VerdictPlayerB:
		return "player_b"
	case VerdictDraw:
		return "draw"
	}
	return "unset"
}
