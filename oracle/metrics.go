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

package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
)

type oracleMetrics struct {
	requestsCreated   *prometheus.CounterVec
	requestsFulfilled *prometheus.CounterVec
}

func (o *Oracle) initMetrics(promRegistry prometheus.Registerer) {
	o.metrics = &oracleMetrics{
		requestsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_requests_created_total",
				Help: "total number of requests created by kind",
			},
			[]string{"kind"},
		),
		requestsFulfilled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oracle_requests_fulfilled_total",
				Help: "total number of requests fulfilled by kind",
			},
			[]string{"kind"},
		),
	}
	promRegistry.MustRegister(
		o.metrics.requestsCreated,
		o.metrics.requestsFulfilled,
	)
}

func (o *Oracle) observeCreated(kind string) {
	if o.metrics != nil {
		o.metrics.requestsCreated.WithLabelValues(kind).Inc()
	}
}

func (o *Oracle) observeFulfilled(kind string) {
	if o.metrics != nil {
		o.metrics.requestsFulfilled.WithLabelValues(kind).Inc()
	}
}
