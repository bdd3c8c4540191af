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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
)

// registerBlobMetrics registers gauges that report badger's on-disk size
// on collection
func (d *BlobStoreBadger) registerBlobMetrics() {
	d.promRegistry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "blob_lsm_size_bytes",
				Help: "size of the blob store LSM tree in bytes",
			},
			func() float64 {
				lsmSize, _ := d.DB().Size()
				return float64(lsmSize)
			},
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "blob_vlog_size_bytes",
				Help: "size of the blob store value log in bytes",
			},
			func() float64 {
				_, vlogSize := d.DB().Size()
				return float64(vlogSize)
			},
		),
	)
}
