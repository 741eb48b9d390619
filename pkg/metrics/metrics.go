// plover
// (C) 2025, Deutsche Telekom IT GmbH
//
// Deutsche Telekom IT GmbH and all other contributors /
// copyright owners license this file to you under the Apache
// License, Version 2.0 (the "License"); you may not use this
// file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/caas-team/plover/pkg/checks"
)

type Metrics interface {
	// GetRegistry returns the prometheus registry instance
	// containing the registered prometheus collectors
	GetRegistry() *prometheus.Registry
	// RecordResults mirrors the check results of one category run into
	// the status gauge
	RecordResults(category string, results map[string]checks.Result)
	// RecordRunDuration observes the wall clock duration of one
	// category run in seconds
	RecordRunDuration(category string, seconds float64)
}

type PrometheusMetrics struct {
	registry    *prometheus.Registry
	checkStatus *prometheus.GaugeVec
	runDuration *prometheus.HistogramVec
}

// statusValue encodes a check status as a gauge value.
var statusValue = map[checks.Status]float64{
	checks.StatusPass:    0,
	checks.StatusWarning: 1,
	checks.StatusFail:    2,
	checks.StatusError:   3,
}

// NewMetrics initializes the metrics and returns the PrometheusMetrics
func NewMetrics() Metrics {
	registry := prometheus.NewRegistry()

	checkStatus := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plover_check_status",
			Help: "Status of the quality checks (0 pass, 1 warning, 2 fail, 3 error)",
		},
		[]string{
			"category",
			"check",
		},
	)

	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plover_run_duration_seconds",
			Help:    "Duration of one category checker run",
			Buckets: prometheus.DefBuckets,
		},
		[]string{
			"category",
		},
	)

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		checkStatus,
		runDuration,
	)

	return &PrometheusMetrics{
		registry:    registry,
		checkStatus: checkStatus,
		runDuration: runDuration,
	}
}

// GetRegistry returns the registry to register prometheus metrics
func (m *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) RecordResults(category string, results map[string]checks.Result) {
	for name, res := range results {
		m.checkStatus.WithLabelValues(category, name).Set(statusValue[res.Status])
	}
}

func (m *PrometheusMetrics) RecordRunDuration(category string, seconds float64) {
	m.runDuration.WithLabelValues(category).Observe(seconds)
}
