// Copyright 2025 walteh LLC
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

package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"gitlab.com/tozd/go/errors"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg             *prom.Registry
	runs            *prom.CounterVec
	refreshFailures prom.Counter
	publishDuration *prom.HistogramVec
	documents       *prom.CounterVec
	runDuration     *prom.HistogramVec
	lastRun         *prom.GaugeVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs and registers the publish metrics on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		runs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "notepub",
			Name:      "runs_total",
			Help:      "Publish runs started by kind",
		}, []string{"kind"}),
		refreshFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "notepub",
			Name:      "refresh_failures_total",
			Help:      "Documents skipped because their header could not be refreshed",
		}),
		publishDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "notepub",
			Name:      "publish_duration_seconds",
			Help:      "Duration of individual document publishes",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "notepub",
			Name:      "documents_total",
			Help:      "Published documents by result",
		}, []string{"result"}),
		runDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "notepub",
			Name:      "run_duration_seconds",
			Help:      "Total run duration by kind",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		lastRun: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "notepub",
			Name:      "last_run_documents",
			Help:      "Document counts of the last completed run",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.runs, pr.refreshFailures, pr.publishDuration, pr.documents, pr.runDuration, pr.lastRun)
	return pr
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) IncRun(kind RunKind) {
	p.runs.WithLabelValues(string(kind)).Inc()
}

func (p *PrometheusRecorder) IncRefreshFailure() {
	p.refreshFailures.Inc()
}

func (p *PrometheusRecorder) ObservePublish(d time.Duration, success bool) {
	res := resultLabel(success)
	p.publishDuration.WithLabelValues(res).Observe(d.Seconds())
	p.documents.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveRun(kind RunKind, d time.Duration, successed, failed int) {
	p.runDuration.WithLabelValues(string(kind)).Observe(d.Seconds())
	p.lastRun.WithLabelValues("success").Set(float64(successed))
	p.lastRun.WithLabelValues("failed").Set(float64(failed))
}

// Registry exposes the underlying registry.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

// 📤 WriteTextfile dumps every metric in the node-exporter textfile format
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return errors.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
