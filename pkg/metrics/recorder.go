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

// Package metrics records publish run measurements.
package metrics

import "time"

// RunKind labels what started a run.
type RunKind string

const (
	RunSingle RunKind = "single"
	RunAll    RunKind = "all"
	RunWatch  RunKind = "watch"
)

// Recorder receives publish measurements.
type Recorder interface {
	IncRun(kind RunKind)
	IncRefreshFailure()
	ObservePublish(d time.Duration, success bool)
	ObserveRun(kind RunKind, d time.Duration, successed, failed int)
}

// NoopRecorder is the default when metrics are not configured.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

func (NoopRecorder) IncRun(RunKind) {}
func (NoopRecorder) IncRefreshFailure() {}
func (NoopRecorder) ObservePublish(time.Duration, bool) {}
func (NoopRecorder) ObserveRun(RunKind, time.Duration, int, int) {}
