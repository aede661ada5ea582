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

package publish

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/walteh/notepub/pkg/metrics"
	"github.com/walteh/notepub/pkg/task"
)

// 🏁 Run is the handle of one seeded publish run
type Run struct {
	Kind    metrics.RunKind
	Started time.Time

	tracker   *task.Tracker
	processed atomic.Int64
}

// Done is closed once every operation has recorded its outcome and the
// report has been emitted.
func (r *Run) Done() <-chan struct{} {
	return r.tracker.Done()
}

// Result returns the final counts and whether the run is complete.
func (r *Run) Result() (task.Result, bool) {
	return r.tracker.Result()
}

// Wait blocks until the run completes or ctx ends. Cancelling ctx does not
// cancel the run itself.
func (r *Run) Wait(ctx context.Context) (task.Result, error) {
	select {
	case <-r.Done():
		res, _ := r.Result()
		return res, nil
	case <-ctx.Done():
		return task.Result{}, ctx.Err()
	}
}
