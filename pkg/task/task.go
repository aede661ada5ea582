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

// Package task counts the outcomes of a publish run and fires its completion once.
package task

import (
	"sync"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrAlreadySeeded = errors.Base("tracker already seeded")
	ErrNotSeeded     = errors.Base("tracker not seeded")
	ErrRunComplete   = errors.Base("run already complete")
)

// 📊 Result is the aggregate outcome of one run
type Result struct {
	Total     int
	Successed int
	Failed    int
}

// AllSucceeded reports whether no operation failed.
func (r Result) AllSucceeded() bool {
	return r.Failed == 0
}

// 🧮 Tracker counts outstanding operations for a single run.
//
// A tracker is seeded once with the number of operations, every operation
// records exactly one outcome, and the completion callback runs exactly once,
// on the call that takes the outstanding count to zero or below.
type Tracker struct {
	onDone func(Result)
	done   chan struct{}

	mu          sync.Mutex
	seeded      bool
	completed   bool
	total       int
	outstanding int
	successed   int
	failed      int
	result      Result
}

// 🏭 New creates an unseeded tracker. onDone may be nil.
func New(onDone func(Result)) *Tracker {
	return &Tracker{
		onDone: onDone,
		done:   make(chan struct{}),
	}
}

// Seed sets the number of operations the run will record.
// Seeding with zero (or less) completes the run immediately.
func (t *Tracker) Seed(n int) error {
	t.mu.Lock()
	if t.seeded {
		t.mu.Unlock()
		return ErrAlreadySeeded
	}
	t.seeded = true
	t.total = max(n, 0)
	t.outstanding = n
	fire := t.checkLocked()
	t.mu.Unlock()

	fire()
	return nil
}

// Record stores the outcome of one operation.
func (t *Tracker) Record(ok bool) error {
	t.mu.Lock()
	if !t.seeded {
		t.mu.Unlock()
		return ErrNotSeeded
	}
	if t.completed {
		t.mu.Unlock()
		return ErrRunComplete
	}
	if ok {
		t.successed++
	} else {
		t.failed++
	}
	t.outstanding--
	fire := t.checkLocked()
	t.mu.Unlock()

	fire()
	return nil
}

// checkLocked flips the tracker to completed when nothing is outstanding and
// returns the completion action for the caller to run outside the lock.
func (t *Tracker) checkLocked() func() {
	if t.completed || t.outstanding > 0 {
		return func() {}
	}
	t.completed = true
	t.result = Result{Total: t.total, Successed: t.successed, Failed: t.failed}
	t.outstanding, t.successed, t.failed = 0, 0, 0

	result := t.result
	return func() {
		if t.onDone != nil {
			t.onDone(result)
		}
		close(t.done)
	}
}

// Done is closed after the completion callback has returned.
func (t *Tracker) Done() <-chan struct{} {
	return t.done
}

// Result returns the final counts once the run is complete.
func (t *Tracker) Result() (Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result, t.completed
}

// Outstanding is the number of operations still to record.
func (t *Tracker) Outstanding() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return max(t.outstanding, 0)
}

// Counts returns the outcomes recorded so far in the current run.
func (t *Tracker) Counts() (successed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.completed {
		return t.result.Successed, t.result.Failed
	}
	return t.successed, t.failed
}
