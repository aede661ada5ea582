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

// 🚦 State is the lifecycle position of the orchestrator
type State int

const (
	StateIdle State = iota
	StateValidating
	StateDiscovering
	StateRefreshing
	StateSeeding
	StateFanOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateDiscovering:
		return "discovering"
	case StateRefreshing:
		return "refreshing"
	case StateSeeding:
		return "seeding"
	case StateFanOut:
		return "fan-out"
	default:
		return "unknown"
	}
}
