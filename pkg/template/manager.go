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

package template

import (
	"sync"

	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/frontmatter"
)

// Factory builds a processor for a metadata context.
type Factory func(mc *frontmatter.MetadataContext) (*Processor, error)

// SettingsFactory returns the default factory bound to settings.
func SettingsFactory(settings *config.Settings) Factory {
	return func(mc *frontmatter.MetadataContext) (*Processor, error) {
		return NewProcessor(mc, settings)
	}
}

// 🗃️ Manager caches one processor per metadata context for the length of a run
type Manager struct {
	factory Factory

	mu          sync.Mutex
	processors  map[string]*Processor
	constructed int
}

// 🏭 NewManager creates an empty cache
func NewManager(factory Factory) *Manager {
	return &Manager{
		factory:    factory,
		processors: make(map[string]*Processor),
	}
}

// GetOrCreate returns the cached processor for mc, building it on a miss.
// Construction happens under the lock so concurrent callers never observe a
// half-built entry or build the same one twice.
func (m *Manager) GetOrCreate(mc *frontmatter.MetadataContext) (*Processor, error) {
	key := mc.Key()

	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.processors[key]; ok {
		return p, nil
	}

	p, err := m.factory(mc)
	if err != nil {
		return nil, err
	}
	m.processors[key] = p
	m.constructed++
	return p, nil
}

// 🧹 Clear drops every cached processor
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.processors)
}

// Len is the number of cached processors.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.processors)
}

// Constructed counts factory calls over the manager's lifetime.
func (m *Manager) Constructed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.constructed
}
