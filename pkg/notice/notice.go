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

// Package notice delivers short user-facing messages.
package notice

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

const (
	Short = 2 * time.Second
	Long  = 5 * time.Second
)

// 📣 Sink receives fire-and-forget notifications
type Sink interface {
	Notify(ctx context.Context, msg string, duration time.Duration)
}

// 🖥️ Console prints notifications to a terminal and mirrors them to the context logger
type Console struct {
	mu      sync.Mutex
	printer *pterm.PrefixPrinter
}

var _ Sink = (*Console)(nil)

// 🏭 NewConsole creates a console sink writing to w, stderr when nil
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{
		printer: pterm.Info.WithPrefix(pterm.Prefix{Text: "📣", Style: pterm.Info.Prefix.Style}).WithWriter(w),
	}
}

func (c *Console) Notify(ctx context.Context, msg string, duration time.Duration) {
	c.mu.Lock()
	c.printer.Println(msg)
	c.mu.Unlock()

	zerolog.Ctx(ctx).Info().Dur("duration", duration).Msg(msg)
}

// Notice is one recorded notification.
type Notice struct {
	Message  string
	Duration time.Duration
}

// 🧪 Memory keeps notifications in order, for tests and embedding
type Memory struct {
	mu      sync.Mutex
	notices []Notice
}

var _ Sink = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Notify(ctx context.Context, msg string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, Notice{Message: msg, Duration: duration})
}

// Notices returns a copy of everything received so far.
func (m *Memory) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notice(nil), m.notices...)
}

// Messages returns the received message texts.
func (m *Memory) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, n := range m.notices {
		out = append(out, n.Message)
	}
	return out
}

// Reset forgets every received notification.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = nil
}
