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

// Package watch republishes documents when they change on disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/pathres"
	"github.com/walteh/notepub/pkg/publish"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
)

const DefaultDebounce = 500 * time.Millisecond

// 📤 Publisher starts a single-document run
type Publisher interface {
	PublishChanged(ctx context.Context, p string) (*publish.Run, error)
}

// 👀 Watcher follows the source folder and republishes changed documents
type Watcher struct {
	store     *vault.Store
	resolver  *pathres.Resolver
	publisher Publisher
	debounce  time.Duration
	fsw       *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	ready   chan string
	done    chan struct{}

	// last republish per path; events inside the quiet period after it come
	// from the run's own header rewrite
	published map[string]time.Time
}

// 🏭 New starts watching every folder below the source root
func New(store *vault.Store, settings *config.Settings, publisher Publisher, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Errorf("creating fs watcher: %w", err)
	}

	w := &Watcher{
		store:     store,
		resolver:  pathres.New(settings),
		publisher: publisher,
		debounce:  debounce,
		fsw:       fsw,
		pending:   make(map[string]*time.Timer),
		published: make(map[string]time.Time),
		ready:     make(chan string, 16),
		done:      make(chan struct{}),
	}

	if err := w.addTree(store.Abs(settings.NoteFolder)); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return errors.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

// Run handles events until ctx is done. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)
	defer w.shutdown()

	logger.Info().Dur("debounce", w.debounce).Msg("👀 watching for changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")
		case rel := <-w.ready:
			w.publish(ctx, rel)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	logger := zerolog.Ctx(ctx)

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				logger.Warn().Err(err).Str("dir", ev.Name).Msg("watching new folder")
			}
			return
		}
	}

	rel, err := w.store.Rel(ev.Name)
	if err != nil {
		return
	}
	if !w.resolver.MatchesSourceScope(vault.NewDocument(rel, time.Time{})) {
		return
	}

	if w.recentlyPublished(rel) {
		logger.Trace().Str("document", rel).Str("op", ev.Op.String()).Msg("ignoring own rewrite")
		return
	}

	logger.Trace().Str("document", rel).Str("op", ev.Op.String()).Msg("change detected")
	w.schedule(rel)
}

// schedule restarts the quiet period for rel.
func (w *Watcher) schedule(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[rel]; ok {
		t.Stop()
	}
	w.pending[rel] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, rel)
		w.mu.Unlock()

		select {
		case w.ready <- rel:
		case <-w.done:
		}
	})
}

func (w *Watcher) recentlyPublished(rel string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	at, ok := w.published[rel]
	if !ok {
		return false
	}
	if time.Since(at) < w.debounce {
		return true
	}
	delete(w.published, rel)
	return false
}

func (w *Watcher) publish(ctx context.Context, rel string) {
	logger := zerolog.Ctx(ctx).With().Str("document", rel).Logger()

	run, err := w.publisher.PublishChanged(ctx, rel)
	if errors.Is(err, publish.ErrRunInProgress) {
		logger.Info().Msg("run in progress, skipping change")
		return
	}
	if err != nil {
		logger.Warn().Err(err).Msg("republish rejected")
		return
	}
	defer w.markPublished(rel)
	if run == nil {
		return
	}

	res, err := run.Wait(ctx)
	if err != nil {
		return
	}
	logger.Debug().Int("successed", res.Successed).Int("failed", res.Failed).Msg("republished")
}

func (w *Watcher) markPublished(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.published[rel] = time.Now()
}

func (w *Watcher) shutdown() {
	close(w.done)

	w.mu.Lock()
	for rel, t := range w.pending {
		t.Stop()
		delete(w.pending, rel)
	}
	w.mu.Unlock()

	w.fsw.Close()
}
