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
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/frontmatter"
	"github.com/walteh/notepub/pkg/metrics"
	"github.com/walteh/notepub/pkg/notice"
	"github.com/walteh/notepub/pkg/pathres"
	"github.com/walteh/notepub/pkg/status"
	"github.com/walteh/notepub/pkg/task"
	"github.com/walteh/notepub/pkg/template"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

var (
	ErrRunInProgress    = errors.Base("a publish run is already in progress")
	ErrOutOfScope       = errors.Base("document is not in the source folder")
	ErrNoActiveDocument = errors.Base("no active document")
)

// 🔄 Updater refreshes a document header and returns its metadata
type Updater interface {
	UpdateFrontmatter(ctx context.Context, doc *vault.Document) (*frontmatter.MetadataContext, error)
}

// 🎨 Renderer produces the published header and body
type Renderer interface {
	PublishedYAML(ctx context.Context, mc *frontmatter.MetadataContext) (string, error)
	PublishedText(ctx context.Context, doc *vault.Document) (string, error)
}

// 🗃️ TemplateCache holds the per-run template processors
type TemplateCache interface {
	GetOrCreate(mc *frontmatter.MetadataContext) (*template.Processor, error)
	Clear()
}

// 🔧 Options contains the collaborators of the orchestrator
type Options struct {
	Store    *vault.Store
	Settings *config.Settings
	Updater  Updater
	Renderer Renderer
	Cache    TemplateCache
	Writer   status.Writer
	Notices  notice.Sink

	// Metrics defaults to a no-op recorder
	Metrics metrics.Recorder
	// Progress is optional
	Progress status.StatusReporter
}

// 🎼 Orchestrator drives publish runs over a vault
type Orchestrator struct {
	store    *vault.Store
	settings *config.Settings
	resolver *pathres.Resolver
	updater  Updater
	renderer Renderer
	cache    TemplateCache
	writer   status.Writer
	notices  notice.Sink
	metrics  metrics.Recorder
	progress status.StatusReporter

	mu    sync.Mutex
	state State
}

// 🏭 New creates an orchestrator with the given options
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.Errorf("store is required")
	case opts.Settings == nil:
		return nil, errors.Errorf("settings are required")
	case opts.Updater == nil:
		return nil, errors.Errorf("updater is required")
	case opts.Renderer == nil:
		return nil, errors.Errorf("renderer is required")
	case opts.Cache == nil:
		return nil, errors.Errorf("template cache is required")
	case opts.Writer == nil:
		return nil, errors.Errorf("writer is required")
	case opts.Notices == nil:
		return nil, errors.Errorf("notice sink is required")
	}

	rec := opts.Metrics
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	return &Orchestrator{
		store:    opts.Store,
		settings: opts.Settings,
		resolver: pathres.New(opts.Settings),
		updater:  opts.Updater,
		renderer: opts.Renderer,
		cache:    opts.Cache,
		writer:   opts.Writer,
		notices:  opts.Notices,
		metrics:  rec,
		progress: opts.Progress,
		state:    StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// begin moves Idle to Validating, rejecting the call when a run is active.
func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return errors.Errorf("%w (state %s)", ErrRunInProgress, o.state)
	}
	o.state = StateValidating
	return nil
}

func (o *Orchestrator) abort(err error) (*Run, error) {
	o.setState(StateIdle)
	return nil, err
}

// ✅ ValidatePath checks the destination root and notifies either way
func (o *Orchestrator) ValidatePath(ctx context.Context) bool {
	return o.checkDestination(ctx, true) == nil
}

func (o *Orchestrator) checkDestination(ctx context.Context, noticeValid bool) error {
	root := o.settings.PublishToAbFolder
	if !o.resolver.ValidateRoot() {
		zerolog.Ctx(ctx).Warn().Str("root", root).Msg("destination root does not exist")
		o.notices.Notify(ctx, fmt.Sprintf("Invalid path: %s", root), notice.Short)
		return errors.Errorf("%w: %s", config.ErrInvalidPath, root)
	}
	if noticeValid {
		o.notices.Notify(ctx, fmt.Sprintf("Valid path: %s", root), notice.Short)
	}
	return nil
}

// 📄 PublishCurrent publishes the active document
func (o *Orchestrator) PublishCurrent(ctx context.Context) (*Run, error) {
	return o.publishSingle(ctx, metrics.RunSingle, func() (*vault.Document, error) {
		doc := o.store.ActiveDocument()
		if doc == nil {
			return nil, ErrNoActiveDocument
		}
		return doc, nil
	})
}

// PublishFile publishes the document at p, absolute or vault-relative.
func (o *Orchestrator) PublishFile(ctx context.Context, p string) (*Run, error) {
	return o.publishSingle(ctx, metrics.RunSingle, o.lookup(p))
}

// PublishChanged is PublishFile for documents reported by the watcher.
func (o *Orchestrator) PublishChanged(ctx context.Context, p string) (*Run, error) {
	return o.publishSingle(ctx, metrics.RunWatch, o.lookup(p))
}

func (o *Orchestrator) lookup(p string) func() (*vault.Document, error) {
	return func() (*vault.Document, error) {
		doc, ok := o.store.ByPath(p).(*vault.Document)
		if !ok {
			return nil, errors.Errorf("%w: %s", ErrNoActiveDocument, p)
		}
		return doc, nil
	}
}

func (o *Orchestrator) publishSingle(ctx context.Context, kind metrics.RunKind, discover func() (*vault.Document, error)) (*Run, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx)

	if err := o.checkDestination(ctx, false); err != nil {
		return o.abort(err)
	}

	o.setState(StateDiscovering)
	doc, err := discover()
	if err != nil {
		logger.Warn().Err(err).Msg("nothing to publish")
		return o.abort(err)
	}
	if !o.resolver.MatchesSourceScope(doc) {
		o.notices.Notify(ctx, fmt.Sprintf("Not in Source Folder: %s Or Not a Markdown File", o.settings.NoteFolder), notice.Short)
		return o.abort(errors.Errorf("%w: %s", ErrOutOfScope, doc.Path()))
	}

	o.setState(StateRefreshing)
	mc, err := o.refresh(ctx, doc)
	if err != nil {
		return o.abort(errors.Errorf("refreshing %s: %w", doc.Path(), err))
	}

	o.setState(StateSeeding)
	run := o.newRun(ctx, kind)
	if err := run.tracker.Seed(1); err != nil {
		return o.abort(err)
	}
	o.startProgress(ctx, 1)

	root := o.settings.PublishToAbFolder
	o.dispatch(ctx, run, []*frontmatter.MetadataContext{mc}, func(*vault.Document) {
		o.notices.Notify(ctx, fmt.Sprintf("Your note has been published! At %s", root), notice.Short)
	})
	return run, nil
}

// 📚 PublishAll publishes every document below the source root
func (o *Orchestrator) PublishAll(ctx context.Context) (*Run, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(ctx)

	if err := o.checkDestination(ctx, false); err != nil {
		return o.abort(err)
	}

	o.notices.Notify(ctx, "Preparing to publish all...", notice.Short)

	o.setState(StateDiscovering)
	docs := o.discover(ctx)
	logger.Debug().Int("documents", len(docs)).Str("source", o.settings.NoteFolder).Msg("discovered documents")

	o.setState(StateRefreshing)
	ready := make([]*frontmatter.MetadataContext, 0, len(docs))
	for _, doc := range docs {
		mc, err := o.refresh(ctx, doc)
		if err != nil {
			continue
		}
		ready = append(ready, mc)
	}

	o.setState(StateSeeding)
	run := o.newRun(ctx, metrics.RunAll)
	o.notices.Notify(ctx, fmt.Sprintf("Got %d notes for publishing...", len(ready)), notice.Long)
	o.startProgress(ctx, len(ready))
	if err := run.tracker.Seed(len(ready)); err != nil {
		return o.abort(err)
	}
	if len(ready) == 0 {
		return run, nil
	}

	root := o.settings.PublishToAbFolder
	o.dispatch(ctx, run, ready, func(doc *vault.Document) {
		o.notices.Notify(ctx, fmt.Sprintf("publish %s to %s", doc.Name(), root), notice.Short)
	})
	return run, nil
}

// discover walks the source root breadth first and keeps in-scope documents.
// Unreadable folders are logged and skipped.
func (o *Orchestrator) discover(ctx context.Context) []*vault.Document {
	logger := zerolog.Ctx(ctx)

	start := o.store.ByPath(o.settings.NoteFolder)
	if start == nil {
		logger.Warn().Str("source", o.settings.NoteFolder).Msg("source folder not found or unreadable")
		return nil
	}

	var docs []*vault.Document
	queue := []vault.Node{start}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		switch n := node.(type) {
		case *vault.Folder:
			for _, skip := range n.Skipped() {
				logger.Warn().Err(skip.Err).Str("folder", skip.Path).Msg("skipping unreadable entry")
			}
			queue = append(queue, n.Children()...)
		case *vault.Document:
			if o.resolver.MatchesSourceScope(n) {
				docs = append(docs, n)
			}
		}
	}
	return docs
}

// refresh updates the header and warms the template cache. Failures notify
// and skip the document.
func (o *Orchestrator) refresh(ctx context.Context, doc *vault.Document) (*frontmatter.MetadataContext, error) {
	mc, err := o.updater.UpdateFrontmatter(ctx, doc)
	if err == nil {
		_, err = o.cache.GetOrCreate(mc)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("document", doc.Path()).Msg("refresh failed, skipping")
		o.metrics.IncRefreshFailure()
		o.notices.Notify(ctx, fmt.Sprintf("refreshing %s frontmatter failed, skip it.", doc.Name()), notice.Short)
		return nil, err
	}
	return mc, nil
}

func (o *Orchestrator) newRun(ctx context.Context, kind metrics.RunKind) *Run {
	o.metrics.IncRun(kind)

	run := &Run{Kind: kind, Started: time.Now()}
	run.tracker = task.New(func(res task.Result) {
		o.complete(ctx, run, res)
	})
	return run
}

// complete runs once per run, on the outcome that drains the tracker.
func (o *Orchestrator) complete(ctx context.Context, run *Run, res task.Result) {
	o.cache.Clear()

	if res.Failed > 0 {
		o.notices.Notify(ctx, fmt.Sprintf("All done, failed: %d, successed: %d", res.Failed, res.Successed), notice.Long)
	} else {
		o.notices.Notify(ctx, "All notes have been published!", notice.Long)
	}

	o.metrics.ObserveRun(run.Kind, time.Since(run.Started), res.Successed, res.Failed)
	if o.progress != nil {
		o.progress.FinishOperation(ctx)
	}

	zerolog.Ctx(ctx).Info().
		Str("kind", string(run.Kind)).
		Int("total", res.Total).
		Int("successed", res.Successed).
		Int("failed", res.Failed).
		Dur("elapsed", time.Since(run.Started)).
		Msg("publish run complete")

	o.setState(StateIdle)
}

func (o *Orchestrator) startProgress(ctx context.Context, total int) {
	if o.progress != nil {
		o.progress.StartOperation(ctx, total)
	}
}

// dispatch fans out one operation per context without waiting for them.
func (o *Orchestrator) dispatch(ctx context.Context, run *Run, items []*frontmatter.MetadataContext, onSuccess func(*vault.Document)) {
	o.setState(StateFanOut)

	// seeded runs are never cancelled
	ctx = context.WithoutCancel(ctx)

	limit := o.settings.Concurrency
	if limit <= 0 {
		limit = config.DefaultConcurrency
	}

	go func() {
		var g errgroup.Group
		g.SetLimit(limit)
		for _, mc := range items {
			g.Go(func() error {
				o.publishOne(ctx, run, mc, onSuccess)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// publishOne never returns an error: every outcome ends up in the tracker.
func (o *Orchestrator) publishOne(ctx context.Context, run *Run, mc *frontmatter.MetadataContext, onSuccess func(*vault.Document)) {
	doc := mc.Document
	logger := zerolog.Ctx(ctx).With().Str("document", doc.Path()).Logger()

	start := time.Now()
	dest, err := o.publishDocument(ctx, mc, onSuccess)
	o.metrics.ObservePublish(time.Since(start), err == nil)

	if err != nil {
		logger.Error().Err(err).Str("path", dest).Msg("publish failed")
	} else {
		logger.Debug().Str("path", dest).Msg("published")
	}

	if o.progress != nil {
		o.progress.UpdateProgress(ctx, int(run.processed.Add(1)))
	}
	if rerr := run.tracker.Record(err == nil); rerr != nil {
		logger.Error().Err(rerr).Msg("recording outcome")
	}
}

func (o *Orchestrator) publishDocument(ctx context.Context, mc *frontmatter.MetadataContext, onSuccess func(*vault.Document)) (dest string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic publishing %s: %v", mc.Document.Path(), r)
		}
	}()

	yaml, err := o.renderer.PublishedYAML(ctx, mc)
	if err != nil {
		return "", err
	}
	body, err := o.renderer.PublishedText(ctx, mc.Document)
	if err != nil {
		return "", err
	}
	dest, err = o.resolver.ResolveDestination(mc.Document)
	if err != nil {
		return "", err
	}

	err = o.writer.Write(ctx, dest, yaml+"\n"+body, func() {
		if onSuccess != nil {
			onSuccess(mc.Document)
		}
	})
	if err != nil {
		return dest, errors.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}

// 🧹 Close drops cached template processors
func (o *Orchestrator) Close(ctx context.Context) error {
	o.cache.Clear()
	zerolog.Ctx(ctx).Debug().Msg("orchestrator closed")
	return nil
}
