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

package frontmatter

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/vault"
)

const dateLayout = "2006-01-02"

// 💾 Writer persists a refreshed source document
type Writer interface {
	WriteFileAtomic(ctx context.Context, path string, content []byte) error
}

// 🔄 Updater refreshes the derived header fields of source documents
type Updater struct {
	store    *vault.Store
	writer   Writer
	settings *config.Settings
	now      func() time.Time
}

// Option configures an Updater.
type Option func(*Updater)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(u *Updater) { u.now = now }
}

// 🏭 NewUpdater creates an updater that reads from store and persists through writer
func NewUpdater(store *vault.Store, writer Writer, settings *config.Settings, opts ...Option) *Updater {
	u := &Updater{
		store:    store,
		writer:   writer,
		settings: settings,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UpdateFrontmatter brings doc's header up to date and returns the metadata
// the templates will see. The file is rewritten only when the header changed.
func (u *Updater) UpdateFrontmatter(ctx context.Context, doc *vault.Document) (*MetadataContext, error) {
	logger := zerolog.Ctx(ctx).With().Str("document", doc.Path()).Logger()

	content, err := u.store.ReadFile(ctx, doc)
	if err != nil {
		return nil, &Error{Path: doc.Path(), Err: err}
	}

	fields, body, err := Parse(content)
	if err != nil {
		return nil, &Error{Path: doc.Path(), Err: err}
	}

	u.ensureFields(doc, fields, body)

	fp, err := Fingerprint(fields, body)
	if err != nil {
		return nil, &Error{Path: doc.Path(), Err: err}
	}
	if current, _ := fields[FieldFingerprint].(string); current != fp {
		fields[FieldFingerprint] = fp
		fields[FieldUpdated] = u.now().Format(dateLayout)
	}

	out, err := Join(fields, body)
	if err != nil {
		return nil, &Error{Path: doc.Path(), Err: err}
	}

	if !bytes.Equal(out, content) {
		if err := u.writer.WriteFileAtomic(ctx, u.store.Abs(doc.Path()), out); err != nil {
			return nil, &Error{Path: doc.Path(), Err: err}
		}
		logger.Debug().Str("fingerprint", fp).Msg("header refreshed")
	} else {
		logger.Trace().Msg("header already current")
	}

	return &MetadataContext{Document: doc, Metadata: Clone(fields)}, nil
}

func (u *Updater) ensureFields(doc *vault.Document, fields map[string]any, body []byte) {
	if isBlank(fields[FieldTitle]) {
		title := FirstHeading(body)
		if title == "" {
			title = doc.Name()
		}
		fields[FieldTitle] = title
	}

	if isBlank(fields[FieldCreated]) {
		created := doc.ModTime()
		if created.IsZero() {
			created = u.now()
		}
		fields[FieldCreated] = created.Format(dateLayout)
	}

	if u.settings.UIDEnabled() && isBlank(fields[FieldUID]) {
		fields[FieldUID] = uuid.NewString()
	}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	return strings.TrimSpace(fmt.Sprint(v)) == ""
}
