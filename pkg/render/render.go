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

// Package render produces the published form of a document.
package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/notepub/pkg/frontmatter"
	"github.com/walteh/notepub/pkg/template"
	"github.com/walteh/notepub/pkg/text"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
)

// ErrRender matches every header or body rendering failure.
var ErrRender = errors.Base("render error")

// ❌ Error describes a rendering failure for one document
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrRender }

// 🎨 Renderer builds published headers and bodies
type Renderer struct {
	store     *vault.Store
	templates *template.Manager
	replacer  text.TextReplacer
	rules     []text.ReplacementRule
}

// 🏭 New creates a renderer. Headers go through the shared template cache.
func New(store *vault.Store, templates *template.Manager, replacer text.TextReplacer, rules []text.ReplacementRule) *Renderer {
	return &Renderer{
		store:     store,
		templates: templates,
		replacer:  replacer,
		rules:     rules,
	}
}

// PublishedYAML renders the output header block for mc.
func (r *Renderer) PublishedYAML(ctx context.Context, mc *frontmatter.MetadataContext) (string, error) {
	path := mc.Document.Path()

	p, err := r.templates.GetOrCreate(mc)
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}

	header, err := p.Header()
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}

	block, err := frontmatter.Block(header)
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}

	zerolog.Ctx(ctx).Trace().Str("document", path).Int("fields", len(header)).Msg("rendered header")
	return string(block), nil
}

// PublishedText renders the body of doc without its header.
func (r *Renderer) PublishedText(ctx context.Context, doc *vault.Document) (string, error) {
	content, err := r.store.ReadFile(ctx, doc)
	if err != nil {
		return "", &Error{Path: doc.Path(), Err: err}
	}

	_, body, err := frontmatter.Parse(content)
	if err != nil {
		return "", &Error{Path: doc.Path(), Err: err}
	}

	result, err := r.replacer.ReplaceText(ctx, doc.Path(), bytes.NewReader(body), r.rules)
	if err != nil {
		return "", &Error{Path: doc.Path(), Err: err}
	}

	return string(result.ModifiedContent), nil
}
