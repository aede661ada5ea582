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

// Package template renders the published header of a document.
package template

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/goliatone/go-slug"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/frontmatter"
	"gitlab.com/tozd/go/errors"
)

// 🧩 Processor holds the compiled header templates for one document
type Processor struct {
	mc        *frontmatter.MetadataContext
	keys      []string
	templates map[string]*template.Template
	drop      map[string]struct{}
}

// 🏭 NewProcessor compiles every configured header template against mc
func NewProcessor(mc *frontmatter.MetadataContext, settings *config.Settings) (*Processor, error) {
	p := &Processor{
		mc:        mc,
		templates: make(map[string]*template.Template, len(settings.Frontmatter)),
		drop:      make(map[string]struct{}, len(settings.DropFields)),
	}

	for key, body := range settings.Frontmatter {
		tpl, err := template.New(key).Funcs(funcs()).Option("missingkey=error").Parse(body)
		if err != nil {
			return nil, errors.Errorf("parsing template %q: %w", key, err)
		}
		p.templates[key] = tpl
		p.keys = append(p.keys, key)
	}
	sort.Strings(p.keys)

	for _, f := range settings.DropFields {
		p.drop[f] = struct{}{}
	}

	return p, nil
}

// Context returns the metadata context the processor was built for.
func (p *Processor) Context() *frontmatter.MetadataContext {
	return p.mc
}

// 📝 Header renders the published header: document metadata overlaid with
// the rendered templates, minus dropped fields.
func (p *Processor) Header() (map[string]any, error) {
	out := frontmatter.Clone(p.mc.Metadata)
	data := p.data()

	for _, key := range p.keys {
		var buf bytes.Buffer
		if err := p.templates[key].Execute(&buf, data); err != nil {
			return nil, errors.Errorf("rendering template %q for %s: %w", key, p.mc.Document.Path(), err)
		}
		out[key] = strings.TrimSpace(buf.String())
	}

	for f := range p.drop {
		delete(out, f)
	}

	return out, nil
}

func (p *Processor) data() map[string]any {
	doc := p.mc.Document
	return map[string]any{
		"meta": p.mc.Metadata,
		"document": map[string]any{
			"path": doc.Path(),
			"name": doc.Name(),
			"ext":  doc.Ext(),
		},
	}
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"slug":  slug.Normalize,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"default": func(def, v any) any {
			if v == nil || fmt.Sprint(v) == "" {
				return def
			}
			return v
		},
		"join": func(sep string, v any) string {
			switch list := v.(type) {
			case []string:
				return strings.Join(list, sep)
			case []any:
				parts := make([]string, len(list))
				for i, item := range list {
					parts[i] = fmt.Sprint(item)
				}
				return strings.Join(parts, sep)
			case nil:
				return ""
			default:
				return fmt.Sprint(v)
			}
		},
	}
}
