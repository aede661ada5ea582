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

package template_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/frontmatter"
	"github.com/walteh/notepub/pkg/template"
	"github.com/walteh/notepub/pkg/vault"
)

func metadataContext(path string, meta map[string]any) *frontmatter.MetadataContext {
	return &frontmatter.MetadataContext{
		Document: vault.NewDocument(path, time.Time{}),
		Metadata: meta,
	}
}

func TestProcessorHeader(t *testing.T) {
	tests := []struct {
		name      string
		templates map[string]string
		drop      []string
		meta      map[string]any
		want      map[string]any
		wantErr   string
	}{
		{
			name: "metadata_passes_through",
			meta: map[string]any{"title": "Hello", "tags": []any{"a"}},
			want: map[string]any{"title": "Hello", "tags": []any{"a"}},
		},
		{
			name: "templates_override_and_add",
			templates: map[string]string{
				"slug":   "{{ slug .meta.title }}",
				"title":  "{{ upper .meta.title }}",
				"source": "{{ .document.path }}",
			},
			meta: map[string]any{"title": "Hello World"},
			want: map[string]any{"title": "HELLO WORLD", "slug": "hello-world", "source": "notes/a.md"},
		},
		{
			name:      "join_and_default",
			templates: map[string]string{"keywords": `{{ join ", " .meta.tags }}`, "layout": `{{ index .meta "layout" | default "post" }}`},
			meta:      map[string]any{"tags": []any{"go", "notes"}},
			want:      map[string]any{"tags": []any{"go", "notes"}, "keywords": "go, notes", "layout": "post"},
		},
		{
			name: "drop_fields",
			drop: []string{"uid", "fingerprint"},
			meta: map[string]any{"title": "T", "uid": "x", "fingerprint": "y"},
			want: map[string]any{"title": "T"},
		},
		{
			name:      "missing_key_fails",
			templates: map[string]string{"author": "{{ .meta.author }}"},
			meta:      map[string]any{"title": "T"},
			wantErr:   `rendering template "author"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := config.Default()
			settings.Frontmatter = tt.templates
			settings.DropFields = tt.drop

			p, err := template.NewProcessor(metadataContext("notes/a.md", tt.meta), settings)
			require.NoError(t, err)

			got, err := p.Header()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessorHeaderDoesNotMutateMetadata(t *testing.T) {
	meta := map[string]any{"title": "T", "uid": "x"}
	settings := config.Default()
	settings.Frontmatter = map[string]string{"title": "changed"}
	settings.DropFields = []string{"uid"}

	p, err := template.NewProcessor(metadataContext("a.md", meta), settings)
	require.NoError(t, err)
	_, err = p.Header()
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"title": "T", "uid": "x"}, meta)
}

func TestNewProcessorRejectsBadTemplate(t *testing.T) {
	settings := config.Default()
	settings.Frontmatter = map[string]string{"bad": "{{ .meta.title "}

	_, err := template.NewProcessor(metadataContext("a.md", nil), settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `parsing template "bad"`)
}

func countingFactory(settings *config.Settings) (template.Factory, func() int) {
	var mu sync.Mutex
	calls := 0
	return func(mc *frontmatter.MetadataContext) (*template.Processor, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return template.NewProcessor(mc, settings)
		}, func() int {
			mu.Lock()
			defer mu.Unlock()
			return calls
		}
}

func TestManagerGetOrCreate(t *testing.T) {
	factory, calls := countingFactory(config.Default())
	m := template.NewManager(factory)

	a := metadataContext("a.md", map[string]any{"fingerprint": "1"})
	b := metadataContext("b.md", map[string]any{"fingerprint": "2"})

	pa, err := m.GetOrCreate(a)
	require.NoError(t, err)
	pa2, err := m.GetOrCreate(a)
	require.NoError(t, err)
	pb, err := m.GetOrCreate(b)
	require.NoError(t, err)

	assert.Same(t, pa, pa2, "hit returns the cached processor")
	assert.NotSame(t, pa, pb, "distinct documents never share a processor")
	assert.Same(t, a, pa.Context())
	assert.Equal(t, 2, calls())
	assert.Equal(t, 2, m.Len())
}

func TestManagerClear(t *testing.T) {
	factory, calls := countingFactory(config.Default())
	m := template.NewManager(factory)

	m.Clear()
	assert.Equal(t, 0, m.Len(), "clearing an empty cache is safe")

	mc := metadataContext("a.md", nil)
	first, err := m.GetOrCreate(mc)
	require.NoError(t, err)

	m.Clear()
	assert.Equal(t, 0, m.Len())

	second, err := m.GetOrCreate(mc)
	require.NoError(t, err)
	assert.NotSame(t, first, second, "a cleared cache builds fresh processors")
	assert.Equal(t, 2, calls())
	assert.Equal(t, 2, m.Constructed())
}

func TestManagerConcurrentAccess(t *testing.T) {
	factory, calls := countingFactory(config.Default())
	m := template.NewManager(factory)

	const docs = 10
	contexts := make([]*frontmatter.MetadataContext, docs)
	for i := range contexts {
		contexts[i] = metadataContext(fmt.Sprintf("n%d.md", i), nil)
	}

	var wg sync.WaitGroup
	results := make([][]*template.Processor, docs)
	for i := range docs {
		results[i] = make([]*template.Processor, 20)
		for j := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := m.GetOrCreate(contexts[i])
				assert.NoError(t, err)
				results[i][j] = p
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, docs, calls(), "one construction per document")
	for i := range docs {
		for j := range 20 {
			assert.Same(t, results[i][0], results[i][j])
		}
	}
}

func TestManagerFactoryError(t *testing.T) {
	m := template.NewManager(func(mc *frontmatter.MetadataContext) (*template.Processor, error) {
		return nil, fmt.Errorf("boom")
	})

	_, err := m.GetOrCreate(metadataContext("a.md", nil))
	require.Error(t, err)
	assert.Equal(t, 0, m.Len(), "failed construction leaves no entry")
}
