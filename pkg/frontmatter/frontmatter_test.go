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

package frontmatter_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/frontmatter"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes []string
	err    error
}

func (w *recordingWriter) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, path)
	return os.WriteFile(path, content, 0644)
}

func testCtx(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.TraceLevel)
	return logger.WithContext(context.Background())
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)
}

func setup(t *testing.T, files map[string]string) (*vault.Store, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	store, err := vault.New(dir)
	require.NoError(t, err)
	return store, dir
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantFields map[string]any
		wantBody   string
		wantErr    bool
	}{
		{
			name:       "with_header",
			content:    "---\ntitle: Hello\ntags:\n  - a\n---\nbody text\n",
			wantFields: map[string]any{"title": "Hello", "tags": []any{"a"}},
			wantBody:   "body text\n",
		},
		{
			name:       "nested_maps_use_string_keys",
			content:    "---\nextra:\n  author: me\n---\nx\n",
			wantFields: map[string]any{"extra": map[string]any{"author": "me"}},
			wantBody:   "x\n",
		},
		{
			name:       "without_header",
			content:    "# Heading\n\ntext\n",
			wantFields: map[string]any{},
			wantBody:   "# Heading\n\ntext\n",
		},
		{
			name:    "malformed_header",
			content: "---\ntitle: [unclosed\n---\nbody\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, body, err := frontmatter.Parse([]byte(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFields, fields)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestBlockSortsKeys(t *testing.T) {
	block, err := frontmatter.Block(map[string]any{"zeta": 1, "alpha": "a", "mid": true})
	require.NoError(t, err)
	assert.Equal(t, "---\nalpha: a\nmid: true\nzeta: 1\n---\n", string(block))

	empty, err := frontmatter.Block(nil)
	require.NoError(t, err)
	assert.Equal(t, "---\n---\n", string(empty))
}

func TestJoinRoundTrip(t *testing.T) {
	fields := map[string]any{"title": "T", "list": []any{"x", "y"}}
	out, err := frontmatter.Join(fields, []byte("body\n"))
	require.NoError(t, err)

	gotFields, gotBody, err := frontmatter.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, fields, gotFields)
	assert.Equal(t, "body\n", string(gotBody))
}

func TestFirstHeading(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "atx_heading", body: "intro\n\n# The *Title*\n\n## Sub\n", want: "The Title"},
		{name: "skips_level_two", body: "## Sub\n\n# Real\n", want: "Real"},
		{name: "setext_heading", body: "Setext Title\n============\n", want: "Setext Title"},
		{name: "no_heading", body: "just text\n", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, frontmatter.FirstHeading([]byte(tt.body)))
		})
	}
}

func TestFingerprintIgnoresVolatileFields(t *testing.T) {
	body := []byte("same body\n")
	base := map[string]any{"title": "T"}

	fp1, err := frontmatter.Fingerprint(base, body)
	require.NoError(t, err)

	withVolatile := frontmatter.Clone(base)
	withVolatile[frontmatter.FieldUID] = "abc"
	withVolatile[frontmatter.FieldUpdated] = "2020-01-01"
	withVolatile[frontmatter.FieldFingerprint] = "old"
	fp2, err := frontmatter.Fingerprint(withVolatile, body)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	fp3, err := frontmatter.Fingerprint(base, []byte("other body\n"))
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

func TestUpdateFrontmatterFillsMissingFields(t *testing.T) {
	ctx := testCtx(t)
	store, dir := setup(t, map[string]string{
		"notes/first.md":  "# From Heading\n\nbody\n",
		"notes/second.md": "no heading here\n",
		"notes/third.md":  "---\ntitle: Kept\ncreated: \"2001-02-03\"\n---\n# Other\n",
	})
	w := &recordingWriter{}
	u := frontmatter.NewUpdater(store, w, config.Default(), frontmatter.WithClock(fixedClock))

	tests := []struct {
		path        string
		wantTitle   string
		wantCreated string
	}{
		{path: "notes/first.md", wantTitle: "From Heading"},
		{path: "notes/second.md", wantTitle: "second"},
		{path: "notes/third.md", wantTitle: "Kept", wantCreated: "2001-02-03"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			doc := store.ByPath(tt.path).(*vault.Document)

			mc, err := u.UpdateFrontmatter(ctx, doc)
			require.NoError(t, err)
			assert.Same(t, doc, mc.Document)
			assert.Equal(t, tt.wantTitle, mc.Metadata[frontmatter.FieldTitle])
			assert.NotEmpty(t, mc.Metadata[frontmatter.FieldUID])
			assert.NotEmpty(t, mc.Metadata[frontmatter.FieldFingerprint])
			assert.Equal(t, "2025-03-14", mc.Metadata[frontmatter.FieldUpdated])
			if tt.wantCreated != "" {
				assert.Equal(t, tt.wantCreated, mc.Metadata[frontmatter.FieldCreated])
			} else {
				assert.Equal(t, doc.ModTime().Format("2006-01-02"), mc.Metadata[frontmatter.FieldCreated])
			}

			content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(tt.path)))
			require.NoError(t, err)
			persisted, _, err := frontmatter.Parse(content)
			require.NoError(t, err)
			assert.Equal(t, mc.Metadata, persisted, "returned metadata matches the persisted header")
		})
	}

	assert.Len(t, w.writes, 3)
}

func TestUpdateFrontmatterIsStable(t *testing.T) {
	ctx := testCtx(t)
	store, dir := setup(t, map[string]string{"a.md": "# A\n\ntext\n"})
	w := &recordingWriter{}
	u := frontmatter.NewUpdater(store, w, config.Default(), frontmatter.WithClock(fixedClock))

	doc := store.ByPath("a.md").(*vault.Document)
	first, err := u.UpdateFrontmatter(ctx, doc)
	require.NoError(t, err)
	require.Len(t, w.writes, 1)

	before, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)

	second, err := u.UpdateFrontmatter(ctx, store.ByPath("a.md").(*vault.Document))
	require.NoError(t, err)
	assert.Len(t, w.writes, 1, "unchanged document is not rewritten")
	assert.Equal(t, first.Metadata, second.Metadata)

	after, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestUpdateFrontmatterBodyChangeBumpsUpdated(t *testing.T) {
	ctx := testCtx(t)
	store, dir := setup(t, map[string]string{
		"a.md": "---\ntitle: A\nuid: fixed\ncreated: \"2020-01-01\"\nupdated: \"2020-01-01\"\nfingerprint: stale\n---\nnew body\n",
	})
	u := frontmatter.NewUpdater(store, &recordingWriter{}, config.Default(), frontmatter.WithClock(fixedClock))

	mc, err := u.UpdateFrontmatter(ctx, store.ByPath("a.md").(*vault.Document))
	require.NoError(t, err)
	assert.Equal(t, "fixed", mc.Metadata[frontmatter.FieldUID], "existing uid is preserved")
	assert.Equal(t, "2025-03-14", mc.Metadata[frontmatter.FieldUpdated])
	assert.NotEqual(t, "stale", mc.Metadata[frontmatter.FieldFingerprint])

	content, err := os.ReadFile(filepath.Join(dir, "a.md"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "new body\n")
}

func TestUpdateFrontmatterWithoutUID(t *testing.T) {
	ctx := testCtx(t)
	store, _ := setup(t, map[string]string{"a.md": "text\n"})
	settings := config.Default()
	disabled := false
	settings.EnsureUID = &disabled

	u := frontmatter.NewUpdater(store, &recordingWriter{}, settings, frontmatter.WithClock(fixedClock))
	mc, err := u.UpdateFrontmatter(ctx, store.ByPath("a.md").(*vault.Document))
	require.NoError(t, err)
	assert.NotContains(t, mc.Metadata, frontmatter.FieldUID)
}

func TestUpdateFrontmatterErrors(t *testing.T) {
	ctx := testCtx(t)

	t.Run("malformed_header", func(t *testing.T) {
		store, _ := setup(t, map[string]string{"bad.md": "---\nkey: [oops\n---\nbody\n"})
		u := frontmatter.NewUpdater(store, &recordingWriter{}, config.Default())

		_, err := u.UpdateFrontmatter(ctx, store.ByPath("bad.md").(*vault.Document))
		require.Error(t, err)
		assert.True(t, errors.Is(err, frontmatter.ErrFrontmatter))

		var fe *frontmatter.Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "bad.md", fe.Path)
	})

	t.Run("write_failure", func(t *testing.T) {
		store, _ := setup(t, map[string]string{"a.md": "text\n"})
		u := frontmatter.NewUpdater(store, &recordingWriter{err: errors.New("disk full")}, config.Default())

		_, err := u.UpdateFrontmatter(ctx, store.ByPath("a.md").(*vault.Document))
		require.Error(t, err)
		assert.True(t, errors.Is(err, frontmatter.ErrFrontmatter))
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("missing_file", func(t *testing.T) {
		store, _ := setup(t, nil)
		u := frontmatter.NewUpdater(store, &recordingWriter{}, config.Default())

		_, err := u.UpdateFrontmatter(ctx, vault.NewDocument("gone.md", time.Time{}))
		require.Error(t, err)
		assert.True(t, errors.Is(err, frontmatter.ErrFrontmatter))
	})
}
