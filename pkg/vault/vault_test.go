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

package vault_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/notepub/pkg/vault"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
}

func TestByPath(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"notes/a.md":         "a",
		"notes/sub/b.md":     "b",
		"notes/image.png":    "png",
		".obsidian/app.json": "{}",
	})

	store, err := vault.New(root)
	require.NoError(t, err)

	t.Run("folder_is_loaded_with_children", func(t *testing.T) {
		folder, ok := store.ByPath("notes").(*vault.Folder)
		require.True(t, ok, "notes should be a folder")
		assert.Equal(t, "notes", folder.Path())

		var names []string
		for _, child := range folder.Children() {
			names = append(names, child.Path())
		}
		assert.Equal(t, []string{"notes/a.md", "notes/image.png", "notes/sub"}, names)
	})

	t.Run("document_has_display_name", func(t *testing.T) {
		doc, ok := store.ByPath("notes/sub/b.md").(*vault.Document)
		require.True(t, ok)
		assert.Equal(t, "b", doc.Name())
		assert.Equal(t, ".md", doc.Ext())
	})

	t.Run("missing_path_is_nil", func(t *testing.T) {
		assert.Nil(t, store.ByPath("nope"))
	})

	t.Run("escaping_path_is_nil", func(t *testing.T) {
		assert.Nil(t, store.ByPath("../outside.md"))
	})

	t.Run("root_skips_dot_entries", func(t *testing.T) {
		folder, ok := store.ByPath("").(*vault.Folder)
		require.True(t, ok)
		for _, child := range folder.Children() {
			assert.NotEqual(t, ".obsidian", child.Name())
		}
	})
}

func TestActiveDocument(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"notes/a.md": "hello"})

	store, err := vault.New(root)
	require.NoError(t, err)

	assert.Nil(t, store.ActiveDocument(), "no active document by default")

	require.NoError(t, store.SetActive(filepath.Join(root, "notes", "a.md")))
	doc := store.ActiveDocument()
	require.NotNil(t, doc)
	assert.Equal(t, "notes/a.md", doc.Path())

	content, err := store.ReadFile(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	require.NoError(t, store.SetActive("notes/gone.md"))
	assert.Nil(t, store.ActiveDocument(), "missing active document resolves to nil")

	require.Error(t, store.SetActive("../elsewhere.md"))
}
