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


package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestUnreadableFolderIsSkipped(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"notes/a.md", "notes/locked/b.md", "notes/open/c.md"} {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}

	store, err := New(root)
	require.NoError(t, err)

	denied := errors.Base("permission denied")
	locked := store.Abs("notes/locked")
	store.readDir = func(name string) ([]os.DirEntry, error) {
		if name == locked {
			return nil, denied
		}
		return os.ReadDir(name)
	}

	folder, ok := store.ByPath("notes").(*Folder)
	require.True(t, ok, "the source folder still loads")

	var paths []string
	for _, child := range folder.Children() {
		paths = append(paths, child.Path())
	}
	assert.Equal(t, []string{"notes/a.md", "notes/open"}, paths)

	open, ok := folder.Children()[1].(*Folder)
	require.True(t, ok)
	require.Len(t, open.Children(), 1)
	assert.Equal(t, "notes/open/c.md", open.Children()[0].Path())

	require.Len(t, folder.Skipped(), 1)
	assert.Equal(t, "notes/locked", folder.Skipped()[0].Path)
	assert.ErrorIs(t, folder.Skipped()[0].Err, denied)
	assert.Empty(t, open.Skipped())
}
