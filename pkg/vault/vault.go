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
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🌳 Node is anything addressable inside the vault
type Node interface {
	// Path is the vault-relative, slash separated path
	Path() string
	// Name is the display name
	Name() string
}

// 📄 Document is a leaf file in the vault
type Document struct {
	path    string
	name    string
	ext     string
	modTime time.Time
}

func (d *Document) Path() string       { return d.path }
func (d *Document) Name() string       { return d.name }
func (d *Document) Ext() string        { return d.ext }
func (d *Document) ModTime() time.Time { return d.modTime }

// NewDocument builds a document handle without touching the filesystem.
func NewDocument(p string, modTime time.Time) *Document {
	p = path.Clean(filepath.ToSlash(p))
	ext := path.Ext(p)
	return &Document{
		path:    p,
		name:    strings.TrimSuffix(path.Base(p), ext),
		ext:     ext,
		modTime: modTime,
	}
}

// 📁 Folder contains documents and sub-folders
type Folder struct {
	path     string
	name     string
	children []Node
	skipped  []Skipped
}

// Skipped is a child entry that could not be loaded.
type Skipped struct {
	Path string
	Err  error
}

func (f *Folder) Path() string     { return f.path }
func (f *Folder) Name() string     { return f.name }
func (f *Folder) Children() []Node { return f.children }

// Skipped lists the direct children of f that could not be read. Their
// siblings are still loaded.
func (f *Folder) Skipped() []Skipped { return f.skipped }

// 🗄️ Store is a read-only view over a vault directory
type Store struct {
	root string

	mu     sync.RWMutex
	active string

	readDir func(name string) ([]os.DirEntry, error)
}

// 🏭 New opens the vault rooted at dir
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("resolving vault root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Errorf("opening vault: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("vault root %s is not a directory", abs)
	}

	return &Store{root: abs, readDir: os.ReadDir}, nil
}

// Root returns the absolute vault directory.
func (s *Store) Root() string {
	return s.root
}

// Abs maps a vault-relative path to an absolute filesystem path.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// 🧭 Rel normalizes an absolute or relative path into a vault-relative one
func (s *Store) Rel(p string) (string, error) {
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(s.root, p)
		if err != nil {
			return "", errors.Errorf("relativizing %s: %w", p, err)
		}
		p = r
	}

	p = path.Clean(filepath.ToSlash(p))
	if p == "." || p == "/" {
		return "", nil
	}
	p = strings.TrimPrefix(p, "/")
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", errors.Errorf("path %s is outside the vault", p)
	}
	return p, nil
}

// 🎯 SetActive marks the document the single-document commands operate on
func (s *Store) SetActive(p string) error {
	rel, err := s.Rel(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = rel
	return nil
}

// ActiveDocument returns the active document, or nil when none is set or it
// no longer exists.
func (s *Store) ActiveDocument() *Document {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()

	if active == "" {
		return nil
	}
	doc, _ := s.ByPath(active).(*Document)
	return doc
}

// 🔍 ByPath returns the node at p, or nil when nothing exists there.
// Folders are returned fully loaded.
func (s *Store) ByPath(p string) Node {
	rel, err := s.Rel(p)
	if err != nil {
		return nil
	}

	info, err := os.Stat(s.Abs(rel))
	if err != nil {
		return nil
	}

	if !info.IsDir() {
		return NewDocument(rel, info.ModTime())
	}

	folder, err := s.loadFolder(rel)
	if err != nil {
		return nil
	}
	return folder
}

func (s *Store) loadFolder(rel string) (*Folder, error) {
	entries, err := s.readDir(s.Abs(rel))
	if err != nil {
		return nil, errors.Errorf("reading folder %s: %w", rel, err)
	}

	name := path.Base(rel)
	if rel == "" {
		name = filepath.Base(s.root)
	}
	folder := &Folder{path: rel, name: name}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		// dot entries hold vault tooling (.obsidian, .git, settings)
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		child := path.Join(rel, entry.Name())
		if entry.IsDir() {
			sub, err := s.loadFolder(child)
			if err != nil {
				folder.skipped = append(folder.skipped, Skipped{Path: child, Err: err})
				continue
			}
			folder.children = append(folder.children, sub)
			continue
		}

		info, err := entry.Info()
		if err != nil {
			folder.skipped = append(folder.skipped, Skipped{Path: child, Err: errors.Errorf("stat %s: %w", child, err)})
			continue
		}
		folder.children = append(folder.children, NewDocument(child, info.ModTime()))
	}

	return folder, nil
}

// 📖 ReadFile returns the raw content of a document
func (s *Store) ReadFile(ctx context.Context, doc *Document) ([]byte, error) {
	zerolog.Ctx(ctx).Trace().Str("path", doc.Path()).Msg("reading document")

	content, err := os.ReadFile(s.Abs(doc.Path()))
	if err != nil {
		return nil, errors.Errorf("reading document %s: %w", doc.Path(), err)
	}
	return content, nil
}
