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

// Package pathres maps vault documents onto the publish destination.
package pathres

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goliatone/go-slug"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/unicode/norm"
)

// ErrOutsideSourceRoot is returned when a document cannot be mapped.
var ErrOutsideSourceRoot = errors.Base("document is outside the source root")

// 🧭 Resolver answers path questions from the current settings
type Resolver struct {
	settings *config.Settings
}

// 🏭 New creates a resolver bound to settings
func New(settings *config.Settings) *Resolver {
	return &Resolver{settings: settings}
}

// ✅ ValidateRoot reports whether root exists and is a directory
func ValidateRoot(root string) bool {
	if root == "" {
		return false
	}
	info, err := os.Stat(root)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ValidateRoot checks the configured destination root.
func (r *Resolver) ValidateRoot() bool {
	return ValidateRoot(r.settings.PublishToAbFolder)
}

// SourcePattern is the doublestar pattern a document must match to be published.
func (r *Resolver) SourcePattern() string {
	return SourcePattern(r.settings.NoteFolder, r.settings.Extension)
}

// SourcePattern builds the glob for documents with ext below folder.
func SourcePattern(folder, ext string) string {
	folder = config.NormalizeFolder(folder)
	glob := "**/*" + escapeMeta(ext)
	if folder == "" {
		return glob
	}
	return escapeMeta(folder) + "/" + glob
}

// escapeMeta backslash-escapes the doublestar metacharacters in s so it
// matches literally.
func escapeMeta(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// 🔍 MatchesSourceScope reports whether doc lives under the source root with
// the document extension, and is not ignored.
func (r *Resolver) MatchesSourceScope(doc *vault.Document) bool {
	return MatchesSourceScope(doc, r.SourcePattern()) && !r.Ignored(doc)
}

// MatchesSourceScope reports whether doc's path matches the source pattern.
func MatchesSourceScope(doc *vault.Document, sourceRootPattern string) bool {
	if doc == nil {
		return false
	}
	matched, err := doublestar.Match(sourceRootPattern, doc.Path())
	if err != nil {
		return false
	}
	return matched
}

// Ignored reports whether doc matches one of the ignore patterns.
func (r *Resolver) Ignored(doc *vault.Document) bool {
	for _, pattern := range r.settings.IgnorePatterns {
		if matched, _ := doublestar.Match(pattern, doc.Path()); matched {
			return true
		}
	}
	return false
}

// 🎯 ResolveDestination maps doc to an absolute path below the destination root.
//
// The path below the source root is kept as is, so distinct documents map to
// distinct destinations unless slug normalization folds two names together.
func (r *Resolver) ResolveDestination(doc *vault.Document) (string, error) {
	root := r.settings.PublishToAbFolder
	if root == "" {
		return "", errors.Errorf("%w: destination root is not configured", config.ErrInvalidPath)
	}

	rel := doc.Path()
	if folder := config.NormalizeFolder(r.settings.NoteFolder); folder != "" {
		trimmed, ok := strings.CutPrefix(rel, folder+"/")
		if !ok {
			return "", errors.Errorf("%w: %s not under %s", ErrOutsideSourceRoot, doc.Path(), folder)
		}
		rel = trimmed
	}

	segments := strings.Split(rel, "/")
	for i, seg := range segments {
		seg = norm.NFC.String(seg)
		if r.settings.SlugifyPaths {
			var err error
			if seg, err = slugSegment(seg, i == len(segments)-1); err != nil {
				return "", errors.Errorf("slugifying %s: %w", doc.Path(), err)
			}
		}
		segments[i] = seg
	}

	return filepath.Join(root, filepath.FromSlash(path.Join(segments...))), nil
}

func slugSegment(seg string, isFile bool) (string, error) {
	ext := ""
	if isFile {
		ext = path.Ext(seg)
		seg = strings.TrimSuffix(seg, ext)
	}
	s, err := slug.Normalize(seg)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", errors.Errorf("segment %q has no slug form", seg)
	}
	return s + strings.ToLower(ext), nil
}
