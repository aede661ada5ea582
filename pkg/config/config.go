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

package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultExtension   = ".md"
	DefaultConcurrency = 8
)

// ErrInvalidPath marks a destination root that does not exist.
var ErrInvalidPath = errors.Base("invalid path")

// 🔄 Replacement is a text rule applied to published bodies
type Replacement struct {
	From  string   `json:"from" yaml:"from" hcl:"from,attr"`
	To    string   `json:"to" yaml:"to" hcl:"to,optional"`
	Files []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"` // doublestar globs, vault-relative
}

// 📚 Settings is the persisted publisher configuration
type Settings struct {
	// PublishToAbFolder is the absolute destination root
	PublishToAbFolder string `json:"publishToAbFolder" yaml:"publish_to_ab_folder" hcl:"publish_to_ab_folder,optional"`
	// NoteFolder is the vault-relative source root, empty for the whole vault
	NoteFolder string `json:"noteFolder" yaml:"note_folder" hcl:"note_folder,optional"`

	Extension      string            `json:"extension,omitempty" yaml:"extension,omitempty" hcl:"extension,optional"`
	IgnorePatterns []string          `json:"ignorePatterns,omitempty" yaml:"ignore_patterns,omitempty" hcl:"ignore_patterns,optional"`
	Frontmatter    map[string]string `json:"frontmatter,omitempty" yaml:"frontmatter,omitempty" hcl:"frontmatter,optional"`
	DropFields     []string          `json:"dropFields,omitempty" yaml:"drop_fields,omitempty" hcl:"drop_fields,optional"`
	Replacements   []Replacement     `json:"replacements,omitempty" yaml:"replacements,omitempty" hcl:"replacement,block"`
	SlugifyPaths   bool              `json:"slugifyPaths,omitempty" yaml:"slugify_paths,omitempty" hcl:"slugify_paths,optional"`
	Concurrency    int               `json:"concurrency,omitempty" yaml:"concurrency,omitempty" hcl:"concurrency,optional"`
	EnsureUID      *bool             `json:"ensureUid,omitempty" yaml:"ensure_uid,omitempty" hcl:"ensure_uid,optional"`
}

// 🏭 Default returns the settings used when nothing is configured
func Default() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.Extension == "" {
		s.Extension = DefaultExtension
	}
	if s.Concurrency == 0 {
		s.Concurrency = DefaultConcurrency
	}
	if s.EnsureUID == nil {
		enabled := true
		s.EnsureUID = &enabled
	}
	if s.Frontmatter == nil {
		s.Frontmatter = map[string]string{}
	}
}

// UIDEnabled reports whether documents get a generated uid.
func (s *Settings) UIDEnabled() bool {
	return s.EnsureUID == nil || *s.EnsureUID
}

// 🔍 Validate normalizes paths and rejects unusable values
func (s *Settings) Validate() error {
	s.applyDefaults()

	if s.Concurrency < 0 {
		return errors.Errorf("concurrency must be positive, got %d", s.Concurrency)
	}

	if !strings.HasPrefix(s.Extension, ".") {
		s.Extension = "." + s.Extension
	}

	s.NoteFolder = NormalizeFolder(s.NoteFolder)

	if s.PublishToAbFolder != "" {
		abs, err := filepath.Abs(s.PublishToAbFolder)
		if err != nil {
			return errors.Errorf("resolving publish_to_ab_folder: %w", err)
		}
		s.PublishToAbFolder = abs
	}

	for _, pattern := range s.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	for i, r := range s.Replacements {
		if r.From == "" {
			return errors.Errorf("replacement %d: from is required", i)
		}
		for _, glob := range r.Files {
			if !doublestar.ValidatePattern(glob) {
				return errors.Errorf("replacement %d: invalid file glob %q", i, glob)
			}
		}
	}

	return nil
}

// NormalizeFolder turns user input like "./notes/" into "notes".
func NormalizeFolder(folder string) string {
	folder = strings.TrimSpace(filepath.ToSlash(folder))
	if folder == "" {
		return ""
	}
	folder = strings.Trim(path.Clean(folder), "/")
	if folder == "." {
		return ""
	}
	return folder
}

// 📝 String returns a short representation for logs
func (s *Settings) String() string {
	src := s.NoteFolder
	if src == "" {
		src = "<vault>"
	}
	return fmt.Sprintf("%s/**/*%s -> %s", src, s.Extension, s.PublishToAbFolder)
}
