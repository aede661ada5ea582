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
	"fmt"

	"github.com/adrg/frontmatter"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// ErrFrontmatter matches every header parse or rewrite failure.
var ErrFrontmatter = errors.Base("frontmatter error")

// ❌ Error describes a header failure for one document
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("frontmatter %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrFrontmatter }

// 🗂️ MetadataContext is the variable set the templates see for one document
type MetadataContext struct {
	Document *vault.Document
	Metadata map[string]any
}

// Key identifies the context by document path and content fingerprint.
func (mc *MetadataContext) Key() string {
	fp, _ := mc.Metadata[FieldFingerprint].(string)
	return mc.Document.Path() + "#" + fp
}

const delimiter = "---"

var yamlFormat = frontmatter.NewFormat(delimiter, delimiter, yaml.Unmarshal)

// 📖 Parse splits content into header fields and body.
// Content without a header yields an empty field map and the full body.
func Parse(content []byte) (map[string]any, []byte, error) {
	fields := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(content), &fields, yamlFormat)
	if err != nil {
		return nil, nil, errors.Errorf("parsing header: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, body, nil
}

// 📝 Serialize renders fields as YAML with sorted keys, without delimiters.
func Serialize(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		return nil, errors.Errorf("encoding header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("closing header encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// Block renders fields as a delimited header block ending in a newline.
func Block(fields map[string]any) ([]byte, error) {
	raw, err := Serialize(fields)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(raw)+2*len(delimiter)+2)
	out = append(out, delimiter+"\n"...)
	out = append(out, raw...)
	out = append(out, delimiter+"\n"...)
	return out, nil
}

// Join reassembles a document from fields and body.
func Join(fields map[string]any, body []byte) ([]byte, error) {
	block, err := Block(fields)
	if err != nil {
		return nil, err
	}
	return append(block, body...), nil
}

// Clone copies the top level of fields.
func Clone(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
