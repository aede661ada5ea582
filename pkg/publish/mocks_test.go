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

package publish_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/walteh/notepub/pkg/frontmatter"
	"github.com/walteh/notepub/pkg/vault"
)

type updateFunc func(doc *vault.Document) (*frontmatter.MetadataContext, error)

// 🔧 MockUpdater is a mock implementation of publish.Updater
type MockUpdater struct {
	mock.Mock
}

func (m *MockUpdater) UpdateFrontmatter(ctx context.Context, doc *vault.Document) (*frontmatter.MetadataContext, error) {
	args := m.Called(ctx, doc)
	if fn, ok := args.Get(0).(updateFunc); ok {
		return fn(doc)
	}
	mc, _ := args.Get(0).(*frontmatter.MetadataContext)
	return mc, args.Error(1)
}

// 🔧 MockRenderer is a mock implementation of publish.Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) PublishedYAML(ctx context.Context, mc *frontmatter.MetadataContext) (string, error) {
	args := m.Called(ctx, mc)
	return args.String(0), args.Error(1)
}

func (m *MockRenderer) PublishedText(ctx context.Context, doc *vault.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

// 🔧 MockWriter is a mock implementation of status.Writer
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) Write(ctx context.Context, path string, content string, onSuccess func()) error {
	args := m.Called(ctx, path, content, onSuccess)
	err := args.Error(0)
	if err == nil && onSuccess != nil {
		onSuccess()
	}
	return err
}

func docPath(p string) any {
	return mock.MatchedBy(func(doc *vault.Document) bool { return doc.Path() == p })
}

func mcPath(p string) any {
	return mock.MatchedBy(func(mc *frontmatter.MetadataContext) bool { return mc.Document.Path() == p })
}
