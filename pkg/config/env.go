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
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	EnvPublishTo  = "NOTEPUB_PUBLISH_TO"
	EnvNoteFolder = "NOTEPUB_NOTE_FOLDER"
)

// 🌱 LoadDotEnv loads dir/.env into the process environment when present.
// Variables already set in the environment win.
func LoadDotEnv(ctx context.Context, dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Errorf("checking %s: %w", path, err)
	}

	if err := godotenv.Load(path); err != nil {
		return errors.Errorf("loading %s: %w", path, err)
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("loaded dotenv")
	return nil
}

// ApplyEnv overrides the path settings from NOTEPUB_* variables.
func (s *Settings) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvPublishTo); ok && v != "" {
		s.PublishToAbFolder = v
	}
	if v, ok := os.LookupEnv(EnvNoteFolder); ok {
		s.NoteFolder = v
	}
	return s.Validate()
}
