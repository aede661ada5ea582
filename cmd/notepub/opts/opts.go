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

package opts

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/metrics"
	"github.com/walteh/notepub/pkg/publish"
	"github.com/walteh/notepub/pkg/status"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Settings     *config.Settings
	Store        *vault.Store
	Published    *status.Manager
	Orchestrator *publish.Orchestrator

	// Metrics is nil unless a metrics file was requested
	Metrics     *metrics.PrometheusRecorder
	MetricsFile string
}

// 📋 Report waits for run, prints the published-file table and summary to w,
// and fails when any document failed.
func (o *RootOpts) Report(ctx context.Context, w io.Writer, run *publish.Run) error {
	res, err := run.Wait(ctx)
	if err != nil {
		return errors.Errorf("waiting for run: %w", err)
	}

	if err := o.PrintFiles(ctx, w); err != nil {
		return err
	}

	formatter := status.NewDefaultFileFormatter()
	summary := formatter.FormatSummary(res.Successed, res.Failed)
	if res.AllSucceeded() {
		fmt.Fprintln(w, color.GreenString(summary))
		return nil
	}
	fmt.Fprintln(w, color.YellowString(summary))
	return errors.Errorf("%d of %d documents failed to publish", res.Failed, res.Total)
}

// PrintFiles writes one line per file written since the last reset, with
// paths relative to the destination root.
func (o *RootOpts) PrintFiles(ctx context.Context, w io.Writer) error {
	files, err := o.Published.ListFiles(ctx)
	if err != nil {
		return errors.Errorf("listing published files: %w", err)
	}
	for i, f := range files {
		if rel, err := filepath.Rel(o.Settings.PublishToAbFolder, f.Path); err == nil {
			files[i].Path = filepath.ToSlash(rel)
		}
	}
	if err := status.WriteTable(w, files); err != nil {
		return errors.Errorf("writing file table: %w", err)
	}
	return nil
}

// 🧹 Close tears the orchestrator down and exports metrics when requested
func (o *RootOpts) Close(ctx context.Context) error {
	if o.Orchestrator != nil {
		if err := o.Orchestrator.Close(ctx); err != nil {
			return errors.Errorf("closing orchestrator: %w", err)
		}
	}

	if o.Metrics != nil && o.MetricsFile != "" {
		if err := o.Metrics.WriteTextfile(o.MetricsFile); err != nil {
			return errors.Errorf("writing metrics: %w", err)
		}
		zerolog.Ctx(ctx).Debug().Str("path", o.MetricsFile).Msg("wrote metrics textfile")
	}
	return nil
}
