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

package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/notepub/cmd/notepub/opts"
	"gitlab.com/tozd/go/errors"
)

// NewPublishAllCmd creates a new publish-all command
func NewPublishAllCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish-all",
		Short: "Publish every note in the source folder",
		Long: `Publish-all walks the source folder and publishes every note in it.
Notes whose header cannot be refreshed are skipped. The remaining notes are
published concurrently and a failure of one never stops the others.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "publish-all").Logger().WithContext(cmd.Context())

			run, err := opts.Orchestrator.PublishAll(ctx)
			if err != nil {
				return errors.Errorf("publishing all notes: %w", err)
			}

			return opts.Report(ctx, cmd.OutOrStdout(), run)
		},
	}

	return cmd
}
