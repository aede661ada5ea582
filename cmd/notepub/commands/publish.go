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

// NewPublishCmd creates a new publish command
func NewPublishCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <file>",
		Short: "Publish one note",
		Long: `Publish refreshes the header of one note and writes the published copy.
It will:
1. Check that the destination folder exists
2. Check that the note is inside the source folder
3. Update title, uid, created, updated and fingerprint in the note
4. Render the published header and body into the destination folder`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "publish").Logger().WithContext(cmd.Context())

			if err := opts.Store.SetActive(args[0]); err != nil {
				return errors.Errorf("selecting %s: %w", args[0], err)
			}

			run, err := opts.Orchestrator.PublishCurrent(ctx)
			if err != nil {
				return errors.Errorf("publishing %s: %w", args[0], err)
			}

			return opts.Report(ctx, cmd.OutOrStdout(), run)
		},
	}

	return cmd
}
