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
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/notepub/cmd/notepub/opts"
	"github.com/walteh/notepub/pkg/watch"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates a new watch command
func NewWatchCmd(opts *opts.RootOpts) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Republish notes as they change",
		Long: `Watch follows the source folder and republishes a note shortly after it
is saved. Changes that arrive while a publish is running are skipped.
Stop with Ctrl-C; the files written during the session are listed on exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = zerolog.Ctx(ctx).With().Str("command", "watch").Logger().WithContext(ctx)

			if !opts.Orchestrator.ValidatePath(ctx) {
				return errors.Errorf("destination %s does not exist", opts.Settings.PublishToAbFolder)
			}

			w, err := watch.New(opts.Store, opts.Settings, opts.Orchestrator, debounce)
			if err != nil {
				return errors.Errorf("starting watcher: %w", err)
			}

			zerolog.Ctx(ctx).Debug().Str("settings", opts.Settings.String()).Msg("watch starting")
			if err := w.Run(ctx); err != nil {
				return errors.Errorf("watching: %w", err)
			}

			return opts.PrintFiles(ctx, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a changed note is republished")

	return cmd
}
