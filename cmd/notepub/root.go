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

package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/notepub/cmd/notepub/commands"
	"github.com/walteh/notepub/cmd/notepub/opts"
	"github.com/walteh/notepub/pkg/config"
	"github.com/walteh/notepub/pkg/frontmatter"
	"github.com/walteh/notepub/pkg/metrics"
	"github.com/walteh/notepub/pkg/notice"
	"github.com/walteh/notepub/pkg/publish"
	"github.com/walteh/notepub/pkg/render"
	"github.com/walteh/notepub/pkg/status"
	"github.com/walteh/notepub/pkg/template"
	"github.com/walteh/notepub/pkg/text"
	"github.com/walteh/notepub/pkg/vault"
	"gitlab.com/tozd/go/errors"
)

const defaultConfigFile = ".notepub.yaml"

type rootFlags struct {
	configFile  string
	vaultDir    string
	metricsFile string
	debug       bool
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", defaultConfigFile, "settings file, relative to the vault unless absolute (.yaml, .yml, .hcl or .json)")
	cmd.PersistentFlags().StringVarP(&flags.vaultDir, "vault", "v", ".", "vault root directory")
	cmd.PersistentFlags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// newRootCmd creates the command tree. The returned options are filled in
// before any subcommand runs and must be closed by the caller.
func newRootCmd(stderr io.Writer) (*cobra.Command, *opts.RootOpts) {
	flags := &rootFlags{}
	ro := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "notepub",
		Short: "Publish markdown notes from a vault into a site folder",
		Long: `notepub keeps the headers of your notes up to date and publishes them
into another folder, rendering configurable header templates and applying
text replacements on the way.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), stderr, flags.debug)
			cmd.SetContext(ctx)
			return newRootOpts(ctx, flags, ro, stderr)
		},
	}

	addRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		commands.NewValidateCmd(ro),
		commands.NewPublishCmd(ro),
		commands.NewPublishAllCmd(ro),
		commands.NewWatchCmd(ro),
		newVersionCmd(),
	)

	return rootCmd, ro
}

// newRootOpts loads the vault and settings and wires the publisher into ro
func newRootOpts(ctx context.Context, flags *rootFlags, ro *opts.RootOpts, stderr io.Writer) error {
	store, err := vault.New(flags.vaultDir)
	if err != nil {
		return errors.Errorf("opening vault: %w", err)
	}

	if err := config.LoadDotEnv(ctx, store.Root()); err != nil {
		return err
	}

	configFile := flags.configFile
	if !filepath.IsAbs(configFile) {
		configFile = store.Abs(configFile)
	}
	settings, err := config.Load(ctx, configFile)
	if err != nil {
		return errors.Errorf("loading settings: %w", err)
	}
	if err := settings.ApplyEnv(); err != nil {
		return errors.Errorf("applying environment: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Stringer("settings", settings).Msg("settings loaded")

	rules := text.RulesFromConfig(settings.Replacements)
	replacer := text.NewSimpleTextReplacer()
	if err := replacer.ValidateRules(rules); err != nil {
		return errors.Errorf("validating replacements: %w", err)
	}

	templates := template.NewManager(template.SettingsFactory(settings))
	published := status.New(settings.PublishToAbFolder)

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if flags.metricsFile != "" {
		ro.Metrics = metrics.NewPrometheusRecorder(nil)
		ro.MetricsFile = flags.metricsFile
		rec = ro.Metrics
	}

	orch, err := publish.New(publish.Options{
		Store:    store,
		Settings: settings,
		Updater:  frontmatter.NewUpdater(store, status.New(store.Root()), settings),
		Renderer: render.New(store, templates, replacer, rules),
		Cache:    templates,
		Writer:   published,
		Notices:  notice.NewConsole(stderr),
		Metrics:  rec,
		Progress: published,
	})
	if err != nil {
		return errors.Errorf("creating orchestrator: %w", err)
	}

	ro.Settings = settings
	ro.Store = store
	ro.Published = published
	ro.Orchestrator = orch
	return nil
}

// setupLogging attaches a console logger to ctx based on flags
func setupLogging(ctx context.Context, w io.Writer, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
