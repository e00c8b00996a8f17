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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gitingest/cmd/gitingest/commands"
	"github.com/walteh/gitingest/cmd/gitingest/opts"
	"github.com/walteh/gitingest/pkg/config"
	"github.com/walteh/gitingest/pkg/log"
	"github.com/walteh/gitingest/pkg/tool"
	"gitlab.com/tozd/go/errors"
)

// configCandidates are tried in order when --config is not given
var configCandidates = []string{".gitingest.yaml", ".gitingest.yml", ".gitingest.json", ".gitingest.hcl"}

type rootFlags struct {
	configFile string
	debug      bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	o := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "gitingest",
		Short: "Turn a repository into a single text digest",
		Long: `gitingest reads a local git repository, a GitHub repository or a GitLab
project and writes one text digest of its files, suitable for a language model
context window.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := setup(cmd.Context(), cmd, flags, o)
			if err != nil {
				return err
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	addRootFlags(cmd, flags)

	cmd.AddCommand(
		commands.NewIngestCmd(o),
		commands.NewTreeCmd(o),
		commands.NewReadCmd(o),
		commands.NewSearchCmd(o),
		commands.NewToolsCmd(o),
		newVersionCmd(),
	)

	return cmd
}

func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default: .gitingest.{yaml,json,hcl} if present)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "print every file and why it was skipped")
}

// setup builds the logger, loads configuration and creates the tool service
func setup(ctx context.Context, cmd *cobra.Command, flags *rootFlags, o *opts.RootOpts) (context.Context, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	level := zerolog.WarnLevel
	if flags.debug {
		level = zerolog.DebugLevel
	}
	ctx = log.NewContext(ctx, log.New(cmd.ErrOrStderr(), level))

	cfg, err := loadConfig(ctx, flags.configFile)
	if err != nil {
		return nil, err
	}
	cfg.ResolveTokens(os.LookupEnv)

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Str("location", cfg.Location()).Msg("configuration loaded")

	o.Config = cfg
	o.Service = tool.NewService(cfg)
	o.Verbose = flags.verbose
	return ctx, nil
}

func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.Load(ctx, path)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	for _, candidate := range configCandidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		cfg, err := config.Load(ctx, candidate)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	return config.Default(), nil
}
