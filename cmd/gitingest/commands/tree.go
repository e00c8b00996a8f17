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
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/gitingest/cmd/gitingest/opts"
	"gitlab.com/tozd/go/errors"
)

func NewTreeCmd(opts *opts.RootOpts) *cobra.Command {
	var repo repoFlags

	cmd := &cobra.Command{
		Use:   "tree <repository>",
		Short: "Show the files of a repository that pass the filters",
		Long: `Tree walks the repository and prints the paths that would be ingested,
without fetching any file content.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			res, err := opts.Service.Tree(ctx, repo.request(args[0]))
			if err != nil {
				return errors.Errorf("listing %s: %w", args[0], err)
			}

			if _, err := io.WriteString(cmd.OutOrStdout(), res.Tree()); err != nil {
				return errors.Errorf("writing tree: %w", err)
			}
			return report(ctx, opts, cmd.ErrOrStderr(), "listing", res)
		},
	}

	repo.register(cmd)

	return cmd
}
