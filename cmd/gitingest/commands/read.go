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
	"github.com/spf13/cobra"
	"github.com/walteh/gitingest/cmd/gitingest/opts"
	"github.com/walteh/gitingest/pkg/log"
	"github.com/walteh/gitingest/pkg/status"
	"github.com/walteh/gitingest/pkg/tool"
	"gitlab.com/tozd/go/errors"
)

func NewReadCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		ref         string
		token       string
		force       bool
		maxFileSize int64
	)

	cmd := &cobra.Command{
		Use:   "read <repository> <path>",
		Short: "Print one file of a repository",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req := tool.ReadRequest{
				Repo:     args[0],
				GitRef:   ref,
				FilePath: args[1],
				Token:    token,
			}
			if cmd.Flags().Changed("max-file-size") {
				n := tool.Int(maxFileSize)
				req.MaxFileSize = &n
			}

			blob, root, err := opts.Service.Read(ctx, req)
			if err != nil {
				return errors.Errorf("reading %s from %s: %w", args[1], args[0], err)
			}

			if blob.IsBinary() && !force {
				log.FromContext(ctx).Warningf("%s is a binary file (%s) at %s, use --force to print it",
					args[1], status.FormatBytes(blob.Size), root.ShortCommit())
				return nil
			}

			_, err = cmd.OutOrStdout().Write(blob.Data)
			return err
		},
	}

	cmd.Flags().StringVarP(&ref, "ref", "r", "", "branch, tag or commit")
	cmd.Flags().StringVar(&token, "token", "", "access token for this run, overriding the configured token")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "print binary content")
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "refuse files larger than this many bytes (0 for no limit; default from config)")

	return cmd
}
