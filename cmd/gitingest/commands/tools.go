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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/walteh/gitingest/cmd/gitingest/opts"
	"gitlab.com/tozd/go/errors"
)

func NewToolsCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools and their input schemas as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(opts.Service.Registry().Descriptors()); err != nil {
				return errors.Errorf("encoding tools: %w", err)
			}
			return nil
		},
	}

	cmd.AddCommand(newToolCallCmd(opts))

	return cmd
}

func newToolCallCmd(opts *opts.RootOpts) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "call <tool> [json-arguments]",
		Short: "Call a tool the way a host process would",
		Long: `Call runs one tool with JSON arguments given inline or, when omitted, read
from stdin. Failures are reported with a machine-readable code.`,
		Example: `  gitingest tools call repository_tree_view '{"repo": "github:spf13/cobra"}'
  echo '{"query": "lang:go cli"}' | gitingest tools call find_repositories`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var raw []byte
			if len(args) == 2 {
				raw = []byte(args[1])
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Errorf("reading arguments: %w", err)
				}
				raw = data
			}

			res, err := opts.Service.Registry().Call(ctx, args[0], json.RawMessage(raw))
			if err != nil {
				if asJSON {
					_ = json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"error": err})
				}
				return err
			}

			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the whole result, including the summary, as JSON")

	return cmd
}
