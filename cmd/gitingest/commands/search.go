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
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/gitingest/cmd/gitingest/opts"
	"github.com/walteh/gitingest/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func NewSearchCmd(opts *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Find repositories on GitHub and GitLab",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			query := strings.Join(args, " ")

			results, err := opts.Service.Search(ctx, query, limit)
			if err != nil {
				return errors.Errorf("searching for %q: %w", query, err)
			}
			if len(results) == 0 {
				log.FromContext(ctx).Warningf("no repositories found matching %q", query)
				return nil
			}
			log.FromContext(ctx).Infof("%d repositories found matching %q", len(results), query)

			data := pterm.TableData{{"Repository", "Stars", "Description"}}
			for _, r := range results {
				data = append(data, []string{
					fmt.Sprintf("%s:%s", r.Kind, r.Location),
					strconv.Itoa(r.Stars),
					truncate(strings.TrimSpace(r.Description), 60),
				})
			}
			table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
			if err != nil {
				return errors.Errorf("rendering results: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), table)
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum results per provider")

	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
