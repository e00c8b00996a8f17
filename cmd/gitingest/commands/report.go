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
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/gitingest/cmd/gitingest/opts"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/log"
	"github.com/walteh/gitingest/pkg/status"
	"github.com/walteh/gitingest/pkg/tool"
	"gitlab.com/tozd/go/errors"
)

// repoFlags are the flags shared by commands that walk a repository
type repoFlags struct {
	ref               string
	include           []string
	exclude           []string
	noDefaultExcludes bool
	token             string
}

func (f *repoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ref, "ref", "r", "", "branch, tag or commit (also 'tag:x', 'commit:sha', 'branch:x')")
	cmd.Flags().StringArrayVarP(&f.include, "include", "i", nil, "glob pattern to include (repeatable)")
	cmd.Flags().StringArrayVarP(&f.exclude, "exclude", "e", nil, "glob pattern to exclude (repeatable)")
	cmd.Flags().BoolVar(&f.noDefaultExcludes, "no-default-excludes", false, "do not skip VCS, dependency and build directories")
	cmd.Flags().StringVar(&f.token, "token", "", "access token for this run, overriding the configured token")
}

func (f *repoFlags) request(repo string) tool.RepoRequest {
	useDefaults := !f.noDefaultExcludes
	return tool.RepoRequest{
		Repo:               repo,
		GitRef:             f.ref,
		Include:            tool.Patterns(f.include),
		Exclude:            tool.Patterns(f.exclude),
		Token:              f.token,
		UseDefaultExcludes: &useDefaults,
	}
}

// 📊 report prints the repository header, optionally every record, and the
// summary table to the console
func report(ctx context.Context, o *opts.RootOpts, w io.Writer, action string, res *ingest.Result) error {
	logger := log.FromContext(ctx)
	logger.StartRepoOperation(ctx, log.RepoOperation{
		Name:   fmt.Sprintf("%s:%s", res.Reference.Kind, res.Reference.Location),
		Ref:    res.Reference.Revision.String(),
		Commit: res.Root.ShortCommit(),
		Action: action,
	})
	if o.Verbose {
		for _, rec := range res.Records {
			logger.LogRecord(ctx, rec)
		}
		logger.LogNewline()
	}
	logger.EndRepoOperation(ctx, res.Summary)

	table, err := summaryTable(res.Summary)
	if err != nil {
		return errors.Errorf("rendering summary: %w", err)
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// summaryTable renders the non-zero counters of s
func summaryTable(s status.Summary) (string, error) {
	data := pterm.TableData{{"Status", "Files"}}
	for _, st := range status.Statuses() {
		if n := s.Count(st); n > 0 {
			data = append(data, []string{st.String(), strconv.Itoa(n)})
		}
	}
	data = append(data, []string{"total", strconv.Itoa(s.Files)})
	data = append(data, []string{"digest size", status.FormatBytes(s.TotalBytes)})
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
}

// output opens path for writing, or returns the command's stdout when empty
func output(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}
