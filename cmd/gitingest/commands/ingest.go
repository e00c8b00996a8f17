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
	"github.com/walteh/gitingest/pkg/log"
	"github.com/walteh/gitingest/pkg/tool"
	"gitlab.com/tozd/go/errors"
)

func NewIngestCmd(opts *opts.RootOpts) *cobra.Command {
	var (
		repo         repoFlags
		maxFileSize  int64
		maxTotalSize int64
		outputPath   string
	)

	cmd := &cobra.Command{
		Use:   "ingest <repository>",
		Short: "Write a text digest of a repository",
		Long: `Ingest resolves the repository revision, walks its tree and writes a digest
of every file that passes the filters. It will:
1. Resolve the revision to a commit
2. Skip excluded, binary and oversized files
3. Fetch the rest concurrently
4. Write a header, the directory tree and each file in path order`,
		Example: `  gitingest ingest github:spf13/cobra -e '*_test.go'
  gitingest ingest https://gitlab.com/gitlab-org/cli/-/tree/main -i '*.go' -o cli.txt
  gitingest ingest . --max-total-size 500000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req := tool.IngestRequest{RepoRequest: repo.request(args[0])}
			if cmd.Flags().Changed("max-file-size") {
				n := tool.Int(maxFileSize)
				req.MaxFileSize = &n
			}
			if cmd.Flags().Changed("max-total-size") {
				n := tool.Int(maxTotalSize)
				req.MaxTotalSize = &n
			}
			if maxFileSize < 0 || maxTotalSize < 0 {
				return errors.New("size limits must not be negative")
			}

			res, err := opts.Service.Ingest(ctx, req)
			if err != nil {
				return errors.Errorf("ingesting %s: %w", args[0], err)
			}

			w, closeOutput, err := output(cmd, outputPath)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, tool.RenderIngest(res)); err != nil {
				_ = closeOutput()
				return errors.Errorf("writing digest: %w", err)
			}
			if err := closeOutput(); err != nil {
				return errors.Errorf("closing output: %w", err)
			}

			if err := report(ctx, opts, cmd.ErrOrStderr(), "ingesting", res); err != nil {
				return err
			}
			if outputPath != "" && outputPath != "-" {
				log.FromContext(ctx).Successf("digest written to %s", outputPath)
			}
			return nil
		},
	}

	repo.register(cmd)
	cmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes (0 for no limit; default from config)")
	cmd.Flags().Int64Var(&maxTotalSize, "max-total-size", 0, "stop adding files once the digest reaches this many bytes (0 for no limit; default from config)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the digest to a file instead of stdout")

	return cmd
}
