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

package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/walteh/gitingest/pkg/filter"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/status"
	"github.com/walteh/gitingest/pkg/text"
)

// ReadRequest holds the repository_read arguments
type ReadRequest struct {
	Repo     string `json:"repo"`
	GitRef   string `json:"git_ref"`
	FilePath string `json:"file_path"`
	Token    string `json:"token"`

	MaxFileSize *Int `json:"max_file_size"` // overrides the configured limit, 0 for none
}

// 📄 ReadTool builds the repository_read tool
func (s *Service) ReadTool() *Tool {
	return &Tool{
		Name:        ReadToolName,
		Description: fmt.Sprintf("Read file content from a Git repository. Supported providers: %s", s.kinds()),
		Schema: Schema{Parameters: []Parameter{
			{Name: "repo", Type: "string", Description: repoDescription, Required: true},
			{Name: "file_path", Type: "string", Description: "Path to the file within the repository to read", Required: true},
			{Name: "git_ref", Type: "string", Description: refDescription},
			{Name: "token", Type: "string", Description: "Optional access token for this call only"},
			{Name: "max_file_size", OneOf: []string{"integer", "string"}, Description: "Optional byte limit for the file, 0 for none. Default: the configured limit"},
		}},
		Executor: ExecutorFunc(s.read),
	}
}

func (s *Service) read(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var req ReadRequest
	if err := decode(raw, &req); err != nil {
		return nil, err
	}

	blob, root, err := s.Read(ctx, req)
	if err != nil {
		return nil, err
	}

	path := cleanPath(req.FilePath)
	out := &Result{Commit: root.Commit}
	if blob.IsBinary() {
		out.Text = fmt.Sprintf("%s is a binary file (%s)", path, status.FormatBytes(blob.Size))
		return out, nil
	}
	out.Text = text.Fence(path, string(blob.Data))
	return out, nil
}

// 📄 Read fetches one file of req. A file over the size limit is a
// CodeTooLarge error, the same limit ingest skips files with.
func (s *Service) Read(ctx context.Context, req ReadRequest) (*remote.Blob, remote.Root, error) {
	path := cleanPath(req.FilePath)
	if path == "" {
		return nil, remote.Root{}, invalid("file_path is required")
	}

	f := filter.Config{MaxFileSize: s.cfg.Limits.MaxFileSize}
	if req.MaxFileSize != nil {
		if *req.MaxFileSize < 0 {
			return nil, remote.Root{}, invalid("max_file_size must not be negative")
		}
		f.MaxFileSize = int64(*req.MaxFileSize)
	}

	ref, err := s.Reference(req.Repo, req.GitRef)
	if err != nil {
		return nil, remote.Root{}, err
	}
	p, err := s.Provider(ctx, ref.Kind, req.Token)
	if err != nil {
		return nil, remote.Root{}, err
	}

	blob, root, err := s.engine.Read(ctx, p, ref, path)
	if err != nil {
		return nil, root, err
	}
	if f.TooLarge(blob.Size) {
		return nil, root, &Error{
			Code:    CodeTooLarge,
			Message: fmt.Sprintf("%s is %s, over the %s limit", path, status.FormatBytes(blob.Size), status.FormatBytes(f.MaxFileSize)),
		}
	}
	return blob, root, nil
}

func cleanPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), "/")
}
