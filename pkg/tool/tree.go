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

	"github.com/walteh/gitingest/pkg/ingest"
)

// 🌳 TreeTool builds the repository_tree_view tool
func (s *Service) TreeTool() *Tool {
	return &Tool{
		Name:        TreeToolName,
		Description: fmt.Sprintf("View the file structure of a Git repository recursively. Supported providers: %s", s.kinds()),
		Schema:      Schema{Parameters: repoParameters()},
		Executor:    ExecutorFunc(s.tree),
	}
}

func (s *Service) tree(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var req RepoRequest
	if err := decode(raw, &req); err != nil {
		return nil, err
	}

	res, err := s.Tree(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := res.Summary
	return &Result{
		Text:    fmt.Sprintf("```\n%s```", res.Tree()),
		Summary: &summary,
		Commit:  res.Root.Commit,
	}, nil
}

// Tree lists the files of req that pass its filter without fetching them
func (s *Service) Tree(ctx context.Context, req RepoRequest) (*ingest.Result, error) {
	p, ref, f, err := s.target(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.engine.Tree(ctx, p, ref, f)
}
