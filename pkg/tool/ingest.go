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

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/filter"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/status"
)

const (
	IngestToolName = "ingest_repository"
	TreeToolName   = "repository_tree_view"
	ReadToolName   = "repository_read"
	SearchToolName = "find_repositories"
)

const repoDescription = "Repository identifier: 'github:owner/repo', 'gitlab:group/project', a web URL or a local path"

const refDescription = "Optional git reference: branch name, 'branch:name', 'tag:name' or 'commit:sha'. Default: the default branch"

// RepoRequest holds the arguments shared by the repository tools
type RepoRequest struct {
	Repo               string   `json:"repo"`
	GitRef             string   `json:"git_ref"`
	Include            Patterns `json:"include_patterns"`
	Exclude            Patterns `json:"exclude_patterns"`
	Token              string   `json:"token"`
	UseDefaultExcludes *bool    `json:"use_default_excludes"`
}

// IngestRequest holds the ingest_repository arguments
type IngestRequest struct {
	RepoRequest
	MaxFileSize  *Int `json:"max_file_size"`
	MaxTotalSize *Int `json:"max_total_size"`
}

func repoParameters() []Parameter {
	return []Parameter{
		{Name: "repo", Type: "string", Description: repoDescription, Required: true},
		{Name: "git_ref", Type: "string", Description: refDescription},
		{Name: "include_patterns", OneOf: []string{"string", "array"}, Description: "Optional glob patterns to include, as an array or a comma-separated string"},
		{Name: "exclude_patterns", OneOf: []string{"string", "array"}, Description: "Optional glob patterns to exclude, as an array or a comma-separated string"},
		{Name: "use_default_excludes", Type: "boolean", Description: "Skip VCS, dependency and build directories. Default: true"},
		{Name: "token", Type: "string", Description: "Optional access token for this call only"},
	}
}

// target resolves the reference, provider and filter of a repository call
func (s *Service) target(ctx context.Context, a RepoRequest) (remote.Provider, remote.Reference, filter.Config, error) {
	ref, err := s.Reference(a.Repo, a.GitRef)
	if err != nil {
		return nil, remote.Reference{}, filter.Config{}, err
	}

	useDefaults := a.UseDefaultExcludes == nil || *a.UseDefaultExcludes
	f := s.cfg.Filter(useDefaults).WithExcludes(a.Exclude...)
	f.Include = a.Include
	if err := f.Validate(); err != nil {
		return nil, remote.Reference{}, filter.Config{}, invalid("%s", err.Error())
	}

	p, err := s.Provider(ctx, ref.Kind, a.Token)
	if err != nil {
		return nil, remote.Reference{}, filter.Config{}, err
	}
	return p, ref, f, nil
}

// 📥 IngestTool builds the ingest_repository tool
func (s *Service) IngestTool() *Tool {
	params := repoParameters()
	params = append(params,
		Parameter{Name: "max_file_size", OneOf: []string{"integer", "string"}, Description: "Optional per-file byte limit"},
		Parameter{Name: "max_total_size", OneOf: []string{"integer", "string"}, Description: "Optional byte limit for the whole digest"},
	)
	return &Tool{
		Name:        IngestToolName,
		Description: fmt.Sprintf("Ingest a repository into a single text digest of its files. Supported providers: %s", s.kinds()),
		Schema:      Schema{Parameters: params},
		Executor:    ExecutorFunc(s.ingest),
	}
}

func (s *Service) ingest(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var req IngestRequest
	if err := decode(raw, &req); err != nil {
		return nil, err
	}

	res, err := s.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	summary := res.Summary
	return &Result{
		Text:    RenderIngest(res),
		Summary: &summary,
		Commit:  res.Root.Commit,
	}, nil
}

// 📥 Ingest runs a full ingestion for req
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*ingest.Result, error) {
	p, ref, f, err := s.target(ctx, req.RepoRequest)
	if err != nil {
		return nil, err
	}
	if req.MaxFileSize != nil {
		f.MaxFileSize = int64(*req.MaxFileSize)
	}
	if req.MaxTotalSize != nil {
		f.MaxTotalSize = int64(*req.MaxTotalSize)
	}

	res, err := s.engine.Ingest(ctx, p, ref, f)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("repository", ref.String()).
		Str("commit", res.Root.ShortCommit()).
		Int("included", res.Summary.Included).
		Int("skipped", res.Summary.Skipped()).
		Msg("ingested repository")

	return res, nil
}

// RenderIngest formats a result as a header, the directory tree and the digest
func RenderIngest(res *ingest.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository: %s\n", res.Reference.String())
	fmt.Fprintf(&sb, "Commit: %s\n", res.Root.Commit)
	fmt.Fprintf(&sb, "Files analyzed: %d\n", res.Summary.Files)
	fmt.Fprintf(&sb, "Files included: %d\n", res.Summary.Included)
	fmt.Fprintf(&sb, "Files skipped: %d\n", res.Summary.Skipped())
	for _, st := range status.Statuses() {
		if st == status.StatusIncluded {
			continue
		}
		if n := res.Summary.Count(st); n > 0 {
			fmt.Fprintf(&sb, "  %s: %d\n", st, n)
		}
	}
	fmt.Fprintf(&sb, "Total size: %s\n", status.FormatBytes(res.Summary.TotalBytes))
	sb.WriteString("\nDirectory structure:\n")
	sb.WriteString(res.Tree())
	sb.WriteString("\n")
	_ = res.WriteDigest(&sb) // strings.Builder never fails
	return sb.String()
}
