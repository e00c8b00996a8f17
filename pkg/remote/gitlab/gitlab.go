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

// Package gitlab implements remote.Provider over the GitLab REST API.
package gitlab

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	gl "gitlab.com/gitlab-org/api/client-go"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/time/rate"
)

const perPage = 100

func init() {
	remote.Register(remote.KindGitLab, func(ctx context.Context, opts remote.Options) (remote.Provider, error) {
		return New(opts)
	})
}

var (
	_ remote.Provider        = (*Provider)(nil)
	_ remote.RecursiveLister = (*Provider)(nil)
	_ remote.Searcher        = (*Provider)(nil)
)

// 🎯 Provider implements remote.Provider for GitLab
type Provider struct {
	client *gl.Client
	now    func() time.Time
}

// 🏭 New creates a GitLab provider. Retries are disabled and the client-side
// limiter is unbounded: pacing and retry policy belong to the caller.
func New(opts remote.Options) (*Provider, error) {
	options := []gl.ClientOptionFunc{
		gl.WithoutRetries(),
		gl.WithCustomLimiter(rate.NewLimiter(rate.Inf, 1)),
	}
	if opts.BaseURL != "" {
		options = append(options, gl.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		options = append(options, gl.WithHTTPClient(opts.HTTPClient))
	}

	client, err := gl.NewClient(opts.Token, options...)
	if err != nil {
		return nil, errors.Errorf("creating gitlab client: %w", err)
	}
	return &Provider{client: client, now: time.Now}, nil
}

// Kind returns "gitlab"
func (p *Provider) Kind() remote.Kind {
	return remote.KindGitLab
}

// 🎯 Resolve turns the revision into a commit SHA
func (p *Provider) Resolve(ctx context.Context, ref remote.Reference) (remote.Root, error) {
	pid := strings.Trim(ref.Location, "/")
	if pid == "" {
		return remote.Root{}, errors.Errorf("%w: empty gitlab project", remote.ErrInvalidIdentifier)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("project", pid).Str("revision", ref.Revision.String()).Msg("resolving gitlab revision")

	target := commitTarget(ref.Revision)
	if ref.Revision.IsDefault() {
		project, resp, err := p.client.Projects.GetProject(pid, nil, gl.WithContext(ctx))
		if err != nil {
			return remote.Root{}, p.mapError(ctx, resp, err, remote.ErrReferenceNotFound, "getting project %s", pid)
		}
		target = project.DefaultBranch
		if target == "" {
			return remote.Root{}, errors.Errorf("%w: %s has no default branch", remote.ErrReferenceNotFound, pid)
		}
	}

	commit, resp, err := p.client.Commits.GetCommit(pid, target, nil, gl.WithContext(ctx))
	if err != nil {
		return remote.Root{}, p.mapError(ctx, resp, err, remote.ErrReferenceNotFound, "resolving %s@%s", pid, target)
	}

	logger.Debug().Str("project", pid).Str("commit", commit.ID).Msg("resolved gitlab revision")
	return remote.Root{Location: pid, Commit: commit.ID}, nil
}

// commitTarget qualifies branch and tag names so a branch and a tag sharing a
// name resolve to the one asked for
func commitTarget(rev remote.Revision) string {
	switch rev.Kind {
	case remote.RefBranch:
		return "refs/heads/" + rev.Name
	case remote.RefTag:
		return "refs/tags/" + rev.Name
	default:
		return rev.Name
	}
}

// listTree pages through the repository tree endpoint until the server reports
// no next page
func (p *Provider) listTree(ctx context.Context, root remote.Root, dir string, recursive bool) ([]*gl.TreeNode, error) {
	opts := &gl.ListTreeOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Ref:         gl.Ptr(root.Commit),
		Recursive:   gl.Ptr(recursive),
	}
	if dir != "" {
		opts.Path = gl.Ptr(dir)
	}

	var all []*gl.TreeNode
	for {
		nodes, resp, err := p.client.Repositories.ListTree(root.Location, opts, gl.WithContext(ctx))
		if err != nil {
			return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "listing %s/%s", root.Location, dir)
		}
		all = append(all, nodes...)

		if resp == nil || resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListTreeRecursive lists every file at the root commit
func (p *Provider) ListTreeRecursive(ctx context.Context, root remote.Root) ([]remote.TreeEntry, error) {
	nodes, err := p.listTree(ctx, root, "", true)
	if err != nil {
		return nil, err
	}

	entries := make([]remote.TreeEntry, 0, len(nodes))
	for _, n := range nodes {
		if n.Type != "blob" {
			continue
		}
		entries = append(entries, remote.TreeEntry{Path: n.Path, Type: remote.EntryFile})
	}
	return entries, nil
}

// 📂 ListTree lists the immediate children of dir
func (p *Provider) ListTree(ctx context.Context, root remote.Root, dir string) ([]remote.TreeEntry, error) {
	nodes, err := p.listTree(ctx, root, strings.Trim(dir, "/"), false)
	if err != nil {
		return nil, err
	}

	entries := make([]remote.TreeEntry, 0, len(nodes))
	for _, n := range nodes {
		switch n.Type {
		case "tree":
			entries = append(entries, remote.TreeEntry{Path: n.Path, Type: remote.EntryDir})
		case "blob":
			entries = append(entries, remote.TreeEntry{Path: n.Path, Type: remote.EntryFile})
		}
	}
	return entries, nil
}

// 📄 FetchBlob downloads raw file bytes at the root commit
func (p *Provider) FetchBlob(ctx context.Context, root remote.Root, filePath string) (*remote.Blob, error) {
	data, resp, err := p.client.RepositoryFiles.GetRawFile(
		root.Location, strings.Trim(filePath, "/"),
		&gl.GetRawFileOptions{Ref: gl.Ptr(root.Commit)},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "fetching %s", filePath)
	}
	return remote.NewBlob(data), nil
}

// 🔍 Search finds projects ordered by stars
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]remote.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	opts := &gl.ListProjectsOptions{
		ListOptions: gl.ListOptions{PerPage: perPage},
		Search:      gl.Ptr(query),
		OrderBy:     gl.Ptr("star_count"),
		Sort:        gl.Ptr("desc"),
	}

	var out []remote.SearchResult
	for {
		projects, resp, err := p.client.Projects.ListProjects(opts, gl.WithContext(ctx))
		if err != nil {
			return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "searching gitlab for %q", query)
		}

		for _, pr := range projects {
			out = append(out, remote.SearchResult{
				Kind:          remote.KindGitLab,
				Location:      pr.PathWithNamespace,
				URL:           pr.WebURL,
				Description:   pr.Description,
				Stars:         int(pr.StarCount),
				DefaultBranch: pr.DefaultBranch,
			})
			if len(out) >= limit {
				return out, nil
			}
		}

		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}
