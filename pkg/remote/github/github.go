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

// Package github implements remote.Provider over the GitHub REST API.
package github

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

func init() {
	remote.Register(remote.KindGitHub, func(ctx context.Context, opts remote.Options) (remote.Provider, error) {
		return New(ctx, opts)
	})
}

var (
	_ remote.Provider        = (*Provider)(nil)
	_ remote.RecursiveLister = (*Provider)(nil)
	_ remote.Searcher        = (*Provider)(nil)
)

// 🎯 Provider implements remote.Provider for GitHub
type Provider struct {
	client Client
	now    func() time.Time
}

// 🏭 New creates a GitHub provider from options
func New(ctx context.Context, opts remote.Options) (*Provider, error) {
	client, err := NewClient(ctx, opts.Token, opts.BaseURL, opts.HTTPClient)
	if err != nil {
		return nil, err
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client Client) *Provider {
	return &Provider{client: client, now: time.Now}
}

// Kind returns "github"
func (p *Provider) Kind() remote.Kind {
	return remote.KindGitHub
}

// 🔍 parseRepo splits "owner/repo"
func parseRepo(location string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(strings.Trim(location, "/"), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errors.Errorf("%w: invalid GitHub repository %q", remote.ErrInvalidIdentifier, location)
	}
	return owner, name, nil
}

// 🎯 Resolve turns the revision into a commit SHA
func (p *Provider) Resolve(ctx context.Context, ref remote.Reference) (remote.Root, error) {
	owner, name, err := parseRepo(ref.Location)
	if err != nil {
		return remote.Root{}, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("repo", ref.Location).Str("revision", ref.Revision.String()).Msg("resolving github revision")

	target := commitTarget(ref.Revision)
	if ref.Revision.IsDefault() {
		repo, resp, err := p.client.GetRepository(ctx, owner, name)
		if err != nil {
			return remote.Root{}, p.mapError(ctx, resp, err, remote.ErrReferenceNotFound, "getting repository %s", ref.Location)
		}
		target = repo.GetDefaultBranch()
		if target == "" {
			return remote.Root{}, errors.Errorf("%w: %s has no default branch", remote.ErrReferenceNotFound, ref.Location)
		}
	}

	sha, resp, err := p.client.GetCommitSHA1(ctx, owner, name, target)
	if err != nil {
		return remote.Root{}, p.mapError(ctx, resp, err, remote.ErrReferenceNotFound, "resolving %s@%s", ref.Location, target)
	}

	logger.Debug().Str("repo", ref.Location).Str("commit", sha).Msg("resolved github revision")
	return remote.Root{Location: ref.Location, Commit: sha}, nil
}

// commitTarget qualifies branch and tag names so a branch and a tag sharing a
// name resolve to the one asked for
func commitTarget(rev remote.Revision) string {
	switch rev.Kind {
	case remote.RefBranch:
		return "heads/" + rev.Name
	case remote.RefTag:
		return "tags/" + rev.Name
	default:
		return rev.Name
	}
}

// ListTreeRecursive lists every file at the root commit through the git trees API
func (p *Provider) ListTreeRecursive(ctx context.Context, root remote.Root) ([]remote.TreeEntry, error) {
	owner, name, err := parseRepo(root.Location)
	if err != nil {
		return nil, err
	}

	tree, resp, err := p.client.GetTree(ctx, owner, name, root.Commit, true)
	if err != nil {
		return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "getting tree %s@%s", root.Location, root.ShortCommit())
	}
	if tree.GetTruncated() {
		zerolog.Ctx(ctx).Debug().Str("repo", root.Location).Int("entries", len(tree.Entries)).Msg("github tree truncated")
		return nil, errors.Errorf("%w: %s@%s", remote.ErrTreeTruncated, root.Location, root.ShortCommit())
	}

	entries := make([]remote.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		if e.GetType() != "blob" {
			continue
		}
		entries = append(entries, remote.TreeEntry{
			Path:    e.GetPath(),
			Type:    remote.EntryFile,
			Size:    int64(e.GetSize()),
			HasSize: e.Size != nil,
		})
	}
	return entries, nil
}

// 📂 ListTree lists the immediate children of dir through the contents API
func (p *Provider) ListTree(ctx context.Context, root remote.Root, dir string) ([]remote.TreeEntry, error) {
	owner, name, err := parseRepo(root.Location)
	if err != nil {
		return nil, err
	}
	dir = strings.Trim(dir, "/")

	file, children, resp, err := p.client.GetContents(ctx, owner, name, dir, &github.RepositoryContentGetOptions{Ref: root.Commit})
	if err != nil {
		return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "listing %s/%s", root.Location, dir)
	}
	if file != nil {
		return nil, errors.Errorf("%w: %s is not a directory", remote.ErrNotFound, dir)
	}

	entries := make([]remote.TreeEntry, 0, len(children))
	for _, c := range children {
		full := c.GetPath()
		if full == "" {
			full = path.Join(dir, c.GetName())
		}
		switch c.GetType() {
		case "dir":
			entries = append(entries, remote.TreeEntry{Path: full, Type: remote.EntryDir})
		case "file", "symlink":
			entries = append(entries, remote.TreeEntry{
				Path:    full,
				Type:    remote.EntryFile,
				Size:    int64(c.GetSize()),
				HasSize: c.Size != nil,
			})
		}
	}
	return entries, nil
}

// 📄 FetchBlob downloads raw file bytes at the root commit
func (p *Provider) FetchBlob(ctx context.Context, root remote.Root, filePath string) (*remote.Blob, error) {
	owner, name, err := parseRepo(root.Location)
	if err != nil {
		return nil, err
	}

	data, resp, err := p.client.DownloadRaw(ctx, owner, name, filePath, root.Commit)
	if err != nil {
		return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "fetching %s", filePath)
	}
	return remote.NewBlob(data), nil
}

// 🔍 Search finds repositories ordered by stars
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]remote.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: min(limit, 100)},
	}

	var out []remote.SearchResult
	for {
		result, resp, err := p.client.SearchRepositories(ctx, query, opts)
		if err != nil {
			return nil, p.mapError(ctx, resp, err, remote.ErrNotFound, "searching github for %q", query)
		}

		for _, r := range result.Repositories {
			out = append(out, remote.SearchResult{
				Kind:          remote.KindGitHub,
				Location:      r.GetFullName(),
				URL:           r.GetHTMLURL(),
				Description:   r.GetDescription(),
				Stars:         r.GetStargazersCount(),
				DefaultBranch: r.GetDefaultBranch(),
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
