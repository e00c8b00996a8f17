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

package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/oauth2"
)

const (
	defaultAPIURL = "https://api.github.com/"
	rawMediaType  = "application/vnd.github.raw+json"
)

// Client defines the GitHub API operations the provider needs
type Client interface {
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error)
	GetCommitSHA1(ctx context.Context, owner, repo, ref string) (string, *github.Response, error)
	GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, *github.Response, error)
	GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error)
	DownloadRaw(ctx context.Context, owner, repo, path, ref string) ([]byte, *github.Response, error)
	SearchRepositories(ctx context.Context, query string, opts *github.SearchOptions) (*github.RepositoriesSearchResult, *github.Response, error)
}

// NewClient builds a go-github client. An empty token gives anonymous access;
// an empty baseURL targets the public API.
func NewClient(ctx context.Context, token, baseURL string, httpClient *http.Client) (Client, error) {
	if token != "" {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	c := github.NewClient(httpClient)
	if err := applyBaseURL(c, baseURL); err != nil {
		return nil, err
	}
	return &clientWrapper{client: c}, nil
}

func applyBaseURL(c *github.Client, baseURL string) error {
	if baseURL == "" || strings.TrimSuffix(baseURL, "/")+"/" == defaultAPIURL {
		return nil
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return errors.Errorf("parsing github base url %q: %w", baseURL, err)
	}
	c.BaseURL = u
	return nil
}

// clientWrapper wraps the GitHub client to implement our interface
type clientWrapper struct {
	client *github.Client
}

func (w *clientWrapper) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error) {
	return w.client.Repositories.Get(ctx, owner, repo)
}

func (w *clientWrapper) GetCommitSHA1(ctx context.Context, owner, repo, ref string) (string, *github.Response, error) {
	return w.client.Repositories.GetCommitSHA1(ctx, owner, repo, ref, "")
}

func (w *clientWrapper) GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, *github.Response, error) {
	return w.client.Git.GetTree(ctx, owner, repo, sha, recursive)
}

func (w *clientWrapper) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	return w.client.Repositories.GetContents(ctx, owner, repo, path, opts)
}

func (w *clientWrapper) SearchRepositories(ctx context.Context, query string, opts *github.SearchOptions) (*github.RepositoriesSearchResult, *github.Response, error) {
	return w.client.Search.Repositories(ctx, query, opts)
}

// DownloadRaw reads a file through the contents endpoint using the raw media
// type, so the body is the file itself in a single request. Servers that
// ignore the media type answer with the base64 JSON envelope, which is decoded.
func (w *clientWrapper) DownloadRaw(ctx context.Context, owner, repo, path, ref string) ([]byte, *github.Response, error) {
	u := fmt.Sprintf("repos/%s/%s/contents/%s?ref=%s",
		url.PathEscape(owner), url.PathEscape(repo), escapePath(path), url.QueryEscape(ref))

	req, err := w.client.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, errors.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", rawMediaType)

	var buf bytes.Buffer
	resp, err := w.client.Do(ctx, req, &buf)
	if err != nil {
		return nil, resp, err
	}

	if resp != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if data, ok := decodeEnvelope(buf.Bytes()); ok {
			return data, resp, nil
		}
	}
	return buf.Bytes(), resp, nil
}

func decodeEnvelope(body []byte) ([]byte, bool) {
	var rc github.RepositoryContent
	if err := json.Unmarshal(body, &rc); err != nil || rc.GetType() != "file" || rc.Content == nil {
		return nil, false
	}
	s, err := rc.GetContent()
	if err != nil {
		return nil, false
	}
	return []byte(s), true
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
