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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitingest/pkg/config"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

// searchProvider adds canned search results to a memory provider
type searchProvider struct {
	*testutils.MemoryProvider
	results []remote.SearchResult
	err     error
}

func (s *searchProvider) Search(ctx context.Context, query string, limit int) ([]remote.SearchResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > 0 && len(s.results) > limit {
		return s.results[:limit], nil
	}
	return s.results, nil
}

// opener hands out fixed providers per kind and records the options used
type opener struct {
	mu        sync.Mutex
	providers map[remote.Kind]remote.Provider
	opened    []remote.Options
}

func (o *opener) open(ctx context.Context, kind remote.Kind, opts remote.Options) (remote.Provider, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, opts)
	p, ok := o.providers[kind]
	if !ok {
		return nil, errors.Errorf("no provider for %s", kind)
	}
	return p, nil
}

func (o *opener) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.opened)
}

var widgetFiles = map[string]string{
	"a.txt":                    "0123456789",
	"b.bin":                    "\x00\x01\x02\x03\x04",
	"cmd/widgets/main.go":      "package main\n",
	"node_modules/left/pad.js": "module.exports = 1\n",
}

func newTestService(t *testing.T, providers map[remote.Kind]remote.Provider) (*Service, *opener) {
	t.Helper()
	o := &opener{providers: providers}
	cfg := config.Default()
	cfg.ResolveTokens(func(string) (string, bool) { return "", false })
	engine := ingest.New(ingest.Options{Backoff: time.Millisecond, MaxBackoff: time.Millisecond})
	return NewService(cfg, WithOpener(o.open), WithEngine(engine)), o
}

func call(t *testing.T, s *Service, name string, args string) (*Result, *Error) {
	t.Helper()
	res, err := s.Registry().Call(testutils.Context(t), name, json.RawMessage(args))
	if err != nil {
		var te *Error
		require.True(t, errors.As(err, &te), "registry errors should be *Error, got %T", err)
		return nil, te
	}
	return res, nil
}

func TestRegistry(t *testing.T) {
	s, _ := newTestService(t, nil)
	r := s.Registry()

	var names []string
	for _, d := range r.Descriptors() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{SearchToolName, IngestToolName, ReadToolName, TreeToolName}, names, "tools should be listed by name")

	data, err := json.Marshal(r.Get(IngestToolName).Schema)
	require.NoError(t, err)

	var schema struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"repo"}, schema.Required)
	assert.Contains(t, schema.Properties, "max_total_size")
	assert.Contains(t, string(schema.Properties["include_patterns"]), `"oneOf"`, "patterns accept strings and arrays")

	_, terr := call(t, s, "nope", `{}`)
	require.NotNil(t, terr)
	assert.Equal(t, CodeNotFound, terr.Code)
}

func TestIngestTool(t *testing.T) {
	mem := testutils.NewMemoryProvider(widgetFiles)
	s, o := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: mem})

	t.Run("exclude_binary", func(t *testing.T) {
		res, terr := call(t, s, IngestToolName, `{"repo": "github:acme/widgets", "exclude_patterns": "*.bin"}`)
		require.Nil(t, terr)

		assert.Equal(t, testutils.DefaultCommit, res.Commit)
		require.NotNil(t, res.Summary)
		assert.Equal(t, 4, res.Summary.Files)
		assert.Equal(t, 2, res.Summary.Included)
		assert.Equal(t, 2, res.Summary.Excluded, "b.bin and node_modules should be excluded")

		assert.Contains(t, res.Text, "Repository: github:acme/widgets\n")
		assert.Contains(t, res.Text, "FILE: a.txt\n")
		assert.Contains(t, res.Text, "FILE: cmd/widgets/main.go\n")
		assert.NotContains(t, res.Text, "FILE: b.bin")
		assert.Contains(t, res.Text, "widgets/\n├── cmd/\n")
		assert.Less(t, strings.Index(res.Text, "FILE: a.txt"), strings.Index(res.Text, "FILE: cmd/widgets/main.go"), "files should be in path order")
	})

	t.Run("without_default_excludes", func(t *testing.T) {
		res, terr := call(t, s, IngestToolName, `{"repo": "github:acme/widgets", "exclude_patterns": ["*.bin"], "use_default_excludes": false}`)
		require.Nil(t, terr)
		assert.Equal(t, 3, res.Summary.Included)
		assert.Contains(t, res.Text, "FILE: node_modules/left/pad.js\n")
	})

	t.Run("include_patterns", func(t *testing.T) {
		res, terr := call(t, s, IngestToolName, `{"repo": "github:acme/widgets", "include_patterns": "*.go, *.md"}`)
		require.Nil(t, terr)
		assert.Equal(t, 1, res.Summary.Included)
		assert.Equal(t, 2, res.Summary.NotIncluded)
	})

	t.Run("size_overrides", func(t *testing.T) {
		res, terr := call(t, s, IngestToolName, `{"repo": "github:acme/widgets", "max_total_size": "12", "max_file_size": 100}`)
		require.Nil(t, terr)
		assert.Equal(t, 1, res.Summary.Included, "only a.txt fits the budget")
		assert.Equal(t, 1, res.Summary.DigestFull)
		assert.Equal(t, int64(10), res.Summary.TotalBytes)
	})

	t.Run("shared_provider", func(t *testing.T) {
		assert.Equal(t, 1, o.count(), "calls without a token should reuse one provider")
	})

	t.Run("token_override", func(t *testing.T) {
		_, terr := call(t, s, IngestToolName, `{"repo": "github:acme/widgets", "token": "ghp_percall"}`)
		require.Nil(t, terr)
		require.Equal(t, 2, o.count())
		assert.Equal(t, "ghp_percall", o.opened[1].Token)
	})

	t.Run("reference_not_found", func(t *testing.T) {
		res, terr := call(t, s, IngestToolName, `{"repo": "github:acme/widgets", "git_ref": "does-not-exist"}`)
		assert.Nil(t, res, "no digest should be produced")
		require.NotNil(t, terr)
		assert.Equal(t, CodeReferenceNotFound, terr.Code)
	})
}

func TestArguments(t *testing.T) {
	mem := testutils.NewMemoryProvider(widgetFiles)
	s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: mem})

	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{name: "missing_repo", tool: IngestToolName, args: `{}`, want: "repo is required"},
		{name: "empty_arguments", tool: TreeToolName, args: ``, want: "repo is required"},
		{name: "malformed", tool: IngestToolName, args: `{"repo": `, want: "decoding arguments"},
		{name: "unknown_field", tool: IngestToolName, args: `{"repo": "github:a/b", "branch": "main"}`, want: "unknown field"},
		{name: "negative_size", tool: IngestToolName, args: `{"repo": "github:a/b", "max_file_size": -1}`, want: "non-negative"},
		{name: "non_numeric_size", tool: IngestToolName, args: `{"repo": "github:a/b", "max_total_size": "lots"}`, want: "expected an integer"},
		{name: "bad_pattern", tool: TreeToolName, args: `{"repo": "github:a/b", "exclude_patterns": ["[oops"]}`, want: "[oops"},
		{name: "patterns_wrong_type", tool: TreeToolName, args: `{"repo": "github:a/b", "include_patterns": 3}`, want: "patterns must be"},
		{name: "bad_identifier", tool: IngestToolName, args: `{"repo": "github:only-owner"}`, want: ""},
		{name: "missing_file_path", tool: ReadToolName, args: `{"repo": "github:a/b"}`, want: "file_path is required"},
		{name: "missing_query", tool: SearchToolName, args: `{"query": "  "}`, want: "query is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, terr := call(t, s, tt.tool, tt.args)
			assert.Nil(t, res)
			require.NotNil(t, terr, "call should fail")
			assert.Equal(t, CodeInvalidArguments, terr.Code, "unexpected error: %v", terr)
			assert.Contains(t, terr.Message, tt.want)
		})
	}
}

func TestTreeTool(t *testing.T) {
	mem := testutils.NewMemoryProvider(widgetFiles)
	mem.Revisions = map[string]string{"main": testutils.DefaultCommit}
	s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitLab: mem})

	res, terr := call(t, s, TreeToolName, `{"repo": "https://gitlab.com/acme/widgets/-/tree/main", "exclude_patterns": "*.bin"}`)
	require.Nil(t, terr)

	want := "```\nwidgets/\n├── cmd/\n│   └── widgets/\n│       └── main.go\n└── a.txt\n```"
	assert.Equal(t, want, res.Text)
	assert.Zero(t, mem.TotalFetches(), "the tree view should not fetch content")
}

func TestReadTool(t *testing.T) {
	mem := testutils.NewMemoryProvider(widgetFiles)
	s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: mem})

	tests := []struct {
		name     string
		path     string
		limit    any
		want     string
		wantCode Code
	}{
		{name: "code_is_fenced", path: "cmd/widgets/main.go", want: "```go\npackage main\n```"},
		{name: "plain_text", path: "/a.txt", want: "0123456789"},
		{name: "binary", path: "b.bin", want: "b.bin is a binary file (5 B)"},
		{name: "missing", path: "nope.txt", wantCode: CodeNotFound},
		{name: "over_size_limit", path: "a.txt", limit: 4, wantCode: CodeTooLarge},
		{name: "at_size_limit", path: "a.txt", limit: "10", want: "0123456789"},
		{name: "limit_disabled", path: "a.txt", limit: 0, want: "0123456789"},
		{name: "negative_limit", path: "a.txt", limit: -1, wantCode: CodeInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := map[string]any{"repo": "github:acme/widgets", "file_path": tt.path}
			if tt.limit != nil {
				in["max_file_size"] = tt.limit
			}
			args, err := json.Marshal(in)
			require.NoError(t, err)

			res, terr := call(t, s, ReadToolName, string(args))
			if tt.wantCode != "" {
				require.NotNil(t, terr)
				assert.Equal(t, tt.wantCode, terr.Code)
				return
			}
			require.Nil(t, terr)
			assert.Equal(t, tt.want, res.Text)
			assert.Equal(t, testutils.DefaultCommit, res.Commit)
		})
	}
}

func TestSearchTool(t *testing.T) {
	gh := &searchProvider{
		MemoryProvider: testutils.NewMemoryProvider(nil),
		results: []remote.SearchResult{
			{Kind: remote.KindGitHub, Location: "acme/widgets", Stars: 5, Description: " Widgets. "},
			{Kind: remote.KindGitHub, Location: "acme/gadgets", Stars: 1},
		},
	}
	lab := &searchProvider{
		MemoryProvider: testutils.NewMemoryProvider(nil),
		results: []remote.SearchResult{
			{Kind: remote.KindGitLab, Location: "acme/tools/widgets", Stars: 10, Description: "Mirror"},
		},
	}

	t.Run("merged_by_stars", func(t *testing.T) {
		s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: gh, remote.KindGitLab: lab})
		res, terr := call(t, s, SearchToolName, `{"query": "widgets"}`)
		require.Nil(t, terr)

		want := "Search results for: \"widgets\"\n\n" +
			"- gitlab:acme/tools/widgets ⭐️10\n  Mirror\n\n" +
			"- github:acme/widgets ⭐️5\n  Widgets.\n\n" +
			"- github:acme/gadgets ⭐️1\n  \n\n"
		assert.Equal(t, want, res.Text)
	})

	t.Run("limit_per_provider", func(t *testing.T) {
		s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: gh, remote.KindGitLab: lab})
		res, terr := call(t, s, SearchToolName, `{"query": "widgets", "limit": "1"}`)
		require.Nil(t, terr)
		assert.NotContains(t, res.Text, "acme/gadgets")
	})

	t.Run("one_backend_failing", func(t *testing.T) {
		broken := &searchProvider{MemoryProvider: testutils.NewMemoryProvider(nil), err: &remote.RateLimitError{RetryAfter: time.Minute}}
		s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: broken, remote.KindGitLab: lab})
		res, terr := call(t, s, SearchToolName, `{"query": "widgets"}`)
		require.Nil(t, terr)
		assert.Contains(t, res.Text, "gitlab:acme/tools/widgets")
	})

	t.Run("every_backend_failing", func(t *testing.T) {
		broken := &searchProvider{MemoryProvider: testutils.NewMemoryProvider(nil), err: &remote.RateLimitError{RetryAfter: time.Minute}}
		s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: broken, remote.KindGitLab: broken})
		_, terr := call(t, s, SearchToolName, `{"query": "widgets"}`)
		require.NotNil(t, terr)
		assert.Equal(t, CodeRateLimited, terr.Code)
		assert.Equal(t, "1m0s", terr.RetryAfter)
	})

	t.Run("no_results", func(t *testing.T) {
		empty := &searchProvider{MemoryProvider: testutils.NewMemoryProvider(nil)}
		s, _ := newTestService(t, map[remote.Kind]remote.Provider{remote.KindGitHub: empty, remote.KindGitLab: empty})
		res, terr := call(t, s, SearchToolName, `{"query": "widgets"}`)
		require.Nil(t, terr)
		assert.Equal(t, `No repositories found matching query: "widgets"`, res.Text)
	})
}

func TestAsError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{name: "reference", err: errors.Errorf("%w: main", remote.ErrReferenceNotFound), want: CodeReferenceNotFound},
		{name: "auth", err: errors.Errorf("resolving: %w", remote.ErrAuthRequired), want: CodeAuthRequired},
		{name: "rate_limited", err: &remote.RateLimitError{}, want: CodeRateLimited},
		{name: "not_found", err: remote.ErrNotFound, want: CodeNotFound},
		{name: "cancelled", err: remote.ErrCancelled, want: CodeCancelled},
		{name: "identifier", err: remote.ErrInvalidIdentifier, want: CodeInvalidArguments},
		{name: "filter", err: errors.Errorf("%w: bad", ingest.ErrInvalidFilter), want: CodeInvalidArguments},
		{name: "anything_else", err: errors.New("connection reset"), want: CodeBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsError(tt.err)
			assert.Equal(t, tt.want, got.Code)
			assert.True(t, errors.Is(got, tt.err), "the cause should stay reachable")
		})
	}

	assert.Nil(t, AsError(nil))
}

func TestLocalRepository(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{"a.txt": "0123456789", "b.bin": "\x00\x01\x02\x03\x04"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	s := NewService(nil)
	args, err := json.Marshal(map[string]any{"repo": dir, "exclude_patterns": []string{"*.bin"}})
	require.NoError(t, err)

	res, err := s.Registry().Call(testutils.Context(t), IngestToolName, args)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.Included)
	assert.Equal(t, 1, res.Summary.Excluded)
	assert.Contains(t, res.Text, "FILE: a.txt\n================================================\n0123456789\n")
}
