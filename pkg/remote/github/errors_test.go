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
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// mockClient is a testify mock of Client
type mockClient struct {
	mock.Mock
}

func (m *mockClient) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, *github.Response, error) {
	args := m.Called(ctx, owner, repo)
	r, _ := args.Get(0).(*github.Repository)
	return r, nil, args.Error(1)
}

func (m *mockClient) GetCommitSHA1(ctx context.Context, owner, repo, ref string) (string, *github.Response, error) {
	args := m.Called(ctx, owner, repo, ref)
	return args.String(0), nil, args.Error(1)
}

func (m *mockClient) GetTree(ctx context.Context, owner, repo, sha string, recursive bool) (*github.Tree, *github.Response, error) {
	args := m.Called(ctx, owner, repo, sha, recursive)
	t, _ := args.Get(0).(*github.Tree)
	return t, nil, args.Error(1)
}

func (m *mockClient) GetContents(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentGetOptions) (*github.RepositoryContent, []*github.RepositoryContent, *github.Response, error) {
	args := m.Called(ctx, owner, repo, path, opts)
	f, _ := args.Get(0).(*github.RepositoryContent)
	d, _ := args.Get(1).([]*github.RepositoryContent)
	return f, d, nil, args.Error(2)
}

func (m *mockClient) DownloadRaw(ctx context.Context, owner, repo, path, ref string) ([]byte, *github.Response, error) {
	args := m.Called(ctx, owner, repo, path, ref)
	b, _ := args.Get(0).([]byte)
	return b, nil, args.Error(1)
}

func (m *mockClient) SearchRepositories(ctx context.Context, query string, opts *github.SearchOptions) (*github.RepositoriesSearchResult, *github.Response, error) {
	args := m.Called(ctx, query, opts)
	r, _ := args.Get(0).(*github.RepositoriesSearchResult)
	return r, nil, args.Error(1)
}

func httpResponse(status int, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Request:    httptest.NewRequest(http.MethodGet, "https://api.github.com/repos/o/r/contents/a.txt", nil),
	}
}

func TestMapError(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	secondary := 5 * time.Second

	tests := []struct {
		name     string
		err      error
		wantErr  error
		wantHint time.Duration
	}{
		{
			name: "primary_rate_limit",
			err: &github.RateLimitError{
				Rate:     github.Rate{Reset: github.Timestamp{Time: now.Add(42 * time.Second)}},
				Response: httpResponse(http.StatusForbidden, nil),
				Message:  "API rate limit exceeded",
			},
			wantErr:  remote.ErrRateLimited,
			wantHint: 42 * time.Second,
		},
		{
			name: "secondary_rate_limit",
			err: &github.AbuseRateLimitError{
				Response:   httpResponse(http.StatusForbidden, nil),
				Message:    "secondary rate limit",
				RetryAfter: &secondary,
			},
			wantErr:  remote.ErrRateLimited,
			wantHint: 5 * time.Second,
		},
		{
			name:     "too_many_requests_reset_header",
			err:      &github.ErrorResponse{Response: httpResponse(http.StatusTooManyRequests, http.Header{"X-Ratelimit-Reset": {"1735732810"}})},
			wantErr:  remote.ErrRateLimited,
			wantHint: 10 * time.Second,
		},
		{
			name:    "unauthorized",
			err:     &github.ErrorResponse{Response: httpResponse(http.StatusUnauthorized, nil), Message: "Bad credentials"},
			wantErr: remote.ErrAuthRequired,
		},
		{
			name:    "forbidden",
			err:     &github.ErrorResponse{Response: httpResponse(http.StatusForbidden, nil), Message: "Resource not accessible"},
			wantErr: remote.ErrAuthRequired,
		},
		{
			name:    "not_found",
			err:     &github.ErrorResponse{Response: httpResponse(http.StatusNotFound, nil), Message: "Not Found"},
			wantErr: remote.ErrNotFound,
		},
		{
			name:    "server_error",
			err:     &github.ErrorResponse{Response: httpResponse(http.StatusServiceUnavailable, nil)},
			wantErr: remote.ErrBackendUnavailable,
		},
		{
			name:    "transport",
			err:     errors.New("dial tcp: connection refused"),
			wantErr: remote.ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockClient{}
			client.On("DownloadRaw", mock.Anything, "o", "r", "a.txt", "sha").Return(nil, tt.err)

			p := NewWithClient(client)
			p.now = func() time.Time { return now }

			_, err := p.FetchBlob(context.Background(), remote.Root{Location: "o/r", Commit: "sha"}, "a.txt")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "error should be %v, got %v", tt.wantErr, err)

			hint, _ := remote.RetryAfter(err)
			assert.Equal(t, tt.wantHint, hint, "retry hint should match")
			client.AssertExpectations(t)
		})
	}
}

func TestTruncatedTree(t *testing.T) {
	client := &mockClient{}
	client.On("GetTree", mock.Anything, "o", "r", "sha", true).Return(&github.Tree{Truncated: github.Bool(true)}, nil)

	p := NewWithClient(client)
	_, err := p.ListTreeRecursive(context.Background(), remote.Root{Location: "o/r", Commit: "sha"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, remote.ErrTreeTruncated), "truncated trees should ask for a fallback")
}

func TestResolveMissingRepository(t *testing.T) {
	client := &mockClient{}
	client.On("GetRepository", mock.Anything, "o", "gone").
		Return(nil, &github.ErrorResponse{Response: httpResponse(http.StatusNotFound, nil), Message: "Not Found"})

	p := NewWithClient(client)
	_, err := p.Resolve(context.Background(), remote.Reference{Kind: remote.KindGitHub, Location: "o/gone"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, remote.ErrReferenceNotFound))
	client.AssertNotCalled(t, "GetCommitSHA1", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &mockClient{}
	client.On("DownloadRaw", mock.Anything, "o", "r", "a.txt", "sha").Return(nil, context.Canceled)

	p := NewWithClient(client)
	_, err := p.FetchBlob(ctx, remote.Root{Location: "o/r", Commit: "sha"}, "a.txt")
	assert.True(t, errors.Is(err, remote.ErrCancelled))
}
