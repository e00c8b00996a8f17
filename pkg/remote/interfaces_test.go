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

package remote_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/text"
)

type stubProvider struct{ kind remote.Kind }

func (s *stubProvider) Kind() remote.Kind { return s.kind }

func (s *stubProvider) Resolve(ctx context.Context, ref remote.Reference) (remote.Root, error) {
	return remote.Root{Location: ref.Location, Commit: "abc"}, nil
}

func (s *stubProvider) ListTree(ctx context.Context, root remote.Root, dir string) ([]remote.TreeEntry, error) {
	return nil, nil
}

func (s *stubProvider) FetchBlob(ctx context.Context, root remote.Root, path string) (*remote.Blob, error) {
	return nil, remote.ErrNotFound
}

func TestRegistry(t *testing.T) {
	remote.Register("stub", func(ctx context.Context, opts remote.Options) (remote.Provider, error) {
		return &stubProvider{kind: "stub"}, nil
	})

	t.Run("open_registered", func(t *testing.T) {
		p, err := remote.Open(context.Background(), "stub", remote.Options{})
		require.NoError(t, err, "opening a registered provider should succeed")
		assert.Equal(t, remote.Kind("stub"), p.Kind(), "kind should match")
	})

	t.Run("open_unknown", func(t *testing.T) {
		_, err := remote.Open(context.Background(), "nope", remote.Options{})
		require.Error(t, err, "opening an unknown provider should fail")
		assert.Contains(t, err.Error(), "stub", "error should list the registered providers")
	})

	assert.Contains(t, remote.Kinds(), remote.Kind("stub"))
}

func TestNewBlob(t *testing.T) {
	b := remote.NewBlob([]byte("hello\n"))
	assert.Equal(t, int64(6), b.Size, "size should be the byte length")
	assert.Equal(t, text.EncodingText, b.Encoding, "plain text should classify as text")
	assert.False(t, b.IsBinary())

	b = remote.NewBlob([]byte{0x00, 0x01, 0x02})
	assert.True(t, b.IsBinary(), "NUL bytes should classify as binary")
}

func TestReferenceString(t *testing.T) {
	tests := []struct {
		name string
		ref  remote.Reference
		want string
	}{
		{
			name: "default_revision",
			ref:  remote.Reference{Kind: remote.KindGitHub, Location: "walteh/copyrc"},
			want: "github:walteh/copyrc",
		},
		{
			name: "tag_revision",
			ref:  remote.Reference{Kind: remote.KindGitLab, Location: "g/p", Revision: remote.Revision{Kind: remote.RefTag, Name: "v1"}},
			want: "gitlab:g/p@tag:v1",
		},
		{
			name: "name_revision",
			ref:  remote.Reference{Kind: remote.KindLocal, Location: "/tmp/x", Revision: remote.Revision{Kind: remote.RefName, Name: "main"}},
			want: "local:/tmp/x@main",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String(), "reference string should match")
		})
	}

	base := remote.Reference{Kind: remote.KindGitHub, Location: "a/b"}
	moved := base.WithRevision(remote.Revision{Kind: remote.RefCommit, Name: "deadbeef"})
	assert.True(t, base.Revision.IsDefault(), "original reference should be unchanged")
	assert.Equal(t, "commit:deadbeef", moved.Revision.String())
	assert.Equal(t, "1234567", remote.Root{Commit: "1234567890"}.ShortCommit())
}
