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

package ingest_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitingest/pkg/filter"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/remote/local"
	"github.com/walteh/gitingest/pkg/status"
	"github.com/walteh/gitingest/pkg/testutils"
	"gitlab.com/tozd/go/errors"
)

func TestLocalRepository(t *testing.T) {
	ctx := testutils.Context(t)
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err, "init should succeed")

	files := map[string][]byte{
		"a.txt": []byte("0123456789"),
		"b.bin": {0x00, 0x01, 0x02, 0xff, 0xfe},
	}
	wt, err := repo.Worktree()
	require.NoError(t, err)
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
	}
	sig := &object.Signature{Name: "gitingest", Email: "gitingest@example.com", When: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	_, err = wt.Commit("initial", &git.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	ref, err := remote.ParseIdentifier(dir, "")
	require.NoError(t, err)
	require.Equal(t, remote.KindLocal, ref.Kind)

	e := ingest.New(ingest.Options{})
	p := local.New()

	t.Run("exclude_binary", func(t *testing.T) {
		res, err := e.Ingest(ctx, p, ref, filter.Config{Exclude: []string{"*.bin"}})
		require.NoError(t, err)

		assert.Equal(t, []string{"a.txt"}, res.Included(), "only a.txt should be in the digest")
		assert.Equal(t, 1, res.Summary.Included)
		assert.Equal(t, 1, res.Summary.Excluded)
		assert.Equal(t, int64(10), res.Summary.TotalBytes)
		assert.Contains(t, res.Digest(), "FILE: a.txt\n")
		assert.NotContains(t, res.Digest(), "b.bin")
	})

	t.Run("binary_detected", func(t *testing.T) {
		res, err := e.Ingest(ctx, p, ref, filter.Config{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Summary.Binary, "b.bin should be classified binary")
		assert.Equal(t, 1, res.Summary.Count(status.StatusIncluded))
	})

	t.Run("does_not_exist", func(t *testing.T) {
		res, err := e.Ingest(ctx, p, ref.WithRevision(remote.ParseRevision("does-not-exist")), filter.Config{})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.Is(err, remote.ErrReferenceNotFound), "error should be reference not found, got %v", err)
	})

	t.Run("repeatable", func(t *testing.T) {
		first, err := e.Ingest(ctx, p, ref, filter.Config{})
		require.NoError(t, err)
		second, err := e.Ingest(ctx, p, ref, filter.Config{})
		require.NoError(t, err)
		assert.Equal(t, first.Digest(), second.Digest())
		assert.Equal(t, first.Summary, second.Summary)
	})
}
