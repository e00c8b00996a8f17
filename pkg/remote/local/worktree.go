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

package local

import (
	"context"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// worktree reads files from disk, hiding .git and anything .gitignore excludes
type worktree struct {
	fs     billy.Filesystem
	ignore gitignore.Matcher
}

// openWorktree reads .gitignore and prepares on-disk reads for h
func (h *handle) openWorktree() error {
	var fs billy.Filesystem
	if h.repo != nil {
		wt, err := h.repo.Worktree()
		if err != nil {
			if errors.Is(err, git.ErrIsBareRepository) {
				return errors.Errorf("%w: %s is a bare repository without a worktree", remote.ErrReferenceNotFound, h.dir)
			}
			return errors.Errorf("%w: opening worktree: %s", remote.ErrBackendUnavailable, err.Error())
		}
		fs = wt.Filesystem
	} else {
		fs = osfs.New(h.dir)
	}

	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return errors.Errorf("%w: reading .gitignore: %s", remote.ErrBackendUnavailable, err.Error())
	}

	h.wt = &worktree{fs: fs, ignore: gitignore.NewMatcher(patterns)}
	return nil
}

func split(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func (w *worktree) hidden(p string, isDir bool) bool {
	parts := split(p)
	for _, part := range parts {
		if part == ".git" {
			return true
		}
	}
	return len(parts) > 0 && w.ignore.Match(parts, isDir)
}

func (w *worktree) list(dir string) ([]remote.TreeEntry, error) {
	if w.hidden(dir, true) {
		return nil, errors.Errorf("%w: directory %s", remote.ErrNotFound, dir)
	}

	name := dir
	if name == "" {
		name = "."
	}
	infos, err := w.fs.ReadDir(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: directory %s", remote.ErrNotFound, dir)
		}
		return nil, errors.Errorf("%w: reading directory %s: %s", remote.ErrBackendUnavailable, dir, err.Error())
	}

	entries := make([]remote.TreeEntry, 0, len(infos))
	for _, info := range infos {
		full := path.Join(dir, info.Name())
		isDir := info.IsDir()
		if w.hidden(full, isDir) {
			continue
		}
		if isDir {
			entries = append(entries, remote.TreeEntry{Path: full, Type: remote.EntryDir})
			continue
		}
		if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		entries = append(entries, remote.TreeEntry{
			Path:    full,
			Type:    remote.EntryFile,
			Size:    info.Size(),
			HasSize: info.Mode().IsRegular(),
		})
	}
	return entries, nil
}

func (w *worktree) walk(ctx context.Context) ([]remote.TreeEntry, error) {
	var files []remote.TreeEntry
	queue := []string{""}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("%w: %s", remote.ErrCancelled, err.Error())
		}
		dir := queue[0]
		queue = queue[1:]

		entries, err := w.list(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				queue = append(queue, e.Path)
			} else {
				files = append(files, e)
			}
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (w *worktree) read(p string) (*remote.Blob, error) {
	if p == "" || w.hidden(p, false) {
		return nil, errors.Errorf("%w: %s", remote.ErrNotFound, p)
	}

	info, err := w.fs.Lstat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: %s", remote.ErrNotFound, p)
		}
		return nil, errors.Errorf("%w: stat %s: %s", remote.ErrBackendUnavailable, p, err.Error())
	}
	if info.IsDir() {
		return nil, errors.Errorf("%w: %s is a directory", remote.ErrNotFound, p)
	}

	// symlinks are read the way git stores them: the link target is the content
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := w.fs.Readlink(p)
		if err != nil {
			return nil, errors.Errorf("%w: reading link %s: %s", remote.ErrBackendUnavailable, p, err.Error())
		}
		return remote.NewBlob([]byte(target)), nil
	}

	f, err := w.fs.Open(p)
	if err != nil {
		return nil, errors.Errorf("%w: opening %s: %s", remote.ErrBackendUnavailable, p, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Errorf("%w: reading %s: %s", remote.ErrBackendUnavailable, p, err.Error())
	}
	return remote.NewBlob(data), nil
}
