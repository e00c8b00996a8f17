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

// Package local reads repositories from the filesystem without shelling out.
//
// Committed snapshots are read from the object store through go-git. The
// revision "worktree", or a directory that is not a git repository at all,
// reads the files on disk instead, honouring .gitignore.
package local

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// WorktreeRevision selects the files on disk instead of a commit
const WorktreeRevision = "worktree"

func init() {
	remote.Register(remote.KindLocal, func(ctx context.Context, opts remote.Options) (remote.Provider, error) {
		return New(), nil
	})
}

var _ remote.Provider = (*Provider)(nil)
var _ remote.RecursiveLister = (*Provider)(nil)

// Provider implements remote.Provider for repositories on disk. Every Resolve
// opens the directory again, so a reused provider sees a repository that was
// created, replaced or had its .gitignore edited since the last call.
type Provider struct {
	mu      sync.Mutex
	handles map[string]*handle // by directory, from the latest Resolve
}

// handle is one opened directory. Object reads are serialized because the
// filesystem storage shares pack file descriptors.
type handle struct {
	mu   sync.Mutex
	dir  string
	repo *git.Repository // nil when dir is not a repository
	wt   *worktree       // set when resolved to the worktree
}

// New creates a local provider
func New() *Provider {
	return &Provider{handles: map[string]*handle{}}
}

// Kind returns "local"
func (p *Provider) Kind() remote.Kind {
	return remote.KindLocal
}

func (p *Provider) open(dir string) (*handle, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Errorf("%w: resolving %s: %s", remote.ErrBackendUnavailable, dir, err.Error())
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Errorf("%w: repository path %s does not exist", remote.ErrReferenceNotFound, abs)
		}
		return nil, errors.Errorf("%w: %s", remote.ErrBackendUnavailable, err.Error())
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s is not a directory", remote.ErrReferenceNotFound, abs)
	}

	h := &handle{dir: abs}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	switch {
	case err == nil:
		h.repo = repo
	case errors.Is(err, git.ErrRepositoryNotExists):
		// plain directory, worktree mode only
	default:
		return nil, errors.Errorf("%w: opening repository %s: %s", remote.ErrBackendUnavailable, abs, err.Error())
	}
	return h, nil
}

func (p *Provider) remember(h *handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handles[h.dir] = h
}

// handleFor returns the handle of the Resolve that produced root. A root from
// another provider instance opens the directory afresh.
func (p *Provider) handleFor(root remote.Root) (*handle, error) {
	p.mu.Lock()
	h, ok := p.handles[root.Location]
	p.mu.Unlock()
	if ok && ((root.Commit == WorktreeRevision && h.wt != nil) || (root.Commit != WorktreeRevision && h.repo != nil)) {
		return h, nil
	}

	h, err := p.open(root.Location)
	if err != nil {
		return nil, err
	}
	if root.Commit == WorktreeRevision {
		if err := h.openWorktree(); err != nil {
			return nil, err
		}
	}
	p.remember(h)
	return h, nil
}

// 🎯 Resolve maps the revision to a commit hash, or to the worktree
func (p *Provider) Resolve(ctx context.Context, ref remote.Reference) (remote.Root, error) {
	if err := ctx.Err(); err != nil {
		return remote.Root{}, errors.Errorf("%w: %s", remote.ErrCancelled, err.Error())
	}

	h, err := p.open(ref.Location)
	if err != nil {
		return remote.Root{}, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("dir", h.dir).Str("revision", ref.Revision.String()).Msg("resolving local revision")

	onDisk := ref.Revision.Kind == remote.RefName && ref.Revision.Name == WorktreeRevision
	if h.repo == nil && !onDisk {
		if !ref.Revision.IsDefault() {
			return remote.Root{}, errors.Errorf("%w: %s is not a git repository, revision %q cannot apply", remote.ErrReferenceNotFound, h.dir, ref.Revision.String())
		}
		onDisk = true
	}

	if onDisk {
		if err := h.openWorktree(); err != nil {
			return remote.Root{}, err
		}
		p.remember(h)
		return remote.Root{Location: h.dir, Commit: WorktreeRevision}, nil
	}

	hash, err := resolveRevision(h.repo, ref.Revision)
	if err != nil {
		return remote.Root{}, err
	}
	p.remember(h)
	return remote.Root{Location: h.dir, Commit: hash.String()}, nil
}

func resolveRevision(repo *git.Repository, rev remote.Revision) (plumbing.Hash, error) {
	var (
		hash plumbing.Hash
		err  error
	)

	switch rev.Kind {
	case remote.RefDefault:
		var head *plumbing.Reference
		head, err = repo.Head()
		if err == nil {
			hash = head.Hash()
		}
	case remote.RefBranch:
		hash, err = peel(repo, plumbing.NewBranchReferenceName(rev.Name))
	case remote.RefTag:
		hash, err = peel(repo, plumbing.NewTagReferenceName(rev.Name))
	default:
		var h *plumbing.Hash
		h, err = repo.ResolveRevision(plumbing.Revision(rev.Name))
		if err == nil {
			hash = *h
		}
	}

	if err != nil {
		return plumbing.ZeroHash, mapLookupError(rev, err)
	}

	// the hash must name a commit that actually exists
	if _, err := repo.CommitObject(hash); err != nil {
		return plumbing.ZeroHash, mapLookupError(rev, err)
	}
	return hash, nil
}

// peel follows a branch or tag reference to its commit, unwrapping annotated tags
func peel(repo *git.Repository, name plumbing.ReferenceName) (plumbing.Hash, error) {
	ref, err := repo.Reference(name, true)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if tag, err := repo.TagObject(ref.Hash()); err == nil {
		c, err := tag.Commit()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return c.Hash, nil
	}
	return ref.Hash(), nil
}

func mapLookupError(rev remote.Revision, err error) error {
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, object.ErrUnsupportedObject):
		return errors.Errorf("%w: %q: %s", remote.ErrReferenceNotFound, rev.String(), err.Error())
	default:
		return errors.Errorf("%w: resolving %q: %s", remote.ErrBackendUnavailable, rev.String(), err.Error())
	}
}

func (h *handle) tree(commit string) (*object.Tree, error) {
	if h.repo == nil {
		return nil, errors.Errorf("%w: %s is not a git repository", remote.ErrReferenceNotFound, h.dir)
	}
	c, err := h.repo.CommitObject(plumbing.NewHash(commit))
	if err != nil {
		return nil, errors.Errorf("%w: reading commit %s: %s", remote.ErrBackendUnavailable, commit, err.Error())
	}
	t, err := c.Tree()
	if err != nil {
		return nil, errors.Errorf("%w: reading tree of %s: %s", remote.ErrBackendUnavailable, commit, err.Error())
	}
	return t, nil
}

// 📂 ListTree lists the immediate children of dir
func (p *Provider) ListTree(ctx context.Context, root remote.Root, dir string) ([]remote.TreeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("%w: %s", remote.ErrCancelled, err.Error())
	}

	h, err := p.handleFor(root)
	if err != nil {
		return nil, err
	}
	dir = cleanPath(dir)

	if root.Commit == WorktreeRevision {
		return h.wt.list(dir)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.tree(root.Commit)
	if err != nil {
		return nil, err
	}
	if dir != "" {
		t, err = t.Tree(dir)
		if err != nil {
			if errors.Is(err, object.ErrDirectoryNotFound) {
				return nil, errors.Errorf("%w: directory %s", remote.ErrNotFound, dir)
			}
			return nil, errors.Errorf("%w: reading tree %s: %s", remote.ErrBackendUnavailable, dir, err.Error())
		}
	}

	entries := make([]remote.TreeEntry, 0, len(t.Entries))
	for _, e := range t.Entries {
		full := path.Join(dir, e.Name)
		switch {
		case e.Mode == filemode.Dir:
			entries = append(entries, remote.TreeEntry{Path: full, Type: remote.EntryDir})
		case e.Mode == filemode.Submodule:
			// submodules point at other repositories
			continue
		default:
			entry := remote.TreeEntry{Path: full, Type: remote.EntryFile}
			if blob, err := h.repo.BlobObject(e.Hash); err == nil {
				entry.Size = blob.Size
				entry.HasSize = true
			}
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ListTreeRecursive lists every file under the root in one pass
func (p *Provider) ListTreeRecursive(ctx context.Context, root remote.Root) ([]remote.TreeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("%w: %s", remote.ErrCancelled, err.Error())
	}

	h, err := p.handleFor(root)
	if err != nil {
		return nil, err
	}

	if root.Commit == WorktreeRevision {
		return h.wt.walk(ctx)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.tree(root.Commit)
	if err != nil {
		return nil, err
	}

	var entries []remote.TreeEntry
	err = t.Files().ForEach(func(f *object.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries = append(entries, remote.TreeEntry{
			Path:    f.Name,
			Type:    remote.EntryFile,
			Size:    f.Size,
			HasSize: true,
		})
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Errorf("%w: %s", remote.ErrCancelled, ctx.Err().Error())
		}
		return nil, errors.Errorf("%w: walking tree: %s", remote.ErrBackendUnavailable, err.Error())
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// 📄 FetchBlob reads a file's bytes straight from the object store
func (p *Provider) FetchBlob(ctx context.Context, root remote.Root, filePath string) (*remote.Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("%w: %s", remote.ErrCancelled, err.Error())
	}

	h, err := p.handleFor(root)
	if err != nil {
		return nil, err
	}
	filePath = cleanPath(filePath)

	if root.Commit == WorktreeRevision {
		return h.wt.read(filePath)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	t, err := h.tree(root.Commit)
	if err != nil {
		return nil, err
	}

	f, err := t.File(filePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) || errors.Is(err, object.ErrDirectoryNotFound) {
			return nil, errors.Errorf("%w: %s at %s", remote.ErrNotFound, filePath, root.ShortCommit())
		}
		return nil, errors.Errorf("%w: looking up %s: %s", remote.ErrBackendUnavailable, filePath, err.Error())
	}

	r, err := f.Reader()
	if err != nil {
		return nil, errors.Errorf("%w: opening %s: %s", remote.ErrBackendUnavailable, filePath, err.Error())
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("%w: reading %s: %s", remote.ErrBackendUnavailable, filePath, err.Error())
	}
	return remote.NewBlob(data), nil
}

func cleanPath(p string) string {
	p = path.Clean("/" + filepath.ToSlash(p))
	if p == "/" {
		return ""
	}
	return p[1:]
}
