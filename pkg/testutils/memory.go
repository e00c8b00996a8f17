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

// Package testutils holds in-memory providers and helpers shared by tests.
package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// KindMemory is the provider kind reported by MemoryProvider
const KindMemory remote.Kind = "memory"

// DefaultCommit is the root commit used when MemoryProvider.Commit is empty
const DefaultCommit = "0000000000000000000000000000000000000001"

// Context returns a background context carrying a logger that writes to t
func Context(t testing.TB) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

var _ remote.Provider = (*MemoryProvider)(nil)

// 🧪 MemoryProvider is a remote.Provider over a fixed map of file contents.
// It only lists per directory; wrap it in RecursiveProvider to offer a native
// recursive listing.
type MemoryProvider struct {
	Files map[string][]byte

	Commit    string            // root commit, DefaultCommit when empty
	Revisions map[string]string // revision name to commit
	HideSizes bool              // omit size hints from listings

	// FailFetch, when set, is consulted before every fetch with the 1-based
	// attempt number for that path. A non-nil error is returned as-is.
	FailFetch func(path string, attempt int) error
	FailList  func(dir string) error
	Delay     time.Duration

	mu      sync.Mutex
	fetches map[string]int
	lists   int
}

// NewMemoryProvider builds a provider from path to content pairs
func NewMemoryProvider(files map[string]string) *MemoryProvider {
	m := &MemoryProvider{Files: make(map[string][]byte, len(files))}
	for k, v := range files {
		m.Files[k] = []byte(v)
	}
	return m
}

func (m *MemoryProvider) commit() string {
	if m.Commit == "" {
		return DefaultCommit
	}
	return m.Commit
}

func (m *MemoryProvider) Kind() remote.Kind {
	return KindMemory
}

func (m *MemoryProvider) Resolve(ctx context.Context, ref remote.Reference) (remote.Root, error) {
	if err := ctx.Err(); err != nil {
		return remote.Root{}, errors.Errorf("%w: %s", remote.ErrCancelled, err.Error())
	}
	root := remote.Root{Location: ref.Location, Commit: m.commit()}
	if ref.Revision.IsDefault() || ref.Revision.Name == root.Commit {
		return root, nil
	}
	if c, ok := m.Revisions[ref.Revision.Name]; ok {
		root.Commit = c
		return root, nil
	}
	return remote.Root{}, errors.Errorf("%w: %s", remote.ErrReferenceNotFound, ref.Revision)
}

func (m *MemoryProvider) ListTree(ctx context.Context, root remote.Root, dir string) ([]remote.TreeEntry, error) {
	m.mu.Lock()
	m.lists++
	m.mu.Unlock()

	if m.FailList != nil {
		if err := m.FailList(dir); err != nil {
			return nil, err
		}
	}

	dir = strings.Trim(dir, "/")
	prefix := ""
	if dir != "" {
		prefix = dir + "/"
	}

	seen := map[string]bool{}
	var out []remote.TreeEntry
	for p, data := range m.Files {
		rest, ok := strings.CutPrefix(p, prefix)
		if !ok || rest == "" {
			continue
		}
		name, _, nested := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		if nested {
			out = append(out, remote.TreeEntry{Path: prefix + name, Type: remote.EntryDir})
			continue
		}
		out = append(out, m.entry(p, data))
	}

	if dir != "" && len(out) == 0 {
		return nil, errors.Errorf("%w: directory %s", remote.ErrNotFound, dir)
	}
	return out, nil
}

func (m *MemoryProvider) entry(p string, data []byte) remote.TreeEntry {
	e := remote.TreeEntry{Path: p, Type: remote.EntryFile}
	if !m.HideSizes {
		e.Size = int64(len(data))
		e.HasSize = true
	}
	return e
}

func (m *MemoryProvider) FetchBlob(ctx context.Context, root remote.Root, path string) (*remote.Blob, error) {
	m.mu.Lock()
	if m.fetches == nil {
		m.fetches = map[string]int{}
	}
	m.fetches[path]++
	attempt := m.fetches[path]
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, errors.Errorf("%w: %s", remote.ErrCancelled, ctx.Err().Error())
		case <-time.After(m.Delay):
		}
	}

	if m.FailFetch != nil {
		if err := m.FailFetch(path, attempt); err != nil {
			return nil, err
		}
	}

	data, ok := m.Files[path]
	if !ok {
		return nil, errors.Errorf("%w: %s", remote.ErrNotFound, path)
	}
	return remote.NewBlob(append([]byte(nil), data...)), nil
}

// Fetches returns how many times path was fetched
func (m *MemoryProvider) Fetches(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[path]
}

// TotalFetches returns the number of fetch calls over every path
func (m *MemoryProvider) TotalFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.fetches {
		n += c
	}
	return n
}

// Lists returns the number of ListTree calls
func (m *MemoryProvider) Lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

var _ remote.RecursiveLister = (*RecursiveProvider)(nil)

// RecursiveProvider adds a native recursive listing to MemoryProvider.
// Entries come back in reverse path order.
type RecursiveProvider struct {
	*MemoryProvider
	Truncated bool  // report remote.ErrTreeTruncated instead of listing
	Fail      error // returned instead of listing when set
}

func (r *RecursiveProvider) ListTreeRecursive(ctx context.Context, root remote.Root) ([]remote.TreeEntry, error) {
	if r.Truncated {
		return nil, errors.Errorf("%w: %s", remote.ErrTreeTruncated, root.Commit)
	}
	if r.Fail != nil {
		return nil, r.Fail
	}
	out := make([]remote.TreeEntry, 0, len(r.Files))
	for p, data := range r.Files {
		out = append(out, r.entry(p, data))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path > out[j].Path })
	return out, nil
}
