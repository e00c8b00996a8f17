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

package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🌳 walk returns every file under root sorted by path. Directories are
// traversed, never returned. A subdirectory that cannot be listed becomes a
// StatusError record and the walk goes on; only a failed root listing aborts.
func (e *Engine) walk(ctx context.Context, p remote.Provider, root remote.Root) ([]remote.TreeEntry, []status.Record, error) {
	logger := zerolog.Ctx(ctx)

	if rl, ok := p.(remote.RecursiveLister); ok {
		entries, err := call(ctx, e, "list_tree_recursive", func(ctx context.Context) ([]remote.TreeEntry, error) {
			return rl.ListTreeRecursive(ctx, root)
		})
		switch {
		case err == nil:
			return sortFiles(entries), nil, nil
		case errors.Is(err, remote.ErrTreeTruncated):
			logger.Debug().Str("commit", root.Commit).Msg("recursive listing truncated, walking per directory")
		case ctx.Err() != nil:
			return nil, nil, cancelled(ctx)
		default:
			logger.Warn().Err(err).Str("commit", root.Commit).Msg("recursive listing failed, walking per directory")
		}
	}

	return e.walkDirs(ctx, p, root)
}

// walkDirs lists one depth level at a time, with sibling directories listed
// concurrently up to ListConcurrency.
func (e *Engine) walkDirs(ctx context.Context, p remote.Provider, root remote.Root) ([]remote.TreeEntry, []status.Record, error) {
	logger := zerolog.Ctx(ctx)

	var files []remote.TreeEntry
	var failed []status.Record
	level := []string{""}

	for depth := 0; len(level) > 0; depth++ {
		listed := make([][]remote.TreeEntry, len(level))
		errs := make([]error, len(level))

		var g errgroup.Group
		g.SetLimit(e.opts.ListConcurrency)
		for i, dir := range level {
			g.Go(func() error {
				listed[i], errs[i] = call(ctx, e, "list_tree", func(ctx context.Context) ([]remote.TreeEntry, error) {
					return p.ListTree(ctx, root, dir)
				})
				return nil
			})
		}
		_ = g.Wait() // failures are kept per directory in errs

		if ctx.Err() != nil {
			return nil, nil, cancelled(ctx)
		}

		var next []string
		for i, entries := range listed {
			if err := errs[i]; err != nil {
				if level[i] == "" {
					return nil, nil, errors.Errorf("listing repository root: %w", err)
				}
				logger.Warn().Err(err).Str("dir", level[i]).Msg("listing directory failed, skipping it")
				failed = append(failed, status.Record{
					Path:   level[i],
					Status: status.StatusError,
					Reason: fmt.Sprintf("listing directory: %s", err.Error()),
				})
				continue
			}
			for _, entry := range entries {
				entry.Path = strings.Trim(entry.Path, "/")
				if entry.IsDir() {
					next = append(next, entry.Path)
					continue
				}
				files = append(files, entry)
			}
		}

		logger.Trace().Int("depth", depth).Int("dirs", len(level)).Int("files", len(files)).Msg("listed tree level")
		level = next
	}

	return sortFiles(files), failed, nil
}

// sortFiles drops directories, normalizes paths and sorts by path. Duplicate
// paths keep the first entry.
func sortFiles(entries []remote.TreeEntry) []remote.TreeEntry {
	out := make([]remote.TreeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		entry.Path = strings.Trim(entry.Path, "/")
		if entry.Path == "" {
			continue
		}
		out = append(out, entry)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	deduped := out[:0]
	for _, entry := range out {
		if n := len(deduped); n > 0 && entry.Path == deduped[n-1].Path {
			continue
		}
		deduped = append(deduped, entry)
	}
	return deduped
}
