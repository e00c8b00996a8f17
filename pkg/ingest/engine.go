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

// Package ingest turns a repository reference into an ordered digest.
//
// The engine resolves the reference, walks the whole tree, classifies every
// file against a filter.Config, fetches eligible blobs with a bounded worker
// pool and assembles the accepted contents in path order. Only a failed
// resolve, a failed listing of the repository root or cancellation abort a
// call. Every other failure becomes a skip record, including a subdirectory
// that cannot be listed.
package ingest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/filter"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/status"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrInvalidFilter is returned when a filter.Config fails validation
var ErrInvalidFilter = errors.Base("invalid filter")

// 🏭 Engine runs ingestions. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	opts    Options
	limiter *rate.Limiter
	sleep   func(context.Context, time.Duration) error
}

// New creates an engine, filling zero options with defaults
func New(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{opts: opts, sleep: sleep}
	if opts.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(1, int(opts.RequestsPerSecond)))
	}
	return e
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.opts
}

// 🎯 Ingest resolves ref on p and builds the digest for the files passing f
func (e *Engine) Ingest(ctx context.Context, p remote.Provider, ref remote.Reference, f filter.Config) (*Result, error) {
	res, entries, failed, err := e.prepare(ctx, p, ref, f)
	if err != nil {
		return nil, err
	}

	records, eligible := classify(entries, failed, f)
	zerolog.Ctx(ctx).Debug().
		Str("reference", ref.String()).
		Int("files", len(records)).
		Int("eligible", len(eligible)).
		Msg("fetching eligible files")

	e.fetchAll(ctx, p, res.Root, f, records, eligible)
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}

	res.Records = records
	res.Summary = status.Summarize(records)
	for _, r := range records {
		status.LogRecord(ctx, r)
	}
	return res, nil
}

// 🌳 Tree resolves and walks ref and applies f without fetching any content.
// Files that pass the filter are StatusIncluded with no content.
func (e *Engine) Tree(ctx context.Context, p remote.Provider, ref remote.Reference, f filter.Config) (*Result, error) {
	res, entries, failed, err := e.prepare(ctx, p, ref, f)
	if err != nil {
		return nil, err
	}

	records, eligible := classify(entries, failed, f)
	for _, i := range eligible {
		records[i].Status = status.StatusIncluded
	}
	res.Records = records
	res.Summary = status.Summarize(records)
	return res, nil
}

// 📄 Read resolves ref and fetches a single file with the same retry policy as
// Ingest. A missing file is remote.ErrNotFound.
func (e *Engine) Read(ctx context.Context, p remote.Provider, ref remote.Reference, path string) (*remote.Blob, remote.Root, error) {
	root, err := e.resolve(ctx, p, ref)
	if err != nil {
		return nil, remote.Root{}, err
	}

	blob, err := call(ctx, e, "fetch_blob", func(ctx context.Context) (*remote.Blob, error) {
		return e.fetchAttempt(ctx, p, root, path)
	})
	if err != nil {
		return nil, root, errors.Errorf("reading %s: %w", path, err)
	}
	return blob, root, nil
}

func (e *Engine) resolve(ctx context.Context, p remote.Provider, ref remote.Reference) (remote.Root, error) {
	if ctx.Err() != nil {
		return remote.Root{}, cancelled(ctx)
	}
	root, err := call(ctx, e, "resolve", func(ctx context.Context) (remote.Root, error) {
		return p.Resolve(ctx, ref)
	})
	if err != nil {
		return remote.Root{}, errors.Errorf("resolving %s: %w", ref, err)
	}
	zerolog.Ctx(ctx).Debug().Str("reference", ref.String()).Str("commit", root.Commit).Msg("resolved reference")
	return root, nil
}

func (e *Engine) prepare(ctx context.Context, p remote.Provider, ref remote.Reference, f filter.Config) (*Result, []remote.TreeEntry, []status.Record, error) {
	if err := f.Validate(); err != nil {
		return nil, nil, nil, errors.Errorf("%w: %s", ErrInvalidFilter, err.Error())
	}

	root, err := e.resolve(ctx, p, ref)
	if err != nil {
		return nil, nil, nil, err
	}

	entries, failed, err := e.walk(ctx, p, root)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, nil, cancelled(ctx)
		}
		return nil, nil, nil, errors.Errorf("walking %s: %w", ref, err)
	}

	return &Result{Reference: ref, Root: root}, entries, failed, nil
}

// classify applies the filter and size hints and merges in the directories
// that failed to list. Eligible records are left as StatusUnknown and their
// indexes returned in path order.
func classify(entries []remote.TreeEntry, failed []status.Record, f filter.Config) ([]status.Record, []int) {
	records := make([]status.Record, 0, len(entries)+len(failed))

	for _, entry := range entries {
		rec := status.Record{Path: entry.Path, Size: entry.Size}
		st, pattern := f.Classify(entry.Path)
		switch {
		case st != status.StatusIncluded:
			rec.Status, rec.Reason = st, pattern
		case entry.HasSize && f.TooLarge(entry.Size):
			rec.Status = status.StatusTooLarge
			rec.Reason = tooLargeReason(entry.Size, f.MaxFileSize)
		}
		records = append(records, rec)
	}

	if len(failed) > 0 {
		records = append(records, failed...)
		sort.SliceStable(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	}

	var eligible []int
	for i, rec := range records {
		if rec.Status == status.StatusUnknown {
			eligible = append(eligible, i)
		}
	}
	return records, eligible
}

func tooLargeReason(size, limit int64) string {
	return fmt.Sprintf("%s over the %s limit", status.FormatBytes(size), status.FormatBytes(limit))
}

// 📦 fetchAll fetches every eligible record with at most Concurrency calls in
// flight. Results land in records by index, so completion order never leaks
// into the digest.
func (e *Engine) fetchAll(ctx context.Context, p remote.Provider, root remote.Root, f filter.Config, records []status.Record, eligible []int) {
	asm := newAssembler(records, eligible, f)

	var g errgroup.Group
	g.SetLimit(e.opts.Concurrency)
	for pos, idx := range eligible {
		if ctx.Err() != nil {
			break
		}
		path, hint := records[idx].Path, records[idx].Size
		g.Go(func() error {
			if asm.full(pos) || ctx.Err() != nil {
				asm.complete(pos, status.Record{Path: path, Status: status.StatusDigestFull, Size: hint})
				return nil
			}
			asm.complete(pos, e.fetchOne(ctx, p, root, f, path, hint))
			return nil
		})
	}
	_ = g.Wait() // workers never fail, errors become records
}

func (e *Engine) fetchOne(ctx context.Context, p remote.Provider, root remote.Root, f filter.Config, path string, hint int64) status.Record {
	blob, err := call(ctx, e, "fetch_blob", func(ctx context.Context) (*remote.Blob, error) {
		return e.fetchAttempt(ctx, p, root, path)
	})
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("path", path).Msg("fetch failed")
		return status.Record{Path: path, Status: status.StatusError, Size: hint, Reason: err.Error()}
	}

	rec := status.Record{Path: path, Size: int64(len(blob.Data))}
	switch {
	case blob.IsBinary():
		rec.Status = status.StatusBinary
	case f.TooLarge(rec.Size):
		rec.Status = status.StatusTooLarge
		rec.Reason = tooLargeReason(rec.Size, f.MaxFileSize)
	default:
		rec.Status = status.StatusIncluded
		rec.Content = blob.Data
	}
	return rec
}

// fetchAttempt is one bounded fetch. A timeout is reported as
// remote.ErrBackendUnavailable.
func (e *Engine) fetchAttempt(ctx context.Context, p remote.Provider, root remote.Root, path string) (*remote.Blob, error) {
	actx, cancel := context.WithTimeout(ctx, e.opts.FetchTimeout)
	defer cancel()

	blob, err := p.FetchBlob(actx, root, path)
	if err != nil {
		if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
			return nil, errors.Errorf("%w: fetching %s timed out after %s", remote.ErrBackendUnavailable, path, e.opts.FetchTimeout)
		}
		return nil, err
	}
	if blob == nil {
		return nil, errors.Errorf("%w: fetching %s returned no content", remote.ErrBackendUnavailable, path)
	}
	return blob, nil
}
