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
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	"golang.org/x/sync/errgroup"
)

type searchArgs struct {
	Query string `json:"query"`
	Limit *Int   `json:"limit"`
}

// 🔍 SearchTool builds the find_repositories tool
func (s *Service) SearchTool() *Tool {
	return &Tool{
		Name:        SearchToolName,
		Description: fmt.Sprintf("Find code repositories matching a search query. Supported providers: %s", strings.Join(s.searchable(), ", ")),
		Schema: Schema{Parameters: []Parameter{
			{Name: "query", Type: "string", Description: "Search query to find repositories (e.g., 'lang:rust web framework')", Required: true},
			{Name: "limit", OneOf: []string{"integer", "string"}, Description: "Optional maximum number of results to return per provider"},
		}},
		Executor: ExecutorFunc(s.search),
	}
}

// searchable lists the hosted kinds that can search
func (s *Service) searchable() []string {
	return []string{string(remote.KindGitHub), string(remote.KindGitLab)}
}

func (s *Service) search(ctx context.Context, raw json.RawMessage) (*Result, error) {
	var a searchArgs
	if err := decode(raw, &a); err != nil {
		return nil, err
	}
	query := strings.TrimSpace(a.Query)
	if query == "" {
		return nil, invalid("query is required")
	}
	limit := 0
	if a.Limit != nil {
		limit = int(*a.Limit)
	}

	results, err := s.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return &Result{Text: RenderSearch(query, results)}, nil
}

// 🔍 Search queries every hosted backend concurrently and merges the results,
// most starred first. A backend that fails is logged and left out unless every
// backend failed.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]remote.SearchResult, error) {
	kinds := s.searchable()
	found := make([][]remote.SearchResult, len(kinds))
	errs := make([]error, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		kind := remote.Kind(k)
		g.Go(func() error {
			p, err := s.Provider(gctx, kind, "")
			if err != nil {
				errs[i] = err
				return nil
			}
			searcher, ok := p.(remote.Searcher)
			if !ok {
				return nil
			}
			found[i], errs[i] = searcher.Search(gctx, query, limit)
			return nil
		})
	}
	_ = g.Wait() // workers record failures in errs

	if ctx.Err() != nil {
		return nil, &Error{Code: CodeCancelled, Message: context.Cause(ctx).Error(), err: context.Cause(ctx)}
	}

	var out []remote.SearchResult
	var firstErr error
	failed := 0
	for i, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			zerolog.Ctx(ctx).Warn().Err(err).Str("provider", kinds[i]).Msg("search failed")
			continue
		}
		out = append(out, found[i]...)
	}
	if failed == len(kinds) {
		return nil, firstErr
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Stars != out[j].Stars {
			return out[i].Stars > out[j].Stars
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Location < out[j].Location
	})
	return out, nil
}

// RenderSearch formats search results, one repository per entry
func RenderSearch(query string, results []remote.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No repositories found matching query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for: %q\n\n", query)
	for _, r := range results {
		fmt.Fprintf(&sb, "- %s:%s ⭐️%d\n  %s\n\n", r.Kind, r.Location, r.Stars, strings.TrimSpace(r.Description))
	}
	return sb.String()
}
