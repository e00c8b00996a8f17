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
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// mapError translates a go-github failure into the remote error taxonomy.
// missing is returned for 404 and 422 responses.
func (p *Provider) mapError(ctx context.Context, resp *github.Response, err error, missing error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)

	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return errors.Errorf("%w: %s", remote.ErrCancelled, what)
	}

	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		hint := rle.Rate.Reset.Time.Sub(p.now())
		if hint < 0 {
			hint = 0
		}
		return errors.Errorf("%s: %w", what, &remote.RateLimitError{RetryAfter: hint, Err: err})
	}

	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return errors.Errorf("%s: %w", what, &remote.RateLimitError{RetryAfter: abuse.GetRetryAfter(), Err: err})
	}

	status := 0
	var header http.Header
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
		header = resp.Header
	}
	var er *github.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		status = er.Response.StatusCode
		header = er.Response.Header
	}

	switch {
	case status == http.StatusTooManyRequests:
		return errors.Errorf("%s: %w", what, &remote.RateLimitError{RetryAfter: p.hint(header), Err: err})
	case status == http.StatusForbidden && header.Get("Retry-After") != "":
		return errors.Errorf("%s: %w", what, &remote.RateLimitError{RetryAfter: p.hint(header), Err: err})
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return errors.Errorf("%w: %s: %s", remote.ErrAuthRequired, what, err.Error())
	case status == http.StatusNotFound, status == http.StatusUnprocessableEntity:
		return errors.Errorf("%w: %s: %s", missing, what, err.Error())
	default:
		return errors.Errorf("%w: %s: %s", remote.ErrBackendUnavailable, what, err.Error())
	}
}

func (p *Provider) hint(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	if d := remote.ParseRetryAfter(h, p.now()); d > 0 {
		return d
	}
	return remote.ParseResetHeader(h, "X-RateLimit-Reset", p.now())
}
