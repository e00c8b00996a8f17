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

package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/walteh/gitingest/pkg/remote"
	gl "gitlab.com/gitlab-org/api/client-go"
	"gitlab.com/tozd/go/errors"
)

// mapError translates a client-go failure into the remote error taxonomy.
// missing is returned for 404 responses.
func (p *Provider) mapError(ctx context.Context, resp *gl.Response, err error, missing error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)

	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return errors.Errorf("%w: %s", remote.ErrCancelled, what)
	}

	status := 0
	var header http.Header
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
		header = resp.Header
	}
	var er *gl.ErrorResponse
	if status == 0 && errors.As(err, &er) && er.Response != nil {
		status = er.Response.StatusCode
		header = er.Response.Header
	}
	if status == 0 && errors.Is(err, gl.ErrNotFound) {
		status = http.StatusNotFound
	}

	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && header.Get("RateLimit-Remaining") == "0":
		return errors.Errorf("%s: %w", what, &remote.RateLimitError{RetryAfter: p.hint(header), Err: err})
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return errors.Errorf("%w: %s: %s", remote.ErrAuthRequired, what, err.Error())
	case status == http.StatusNotFound:
		return errors.Errorf("%w: %s: %s", missing, what, err.Error())
	default:
		return errors.Errorf("%w: %s: %s", remote.ErrBackendUnavailable, what, err.Error())
	}
}

func (p *Provider) hint(h http.Header) time.Duration {
	if d := remote.ParseRetryAfter(h, p.now()); d > 0 {
		return d
	}
	return remote.ParseResetHeader(h, "RateLimit-Reset", p.now())
}
