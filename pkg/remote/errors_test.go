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

package remote

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "wrapped_not_found", err: errors.Errorf("fetching a.txt: %w", ErrNotFound), want: ErrNotFound},
		{name: "rate_limit_error", err: &RateLimitError{RetryAfter: time.Second}, want: ErrRateLimited},
		{name: "wrapped_rate_limit_error", err: errors.Errorf("fetch: %w", &RateLimitError{}), want: ErrRateLimited},
		{name: "context_canceled", err: errors.Errorf("list: %w", context.Canceled), want: ErrCancelled},
		{name: "deadline", err: context.DeadlineExceeded, want: ErrBackendUnavailable},
		{name: "unknown", err: errors.New("boom"), want: ErrBackendUnavailable},
		{name: "auth", err: errors.Errorf("%w: bad credentials", ErrAuthRequired), want: ErrAuthRequired},
		{name: "reference", err: errors.Errorf("%w: nope", ErrReferenceNotFound), want: ErrReferenceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err), "classification should match")
		})
	}
}

func TestRateLimitError(t *testing.T) {
	err := errors.Errorf("fetching: %w", &RateLimitError{RetryAfter: 3 * time.Second})
	assert.True(t, errors.Is(err, ErrRateLimited), "rate limit errors should match the sentinel")

	d, ok := RetryAfter(err)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Second, d)

	_, ok = RetryAfter(&RateLimitError{})
	assert.False(t, ok, "zero hint should report no hint")

	_, ok = RetryAfter(ErrNotFound)
	assert.False(t, ok)

	assert.Equal(t, "rate limited, retry after 3s", (&RateLimitError{RetryAfter: 3 * time.Second}).Error())
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{name: "absent", header: http.Header{}, want: 0},
		{name: "seconds", header: http.Header{"Retry-After": {"7"}}, want: 7 * time.Second},
		{name: "http_date", header: http.Header{"Retry-After": {now.Add(90 * time.Second).Format(http.TimeFormat)}}, want: 90 * time.Second},
		{name: "past_date", header: http.Header{"Retry-After": {now.Add(-time.Minute).Format(http.TimeFormat)}}, want: 0},
		{name: "garbage", header: http.Header{"Retry-After": {"soon"}}, want: 0},
		{name: "huge_seconds_saturate", header: http.Header{"Retry-After": {"9223372036854775807"}}, want: time.Duration(maxRetryAfterSeconds) * time.Second},
		{name: "beyond_int64", header: http.Header{"Retry-After": {"99999999999999999999"}}, want: 0},
		{name: "negative", header: http.Header{"Retry-After": {"-5"}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRetryAfter(tt.header, now)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, time.Duration(0), "a hint should never be negative")
		})
	}

	h := http.Header{}
	h.Set("RateLimit-Reset", "1735689630")
	assert.Equal(t, 30*time.Second, ParseResetHeader(h, "RateLimit-Reset", now))
	assert.Equal(t, time.Duration(0), ParseResetHeader(h, "X-RateLimit-Reset", now))
}
