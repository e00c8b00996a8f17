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
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrReferenceNotFound  = errors.Base("reference not found")
	ErrAuthRequired       = errors.Base("authentication required")
	ErrRateLimited        = errors.Base("rate limited")
	ErrBackendUnavailable = errors.Base("backend unavailable")
	ErrNotFound           = errors.Base("not found")
	ErrCancelled          = errors.Base("cancelled")

	// ErrTreeTruncated is returned by ListTreeRecursive when the backend could
	// not return the whole tree in one response.
	ErrTreeTruncated = errors.Base("tree listing truncated")

	ErrInvalidIdentifier = errors.Base("invalid repository identifier")
)

// ⏳ RateLimitError is a throttling response, optionally carrying the time the
// backend asked the caller to wait.
type RateLimitError struct {
	RetryAfter time.Duration // zero when the backend gave no hint
	Err        error
}

func (e *RateLimitError) Error() string {
	msg := "rate limited"
	if e.RetryAfter > 0 {
		msg = fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// Is makes every RateLimitError match ErrRateLimited
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// RetryAfter returns the retry hint carried by err, if any
func RetryAfter(err error) (time.Duration, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		return rle.RetryAfter, true
	}
	return 0, false
}

var taxonomy = []error{
	ErrCancelled,
	ErrInvalidIdentifier,
	ErrReferenceNotFound,
	ErrAuthRequired,
	ErrRateLimited,
	ErrNotFound,
	ErrTreeTruncated,
	ErrBackendUnavailable,
}

// 🎯 Classify maps any error to its taxonomy sentinel. Context cancellation is
// ErrCancelled, deadlines are ErrBackendUnavailable and anything unrecognised
// is ErrBackendUnavailable. A nil error classifies as nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	for _, sentinel := range taxonomy {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}
	return ErrBackendUnavailable
}

// maxRetryAfterSeconds keeps a delta-seconds hint within time.Duration
const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// ParseRetryAfter reads a Retry-After header, accepting both delta-seconds and
// HTTP dates. It returns zero when the header is absent or unparseable. Huge
// values saturate instead of overflowing.
func ParseRetryAfter(h http.Header, now time.Time) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(min(secs, maxRetryAfterSeconds)) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// ParseResetHeader reads an epoch-seconds reset header such as
// X-RateLimit-Reset or RateLimit-Reset and returns the time left until then.
func ParseResetHeader(h http.Header, key string, now time.Time) time.Duration {
	v := h.Get(key)
	if v == "" {
		return 0
	}
	epoch, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	if d := time.Unix(epoch, 0).Sub(now); d > 0 {
		return d
	}
	return 0
}
