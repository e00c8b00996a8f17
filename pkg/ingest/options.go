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
	"time"

	"gitlab.com/tozd/go/errors"
)

const (
	DefaultConcurrency     = 8
	DefaultListConcurrency = 4
	DefaultFetchTimeout    = 30 * time.Second
	DefaultMaxAttempts     = 3
	DefaultBackoff         = time.Second
	DefaultMaxBackoff      = 60 * time.Second
)

// ⚙️ Options tunes the engine. Zero values take the defaults above.
type Options struct {
	Concurrency       int           // blob fetch workers
	ListConcurrency   int           // directories listed at once when walking per directory
	FetchTimeout      time.Duration // per attempt
	MaxAttempts       int           // attempts per call when rate limited
	Backoff           time.Duration // first delay without a hint, doubled per attempt
	MaxBackoff        time.Duration // cap for any single delay, hinted or not
	RequestsPerSecond float64       // 0 disables pacing
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.ListConcurrency <= 0 {
		o.ListConcurrency = DefaultListConcurrency
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Backoff <= 0 {
		o.Backoff = DefaultBackoff
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = DefaultMaxBackoff
	}
	return o
}

// Validate rejects negative settings
func (o Options) Validate() error {
	switch {
	case o.Concurrency < 0:
		return errors.Errorf("concurrency must not be negative: %d", o.Concurrency)
	case o.ListConcurrency < 0:
		return errors.Errorf("list concurrency must not be negative: %d", o.ListConcurrency)
	case o.FetchTimeout < 0:
		return errors.Errorf("fetch timeout must not be negative: %s", o.FetchTimeout)
	case o.MaxAttempts < 0:
		return errors.Errorf("max attempts must not be negative: %d", o.MaxAttempts)
	case o.Backoff < 0, o.MaxBackoff < 0:
		return errors.New("backoff must not be negative")
	case o.RequestsPerSecond < 0:
		return errors.Errorf("requests per second must not be negative: %g", o.RequestsPerSecond)
	}
	return nil
}
