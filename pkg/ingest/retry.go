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
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// call runs fn until it succeeds, fails with anything other than a rate limit,
// or runs out of attempts. Every attempt waits on the pacer first.
func call[T any](ctx context.Context, e *Engine, what string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 1; ; attempt++ {
		if err := e.pace(ctx); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil {
			return zero, cancelled(ctx)
		}
		if !errors.Is(err, remote.ErrRateLimited) || attempt >= e.opts.MaxAttempts {
			return zero, err
		}

		delay := e.backoff(attempt, err)
		zerolog.Ctx(ctx).Debug().
			Str("call", what).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("rate limited, backing off")

		if err := e.sleep(ctx, delay); err != nil {
			return zero, cancelled(ctx)
		}
	}
}

// backoff is the hint when the backend gave one, else Backoff doubled per
// attempt. Both are capped at MaxBackoff.
func (e *Engine) backoff(attempt int, err error) time.Duration {
	d, ok := remote.RetryAfter(err)
	if !ok {
		d = e.opts.Backoff << (attempt - 1)
		if d <= 0 {
			d = e.opts.MaxBackoff
		}
	}
	return min(d, e.opts.MaxBackoff)
}

func (e *Engine) pace(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return cancelled(ctx)
		}
		return errors.Errorf("waiting for request pacer: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func cancelled(ctx context.Context) error {
	return errors.Errorf("%w: %s", remote.ErrCancelled, context.Cause(ctx).Error())
}
