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

package status

import (
	"context"

	"github.com/rs/zerolog"
)

// 📝 LogSummary writes the counters to the context logger
func LogSummary(ctx context.Context, s Summary) {
	zerolog.Ctx(ctx).Info().
		Int("files", s.Files).
		Int("included", s.Included).
		Int("excluded", s.Excluded).
		Int("not_included", s.NotIncluded).
		Int("too_large", s.TooLarge).
		Int("binary", s.Binary).
		Int("errored", s.Errored).
		Int("digest_full", s.DigestFull).
		Int64("total_bytes", s.TotalBytes).
		Msg("ingestion summary")
}

// 📝 LogRecord writes a single record to the context logger at debug level
func LogRecord(ctx context.Context, r Record) {
	ev := zerolog.Ctx(ctx).Debug().
		Str("path", r.Path).
		Stringer("status", r.Status).
		Int64("size", r.Size)
	if r.Reason != "" {
		ev = ev.Str("reason", r.Reason)
	}
	ev.Msg("file classified")
}
