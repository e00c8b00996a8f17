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
	"gitlab.com/tozd/go/errors"
)

// 📊 Status is the outcome of ingesting a single file
type Status int

const (
	StatusUnknown     Status = iota
	StatusIncluded           // Content is part of the digest
	StatusExcluded           // Matched an exclude pattern
	StatusNotIncluded        // Include list is non-empty and nothing matched
	StatusTooLarge           // Size hint or fetched length over the per-file limit
	StatusBinary             // Content classified as binary
	StatusError              // Fetch failed (not found, unavailable, timeout, retries exhausted)
	StatusDigestFull         // Total digest budget already spent
)

var statusNames = map[Status]string{
	StatusUnknown:     "unknown",
	StatusIncluded:    "included",
	StatusExcluded:    "skipped-excluded",
	StatusNotIncluded: "skipped-not-included",
	StatusTooLarge:    "skipped-too-large",
	StatusBinary:      "skipped-binary",
	StatusError:       "skipped-error",
	StatusDigestFull:  "skipped-digest-full",
}

// String returns a string representation of Status
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Skipped reports whether the status keeps the file out of the digest
func (s Status) Skipped() bool {
	return s != StatusIncluded && s != StatusUnknown
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return errors.Errorf("unknown status %q", string(b))
}

// 📄 Record is the outcome for one file path
type Record struct {
	Path    string `json:"path"`
	Status  Status `json:"status"`
	Size    int64  `json:"size"`             // fetched length, or the size hint when not fetched
	Reason  string `json:"reason,omitempty"` // matching pattern or error text
	Content []byte `json:"-"`                // only set for StatusIncluded
}

// 📈 Summary holds aggregate counters over a set of records
type Summary struct {
	Files       int   `json:"files"`
	Included    int   `json:"included"`
	Excluded    int   `json:"skipped_excluded"`
	NotIncluded int   `json:"skipped_not_included"`
	TooLarge    int   `json:"skipped_too_large"`
	Binary      int   `json:"skipped_binary"`
	Errored     int   `json:"skipped_error"`
	DigestFull  int   `json:"skipped_digest_full"`
	TotalBytes  int64 `json:"total_bytes"`
}

// Add counts a record
func (s *Summary) Add(r Record) {
	s.Files++
	switch r.Status {
	case StatusIncluded:
		s.Included++
		s.TotalBytes += int64(len(r.Content))
	case StatusExcluded:
		s.Excluded++
	case StatusNotIncluded:
		s.NotIncluded++
	case StatusTooLarge:
		s.TooLarge++
	case StatusBinary:
		s.Binary++
	case StatusError:
		s.Errored++
	case StatusDigestFull:
		s.DigestFull++
	}
}

// Skipped returns the number of files kept out of the digest
func (s Summary) Skipped() int {
	return s.Excluded + s.NotIncluded + s.TooLarge + s.Binary + s.Errored + s.DigestFull
}

// Count returns the counter for a single status
func (s Summary) Count(st Status) int {
	switch st {
	case StatusIncluded:
		return s.Included
	case StatusExcluded:
		return s.Excluded
	case StatusNotIncluded:
		return s.NotIncluded
	case StatusTooLarge:
		return s.TooLarge
	case StatusBinary:
		return s.Binary
	case StatusError:
		return s.Errored
	case StatusDigestFull:
		return s.DigestFull
	default:
		return 0
	}
}

// 🧮 Summarize counts every record
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		s.Add(r)
	}
	return s
}

// Statuses lists every reportable status in display order
func Statuses() []Status {
	return []Status{
		StatusIncluded,
		StatusExcluded,
		StatusNotIncluded,
		StatusTooLarge,
		StatusBinary,
		StatusError,
		StatusDigestFull,
	}
}
