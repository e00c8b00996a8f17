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

// Package filter decides which repository paths take part in a digest.
//
// Patterns are doublestar globs matched against slash-separated,
// repository-relative paths. A pattern without a slash also matches any single
// path component, so "*.bin" matches "assets/logo.bin" and "node_modules"
// matches "web/node_modules/react/index.js". A pattern with a slash matches the
// whole path or any leading directory of it, so "docs/internal" matches
// "docs/internal/notes.md". A leading slash anchors nothing extra and is ignored.
package filter

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/walteh/gitingest/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Config is the per-call filter and size configuration
type Config struct {
	Include      []string `json:"include,omitempty"`
	Exclude      []string `json:"exclude,omitempty"`
	MaxFileSize  int64    `json:"max_file_size,omitempty"`  // <= 0 means unlimited
	MaxTotalSize int64    `json:"max_total_size,omitempty"` // <= 0 means unlimited
}

// 🔍 Validate checks every pattern and size
func (c Config) Validate() error {
	for _, p := range c.Include {
		if !doublestar.ValidatePattern(normalize(p)) {
			return errors.Errorf("invalid include pattern %q", p)
		}
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(normalize(p)) {
			return errors.Errorf("invalid exclude pattern %q", p)
		}
	}
	if c.MaxFileSize < 0 {
		return errors.Errorf("max file size must not be negative: %d", c.MaxFileSize)
	}
	if c.MaxTotalSize < 0 {
		return errors.Errorf("max total size must not be negative: %d", c.MaxTotalSize)
	}
	return nil
}

// 🎯 Classify applies the include and exclude stages to a path.
//
// It returns StatusExcluded with the first matching exclude pattern,
// StatusNotIncluded when the include list is non-empty and nothing matched, and
// StatusIncluded otherwise. Exclude always wins over include.
func (c Config) Classify(p string) (status.Status, string) {
	for _, pattern := range c.Exclude {
		if Match(pattern, p) {
			return status.StatusExcluded, pattern
		}
	}
	if len(c.Include) == 0 {
		return status.StatusIncluded, ""
	}
	for _, pattern := range c.Include {
		if Match(pattern, p) {
			return status.StatusIncluded, ""
		}
	}
	return status.StatusNotIncluded, ""
}

// TooLarge reports whether size is over the per-file limit
func (c Config) TooLarge(size int64) bool {
	return c.MaxFileSize > 0 && size > c.MaxFileSize
}

// Fits reports whether adding size to total stays within the digest budget
func (c Config) Fits(total, size int64) bool {
	return c.MaxTotalSize <= 0 || total+size <= c.MaxTotalSize
}

// WithExcludes returns a copy of c with extra exclude patterns appended
func (c Config) WithExcludes(patterns ...string) Config {
	out := c
	out.Exclude = append(append([]string{}, c.Exclude...), patterns...)
	return out
}

// 🔍 Match reports whether pattern matches the repository path p
func Match(pattern, p string) bool {
	pattern = normalize(pattern)
	p = strings.Trim(p, "/")
	if pattern == "" || p == "" {
		return false
	}

	if ok, err := doublestar.Match(pattern, p); err == nil && ok {
		return true
	}

	if !strings.Contains(pattern, "/") {
		for _, part := range strings.Split(p, "/") {
			if ok, err := doublestar.Match(pattern, part); err == nil && ok {
				return true
			}
		}
		return false
	}

	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if ok, err := doublestar.Match(pattern, dir); err == nil && ok {
			return true
		}
	}
	return false
}

func normalize(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	pattern = strings.TrimPrefix(pattern, "/")
	return strings.TrimSuffix(pattern, "/")
}

// ParseList splits a comma-separated pattern list, dropping empty items
func ParseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
