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
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/status"
	"github.com/walteh/gitingest/pkg/text"
)

// 📋 Result is the outcome of one ingestion. Records are sorted by path and
// cover every file in the tree.
type Result struct {
	Reference remote.Reference
	Root      remote.Root
	Records   []status.Record
	Summary   status.Summary
}

// Name is the last element of the repository location
func (r *Result) Name() string {
	loc := strings.TrimRight(filepath.ToSlash(r.Reference.Location), "/")
	if loc == "" {
		return "."
	}
	return path.Base(loc)
}

// Included returns the paths with StatusIncluded, in order
func (r *Result) Included() []string {
	var out []string
	for _, rec := range r.Records {
		if rec.Status == status.StatusIncluded {
			out = append(out, rec.Path)
		}
	}
	return out
}

// Files returns the accepted files in digest order
func (r *Result) Files() []text.File {
	var out []text.File
	for _, rec := range r.Records {
		if rec.Status == status.StatusIncluded {
			out = append(out, text.File{Path: rec.Path, Content: rec.Content})
		}
	}
	return out
}

// WriteDigest writes the accepted files to w
func (r *Result) WriteDigest(w io.Writer) error {
	return text.WriteDigest(w, r.Files())
}

// 📝 Digest renders the accepted files
func (r *Result) Digest() string {
	return text.Digest(r.Files())
}

// 🌳 Tree renders the included paths under the repository name
func (r *Result) Tree() string {
	return text.Tree(r.Name(), r.Included())
}
