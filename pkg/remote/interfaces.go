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

	"github.com/walteh/gitingest/pkg/text"
)

// Kind names a repository backend
type Kind string

const (
	KindLocal  Kind = "local"
	KindGitHub Kind = "github"
	KindGitLab Kind = "gitlab"
)

// RefKind says how a revision name should be interpreted
type RefKind int

const (
	// RefDefault selects the backend's default branch (or HEAD locally)
	RefDefault RefKind = iota
	// RefName is any branch, tag or commit-ish, resolved by the backend
	RefName
	RefBranch
	RefTag
	RefCommit
)

func (k RefKind) String() string {
	switch k {
	case RefDefault:
		return "default"
	case RefName:
		return "name"
	case RefBranch:
		return "branch"
	case RefTag:
		return "tag"
	case RefCommit:
		return "commit"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// Revision is a symbolic point in a repository's history
type Revision struct {
	Kind RefKind `json:"kind"`
	Name string  `json:"name,omitempty"`
}

// String renders the revision in the same syntax ParseRevision accepts
func (r Revision) String() string {
	switch r.Kind {
	case RefDefault:
		return ""
	case RefBranch, RefTag, RefCommit:
		return r.Kind.String() + ":" + r.Name
	default:
		return r.Name
	}
}

// IsDefault reports whether the revision selects the default branch
func (r Revision) IsDefault() bool {
	return r.Kind == RefDefault
}

// 📦 Reference identifies a repository and a revision. It is a value type and
// is never modified after construction.
type Reference struct {
	Kind     Kind     `json:"kind"`
	Location string   `json:"location"` // filesystem path, "owner/repo" or "group/sub/project"
	Revision Revision `json:"revision"`
}

func (r Reference) String() string {
	s := string(r.Kind) + ":" + r.Location
	if rev := r.Revision.String(); rev != "" {
		s += "@" + rev
	}
	return s
}

// WithRevision returns a copy of r pointing at rev
func (r Reference) WithRevision(rev Revision) Reference {
	r.Revision = rev
	return r
}

// 🌳 Root anchors every listing and fetch to one snapshot
type Root struct {
	Location string `json:"location"`
	Commit   string `json:"commit"`
}

// ShortCommit returns the first seven characters of the commit
func (r Root) ShortCommit() string {
	if len(r.Commit) > 7 {
		return r.Commit[:7]
	}
	return r.Commit
}

// EntryType distinguishes files from directories in a listing
type EntryType int

const (
	EntryFile EntryType = iota
	EntryDir
)

func (t EntryType) String() string {
	if t == EntryDir {
		return "dir"
	}
	return "file"
}

// 📄 TreeEntry is one node in a repository tree
type TreeEntry struct {
	Path    string    `json:"path"` // slash separated, relative to the repository root
	Type    EntryType `json:"type"`
	Size    int64     `json:"size,omitempty"`
	HasSize bool      `json:"-"` // false when the backend gave no size hint
}

// IsDir reports whether the entry is a directory
func (e TreeEntry) IsDir() bool {
	return e.Type == EntryDir
}

// Blob is the fetched content of one file
type Blob struct {
	Data     []byte
	Size     int64
	Encoding text.Encoding
}

// NewBlob wraps data, recording its length and encoding classification
func NewBlob(data []byte) *Blob {
	return &Blob{
		Data:     data,
		Size:     int64(len(data)),
		Encoding: text.Classify(data),
	}
}

// IsBinary reports whether the blob was classified as binary
func (b *Blob) IsBinary() bool {
	return b.Encoding == text.EncodingBinary
}

// 🔌 Provider is implemented by every repository backend.
//
// Implementations hold only transport and auth configuration and are safe for
// concurrent use. None of them retry; retry policy belongs to the caller.
type Provider interface {
	// Kind returns the backend kind (e.g. "github")
	Kind() Kind

	// 🎯 Resolve turns a symbolic revision into a stable root
	Resolve(ctx context.Context, ref Reference) (Root, error)

	// 📂 ListTree returns the immediate children of dir ("" is the repository root)
	ListTree(ctx context.Context, root Root, dir string) ([]TreeEntry, error)

	// 📄 FetchBlob returns the raw bytes of the file at path
	FetchBlob(ctx context.Context, root Root, path string) (*Blob, error)
}

// RecursiveLister is implemented by backends with a native recursive listing.
// Returning ErrTreeTruncated asks the caller to fall back to ListTree.
type RecursiveLister interface {
	ListTreeRecursive(ctx context.Context, root Root) ([]TreeEntry, error)
}

// SearchResult is one repository found by a Searcher
type SearchResult struct {
	Kind          Kind   `json:"kind"`
	Location      string `json:"location"`
	URL           string `json:"url"`
	Description   string `json:"description,omitempty"`
	Stars         int    `json:"stars"`
	DefaultBranch string `json:"default_branch,omitempty"`
}

// 🔍 Searcher is implemented by hosted backends that can find repositories
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}
