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

package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name  string
		files []File
		want  string
	}{
		{
			name:  "no_files",
			files: nil,
			want:  "",
		},
		{
			name: "content_with_trailing_newline",
			files: []File{
				{Path: "a.txt", Content: []byte("hello\n")},
			},
			want: separator + "\nFILE: a.txt\n" + separator + "\nhello\n\n",
		},
		{
			name: "content_without_trailing_newline",
			files: []File{
				{Path: "a.txt", Content: []byte("hello")},
				{Path: "b/c.go", Content: []byte("package c\n")},
			},
			want: separator + "\nFILE: a.txt\n" + separator + "\nhello\n\n" +
				separator + "\nFILE: b/c.go\n" + separator + "\npackage c\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Digest(tt.files), "digest should match")
		})
	}
}

func TestTree(t *testing.T) {
	got := Tree("repo", []string{
		"z.txt",
		"a.txt",
		"src/main.go",
		"src/internal/util.go",
		"docs/readme.md",
	})

	want := "repo/\n" +
		"├── docs/\n" +
		"│   └── readme.md\n" +
		"├── src/\n" +
		"│   ├── internal/\n" +
		"│   │   └── util.go\n" +
		"│   └── main.go\n" +
		"├── a.txt\n" +
		"└── z.txt\n"

	assert.Equal(t, want, got, "tree should list directories first, sorted by name")
}

func TestFence(t *testing.T) {
	tests := []struct {
		name string
		path string
		in   string
		want string
	}{
		{name: "go_file", path: "main.go", in: "package main\n", want: "```go\npackage main\n```"},
		{name: "nested_yaml", path: "a/b/c.yml", in: "k: v", want: "```yml\nk: v\n```"},
		{name: "unknown_extension", path: "notes.txt", in: "plain\n", want: "plain\n"},
		{name: "no_extension", path: "Makefile", in: "all:\n", want: "all:\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fence(tt.path, tt.in))
		})
	}
}
