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
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

const separator = "================================================"

// 📄 File is one accepted file in a digest
type File struct {
	Path    string
	Content []byte
}

// 📝 WriteDigest writes each file as a path header followed by its content.
// Files are written in the order given.
func WriteDigest(w io.Writer, files []File) error {
	for _, f := range files {
		if _, err := fmt.Fprintf(w, "%s\nFILE: %s\n%s\n", separator, f.Path, separator); err != nil {
			return err
		}
		if _, err := w.Write(f.Content); err != nil {
			return err
		}
		trailer := "\n"
		if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
			trailer = "\n\n"
		}
		if _, err := io.WriteString(w, trailer); err != nil {
			return err
		}
	}
	return nil
}

// 🔤 Digest renders files with WriteDigest into a string
func Digest(files []File) string {
	var sb strings.Builder
	_ = WriteDigest(&sb, files) // strings.Builder never fails
	return sb.String()
}

type treeNode struct {
	name     string
	dir      bool
	children map[string]*treeNode
}

// 🌳 Tree renders slash-separated file paths as an indented tree under a root
// line. Directories come before files and both are sorted by name.
func Tree(root string, paths []string) string {
	top := &treeNode{name: root, dir: true, children: map[string]*treeNode{}}
	for _, p := range paths {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		parts := strings.Split(p, "/")
		cur := top
		for i, part := range parts {
			child, ok := cur.children[part]
			if !ok {
				child = &treeNode{name: part, dir: i < len(parts)-1, children: map[string]*treeNode{}}
				cur.children[part] = child
			}
			if i < len(parts)-1 {
				child.dir = true
			}
			cur = child
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSuffix(root, "/") + "/\n")
	writeChildren(&sb, top, "")
	return sb.String()
}

func writeChildren(sb *strings.Builder, n *treeNode, prefix string) {
	children := make([]*treeNode, 0, len(n.children))
	for _, c := range n.children {
		children = append(children, c)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].dir != children[j].dir {
			return children[i].dir
		}
		return children[i].name < children[j].name
	})

	for i, c := range children {
		last := i == len(children)-1
		marker, next := "├── ", "│   "
		if last {
			marker, next = "└── ", "    "
		}
		name := c.name
		if c.dir {
			name += "/"
		}
		sb.WriteString(prefix + marker + name + "\n")
		if c.dir {
			writeChildren(sb, c, prefix+next)
		}
	}
}

var fencedExtensions = map[string]bool{
	"rs": true, "js": true, "py": true, "go": true, "java": true, "c": true, "cpp": true,
	"h": true, "ts": true, "sh": true, "json": true, "yaml": true, "yml": true,
	"toml": true, "md": true,
}

// 🧱 Fence wraps content of well-known source files in a markdown code block
// tagged with the file extension. Other content is returned unchanged.
func Fence(filePath string, content string) string {
	ext := strings.TrimPrefix(path.Ext(filePath), ".")
	if !fencedExtensions[ext] {
		return content
	}
	return fmt.Sprintf("```%s\n%s\n```", ext, strings.TrimSuffix(content, "\n"))
}
