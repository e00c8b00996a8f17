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
	"net/url"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Hosts maps web hostnames to the backend serving them
type Hosts map[string]Kind

// DefaultHosts knows the public GitHub and GitLab instances
var DefaultHosts = Hosts{
	"github.com": KindGitHub,
	"gitlab.com": KindGitLab,
}

// With returns a copy of h with extra host mappings
func (h Hosts) With(extra map[string]Kind) Hosts {
	out := make(Hosts, len(h)+len(extra))
	for k, v := range h {
		out[k] = v
	}
	for k, v := range extra {
		out[strings.ToLower(k)] = v
	}
	return out
}

// ParseIdentifier parses id against DefaultHosts
func ParseIdentifier(id, revision string) (Reference, error) {
	return DefaultHosts.Parse(id, revision)
}

// 🔍 Parse turns a repository identifier into a Reference.
//
// Accepted shapes:
//
//	github:owner/repo
//	gitlab:group/sub/project
//	https://github.com/owner/repo[/tree/<ref>]
//	https://gitlab.com/group/project[/-/tree/<ref>]
//	github.com/owner/repo
//	git@github.com:owner/repo.git
//	file:///path/to/repo
//	./any/other/path
//
// A non-empty revision wins over a ref embedded in a web URL.
func (h Hosts) Parse(id, revision string) (Reference, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reference{}, errors.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}

	ref, embedded, err := h.parseLocation(id)
	if err != nil {
		return Reference{}, err
	}

	if strings.TrimSpace(revision) == "" {
		revision = embedded
	}
	ref.Revision = ParseRevision(revision)
	return ref, nil
}

func (h Hosts) parseLocation(id string) (Reference, string, error) {
	switch {
	case strings.HasPrefix(id, "github:"):
		loc, err := hostedPath(KindGitHub, strings.TrimPrefix(id, "github:"))
		return Reference{Kind: KindGitHub, Location: loc}, "", err
	case strings.HasPrefix(id, "gitlab:"):
		loc, err := hostedPath(KindGitLab, strings.TrimPrefix(id, "gitlab:"))
		return Reference{Kind: KindGitLab, Location: loc}, "", err
	case strings.HasPrefix(id, "file://"):
		return localReference(strings.TrimPrefix(id, "file://")), "", nil
	case strings.Contains(id, "://"):
		u, err := url.Parse(id)
		if err != nil {
			return Reference{}, "", errors.Errorf("%w: %s: %s", ErrInvalidIdentifier, id, err.Error())
		}
		return h.parseWeb(id, u.Host, u.Path)
	case strings.HasPrefix(id, "git@"):
		host, p, ok := strings.Cut(strings.TrimPrefix(id, "git@"), ":")
		if !ok {
			return Reference{}, "", errors.Errorf("%w: %s", ErrInvalidIdentifier, id)
		}
		return h.parseWeb(id, host, p)
	}

	if host, rest, ok := strings.Cut(id, "/"); ok {
		if _, known := h.kind(host); known {
			return h.parseWeb(id, host, rest)
		}
	}

	return localReference(id), "", nil
}

func (h Hosts) kind(host string) (Kind, bool) {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	k, ok := h[host]
	return k, ok
}

func (h Hosts) parseWeb(id, host, p string) (Reference, string, error) {
	kind, ok := h.kind(host)
	if !ok {
		return Reference{}, "", errors.Errorf("%w: unknown host %q in %s", ErrInvalidIdentifier, host, id)
	}

	p = strings.Trim(p, "/")
	var embedded string

	switch kind {
	case KindGitHub:
		parts := strings.Split(p, "/")
		if len(parts) > 3 && (parts[2] == "tree" || parts[2] == "blob" || parts[2] == "commit") {
			embedded = strings.Join(parts[3:], "/")
		}
		if len(parts) > 2 {
			parts = parts[:2]
		}
		p = strings.Join(parts, "/")
	case KindGitLab:
		if project, rest, ok := strings.Cut(p, "/-/"); ok {
			p = project
			if kindPart, refPart, ok := strings.Cut(rest, "/"); ok && (kindPart == "tree" || kindPart == "blob" || kindPart == "commit") {
				embedded = refPart
			}
		}
	}

	loc, err := hostedPath(kind, p)
	if err != nil {
		return Reference{}, "", err
	}
	return Reference{Kind: kind, Location: loc}, embedded, nil
}

func hostedPath(kind Kind, p string) (string, error) {
	p = strings.TrimSuffix(strings.Trim(strings.TrimSpace(p), "/"), ".git")
	parts := strings.Split(p, "/")
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			return "", errors.Errorf("%w: empty path segment in %q", ErrInvalidIdentifier, p)
		}
	}

	switch {
	case kind == KindGitHub && len(parts) != 2:
		return "", errors.Errorf("%w: github repository must be owner/repo, got %q", ErrInvalidIdentifier, p)
	case kind == KindGitLab && len(parts) < 2:
		return "", errors.Errorf("%w: gitlab project must be group/project, got %q", ErrInvalidIdentifier, p)
	}
	return p, nil
}

func localReference(p string) Reference {
	return Reference{Kind: KindLocal, Location: filepath.Clean(p)}
}

// ParseRevision reads the revision syntax "", "name", "branch:x", "tag:x"
// and "commit:sha".
func ParseRevision(s string) Revision {
	s = strings.TrimSpace(s)
	if s == "" {
		return Revision{Kind: RefDefault}
	}
	for _, k := range []RefKind{RefBranch, RefTag, RefCommit} {
		if name, ok := strings.CutPrefix(s, k.String()+":"); ok && name != "" {
			return Revision{Kind: k, Name: name}
		}
	}
	return Revision{Kind: RefName, Name: s}
}
