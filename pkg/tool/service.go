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

package tool

import (
	"context"
	"strings"
	"sync"

	"github.com/walteh/gitingest/pkg/config"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"

	// backends register themselves with the remote registry
	_ "github.com/walteh/gitingest/pkg/remote/github"
	_ "github.com/walteh/gitingest/pkg/remote/gitlab"
	_ "github.com/walteh/gitingest/pkg/remote/local"
)

// OpenFunc constructs a provider, remote.Open by default
type OpenFunc func(ctx context.Context, kind remote.Kind, opts remote.Options) (remote.Provider, error)

// 🏗️ Service holds what every tool call shares: configuration, the engine and
// providers opened with the configured credentials.
type Service struct {
	cfg    *config.Config
	engine *ingest.Engine
	hosts  remote.Hosts
	open   OpenFunc

	mu        sync.Mutex
	providers map[remote.Kind]remote.Provider
}

// ServiceOption customizes a Service
type ServiceOption func(*Service)

// WithOpener replaces the provider constructor
func WithOpener(open OpenFunc) ServiceOption {
	return func(s *Service) { s.open = open }
}

// WithEngine replaces the engine built from the config limits
func WithEngine(e *ingest.Engine) ServiceOption {
	return func(s *Service) { s.engine = e }
}

// NewService creates a service. A nil config means config.Default().
func NewService(cfg *config.Config, opts ...ServiceOption) *Service {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Service{
		cfg:       cfg,
		hosts:     cfg.Hosts(),
		open:      remote.Open,
		providers: map[remote.Kind]remote.Provider{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = ingest.New(cfg.EngineOptions())
	}
	return s
}

// Config returns the service configuration
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Engine returns the ingestion engine
func (s *Service) Engine() *ingest.Engine {
	return s.engine
}

// 🔍 Reference parses a repository identifier and optional revision
func (s *Service) Reference(repo, revision string) (remote.Reference, error) {
	if strings.TrimSpace(repo) == "" {
		return remote.Reference{}, invalid("repo is required")
	}
	ref, err := s.hosts.Parse(repo, revision)
	if err != nil {
		return remote.Reference{}, AsError(err)
	}
	return ref, nil
}

// 🔌 Provider returns a provider for kind. With an empty token the shared
// provider built from the configured credentials is reused, otherwise a fresh
// provider carrying token is built for this call only.
func (s *Service) Provider(ctx context.Context, kind remote.Kind, token string) (remote.Provider, error) {
	opts := s.cfg.Backend(kind).Options()
	if token != "" {
		opts.Token = token
		return s.openProvider(ctx, kind, opts)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.providers[kind]; ok {
		return p, nil
	}
	p, err := s.openProvider(ctx, kind, opts)
	if err != nil {
		return nil, err
	}
	s.providers[kind] = p
	return p, nil
}

func (s *Service) openProvider(ctx context.Context, kind remote.Kind, opts remote.Options) (remote.Provider, error) {
	p, err := s.open(ctx, kind, opts)
	if err != nil {
		return nil, errors.Errorf("%w: %s", remote.ErrInvalidIdentifier, err.Error())
	}
	return p, nil
}

// Registry returns a registry holding every tool bound to s
func (s *Service) Registry() *Registry {
	r := NewRegistry()
	r.Register(s.IngestTool())
	r.Register(s.TreeTool())
	r.Register(s.ReadTool())
	r.Register(s.SearchTool())
	return r
}

func (s *Service) kinds() string {
	var names []string
	for _, k := range remote.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
