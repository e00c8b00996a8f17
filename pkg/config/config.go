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

package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/filter"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const (
	DefaultMaxFileSize  int64 = 1 << 20
	DefaultMaxTotalSize int64 = 10 << 20

	DefaultGitHubTokenEnv = "GITHUB_TOKEN"
	DefaultGitLabTokenEnv = "GITLAB_TOKEN"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

// 🗺️ parsers is a list of available parsers
var parsers []Parser

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔑 Backend configures one hosted provider
type Backend struct {
	BaseURL  string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`   // API root, empty for the public service
	TokenEnv string   `json:"token_env,omitempty" yaml:"token_env,omitempty"` // environment variable holding the token
	Hosts    []string `json:"hosts,omitempty" yaml:"hosts,omitempty"`         // extra web hosts served by this backend

	token string
}

// Token returns the token read by ResolveTokens
func (b Backend) Token() string {
	return b.token
}

// Options converts the backend to provider options
func (b Backend) Options() remote.Options {
	return remote.Options{Token: b.token, BaseURL: b.BaseURL}
}

// 📏 Limits holds size limits and engine tuning
type Limits struct {
	MaxFileSize       int64    `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty"`
	MaxTotalSize      int64    `json:"max_total_size,omitempty" yaml:"max_total_size,omitempty"`
	Concurrency       int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	ListConcurrency   int      `json:"list_concurrency,omitempty" yaml:"list_concurrency,omitempty"`
	FetchTimeout      Duration `json:"fetch_timeout,omitempty" yaml:"fetch_timeout,omitempty"`
	MaxAttempts       int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	Backoff           Duration `json:"backoff,omitempty" yaml:"backoff,omitempty"`
	MaxBackoff        Duration `json:"max_backoff,omitempty" yaml:"max_backoff,omitempty"`
	RequestsPerSecond float64  `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
}

// 📚 Config is the process-wide configuration
type Config struct {
	GitHub          Backend  `json:"github" yaml:"github"`
	GitLab          Backend  `json:"gitlab" yaml:"gitlab"`
	Limits          Limits   `json:"limits" yaml:"limits"`
	DefaultExcludes []string `json:"default_excludes,omitempty" yaml:"default_excludes,omitempty"`

	location string
}

// Default returns a validated configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate() // the zero config is always valid
	return cfg
}

// 🎯 Load loads the configuration from a file and validates it
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Location is the file the config was loaded from, empty for Default
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate fills defaults and rejects bad values
func (cfg *Config) Validate() error {
	if cfg.GitHub.TokenEnv == "" {
		cfg.GitHub.TokenEnv = DefaultGitHubTokenEnv
	}
	if cfg.GitLab.TokenEnv == "" {
		cfg.GitLab.TokenEnv = DefaultGitLabTokenEnv
	}
	for _, b := range []*Backend{&cfg.GitHub, &cfg.GitLab} {
		b.BaseURL = strings.TrimSpace(b.BaseURL)
		if b.BaseURL != "" && !strings.Contains(b.BaseURL, "://") {
			return errors.Errorf("base_url must be an absolute URL: %q", b.BaseURL)
		}
	}

	if cfg.Limits.MaxFileSize == 0 {
		cfg.Limits.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.Limits.MaxTotalSize == 0 {
		cfg.Limits.MaxTotalSize = DefaultMaxTotalSize
	}
	if cfg.Limits.MaxFileSize < 0 || cfg.Limits.MaxTotalSize < 0 {
		return errors.New("limits.max_file_size and limits.max_total_size must not be negative")
	}
	if err := cfg.EngineOptions().Validate(); err != nil {
		return errors.Errorf("limits: %w", err)
	}

	if cfg.DefaultExcludes == nil {
		cfg.DefaultExcludes = append([]string(nil), filter.DefaultExcludes...)
	}
	if err := (filter.Config{Exclude: cfg.DefaultExcludes}).Validate(); err != nil {
		return errors.Errorf("default_excludes: %w", err)
	}

	return nil
}

// 🔐 ResolveTokens reads backend tokens from the configured environment
// variables. lookup is os.LookupEnv when nil.
func (cfg *Config) ResolveTokens(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, b := range []*Backend{&cfg.GitHub, &cfg.GitLab} {
		if v, ok := lookup(b.TokenEnv); ok {
			b.token = strings.TrimSpace(v)
		}
	}
}

// Backend returns the settings for a provider kind. Local and unknown kinds
// get an empty backend.
func (cfg *Config) Backend(kind remote.Kind) Backend {
	switch kind {
	case remote.KindGitHub:
		return cfg.GitHub
	case remote.KindGitLab:
		return cfg.GitLab
	default:
		return Backend{}
	}
}

// Hosts maps web hosts to provider kinds, including configured extra hosts
func (cfg *Config) Hosts() remote.Hosts {
	extra := map[string]remote.Kind{}
	for _, h := range cfg.GitHub.Hosts {
		extra[h] = remote.KindGitHub
	}
	for _, h := range cfg.GitLab.Hosts {
		extra[h] = remote.KindGitLab
	}
	return remote.DefaultHosts.With(extra)
}

// EngineOptions converts the limits to engine options
func (cfg *Config) EngineOptions() ingest.Options {
	return ingest.Options{
		Concurrency:       cfg.Limits.Concurrency,
		ListConcurrency:   cfg.Limits.ListConcurrency,
		FetchTimeout:      cfg.Limits.FetchTimeout.Duration(),
		MaxAttempts:       cfg.Limits.MaxAttempts,
		Backoff:           cfg.Limits.Backoff.Duration(),
		MaxBackoff:        cfg.Limits.MaxBackoff.Duration(),
		RequestsPerSecond: cfg.Limits.RequestsPerSecond,
	}
}

// Filter returns the base filter: size limits plus default excludes
func (cfg *Config) Filter(useDefaultExcludes bool) filter.Config {
	f := filter.Config{MaxFileSize: cfg.Limits.MaxFileSize, MaxTotalSize: cfg.Limits.MaxTotalSize}
	if useDefaultExcludes {
		f = f.WithExcludes(cfg.DefaultExcludes...)
	}
	return f
}

// 📝 String returns a string representation of the config. Tokens are reported
// only as set or unset.
func (cfg *Config) String() string {
	state := func(b Backend) string {
		if b.token == "" {
			return "unset"
		}
		return "set"
	}
	return fmt.Sprintf("github(token %s) gitlab(token %s) max_file_size=%d max_total_size=%d excludes=%d",
		state(cfg.GitHub), state(cfg.GitLab), cfg.Limits.MaxFileSize, cfg.Limits.MaxTotalSize, len(cfg.DefaultExcludes))
}
