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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
// Size attributes may use the kb, mb and gb variables, for example
// max_file_size = 2 * mb.
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclBackend struct {
	BaseURL  string   `hcl:"base_url,optional"`
	TokenEnv string   `hcl:"token_env,optional"`
	Hosts    []string `hcl:"hosts,optional"`
}

func (b *hclBackend) backend() Backend {
	if b == nil {
		return Backend{}
	}
	return Backend{BaseURL: b.BaseURL, TokenEnv: b.TokenEnv, Hosts: b.Hosts}
}

type hclLimits struct {
	MaxFileSize       int64   `hcl:"max_file_size,optional"`
	MaxTotalSize      int64   `hcl:"max_total_size,optional"`
	Concurrency       int     `hcl:"concurrency,optional"`
	ListConcurrency   int     `hcl:"list_concurrency,optional"`
	FetchTimeout      string  `hcl:"fetch_timeout,optional"`
	MaxAttempts       int     `hcl:"max_attempts,optional"`
	Backoff           string  `hcl:"backoff,optional"`
	MaxBackoff        string  `hcl:"max_backoff,optional"`
	RequestsPerSecond float64 `hcl:"requests_per_second,optional"`
}

type hclConfig struct {
	GitHub          *hclBackend `hcl:"github,block"`
	GitLab          *hclBackend `hcl:"gitlab,block"`
	Limits          *hclLimits  `hcl:"limits,block"`
	DefaultExcludes []string    `hcl:"default_excludes,optional"`
}

func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"kb": cty.NumberIntVal(1 << 10),
			"mb": cty.NumberIntVal(1 << 20),
			"gb": cty.NumberIntVal(1 << 30),
		},
	}
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		GitHub:          hclCfg.GitHub.backend(),
		GitLab:          hclCfg.GitLab.backend(),
		DefaultExcludes: hclCfg.DefaultExcludes,
	}

	if l := hclCfg.Limits; l != nil {
		cfg.Limits = Limits{
			MaxFileSize:       l.MaxFileSize,
			MaxTotalSize:      l.MaxTotalSize,
			Concurrency:       l.Concurrency,
			ListConcurrency:   l.ListConcurrency,
			MaxAttempts:       l.MaxAttempts,
			RequestsPerSecond: l.RequestsPerSecond,
		}
		for _, d := range []struct {
			name string
			raw  string
			dst  *Duration
		}{
			{"fetch_timeout", l.FetchTimeout, &cfg.Limits.FetchTimeout},
			{"backoff", l.Backoff, &cfg.Limits.Backoff},
			{"max_backoff", l.MaxBackoff, &cfg.Limits.MaxBackoff},
		} {
			v, err := ParseDuration(d.raw)
			if err != nil {
				return nil, errors.Errorf("limits.%s: %w", d.name, err)
			}
			*d.dst = v
		}
	}

	return cfg, nil
}
