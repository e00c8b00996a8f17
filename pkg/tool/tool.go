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

// Package tool maps named tool invocations with JSON arguments onto provider
// selection and the ingestion engine.
package tool

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/gitingest/pkg/status"
)

// 🧰 Tool is one callable tool
type Tool struct {
	Name        string
	Description string
	Schema      Schema
	Executor    Executor
}

// Executor runs a tool with raw JSON arguments
type Executor interface {
	Execute(ctx context.Context, args json.RawMessage) (*Result, error)
}

// ExecutorFunc adapts a function to Executor
type ExecutorFunc func(ctx context.Context, args json.RawMessage) (*Result, error)

func (f ExecutorFunc) Execute(ctx context.Context, args json.RawMessage) (*Result, error) {
	return f(ctx, args)
}

// Schema describes a tool's object-shaped arguments
type Schema struct {
	Parameters []Parameter
}

// Parameter is one named argument
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean", "array"
	Description string
	Required    bool
	OneOf       []string // alternative types, used instead of Type when set
}

// MarshalJSON renders the schema as a JSON Schema object
func (s Schema) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(s.Parameters))
	required := []string{}
	for _, p := range s.Parameters {
		prop := map[string]any{"description": p.Description}
		if len(p.OneOf) > 0 {
			var alts []map[string]any
			for _, typ := range p.OneOf {
				alt := map[string]any{"type": typ}
				if typ == "array" {
					alt["items"] = map[string]any{"type": "string"}
				}
				alts = append(alts, alt)
			}
			prop["oneOf"] = alts
		} else {
			prop["type"] = p.Type
		}
		props[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return json.Marshal(map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	})
}

// 📤 Result is what a tool returns to the host
type Result struct {
	Text    string          `json:"text"`
	Summary *status.Summary `json:"summary,omitempty"`
	Commit  string          `json:"commit,omitempty"`
}

// Descriptor is the wire shape of a tool listing
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// 🗂️ Registry holds the available tools by name
type Registry struct {
	tools map[string]*Tool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool, replacing any tool with the same name
func (r *Registry) Register(t *Tool) {
	r.tools[t.Name] = t
}

// Get retrieves a tool by name
func (r *Registry) Get(name string) *Tool {
	return r.tools[name]
}

// All returns every tool sorted by name
func (r *Registry) All() []*Tool {
	out := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Descriptors lists every tool in wire form
func (r *Registry) Descriptors() []Descriptor {
	var out []Descriptor
	for _, t := range r.All() {
		out = append(out, Descriptor{Name: t.Name, Description: t.Description, InputSchema: t.Schema})
	}
	return out
}

// 🎯 Call runs the named tool. Every failure is returned as *Error.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (*Result, error) {
	t := r.Get(name)
	if t == nil {
		return nil, &Error{Code: CodeNotFound, Message: "unknown tool " + name}
	}

	zerolog.Ctx(ctx).Debug().Str("tool", name).Msg("calling tool")

	res, err := t.Executor.Execute(ctx, args)
	if err != nil {
		return nil, AsError(err)
	}
	return res, nil
}
