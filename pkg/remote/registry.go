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
	"net/http"
	"slices"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// Options configures a provider at construction time
type Options struct {
	Token      string       // opaque credential, never logged
	BaseURL    string       // API root for hosted backends, empty for the public host
	HTTPClient *http.Client // optional transport override
}

// 🏭 Factory creates a provider
type Factory func(ctx context.Context, opts Options) (Provider, error)

var (
	registryMu sync.RWMutex
	// 🗺️ registry maps backend kinds to factories
	registry = map[Kind]Factory{}
)

// 📝 Register makes a provider factory available to Open
func Register(kind Kind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Kinds lists the registered backend kinds in sorted order
func Kinds() []Kind {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// 🎯 Open builds a provider for kind
func Open(ctx context.Context, kind Kind, opts Options) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		options := []string{}
		for _, k := range Kinds() {
			options = append(options, string(k))
		}
		return nil, errors.Errorf("provider %s not found, options: %s", kind, strings.Join(options, ", "))
	}

	p, err := factory(ctx, opts)
	if err != nil {
		return nil, errors.Errorf("creating %s provider: %w", kind, err)
	}
	return p, nil
}
