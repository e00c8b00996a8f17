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
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/walteh/gitingest/pkg/filter"
)

// Patterns is a pattern list given as a JSON array or a comma-separated string
type Patterns []string

func (p *Patterns) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = filter.ParseList(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return invalid("patterns must be a string or an array of strings")
	}
	*p = nil
	for _, item := range list {
		*p = append(*p, filter.ParseList(item)...)
	}
	return nil
}

// Int is a non-negative integer given as a JSON number or a numeric string
type Int int64

func (n *Int) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return invalid("expected an integer, got %q", s)
		}
		*n = Int(v)
	} else {
		var v int64
		if err := json.Unmarshal(b, &v); err != nil {
			return invalid("expected an integer, got %s", string(b))
		}
		*n = Int(v)
	}
	if *n < 0 {
		return invalid("expected a non-negative integer, got %d", int64(*n))
	}
	return nil
}

// decode strictly decodes tool arguments into v
func decode(args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if te := AsError(err); te.Code == CodeInvalidArguments && te.err == nil {
			return te
		}
		return invalid("decoding arguments: %s", err.Error())
	}
	return nil
}
