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
	"fmt"

	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// Code is a machine-readable failure category
type Code string

const (
	CodeInvalidArguments   Code = "invalid_arguments"
	CodeReferenceNotFound  Code = "reference_not_found"
	CodeAuthRequired       Code = "auth_required"
	CodeRateLimited        Code = "rate_limited"
	CodeBackendUnavailable Code = "backend_unavailable"
	CodeNotFound           Code = "not_found"
	CodeTooLarge           Code = "too_large"
	CodeCancelled          Code = "cancelled"
)

// ❌ Error is a tool failure the host can tell apart by Code
type Error struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	RetryAfter string `json:"retry_after,omitempty"`

	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.err
}

func invalid(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArguments, Message: fmt.Sprintf(format, args...)}
}

// AsError converts err into an *Error, classifying it with remote.Classify
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}

	out := &Error{Message: err.Error(), err: err}
	if errors.Is(err, ingest.ErrInvalidFilter) {
		out.Code = CodeInvalidArguments
		return out
	}

	switch remote.Classify(err) {
	case remote.ErrInvalidIdentifier:
		out.Code = CodeInvalidArguments
	case remote.ErrReferenceNotFound:
		out.Code = CodeReferenceNotFound
	case remote.ErrAuthRequired:
		out.Code = CodeAuthRequired
	case remote.ErrRateLimited:
		out.Code = CodeRateLimited
		if d, ok := remote.RetryAfter(err); ok {
			out.RetryAfter = d.String()
		}
	case remote.ErrNotFound:
		out.Code = CodeNotFound
	case remote.ErrCancelled:
		out.Code = CodeCancelled
	default:
		out.Code = CodeBackendUnavailable
	}
	return out
}
