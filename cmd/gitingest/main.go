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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/walteh/gitingest/pkg/ingest"
	"github.com/walteh/gitingest/pkg/remote"
	"github.com/walteh/gitingest/pkg/tool"
	"gitlab.com/tozd/go/errors"
)

func main() {
	ctx := context.Background()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprint(os.Stderr, pterm.Error.Sprintln(describe(err)))
		os.Exit(1)
	}
}

// describe prefixes repository failures with their category. Other errors,
// such as flag errors, are printed as they are.
func describe(err error) string {
	var te *tool.Error
	if !errors.As(err, &te) {
		if remote.Classify(err) == remote.ErrBackendUnavailable && !errors.Is(err, remote.ErrBackendUnavailable) && !errors.Is(err, ingest.ErrInvalidFilter) {
			return err.Error()
		}
		te = tool.AsError(err)
	}
	msg := te.Message
	if te.RetryAfter != "" {
		msg += fmt.Sprintf(" (retry after %s)", te.RetryAfter)
	}
	return fmt.Sprintf("%s: %s", te.Code, msg)
}
