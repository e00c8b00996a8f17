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
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gitingest/pkg/tool"
	"gitlab.com/tozd/go/errors"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":       "0123456789",
		"b.bin":       "\x00\x01\x02\x03\x04",
		"src/main.go": "package main\n",
		"dist/app.js": "bundle()\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestIngestCommand(t *testing.T) {
	dir := writeRepo(t)

	t.Run("stdout", func(t *testing.T) {
		stdout, stderr, err := run(t, "", "ingest", dir, "-e", "*.bin", "-v")
		require.NoError(t, err)

		assert.Contains(t, stdout, "FILE: a.txt\n")
		assert.Contains(t, stdout, "FILE: src/main.go\n")
		assert.NotContains(t, stdout, "FILE: b.bin")
		assert.NotContains(t, stdout, "FILE: dist/app.js", "dist is a default exclude")
		assert.Contains(t, stderr, "skipped-excluded", "verbose output should list skipped files")
	})

	t.Run("output_file", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "digest.txt")
		stdout, stderr, err := run(t, "", "ingest", dir, "--no-default-excludes", "-e", "*.bin", "-o", out)
		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "digest written to "+out)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "FILE: dist/app.js\n")
	})

	t.Run("budget", func(t *testing.T) {
		stdout, _, err := run(t, "", "ingest", dir, "-e", "*.bin", "--max-total-size", "12")
		require.NoError(t, err)
		assert.Contains(t, stdout, "FILE: a.txt\n")
		assert.NotContains(t, stdout, "FILE: src/main.go")
		assert.Contains(t, stdout, "skipped-digest-full: 1")
	})

	t.Run("missing_repository", func(t *testing.T) {
		_, _, err := run(t, "", "ingest", filepath.Join(dir, "nope"))
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(describe(err), "reference_not_found:"), "got %s", describe(err))
	})
}

func TestTreeCommand(t *testing.T) {
	dir := writeRepo(t)

	stdout, _, err := run(t, "", "tree", dir, "-i", "**/*.go")
	require.NoError(t, err)

	name := filepath.Base(dir)
	assert.Equal(t, name+"/\n└── src/\n    └── main.go\n", stdout)
}

func TestReadCommand(t *testing.T) {
	dir := writeRepo(t)

	stdout, _, err := run(t, "", "read", dir, "src/main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", stdout)

	stdout, stderr, err := run(t, "", "read", dir, "b.bin")
	require.NoError(t, err)
	assert.Empty(t, stdout, "binary files need --force")
	assert.Contains(t, stderr, "binary file")

	_, _, err = run(t, "", "read", dir, "a.txt", "--max-file-size", "4")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(describe(err), "too_large:"), "got %s", describe(err))
}

func TestToolsCommand(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		stdout, _, err := run(t, "", "tools")
		require.NoError(t, err)

		var tools []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &tools))
		require.Len(t, tools, 4)
		assert.Equal(t, tool.SearchToolName, tools[0].Name)
	})

	t.Run("call_from_stdin", func(t *testing.T) {
		dir := writeRepo(t)
		args, err := json.Marshal(map[string]any{"repo": dir, "include_patterns": "*.txt"})
		require.NoError(t, err)

		stdout, _, err := run(t, string(args), "tools", "call", tool.TreeToolName)
		require.NoError(t, err)
		assert.Equal(t, "```\n"+filepath.Base(dir)+"/\n└── a.txt\n```\n", stdout)
	})

	t.Run("call_invalid_arguments", func(t *testing.T) {
		stdout, _, err := run(t, "", "tools", "call", tool.IngestToolName, `{"nope": 1}`, "--json")
		require.Error(t, err)

		var te *tool.Error
		require.True(t, errors.As(err, &te))
		assert.Equal(t, tool.CodeInvalidArguments, te.Code)
		assert.Contains(t, stdout, `"code":"invalid_arguments"`)
	})
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gitingest version info")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "unknown flag: --nope", describe(errors.New("unknown flag: --nope")))
	assert.Equal(t, "rate_limited: slow down (retry after 2s)", describe(&tool.Error{Code: tool.CodeRateLimited, Message: "slow down", RetryAfter: "2s"}))
}
