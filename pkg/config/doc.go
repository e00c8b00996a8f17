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

/*
Package config loads the process-wide gitingest configuration.

📦 Config Flow:

	+--------------+     +---------+     +----------+     +----------------+
	| .yaml / .json| --> | Parser  | --> | Validate | --> | ResolveTokens  |
	| / .hcl file  |     | registry|     | defaults |     | from env vars  |
	+--------------+     +---------+     +----------+     +----------------+

🎯 Purpose:
  - Hosted backend settings (API base URL, token variable, extra web hosts)
  - Size limits and engine tuning
  - Default exclude patterns

🔐 Tokens:
Tokens never appear in config files. Each backend names an environment
variable (GITHUB_TOKEN and GITLAB_TOKEN by default) and ResolveTokens reads it
once at startup. Tokens are not serialized and String only reports whether one
is set.

Example (YAML):

	github:
	  token_env: GH_PAT
	limits:
	  max_file_size: 2097152
	  fetch_timeout: 10s
	default_excludes: [".git", "node_modules"]
*/
package config
