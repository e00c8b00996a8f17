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

package filter

// DefaultExcludes are skipped unless a caller opts out. They cover version
// control metadata, dependency and build directories, caches, lock files and
// common binary artefacts.
var DefaultExcludes = []string{
	// version control
	".git", ".svn", ".hg", ".bzr",

	// dependencies and virtual environments
	"node_modules", "bower_components", "vendor/bundle", ".venv", "venv", "env",
	".tox", ".nox", "site-packages", "Pods", ".bundle",

	// build output and caches
	"dist", "build", "target", "out", ".next", ".nuxt", ".gradle", ".idea",
	".vscode", "__pycache__", ".pytest_cache", ".mypy_cache", ".ruff_cache",
	".cache", ".terraform", "coverage", ".coverage", "*.egg-info",

	// compiled and packaged artefacts
	"*.pyc", "*.pyo", "*.pyd", "*.so", "*.dylib", "*.dll", "*.exe", "*.o", "*.a",
	"*.class", "*.jar", "*.war", "*.wasm", "*.zip", "*.tar", "*.gz", "*.tgz",
	"*.bz2", "*.xz", "*.7z", "*.rar",

	// media
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.webp", "*.svg",
	"*.mp3", "*.mp4", "*.mov", "*.avi", "*.pdf", "*.woff", "*.woff2", "*.ttf", "*.eot",

	// lock files and generated noise
	"package-lock.json", "yarn.lock", "pnpm-lock.yaml", "poetry.lock",
	"Cargo.lock", "go.sum", "Gemfile.lock", "composer.lock", "*.min.js",
	"*.min.css", "*.map", ".DS_Store", "Thumbs.db",
}
