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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	statusWidth = 22 // Width for status text
)

// 🎯 FormatRecord formats a record for display
func FormatRecord(r Record) string {
	var prefix string
	switch r.Status {
	case StatusIncluded:
		prefix = color.GreenString("✓")
	case StatusError:
		prefix = color.RedString("✗")
	case StatusTooLarge, StatusDigestFull:
		prefix = color.YellowString("⟳")
	default:
		prefix = color.HiBlackString("-")
	}

	line := fmt.Sprintf("%s%s %-*s %-*s %s",
		strings.Repeat(" ", fileIndent),
		prefix,
		nameWidth, r.Path,
		statusWidth, r.Status.String(),
		FormatBytes(r.Size),
	)
	if r.Reason != "" {
		line += " " + color.HiBlackString("(%s)", r.Reason)
	}
	return line
}

// FormatSummary renders the counters as a single line
func FormatSummary(s Summary) string {
	parts := []string{
		fmt.Sprintf("%d files", s.Files),
		fmt.Sprintf("%d included", s.Included),
		fmt.Sprintf("%d skipped", s.Skipped()),
		FormatBytes(s.TotalBytes),
	}
	return strings.Join(parts, ", ")
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
