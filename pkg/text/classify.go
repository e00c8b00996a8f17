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

package text

import (
	"unicode/utf8"
)

// SampleSize is the number of leading bytes inspected by IsBinary.
const SampleSize = 8 * 1024

// 🏷️ Encoding classifies fetched bytes
type Encoding int

const (
	EncodingText   Encoding = iota // valid UTF-8 without disallowed control bytes
	EncodingBinary                 // anything else
)

// String returns a string representation of Encoding
func (e Encoding) String() string {
	switch e {
	case EncodingText:
		return "text"
	case EncodingBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// 🔍 Classify returns the encoding of data according to IsBinary
func Classify(data []byte) Encoding {
	if IsBinary(data) {
		return EncodingBinary
	}
	return EncodingText
}

// IsBinary reports whether data should be treated as binary.
//
// Only the first SampleSize bytes are inspected. The sample is binary when it
// contains a disallowed control byte or is not valid UTF-8. Allowed control
// bytes are backspace, tab, line feed, vertical tab, form feed, carriage return
// and escape. A multi-byte sequence cut by the sample boundary is not treated as
// invalid. Empty input is text.
func IsBinary(data []byte) bool {
	sample := data
	truncated := false
	if len(sample) > SampleSize {
		sample = sample[:SampleSize]
		truncated = true
	}

	for _, b := range sample {
		if disallowedControl(b) {
			return true
		}
	}

	if truncated {
		sample = trimPartialRune(sample)
	}

	return !utf8.Valid(sample)
}

func disallowedControl(b byte) bool {
	switch {
	case b >= 0x08 && b <= 0x0d: // \b \t \n \v \f \r
		return false
	case b == 0x1b: // escape, used by ANSI coloured logs
		return false
	case b < 0x20:
		return true
	default:
		return false
	}
}

// trimPartialRune drops an incomplete trailing UTF-8 sequence left by cutting a
// sample out of a longer buffer.
func trimPartialRune(sample []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(sample); i++ {
		start := len(sample) - i
		if !utf8.RuneStart(sample[start]) {
			continue
		}
		if !utf8.FullRune(sample[start:]) {
			return sample[:start]
		}
		return sample
	}
	return sample
}
