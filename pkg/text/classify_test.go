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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{name: "empty", data: nil, want: false},
		{name: "plain_ascii", data: []byte("hello world\n"), want: false},
		{name: "tabs_and_crlf", data: []byte("a\tb\r\nc\f"), want: false},
		{name: "ansi_escape", data: []byte("\x1b[31mred\x1b[0m"), want: false},
		{name: "utf8_multibyte", data: []byte("héllo wörld ✓"), want: false},
		{name: "nul_byte", data: []byte("abc\x00def"), want: true},
		{name: "bell_control", data: []byte("ding\x07"), want: true},
		{name: "invalid_utf8", data: []byte{0xff, 0xfe, 'a'}, want: true},
		{name: "png_header", data: []byte("\x89PNG\r\n\x1a\n"), want: true},
		{name: "utf16_bom", data: []byte{0xff, 0xfe, 'h', 0x00, 'i', 0x00}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBinary(tt.data), "binary classification should match")
		})
	}
}

func TestIsBinarySampling(t *testing.T) {
	t.Run("nul_after_sample_is_ignored", func(t *testing.T) {
		data := append(bytes.Repeat([]byte("a"), SampleSize), 0x00)
		assert.False(t, IsBinary(data), "bytes past the sample should not be inspected")
	})

	t.Run("rune_cut_at_sample_boundary", func(t *testing.T) {
		// "✓" is three bytes; place it so the sample ends after its first byte
		data := append(bytes.Repeat([]byte("a"), SampleSize-1), []byte("✓ tail")...)
		assert.False(t, IsBinary(data), "a rune split by the sample boundary should not count as invalid")
	})

	t.Run("deterministic", func(t *testing.T) {
		data := []byte("some\x01content")
		assert.Equal(t, IsBinary(data), IsBinary(bytes.Clone(data)), "identical bytes should classify identically")
	})
}

func TestClassify(t *testing.T) {
	assert.Equal(t, EncodingText, Classify([]byte("text")))
	assert.Equal(t, EncodingBinary, Classify([]byte{0x00}))
	assert.Equal(t, "text", EncodingText.String())
	assert.Equal(t, "binary", EncodingBinary.String())
}
