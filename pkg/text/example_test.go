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

package text_test

import (
	"fmt"

	"github.com/walteh/gitingest/pkg/text"
)

func ExampleTree() {
	fmt.Print(text.Tree("hello", []string{"cmd/hello/main.go", "go.mod", "README.md"}))

	// Output:
	// hello/
	// ├── cmd/
	// │   └── hello/
	// │       └── main.go
	// ├── README.md
	// └── go.mod
}

func ExampleClassify() {
	fmt.Println(text.Classify([]byte("package main\n")))
	fmt.Println(text.Classify([]byte{0x7f, 'E', 'L', 'F', 0x02, 0x01, 0x01, 0x00}))

	// Output:
	// text
	// binary
}
