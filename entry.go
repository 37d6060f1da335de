// Copyright 2021 Google LLC
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

package stardict

import (
	"strings"

	"github.com/ianlewis/go-stardict-export/dict"
)

// Entry is a dictionary entry.
type Entry struct {
	word string
	data []*dict.Data
}

// Title return the entry's title.
func (e *Entry) Title() string {
	return e.word
}

// Data returns the entry's data entries.
func (e *Entry) Data() []*dict.Data {
	return e.data
}

// String returns a plain text representation of the Entry. HTML data is
// rendered as text.
func (e *Entry) String() string {
	var sb strings.Builder
	sb.WriteString(e.word + "\n")
	for _, d := range e.data {
		if s := d.String(); s != "" {
			sb.WriteString(s + "\n")
		}
	}
	return sb.String()
}
