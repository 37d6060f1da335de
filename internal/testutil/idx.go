// Copyright 2024 Google LLC
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
package testutil

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/ianlewis/go-stardict-export/idx"
)

// MakeIndex encodes words as .idx records with the given offset width.
func MakeIndex(t *testing.T, words []*idx.Word, idxoffsetbits int) []byte {
	t.Helper()

	var b []byte
	for _, w := range words {
		b = append(b, w.Word...)
		b = append(b, 0)
		switch idxoffsetbits {
		case 32:
			if w.Offset > math.MaxUint32 {
				t.Fatalf("offset of %q does not fit in 32 bits: %d", w.Word, w.Offset)
			}
			b = binary.BigEndian.AppendUint32(b, uint32(w.Offset))
		case 64:
			b = binary.BigEndian.AppendUint64(b, w.Offset)
		default:
			t.Fatalf("unsupported idxoffsetbits: %d", idxoffsetbits)
		}
		b = binary.BigEndian.AppendUint32(b, w.Size)
	}
	return b
}
