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
package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/go-stardict-export/dict"
)

// MakeDictOptions configures MakeTempDict.
type MakeDictOptions struct {
	// Ext overrides the file extension. The default is ".dict", or
	// ".dict.dz" when DictZip is set.
	Ext string

	// DictZip compresses the file with dictzip.
	DictZip bool

	// SameTypeSequence is the sametypesequence of the articles.
	SameTypeSequence []dict.DataType
}

func (o *MakeDictOptions) ext() string {
	switch {
	case o.Ext != "":
		return o.Ext
	case o.DictZip:
		return ".dict.dz"
	default:
		return ".dict"
	}
}

// MakeTempDict writes words to a temporary .dict file and returns it opened
// at offset zero. The file is closed when the test ends.
func MakeTempDict(t *testing.T, words []*dict.Word, opts *MakeDictOptions) *os.File {
	t.Helper()
	if opts == nil {
		opts = &MakeDictOptions{}
	}

	f, err := os.CreateTemp(t.TempDir(), "stardict.*"+opts.ext())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })

	b := MakeDict(t, words, opts.SameTypeSequence)
	if opts.DictZip {
		z, err := dictzip.NewWriter(f)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := z.Write(b); err != nil {
			t.Fatal(err)
		}
		if err := z.Close(); err != nil {
			t.Fatal(err)
		}
	} else if _, err := f.Write(b); err != nil {
		t.Fatal(err)
	}

	if _, err := f.Seek(0, 0); err != nil {
		t.Fatal(err)
	}
	return f
}

// MakeDict encodes the articles of words back to back. With a
// sametypesequence the type markers are omitted and the last item of each
// article loses its terminator or size prefix.
func MakeDict(t *testing.T, words []*dict.Word, sameTypeSequence []dict.DataType) []byte {
	t.Helper()

	var b []byte
	for _, w := range words {
		for i, d := range w.Data {
			last := i == len(w.Data)-1
			if len(sameTypeSequence) == 0 {
				b = append(b, byte(d.Type))
			}
			b = appendData(t, b, d, len(sameTypeSequence) != 0 && last)
		}
	}
	return b
}

func appendData(t *testing.T, b []byte, d *dict.Data, last bool) []byte {
	t.Helper()

	if 'a' <= d.Type && d.Type <= 'z' {
		b = append(b, d.Data...)
		if !last {
			b = append(b, 0)
		}
		return b
	}

	if len(d.Data) > math.MaxUint32 {
		t.Fatalf("data too long: %d", len(d.Data))
	}
	b = binary.BigEndian.AppendUint32(b, uint32(len(d.Data)))
	return append(b, d.Data...)
}
