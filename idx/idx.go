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

package idx

import (
	"errors"
	"fmt"
	"io"

	"github.com/ianlewis/go-stardict-export/internal/folding"
	"github.com/ianlewis/go-stardict-export/internal/index"
)

// ErrInvalidIdx indicates that the .idx data is malformed.
var ErrInvalidIdx = errors.New("invalid .idx file")

// Word is an .idx file entry.
type Word struct {
	Word   string
	Offset uint64
	Size   uint32
}

// String returns the word's title.
func (w *Word) String() string {
	return w.Word
}

// Options are options for the idx data.
type Options struct {
	// OffsetBits are the number of bits in the offset fields. Valid values for
	// OffsetBits are either 32 or 64.
	OffsetBits int
}

// DefaultOptions is the default options for an Idx.
var DefaultOptions = &Options{
	OffsetBits: 32,
}

// Idx is a very basic implementation of an in memory search index.
// Implementers of dictionaries apps or tools may wish to consider using
// Scanner to read the .idx file and generate their own more robust search
// index.
type Idx struct {
	index *index.Index[*Word]
}

// New returns a new in-memory index read from r. Words are ordered and
// searched ignoring ASCII case.
func New(r io.Reader, options *Options) (*Idx, error) {
	if options == nil {
		options = DefaultOptions
	}

	s, err := NewScanner(r, &ScannerOptions{
		OffsetBits: options.OffsetBits,
	})
	if err != nil {
		return nil, err
	}

	var words []*Word
	for s.Scan() {
		words = append(words, s.Word())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}

	return &Idx{
		index: index.NewIndex(words, folding.ASCIICompare),
	}, nil
}

// NewFromIfoPath returns a new in-memory index read from the .idx file that
// belongs to the given .ifo file.
func NewFromIfoPath(ifoPath string, options *Options) (*Idx, error) {
	if options == nil {
		options = DefaultOptions
	}

	s, err := NewScannerFromIfoPath(ifoPath, &ScannerOptions{
		OffsetBits: options.OffsetBits,
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var words []*Word
	for s.Scan() {
		words = append(words, s.Word())
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scanning index: %w", err)
	}

	return &Idx{
		index: index.NewIndex(words, folding.ASCIICompare),
	}, nil
}

// Len returns the number of words in the index.
func (idx *Idx) Len() int {
	return idx.index.Len()
}

// Words returns all words in index order.
func (idx *Idx) Words() []*Word {
	return idx.index.All()
}

// Search performs a query of the index and returns matching words.
func (idx *Idx) Search(query string) []*Word {
	if query == "" {
		return nil
	}
	return idx.index.Search(query)
}
