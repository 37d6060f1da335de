// Copyright 2025 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package idx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ianlewis/go-stardict-export/internal/folding"
)

// MaxWordSize is the exclusive upper bound of the size in bytes of an .idx
// word title.
const MaxWordSize = 256

var (
	// ErrWordTooLong indicates that a word title is MaxWordSize bytes or
	// longer and cannot be stored in an .idx file.
	ErrWordTooLong = errors.New("word too long")

	// ErrEmptyDefinition indicates that a word has no article data.
	ErrEmptyDefinition = errors.New("empty definition")

	// ErrDuplicateEntry indicates that two words in the index compare equal.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrUnsorted indicates that words were not written in index order.
	ErrUnsorted = errors.New("unsorted entry")
)

// WriterOptions are options for writing an .idx file.
type WriterOptions struct {
	// Compare orders words. Words must be written in strictly ascending
	// order. Defaults to folding.ASCIICompare.
	Compare func(string, string) int
}

// DefaultWriterOptions is the default options for a Writer.
var DefaultWriterOptions = &WriterOptions{
	Compare: folding.ASCIICompare,
}

// Writer writes 32-bit offset .idx records.
type Writer struct {
	w   io.Writer
	cmp func(string, string) int

	prev  string
	count int
	size  int64
	buf   []byte
}

// NewWriter returns a new Writer that writes records to w.
func NewWriter(w io.Writer, options *WriterOptions) *Writer {
	cmp := DefaultWriterOptions.Compare
	if options != nil && options.Compare != nil {
		cmp = options.Compare
	}
	return &Writer{
		w:   w,
		cmp: cmp,
	}
}

// Write writes a single record for word. Records must be written in index
// order.
func (w *Writer) Write(word string, offset, size uint32) error {
	if len(word) >= MaxWordSize {
		return fmt.Errorf("%w: %q (%d bytes)", ErrWordTooLong, word, len(word))
	}
	if word == "" {
		return fmt.Errorf("%w: empty word", ErrInvalidIdx)
	}
	if size == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyDefinition, word)
	}
	if w.count > 0 {
		switch c := w.cmp(w.prev, word); {
		case c == 0:
			return fmt.Errorf("%w: %q and %q", ErrDuplicateEntry, w.prev, word)
		case c > 0:
			return fmt.Errorf("%w: %q after %q", ErrUnsorted, word, w.prev)
		}
	}

	w.buf = append(w.buf[:0], word...)
	w.buf = append(w.buf, 0)
	w.buf = binary.BigEndian.AppendUint32(w.buf, offset)
	w.buf = binary.BigEndian.AppendUint32(w.buf, size)

	n, err := w.w.Write(w.buf)
	w.size += int64(n)
	if err != nil {
		return fmt.Errorf("writing .idx record: %w", err)
	}

	w.prev = word
	w.count++
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	return w.count
}

// Size returns the number of bytes written.
func (w *Writer) Size() int64 {
	return w.size
}
