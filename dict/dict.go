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

// Package dict implements reading and writing .dict files.
package dict

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-dictzip"
	"github.com/k3a/html2text"

	"github.com/ianlewis/go-stardict-export/idx"
)

var (
	errInvalidType        = errors.New("invalid type")
	errWordOffsetTooLarge = errors.New("word offset too large")
	errInvalidData        = errors.New("invalid word data")
)

// Dict represents a Stardict dictionary's dictionary data.
type Dict struct {
	r                io.ReaderAt
	c                []io.Closer
	sametypesequence []DataType
}

// Word is a full dictionary entry.
type Word struct {
	Data []*Data
}

// DataType is a type of data in a word. Data types are specified by a single
// byte at the beginning of a word. Lower case characters represent string-like
// data that is terminated by a null terminator ('\0'). Upper case characters
// represent file-like data that starts with a 32-bit size followed by file
// data.
type DataType byte

const (
	// UTFTextType is utf-8 text.
	UTFTextType = DataType('m')

	// LocaleTextType is text in a locale encoding.
	LocaleTextType = DataType('l')

	// PangoTextType is utf-8 text in the Pango text format.
	PangoTextType = DataType('g')

	// PhoneticType is utf-8 text representing an English phonetic string.
	PhoneticType = DataType('t')

	// XDXFType is utf-8 encoded xml in XDXF format.
	XDXFType = DataType('x')

	// YinBiaoOrKataType is utf-8 encoded Yin Biao or Kana phonetic string.
	YinBiaoOrKataType = DataType('y')

	// PowerWordType is a utf-8 encoded KingSoft PowerWord XML format.
	PowerWordType = DataType('p')

	// MediaWikiType is utf-8 encoded text in MediaWiki format.
	MediaWikiType = DataType('w')

	// HTMLType is utf-8 encoded HTML text.
	HTMLType = DataType('h')

	// WordNetType is WordNet data.
	WordNetType = DataType('n')

	// ResourceFileListType is a list of files in resource storage.
	ResourceFileListType = DataType('r')

	// WavType is .wav sound file data.
	WavType = DataType('W')

	// PictureType is image file data. This was used by the
	// stardict-advertisement-plugin. Images are better stored in a resource
	// file list.
	PictureType = DataType('P')

	// ExperimentalType is reserved for experimental features.
	ExperimentalType = DataType('X')
)

// Data is a data entry in a Word.
type Data struct {
	Type DataType
	Data []byte
}

// String returns a plain text representation of the data. Data types that
// have no text representation return an empty string.
func (d *Data) String() string {
	switch d.Type {
	case UTFTextType, PhoneticType, YinBiaoOrKataType:
		return string(d.Data)
	case HTMLType:
		return html2text.HTML2TextWithOptions(string(d.Data), html2text.WithUnixLineBreaks())
	default:
		return ""
	}
}

// Options are options for the dict data.
type Options struct {
	// SameTypeSequence is the sametypesequence value of the .ifo file. When
	// set, words have no per-data type bytes.
	SameTypeSequence []DataType
}

// DefaultOptions is the default options for a Dict.
var DefaultOptions = &Options{}

// New returns a new Dict from the given reader. If r is an [io.Closer], Dict
// takes ownership of the reader and it can be closed via the Dict's Close
// method.
func New(r io.ReaderAt, options *Options) (*Dict, error) {
	if options == nil {
		options = DefaultOptions
	}

	// verify sametypesequence
	for _, s := range options.SameTypeSequence {
		switch s {
		case UTFTextType,
			LocaleTextType,
			PangoTextType,
			PhoneticType,
			XDXFType,
			YinBiaoOrKataType,
			PowerWordType,
			MediaWikiType,
			HTMLType,
			WordNetType,
			ResourceFileListType,
			WavType,
			PictureType,
			ExperimentalType:
		default:
			return nil, fmt.Errorf("%w: %v", errInvalidType, s)
		}
	}

	d := &Dict{
		r:                r,
		sametypesequence: options.SameTypeSequence,
	}
	if c, ok := r.(io.Closer); ok {
		d.c = append(d.c, c)
	}
	return d, nil
}

// NewFromIfoPath returns a new Dict for the .dict file that belongs to the
// given .ifo file. Files with a .dz extension are read with dictzip.
func NewFromIfoPath(ifoPath string, options *Options) (*Dict, error) {
	f, err := Open(ifoPath)
	if err != nil {
		return nil, err
	}

	if strings.ToLower(filepath.Ext(f.Name())) != ".dz" {
		return New(f, options)
	}

	z, err := dictzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating dictzip reader: %w", err)
	}
	d, err := New(z, options)
	if err != nil {
		z.Close()
		f.Close()
		return nil, err
	}
	d.c = append(d.c, f)
	return d, nil
}

// Open opens the .dict file given the path to the .ifo file.
func Open(ifoPath string) (*os.File, error) {
	baseName := strings.TrimSuffix(ifoPath, filepath.Ext(ifoPath))

	dictExts := []string{".dict.dz", ".dict", ".DICT", ".DICT.dz", ".DICT.DZ"}
	var f *os.File
	var err error
	for _, ext := range dictExts {
		f, err = os.Open(baseName + ext)
		if err == nil {
			break
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening .dict file: %w", err)
		}
	}

	// Catch the case when no .dict file was found.
	if err != nil {
		return nil, fmt.Errorf("opening .dict file: %w", err)
	}

	return f, nil
}

// Close closes the underlying readers.
func (d *Dict) Close() error {
	var errs []error
	for _, c := range d.c {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing dict file: %w", err)
	}
	return nil
}

// Word retrieves the word for the given index entry from the
// dictionary.
func (d *Dict) Word(e *idx.Word) (*Word, error) {
	if e.Offset > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d", errWordOffsetTooLarge, e.Offset)
	}
	b := make([]byte, e.Size)
	// NOTE: ReadAt may return io.EOF along with a full read at the end of the
	// file.
	//nolint:gosec // offset size is bounds checked above.
	n, err := d.r.ReadAt(b, int64(e.Offset))
	if n < len(b) || (err != nil && !errors.Is(err, io.EOF)) {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}

	var wordData []*Data
	if len(d.sametypesequence) > 0 {
		// When sametypesequence is specified, that determines the type of the
		// word's data.
		for i, t := range d.sametypesequence {
			last := i == len(d.sametypesequence)-1
			var data []byte
			var err error
			if 'a' <= t && t <= 'z' {
				data, b = splitString(b, last)
			} else {
				data, b, err = splitFile(b)
				if err != nil {
					return nil, err
				}
			}
			wordData = append(wordData, &Data{
				Type: t,
				Data: data,
			})
		}
	} else {
		for len(b) > 0 {
			t := DataType(b[0])
			b = b[1:]

			var data []byte
			var err error
			if 'a' <= t && t <= 'z' {
				data, b = splitString(b, false)
			} else {
				data, b, err = splitFile(b)
				if err != nil {
					return nil, err
				}
			}
			wordData = append(wordData, &Data{
				Type: t,
				Data: data,
			})
		}
	}

	return &Word{
		Data: wordData,
	}, nil
}

// splitString splits a null terminated string from b. The last item of a
// sametypesequence word has no terminator and spans the rest of b.
func splitString(b []byte, last bool) ([]byte, []byte) {
	if last {
		return b, nil
	}
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return b, nil
	}
	return b[:i], b[i+1:]
}

// splitFile splits size prefixed file data from b.
func splitFile(b []byte) ([]byte, []byte, error) {
	if len(b) < 4 {
		return nil, nil, fmt.Errorf("%w: missing file size", errInvalidData)
	}
	size := binary.BigEndian.Uint32(b)
	if uint64(len(b)-4) < uint64(size) {
		return nil, nil, fmt.Errorf("%w: file size %d exceeds word size", errInvalidData, size)
	}
	return b[4 : 4+size], b[4+size:], nil
}
