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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ianlewis/go-stardict-export/dict"
	"github.com/ianlewis/go-stardict-export/idx"
	"github.com/ianlewis/go-stardict-export/ifo"
	"github.com/ianlewis/go-stardict-export/internal/logging"
)

var (
	errBadExtension = errors.New("bad extension")
	errBadMagic     = errors.New("bad magic data")
	errBadVersion   = errors.New("invalid version")
	errBadMetadata  = errors.New("invalid metadata")
)

// Stardict is a stardict dictionary opened for reading.
type Stardict struct {
	idx  *idx.Idx
	dict *dict.Dict

	ifoPath string
	logger  *logrus.Logger

	version          string
	bookname         string
	wordcount        int64
	idxfilesize      int64
	idxoffsetbits    int64
	date             string
	website          string
	description      string
	sametypesequence []dict.DataType
}

// Options are options for opening a dictionary.
type Options struct {
	// Logger receives debug messages about opened files.
	Logger *logrus.Logger
}

// OpenAll opens all dictionaries under a directory. This function will return
// all successfully opened dictionaries along with any errors that occurred.
func OpenAll(path string, options *Options) ([]*Stardict, []error) {
	var dicts []*Stardict
	var errs []error
	if err := filepath.WalkDir(path, func(path string, info fs.DirEntry, err error) error {
		// Walking the file path will ignore errors.
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(info.Name()), ".ifo") {
			d, err := Open(path, options)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			dicts = append(dicts, d)
		}
		return nil
	}); err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return dicts, errs
}

// Open opens a Stardict dictionary from the given .ifo file path. The index
// and dict files are opened lazily.
func Open(path string, options *Options) (*Stardict, error) {
	var logger *logrus.Logger
	if options != nil {
		logger = options.Logger
	}

	s := &Stardict{
		ifoPath:       path,
		logger:        logging.OrDiscard(logger),
		idxoffsetbits: 32,
	}

	if ext := filepath.Ext(s.ifoPath); !strings.EqualFold(ext, ".ifo") {
		return nil, fmt.Errorf("%w: %v", errBadExtension, ext)
	}

	ifoFile, err := os.Open(s.ifoPath)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", s.ifoPath, err)
	}
	defer ifoFile.Close()

	info, err := ifo.New(ifoFile)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", s.ifoPath, err)
	}

	if info.Magic() != ifo.Magic {
		return nil, fmt.Errorf("%w: %q", errBadMagic, s.ifoPath)
	}

	s.version = info.Value("version")
	switch s.version {
	case "2.4.2", "3.0.0":
	default:
		return nil, fmt.Errorf("%w: %v", errBadVersion, s.version)
	}

	s.bookname = info.Value("bookname")
	if s.bookname == "" {
		return nil, fmt.Errorf("%w: missing bookname", errBadMetadata)
	}

	s.wordcount, err = strconv.ParseInt(info.Value("wordcount"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: wordcount: %w", errBadMetadata, err)
	}

	s.idxfilesize, err = strconv.ParseInt(info.Value("idxfilesize"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: idxfilesize: %w", errBadMetadata, err)
	}

	if bits := info.Value("idxoffsetbits"); bits != "" && s.version == "3.0.0" {
		s.idxoffsetbits, err = strconv.ParseInt(bits, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: idxoffsetbits: %w", errBadMetadata, err)
		}
	}

	for _, r := range info.Value("sametypesequence") {
		s.sametypesequence = append(s.sametypesequence, dict.DataType(r))
	}

	s.date = info.Value("date")
	s.description = info.Value("description")
	s.website = info.Value("website")

	s.logger.WithFields(logrus.Fields{
		"path":      s.ifoPath,
		"bookname":  s.bookname,
		"wordcount": s.wordcount,
	}).Debug("opened dictionary")

	return s, nil
}

// Path returns the path to the .ifo file.
func (s *Stardict) Path() string {
	return s.ifoPath
}

// Bookname returns the dictionary name.
func (s *Stardict) Bookname() string {
	return s.bookname
}

// Description returns the dictionary description.
func (s *Stardict) Description() string {
	return s.description
}

// Website returns the dictionary website url.
func (s *Stardict) Website() string {
	return s.website
}

// Date returns the date the dictionary was created.
func (s *Stardict) Date() string {
	return s.date
}

// WordCount returns the dictionary word count.
func (s *Stardict) WordCount() int64 {
	return s.wordcount
}

// IdxFileSize returns the size of the uncompressed index.
func (s *Stardict) IdxFileSize() int64 {
	return s.idxfilesize
}

// Version returns the dictionary format version.
func (s *Stardict) Version() string {
	return s.version
}

// SameTypeSequence returns the data types shared by all words.
func (s *Stardict) SameTypeSequence() []dict.DataType {
	return s.sametypesequence
}

// Search looks up the query in the index and returns the matching entries.
// Words are matched ignoring ASCII case.
func (s *Stardict) Search(query string) ([]*Entry, error) {
	index, err := s.Index()
	if err != nil {
		return nil, err
	}
	d, err := s.Dict()
	if err != nil {
		return nil, err
	}

	var entries []*Entry
	for _, w := range index.Search(query) {
		a, err := d.Word(w)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", w.Word, err)
		}
		entries = append(entries, &Entry{
			word: w.Word,
			data: a.Data,
		})
	}
	return entries, nil
}

// Index returns an in-memory version of the dictionary's index.
func (s *Stardict) Index() (*idx.Idx, error) {
	if s.idx != nil {
		return s.idx, nil
	}
	index, err := idx.NewFromIfoPath(s.ifoPath, &idx.Options{
		OffsetBits: int(s.idxoffsetbits),
	})
	if err != nil {
		return nil, fmt.Errorf("reading index of %q: %w", s.ifoPath, err)
	}
	if int64(index.Len()) != s.wordcount {
		s.logger.Warnf("%s: wordcount is %d but index has %d words", s.ifoPath, s.wordcount, index.Len())
	}
	s.idx = index
	return s.idx, nil
}

// Dict returns the dictionary's dict.
func (s *Stardict) Dict() (*dict.Dict, error) {
	if s.dict != nil {
		return s.dict, nil
	}
	d, err := dict.NewFromIfoPath(s.ifoPath, &dict.Options{
		SameTypeSequence: s.sametypesequence,
	})
	if err != nil {
		return nil, fmt.Errorf("reading dict of %q: %w", s.ifoPath, err)
	}
	s.dict = d
	return s.dict, nil
}

// Close closes the dict file if it was opened.
func (s *Stardict) Close() error {
	if s.dict == nil {
		return nil
	}
	err := s.dict.Close()
	s.dict = nil
	return err //nolint:wrapcheck // dict errors are already wrapped.
}
