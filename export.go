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

package stardict

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/sirupsen/logrus"

	"github.com/ianlewis/go-stardict-export/compressor"
	"github.com/ianlewis/go-stardict-export/dict"
	"github.com/ianlewis/go-stardict-export/idx"
	"github.com/ianlewis/go-stardict-export/ifo"
	"github.com/ianlewis/go-stardict-export/internal/logging"
	"github.com/ianlewis/go-stardict-export/lexicon"
	"github.com/ianlewis/go-stardict-export/wordindex"
)

// Version is the StarDict format version written by [Exporter].
const Version = "2.4.2"

// ErrIO indicates that an output file could not be written.
var ErrIO = errors.New("i/o error")

// progressInterval is the number of words between progress log messages.
const progressInterval = 1000

// Progress reports how many articles have been written.
type Progress struct {
	Written int
	Total   int
}

// Done reports whether all articles have been written.
func (p Progress) Done() bool {
	return p.Written >= p.Total
}

// Percent returns the completion percentage.
func (p Progress) Percent() int {
	if p.Total == 0 {
		return 0
	}
	return p.Written * 100 / p.Total
}

// String implements [fmt.Stringer].
func (p Progress) String() string {
	return fmt.Sprintf("writing %03d%% (%d/%d)", p.Percent(), p.Written, p.Total)
}

// ExportOptions are options for an [Exporter].
type ExportOptions struct {
	// Logger receives progress messages.
	Logger *logrus.Logger

	// Progress receives a value after each article is written. Sends never
	// block; values are dropped when the channel is not ready.
	Progress chan<- Progress

	// Dictzip compresses the .dict file. The default is
	// [compressor.Library].
	Dictzip compressor.Dictzip

	// Now returns the export time. The default is [time.Now].
	Now func() time.Time
}

// Result describes the files written by an export.
type Result struct {
	// WordCount is the number of .idx records, main and alternate words.
	WordCount int

	// IdxFileSize is the size of the uncompressed .idx file.
	IdxFileSize int64

	// DictSize is the size of the uncompressed .dict data.
	DictSize uint64

	// Files are the paths of the files that make up the dictionary.
	Files []string
}

// Exporter writes dictionaries in the StarDict 2.4.2 format.
type Exporter struct {
	logger   *logrus.Logger
	progress chan<- Progress
	dictzip  compressor.Dictzip
	now      func() time.Time
}

// NewExporter returns a new Exporter.
func NewExporter(options *ExportOptions) *Exporter {
	if options == nil {
		options = &ExportOptions{}
	}
	e := &Exporter{
		logger:   logging.OrDiscard(options.Logger),
		progress: options.Progress,
		dictzip:  options.Dictzip,
		now:      options.Now,
	}
	if e.dictzip == nil {
		e.dictzip = &compressor.Library{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Export implements [lexicon.Exporter].
func (e *Exporter) Export(ctx context.Context, d *lexicon.Dictionary, outputDir string) error {
	_, err := e.Write(ctx, d, outputDir)
	return err
}

// Write exports d to outputDir and returns a description of the written
// files. The files are named after [lexicon.Dictionary.BaseName]. If the
// export fails, all files it created are removed.
func (e *Exporter) Write(ctx context.Context, d *lexicon.Dictionary, outputDir string) (*Result, error) {
	index, err := wordindex.Build(d, &wordindex.Options{Logger: e.logger})
	if err != nil {
		return nil, fmt.Errorf("building index of %v: %w", d, err)
	}
	e.logger.Infof("index ready: %d word entries", index.Len())

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	x := &export{
		Exporter: e,
		d:        d,
		index:    index,
		base:     filepath.Join(outputDir, d.BaseName()),
	}
	res, err := x.run(ctx)
	if err != nil {
		x.cleanup()
		return nil, err
	}
	return res, nil
}

// export is the state of a single export.
type export struct {
	*Exporter

	d     *lexicon.Dictionary
	index *wordindex.Index
	base  string

	// created are the files that may have been created.
	created []string
}

func (x *export) run(ctx context.Context) (*Result, error) {
	dictPath := x.base + ".dict"
	idxPath := x.base + ".idx"
	ifoPath := x.base + ".ifo"
	x.created = append(x.created,
		dictPath, dictPath+compressor.DictzipExt,
		idxPath, idxPath+".gz",
		ifoPath,
	)

	dictSize, err := x.writeDict(ctx, dictPath)
	if err != nil {
		return nil, err
	}
	if err := x.index.Verify(); err != nil {
		return nil, fmt.Errorf("verifying index: %w", err)
	}

	idxSize, err := x.writeIdx(idxPath)
	if err != nil {
		return nil, err
	}
	if err := compressor.GzipFile(idxPath, idxPath+".gz"); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped.
	}

	x.logger.Info("compressing .dict")
	if err := x.dictzip.Compress(ctx, dictPath); err != nil {
		return nil, fmt.Errorf("compressing %s: %w", dictPath, err)
	}
	if _, err := os.Stat(dictPath + compressor.DictzipExt); err != nil {
		return nil, fmt.Errorf("%w: %w", compressor.ErrCompressionFailed, err)
	}

	if err := x.writeIfo(ifoPath, idxSize); err != nil {
		return nil, err
	}

	files := []string{ifoPath, idxPath + ".gz", dictPath + compressor.DictzipExt}
	if _, err := os.Stat(dictPath); err == nil {
		files = append(files, dictPath)
	}
	return &Result{
		WordCount:   x.index.Len(),
		IdxFileSize: idxSize,
		DictSize:    dictSize,
		Files:       files,
	}, nil
}

func (x *export) cleanup() {
	for _, path := range x.created {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			x.logger.Warnf("removing %s: %v", path, err)
		}
	}
}

// writeDict writes the articles of every primary entry in index order and
// resolves the entries' spans.
func (x *export) writeDict(ctx context.Context, path string) (uint64, error) {
	x.logger.Info("writing .dict")

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := dict.NewArticleWriter(bw)

	primaries := x.index.Primaries()
	p := Progress{Total: len(primaries)}
	for _, entry := range primaries {
		offset, size, err := w.WriteArticle(entry.Meanings, x.d.Definitions)
		if err != nil {
			return 0, fmt.Errorf("writing article for %q: %w", entry.Word, wrapIO(err))
		}
		if err := x.index.Resolve(entry, offset, size); err != nil {
			return 0, fmt.Errorf("writing article for %q: %w", entry.Word, err)
		}

		p.Written++
		x.notify(p)
		if p.Written%progressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err //nolint:wrapcheck // context errors are returned as-is.
			}
			x.logger.Info(p)
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	x.logger.Infof(".dict written (%s)", datasize.ByteSize(w.Offset()).HR())
	return w.Offset(), nil
}

func (x *export) notify(p Progress) {
	if x.progress == nil {
		return
	}
	select {
	case x.progress <- p:
	default:
	}
}

// wrapIO marks errors that did not come from the data as I/O errors.
func wrapIO(err error) error {
	if errors.Is(err, idx.ErrEmptyDefinition) || errors.Is(err, dict.ErrDictTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrIO, err)
}

// writeIdx writes the uncompressed .idx file and returns its size.
func (x *export) writeIdx(path string) (int64, error) {
	x.logger.Info("writing .idx")

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	w := idx.NewWriter(bw, nil)
	for _, entry := range x.index.Entries() {
		if err := w.Write(entry.Word, entry.Offset, entry.Size); err != nil {
			return 0, fmt.Errorf("writing .idx: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	x.logger.Infof(".idx written: %d words (%s uncompressed)", w.Count(), datasize.ByteSize(w.Size()).HR())
	return w.Size(), nil
}

var lineBreaks = strings.NewReplacer("\r\n", "<br>", "\n", "<br>", "\r", "<br>")

func (x *export) writeIfo(path string, idxSize int64) error {
	x.logger.Info("writing .ifo")

	info := ifo.NewEmpty(ifo.Magic)
	now := x.now().UTC()
	for _, kv := range [][2]string{
		{"version", Version},
		{"wordcount", strconv.Itoa(x.index.Len())},
		{"idxfilesize", strconv.FormatInt(idxSize, 10)},
		{"bookname", x.d.Name + " (" + x.d.Version + ")"},
		{"date", now.Format("2006.01.02")},
		{"website", x.d.Website},
		{"description", x.d.Description},
		{"sametypesequence", string(dict.HTMLType)},
	} {
		if err := info.Set(kv[0], lineBreaks.Replace(kv[1])); err != nil {
			return fmt.Errorf("writing .ifo: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer f.Close()
	if _, err := info.WriteTo(f); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
