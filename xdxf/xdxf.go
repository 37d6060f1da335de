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

// Package xdxf exports dictionaries in the XDXF format.
//
// See https://github.com/soshial/xdxf_makedict/tree/master/format_standard
package xdxf

import (
	"bufio"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ianlewis/go-stardict-export/internal/logging"
	"github.com/ianlewis/go-stardict-export/lexicon"
)

// Revision is the XDXF format revision written by [Exporter].
const Revision = "032beta"

// Ext is the file extension of an XDXF file.
const Ext = ".xdxf"

// progressInterval is the number of articles between progress log messages.
const progressInterval = 100

// Encoding is the character encoding of the output file.
type Encoding int

const (
	// UTF8 is UTF-8 without a byte order mark.
	UTF8 Encoding = iota

	// UTF16 is little endian UTF-16 with a byte order mark.
	UTF16
)

// String returns the name used in the XML declaration.
func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf-8"
	case UTF16:
		return "utf-16"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

var errUnknownEncoding = errors.New("unknown encoding")

// ParseEncoding returns the Encoding with the given name.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "utf-8", "utf8", "":
		return UTF8, nil
	case "utf-16", "utf16":
		return UTF16, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownEncoding, s)
	}
}

// ExportOptions are options for an [Exporter].
type ExportOptions struct {
	// Logger receives progress messages and warnings about definitions
	// that are not well-formed XML.
	Logger *logrus.Logger

	// Encoding is the output encoding.
	Encoding Encoding

	// Now returns the export time. The default is [time.Now].
	Now func() time.Time
}

// Exporter writes dictionaries as XDXF files.
type Exporter struct {
	logger   *logrus.Logger
	encoding Encoding
	now      func() time.Time
}

// NewExporter returns a new Exporter.
func NewExporter(options *ExportOptions) *Exporter {
	if options == nil {
		options = &ExportOptions{}
	}
	e := &Exporter{
		logger:   logging.OrDiscard(options.Logger),
		encoding: options.Encoding,
		now:      options.Now,
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Path returns the path of the XDXF file of d in outputDir.
func Path(d *lexicon.Dictionary, outputDir string) string {
	return filepath.Join(outputDir, d.BaseName()+Ext)
}

// Export implements [lexicon.Exporter].
func (e *Exporter) Export(ctx context.Context, d *lexicon.Dictionary, outputDir string) (err error) {
	var enc transform.Transformer
	switch e.encoding {
	case UTF8:
	case UTF16:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	default:
		return fmt.Errorf("%w: %v", errUnknownEncoding, e.encoding)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := Path(d, outputDir)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	var out io.Writer = f
	var tw io.WriteCloser
	if enc != nil {
		tw = transform.NewWriter(f, enc)
		out = tw
	}
	bw := bufio.NewWriter(out)

	if err := e.write(ctx, bw, d); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	e.logger.Infof("%s written", path)
	return nil
}

func (e *Exporter) write(ctx context.Context, bw *bufio.Writer, d *lexicon.Dictionary) error {
	w := &writer{w: bw}

	w.raw(`<?xml version="1.0" encoding="` + e.encoding.String() + `"?>`)
	w.newline()
	w.start("xdxf",
		"lang_from", "ENG",
		"lang_to", "ENG",
		"format", "visual",
		"revision", Revision,
	)
	w.element("description", d.Description)
	w.element("full_name", d.FullName)

	w.start("meta_info")
	w.element("title", d.Name)
	w.element("full_title", d.FullName)
	w.element("description", d.Description)
	w.element("file_ver", d.Version)
	w.element("creation_date", e.now().UTC().Format("02-01-2006"))
	w.end("meta_info")

	w.start("lexicon")
	entries := d.Entries()
	for i, entry := range entries {
		e.article(w, entry)
		if (i+1)%progressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err //nolint:wrapcheck // context errors are returned as-is.
			}
			e.logger.Infof("writing %03d%% (%d/%d)", (i+1)*100/len(entries), i+1, len(entries))
		}
	}
	w.end("lexicon")
	w.end("xdxf")

	if w.err != nil {
		return fmt.Errorf("writing xdxf: %w", w.err)
	}
	return nil
}

func (e *Exporter) article(w *writer, entry *lexicon.Entry) {
	m := entry.Meaning

	w.start("ar")
	w.element("k", m.Word)
	for _, alt := range m.AlternateWords {
		if strings.TrimSpace(alt) != "" {
			w.element("k", alt)
		}
	}

	for _, def := range lexicon.OrderedDefinitions(entry.Definitions) {
		w.start("def")
		if strings.TrimSpace(m.PronunciationIPA) != "" {
			w.element("tr", "IPA: /"+m.PronunciationIPA+"/", "format", "IPA")
		}
		if strings.TrimSpace(m.PronunciationSpell) != "" {
			w.element("tr", "Spell: ["+m.PronunciationSpell+"]", "format", "Spelling")
		}
		if strings.TrimSpace(m.Syllable) != "" {
			w.element("tr", "Syllable: "+m.Syllable, "format", "Syllable")
		}

		w.indent()
		if err := wellFormed(def.HTML); err != nil {
			e.logger.Warnf("%v: definition %d is not well-formed: %v", m, def.Position, err)
			w.text(def.HTML)
		} else {
			w.raw(def.HTML)
		}
		w.newline()
		w.end("def")
	}
	w.end("ar")
}

// wellFormed checks that s is a well-formed XML fragment. HTML entities are
// accepted.
func wellFormed(s string) error {
	dec := xml.NewDecoder(strings.NewReader(s))
	dec.Strict = true
	dec.Entity = xml.HTMLEntity
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err //nolint:wrapcheck // returned for logging only.
		}
	}
}

// writer writes indented XML. The first error is kept and later writes are
// ignored.
type writer struct {
	w     *bufio.Writer
	depth int
	err   error
}

func (w *writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func (w *writer) text(s string) {
	if w.err != nil {
		return
	}
	w.err = xml.EscapeText(w.w, []byte(s))
}

func (w *writer) newline() {
	w.raw("\n")
}

func (w *writer) indent() {
	w.raw(strings.Repeat("\t", w.depth))
}

func (w *writer) open(name string, attrs []string) {
	w.indent()
	w.raw("<" + name)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.raw(" " + attrs[i] + `="`)
		w.text(attrs[i+1])
		w.raw(`"`)
	}
	w.raw(">")
}

// start writes a start tag on its own line. attrs are name, value pairs.
func (w *writer) start(name string, attrs ...string) {
	w.open(name, attrs)
	w.newline()
	w.depth++
}

func (w *writer) end(name string) {
	w.depth--
	w.indent()
	w.raw("</" + name + ">")
	w.newline()
}

// element writes an element holding text on a single line.
func (w *writer) element(name, text string, attrs ...string) {
	w.open(name, attrs)
	w.text(text)
	w.raw("</" + name + ">")
	w.newline()
}
