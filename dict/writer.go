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

package dict

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ianlewis/go-stardict-export/idx"
	"github.com/ianlewis/go-stardict-export/lexicon"
)

// ErrDictTooLarge indicates that the .dict data exceeds what 32-bit .idx
// offsets can address.
var ErrDictTooLarge = errors.New("dict too large")

var lineBreakReplacer = strings.NewReplacer("<br/>", "<br>", "<br />", "<br>")

// ArticleWriter writes HTML articles to a .dict file that uses the "h"
// sametypesequence. Articles are written back to back and the returned
// offsets are relative to the start of the writer.
//
// ArticleWriter is not safe for concurrent use.
type ArticleWriter struct {
	w      io.Writer
	offset uint64
	sb     strings.Builder
}

// NewArticleWriter returns a new ArticleWriter writing to w.
func NewArticleWriter(w io.Writer) *ArticleWriter {
	return &ArticleWriter{w: w}
}

// Offset returns the number of bytes written so far.
func (w *ArticleWriter) Offset() uint64 {
	return w.offset
}

// WriteArticle writes a single article for the meanings of a headword. Each
// meaning gets a header followed by its definitions as returned by defs.
// Definitions are ordered and de-duplicated before being written.
func (w *ArticleWriter) WriteArticle(
	meanings []*lexicon.Meaning,
	defs func(*lexicon.Meaning) []lexicon.Definition,
) (offset, size uint32, err error) {
	start := w.offset
	if start > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: offset %d", ErrDictTooLarge, start)
	}

	for i, m := range meanings {
		w.sb.Reset()
		writeHeader(&w.sb, m, i+1, len(meanings))
		for _, def := range lexicon.OrderedDefinitions(defs(m)) {
			w.sb.WriteString(lineBreakReplacer.Replace(def.HTML))
		}
		if err := w.write(w.sb.String()); err != nil {
			return 0, 0, err
		}
	}

	length := w.offset - start
	if length == 0 {
		return 0, 0, idx.ErrEmptyDefinition
	}
	if length > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: article of %d bytes", ErrDictTooLarge, length)
	}

	//nolint:gosec // bounds checked above.
	return uint32(start), uint32(length), nil
}

func (w *ArticleWriter) write(s string) error {
	n, err := io.WriteString(w.w, s)
	w.offset += uint64(n)
	if err != nil {
		return fmt.Errorf("writing article: %w", err)
	}
	return nil
}

// writeHeader writes the header of the n-th of total meanings.
func writeHeader(sb *strings.Builder, m *lexicon.Meaning, n, total int) {
	switch {
	case total > 1 && n > 1:
		sb.WriteString("<br><hr><br><b>" + strconv.Itoa(n) + ". " + m.Word + "</b><br>\n")
	case total > 1:
		sb.WriteString("<b>" + strconv.Itoa(n) + ". " + m.Word + "</b><br>\n")
	default:
		sb.WriteString("<b>" + m.Word + "</b><br>\n")
	}

	if strings.TrimSpace(m.PronunciationIPA) != "" {
		sb.WriteString("    <span>IPA: /" + m.PronunciationIPA + "/</span><br>\n")
	}
	if strings.TrimSpace(m.PronunciationSpell) != "" {
		sb.WriteString("    <span>Spell: [" + m.PronunciationSpell + "]</span><br>\n")
	}
	if strings.TrimSpace(m.Syllable) != "" {
		sb.WriteString("    <span>Syllable: " + m.Syllable + "</span><br>\n")
	}
}
