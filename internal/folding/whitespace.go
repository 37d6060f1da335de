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

package folding

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// WhitespaceFolder is a [transform.Transformer] that trims leading and
// trailing whitespace and collapses each internal run of whitespace into a
// single ASCII space. Headwords extracted from HTML are passed through it
// before they are used as index keys.
type WhitespaceFolder struct {
	// started is set once a non-space rune has been written.
	started bool

	// pending is set while a whitespace run follows written text.
	pending bool
}

// Transform implements [transform.Transformer.Transform].
func (w *WhitespaceFolder) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	var nDst, nSrc int
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}
		r, size := utf8.DecodeRune(src[nSrc:])

		if unicode.IsSpace(r) {
			w.pending = w.started
			nSrc += size
			continue
		}

		// Invalid input is written as utf8.RuneError so the output width
		// may differ from size.
		need := utf8.RuneLen(r)
		if w.pending {
			need++
		}
		if nDst+need > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		if w.pending {
			dst[nDst] = ' '
			nDst++
			w.pending = false
		}
		nDst += utf8.EncodeRune(dst[nDst:], r)
		nSrc += size
		w.started = true
	}
	return nDst, nSrc, nil
}

// Reset implements [transform.Transformer.Reset].
func (w *WhitespaceFolder) Reset() {
	*w = WhitespaceFolder{}
}

// FoldWhitespace returns s with whitespace folded by a [WhitespaceFolder].
func FoldWhitespace(s string) string {
	out, _, err := transform.String(&WhitespaceFolder{}, s)
	if err != nil {
		// The transformer only fails on short buffers which
		// transform.String handles itself.
		return s
	}
	return out
}
