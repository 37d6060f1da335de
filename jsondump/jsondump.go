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

// Package jsondump writes and reads gzip compressed JSON dumps of a
// dictionary. A dump holds everything needed to export the dictionary again
// without access to the original source.
package jsondump

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/c2h5oh/datasize"
	"github.com/sirupsen/logrus"

	"github.com/ianlewis/go-stardict-export/internal/logging"
	"github.com/ianlewis/go-stardict-export/lexicon"
)

// Ext is the file extension of a dump.
const Ext = ".json.gz"

var errInvalidDump = errors.New("invalid dump")

type dump struct {
	Name        string `json:"name"`
	FullName    string `json:"fullName"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Website     string `json:"website"`
	AllWords    []word `json:"allWords"`
}

type word struct {
	Meaning     meaning      `json:"meaning"`
	Definitions []definition `json:"definitions"`
}

type meaning struct {
	ID                 int      `json:"id"`
	Word               string   `json:"word"`
	AlternateWords     []string `json:"alternateWords,omitempty"`
	Syllable           string   `json:"syllable,omitempty"`
	PronunciationIPA   string   `json:"pronunciationIpa,omitempty"`
	PronunciationSpell string   `json:"pronunciationSpell,omitempty"`
	AudioFile          string   `json:"audioFile,omitempty"`
}

type definition struct {
	Headword  string `json:"headword"`
	MeaningID int    `json:"meaningId"`
	Position  int    `json:"position"`
	WordType  string `json:"wordType,omitempty"`
	HTML      string `json:"definitionHtml"`
}

// ExportOptions are options for an [Exporter].
type ExportOptions struct {
	Logger *logrus.Logger
}

// Exporter writes JSON dumps.
type Exporter struct {
	logger *logrus.Logger
}

// NewExporter returns a new Exporter.
func NewExporter(options *ExportOptions) *Exporter {
	var logger *logrus.Logger
	if options != nil {
		logger = options.Logger
	}
	return &Exporter{logger: logging.OrDiscard(logger)}
}

// Path returns the path of the dump of d in outputDir.
func Path(d *lexicon.Dictionary, outputDir string) string {
	return filepath.Join(outputDir, d.BaseName()+Ext)
}

// Export implements [lexicon.Exporter].
func (e *Exporter) Export(ctx context.Context, d *lexicon.Dictionary, outputDir string) (err error) {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors are returned as-is.
	}

	v := dump{
		Name:        d.Name,
		FullName:    d.FullName,
		Version:     d.Version,
		Description: d.Description,
		Website:     d.Website,
		AllWords:    make([]word, 0, d.Len()),
	}
	for _, entry := range d.Entries() {
		m := entry.Meaning
		w := word{
			Meaning: meaning{
				ID:                 m.ID,
				Word:               m.Word,
				AlternateWords:     m.AlternateWords,
				Syllable:           m.Syllable,
				PronunciationIPA:   m.PronunciationIPA,
				PronunciationSpell: m.PronunciationSpell,
				AudioFile:          m.AudioFile,
			},
			Definitions: make([]definition, 0, len(entry.Definitions)),
		}
		for _, def := range entry.Definitions {
			w.Definitions = append(w.Definitions, definition(def))
		}
		v.AllWords = append(v.AllWords, w)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := Path(d, outputDir)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dump: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	z := gzip.NewWriter(f)
	enc := json.NewEncoder(z)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	if err := z.Close(); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing dump: %w", err)
	}

	if info, err := os.Stat(path); err == nil {
		e.logger.Infof("%s written (%s)", path, datasize.ByteSize(info.Size()).HR())
	}
	return nil
}

// Load reads a dump written by [Exporter].
func Load(path string) (*lexicon.Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dump: %w", err)
	}
	defer f.Close()

	z, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDump, err)
	}
	defer z.Close()

	var v dump
	if err := json.NewDecoder(z).Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDump, err)
	}

	d := &lexicon.Dictionary{
		Name:        v.Name,
		FullName:    v.FullName,
		Version:     v.Version,
		Description: v.Description,
		Website:     v.Website,
	}
	for _, w := range v.AllWords {
		m := &lexicon.Meaning{
			ID:                 w.Meaning.ID,
			Word:               w.Meaning.Word,
			AlternateWords:     w.Meaning.AlternateWords,
			Syllable:           w.Meaning.Syllable,
			PronunciationIPA:   w.Meaning.PronunciationIPA,
			PronunciationSpell: w.Meaning.PronunciationSpell,
			AudioFile:          w.Meaning.AudioFile,
		}
		defs := make([]lexicon.Definition, 0, len(w.Definitions))
		for _, def := range w.Definitions {
			defs = append(defs, lexicon.Definition(def))
		}
		if err := d.Add(m, defs); err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidDump, err)
		}
	}
	return d, nil
}
