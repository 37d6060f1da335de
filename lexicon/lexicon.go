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

package lexicon

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateMeaning indicates that a meaning with the same ID was already
// added to the dictionary.
var ErrDuplicateMeaning = errors.New("duplicate meaning")

// Meaning is a single sense of a headword. Two meanings are the same meaning
// if their IDs are equal.
type Meaning struct {
	// ID uniquely identifies the meaning in its source.
	ID int

	// Word is the headword.
	Word string

	// AlternateWords are alternate spellings or other words that should lead
	// to this meaning's article.
	AlternateWords []string

	// Syllable is the headword split into syllables.
	Syllable string

	// PronunciationIPA is the IPA pronunciation.
	PronunciationIPA string

	// PronunciationSpell is the respelled pronunciation.
	PronunciationSpell string

	// AudioFile is a reference to a pronunciation audio file.
	AudioFile string
}

// String returns a short representation of the meaning.
func (m *Meaning) String() string {
	return fmt.Sprintf("'%s' #%d", m.Word, m.ID)
}

// Definition is one definition of a meaning.
type Definition struct {
	// Headword is the headword of the meaning the definition belongs to.
	Headword string

	// MeaningID is the ID of the meaning the definition belongs to.
	MeaningID int

	// Position orders definitions within a meaning.
	Position int

	// WordType is the part-of-speech tag.
	WordType string

	// HTML is the definition body.
	HTML string
}

// String returns a short representation of the definition.
func (d Definition) String() string {
	return fmt.Sprintf("#%d *%d '%s' (%s)", d.MeaningID, d.Position, d.Headword, d.WordType)
}

// Entry associates a meaning with its definitions.
type Entry struct {
	Meaning     *Meaning
	Definitions []Definition
}

// Dictionary is a full dictionary ready to be exported.
type Dictionary struct {
	// Name is the short name of the dictionary. It is used for file names.
	Name string

	// FullName is the human readable name of the dictionary.
	FullName string

	// Version is the dictionary version.
	Version string

	// Description is a free-form description.
	Description string

	// Website is the dictionary's website URL.
	Website string

	entries []*Entry
	byID    map[int]*Entry
}

// Add adds a meaning and its definitions to the dictionary. Meanings are kept
// in the order they are added.
func (d *Dictionary) Add(m *Meaning, defs []Definition) error {
	if d.byID == nil {
		d.byID = map[int]*Entry{}
	}
	if _, ok := d.byID[m.ID]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateMeaning, m)
	}
	e := &Entry{
		Meaning:     m,
		Definitions: defs,
	}
	d.entries = append(d.entries, e)
	d.byID[m.ID] = e
	return nil
}

// Entries returns the dictionary entries in the order they were added. The
// returned slice must not be modified.
func (d *Dictionary) Entries() []*Entry {
	return d.entries
}

// Len returns the number of meanings in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Lookup returns the entry for the meaning with the given ID.
func (d *Dictionary) Lookup(id int) (*Entry, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// Definitions returns the definitions of the given meaning.
func (d *Dictionary) Definitions(m *Meaning) []Definition {
	if e, ok := d.byID[m.ID]; ok {
		return e.Definitions
	}
	return nil
}

// BaseName returns the base file name used by exporters.
func (d *Dictionary) BaseName() string {
	return d.Name + "-" + d.Version
}

// String returns a short description of the dictionary.
func (d *Dictionary) String() string {
	return fmt.Sprintf("%s (%s) - %d words", d.FullName, d.Version, d.Len())
}

// OrderedDefinitions returns the definitions ordered by meaning and position
// with identical definitions removed. The input is not modified.
func OrderedDefinitions(defs []Definition) []Definition {
	sorted := slices.Clone(defs)
	slices.SortStableFunc(sorted, func(a, b Definition) int {
		if c := cmp.Compare(a.MeaningID, b.MeaningID); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	seen := make(map[Definition]bool, len(sorted))
	ordered := sorted[:0]
	for _, def := range sorted {
		if seen[def] {
			continue
		}
		seen[def] = true
		ordered = append(ordered, def)
	}
	return ordered
}

// Exporter writes a dictionary to an output directory in some format.
// Exporters must not modify the dictionary.
type Exporter interface {
	Export(ctx context.Context, d *Dictionary, outputDir string) error
}
