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

// Package wordindex builds the word index of a StarDict export.
//
// StarDict 2.4.2 has no synonym file and cannot point several identical
// index words at different articles. Meanings that share a headword, ignoring
// ASCII case, are therefore merged into a single primary entry whose article
// lists every meaning. Alternate words become alias entries that reuse the
// article of their primary entry.
package wordindex

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/sirupsen/logrus"

	"github.com/ianlewis/go-stardict-export/idx"
	"github.com/ianlewis/go-stardict-export/internal/folding"
	"github.com/ianlewis/go-stardict-export/internal/logging"
	"github.com/ianlewis/go-stardict-export/lexicon"
)

var (
	// ErrUnresolved indicates that an entry has no article span yet.
	ErrUnresolved = errors.New("unresolved entry")

	// ErrNotPrimary indicates that an alias was passed where a primary entry
	// is required.
	ErrNotPrimary = errors.New("not a primary entry")
)

// Entry is an index entry. A primary entry owns an article in the .dict file.
// An alias entry points at a primary entry and shares its article.
type Entry struct {
	// Word is the exact spelling written to the .idx file.
	Word string

	// Meanings are the meanings of the article ordered by ID. Aliases share
	// the meanings of their primary.
	Meanings []*lexicon.Meaning

	// Offset is the article offset in the .dict file.
	Offset uint32

	// Size is the article size in the .dict file.
	Size uint32

	alias    bool
	primary  int
	resolved bool

	// aliases are the words of alias entries created for this primary.
	aliases []string
}

// IsAlias reports whether e is an alias entry.
func (e *Entry) IsAlias() bool {
	return e.alias
}

// Primary returns the arena index of the primary entry. For primary entries
// this is the entry's own index.
func (e *Entry) Primary() int {
	return e.primary
}

// String implements [fmt.Stringer].
func (e *Entry) String() string {
	kind := "main word"
	if e.alias {
		kind = "alternate word"
	}
	return fmt.Sprintf("%s: %d -> %d (%s)", e.Word, e.Offset, e.Size, kind)
}

// Options are options for building an Index.
type Options struct {
	// Logger receives warnings about skipped meanings.
	Logger *logrus.Logger
}

// Index is a sorted word index. Words are ordered with
// [folding.ASCIICompare] and words that compare equal share one entry.
//
// Index is not safe for concurrent use.
type Index struct {
	// tree maps words to *Entry.
	tree *redblacktree.Tree

	// arena holds primary entries in the order they were created.
	arena []*Entry
}

type group struct {
	word     string
	meanings []*lexicon.Meaning
}

// Build builds the index for the dictionary. Meanings without definitions or
// without a headword are skipped.
func Build(d *lexicon.Dictionary, options *Options) (*Index, error) {
	var logger *logrus.Logger
	if options != nil {
		logger = options.Logger
	}
	logger = logging.OrDiscard(logger)

	// Group homonyms, keeping the order in which each group first appears.
	var groups []*group
	byFold := map[string]*group{}
	for _, e := range d.Entries() {
		m := e.Meaning
		if len(e.Definitions) == 0 {
			logger.Warnf("meaning %v has no definition", m)
			continue
		}
		if strings.TrimSpace(m.Word) == "" {
			logger.Warnf("meaning %v has no headword", m)
			continue
		}

		key := folding.ASCIIFold(m.Word)
		g, ok := byFold[key]
		if !ok {
			g = &group{}
			byFold[key] = g
			groups = append(groups, g)
		}
		g.meanings = append(g.meanings, m)
	}

	index := &Index{
		tree: redblacktree.NewWith(func(a, b interface{}) int {
			//nolint:forcetypeassert // keys are always strings.
			return folding.ASCIICompare(a.(string), b.(string))
		}),
	}

	for _, g := range groups {
		slices.SortStableFunc(g.meanings, func(a, b *lexicon.Meaning) int {
			return cmp.Compare(a.ID, b.ID)
		})
		// The entry is spelled like the meaning with the lowest ID.
		g.word = g.meanings[0].Word
		if err := index.addGroup(g); err != nil {
			return nil, err
		}
	}

	return index, nil
}

func (index *Index) addGroup(g *group) error {
	if err := checkWord(g.word); err != nil {
		return err
	}

	p := &Entry{
		Word:     g.word,
		Meanings: g.meanings,
		primary:  len(index.arena),
	}

	// A word with its own definition always replaces an alias that an
	// earlier group created for it.
	if existing, found := index.get(g.word); found && !existing.alias {
		return fmt.Errorf("%w: %q and %q", idx.ErrDuplicateEntry, existing.Word, g.word)
	}
	index.arena = append(index.arena, p)
	index.tree.Put(g.word, p)

	for _, m := range g.meanings {
		for _, alt := range m.AlternateWords {
			if strings.TrimSpace(alt) == "" {
				continue
			}
			// First writer wins.
			if _, found := index.get(alt); found {
				continue
			}
			if err := checkWord(alt); err != nil {
				return err
			}
			index.tree.Put(alt, &Entry{
				Word:     alt,
				Meanings: g.meanings,
				alias:    true,
				primary:  p.primary,
			})
			p.aliases = append(p.aliases, alt)
		}
	}
	return nil
}

func checkWord(word string) error {
	if len(word) >= idx.MaxWordSize {
		return fmt.Errorf("%w: %q (%d bytes)", idx.ErrWordTooLong, word, len(word))
	}
	return nil
}

func (index *Index) get(word string) (*Entry, bool) {
	if word == "" {
		return nil, false
	}
	v, found := index.tree.Get(word)
	if !found {
		return nil, false
	}
	//nolint:forcetypeassert // values are always *Entry.
	return v.(*Entry), true
}

// Get returns the entry for word. Words are matched ignoring ASCII case.
func (index *Index) Get(word string) (*Entry, bool) {
	return index.get(word)
}

// Len returns the number of entries, primaries and aliases.
func (index *Index) Len() int {
	return index.tree.Size()
}

// Entries returns all entries in index order.
func (index *Index) Entries() []*Entry {
	entries := make([]*Entry, 0, index.tree.Size())
	it := index.tree.Iterator()
	for it.Next() {
		//nolint:forcetypeassert // values are always *Entry.
		entries = append(entries, it.Value().(*Entry))
	}
	return entries
}

// Primaries returns the primary entries in index order.
func (index *Index) Primaries() []*Entry {
	var primaries []*Entry
	for _, e := range index.Entries() {
		if !e.alias {
			primaries = append(primaries, e)
		}
	}
	return primaries
}

// Primary returns the primary entry with the given arena index.
func (index *Index) Primary(i int) *Entry {
	return index.arena[i]
}

// Aliases returns the alias entries currently pointing at the primary p in
// index order.
func (index *Index) Aliases(p *Entry) []*Entry {
	var aliases []*Entry
	for _, e := range index.Entries() {
		if e.alias && e.primary == p.primary {
			aliases = append(aliases, e)
		}
	}
	return aliases
}

// Resolve records the article span of the primary p and copies it to every
// alias pointing at p. A primary can only be resolved once.
func (index *Index) Resolve(p *Entry, offset, size uint32) error {
	if p.alias {
		return fmt.Errorf("%w: %q", ErrNotPrimary, p.Word)
	}
	if p.resolved {
		return fmt.Errorf("%w: %q already written", idx.ErrDuplicateEntry, p.Word)
	}
	if size == 0 {
		return fmt.Errorf("%w: %q", idx.ErrEmptyDefinition, p.Word)
	}

	p.Offset, p.Size, p.resolved = offset, size, true

	for _, word := range p.aliases {
		// The alias may have been replaced by a primary since.
		a, found := index.get(word)
		if !found || !a.alias || a.primary != p.primary {
			continue
		}
		a.Offset, a.Size, a.resolved = offset, size, true
	}
	return nil
}

// Verify checks that every entry has been resolved and that every alias has
// the article span of its primary.
func (index *Index) Verify() error {
	for _, e := range index.Entries() {
		if !e.resolved {
			return fmt.Errorf("%w: %q", ErrUnresolved, e.Word)
		}
		if !e.alias {
			continue
		}
		p := index.arena[e.primary]
		if e.Offset != p.Offset || e.Size != p.Size {
			return fmt.Errorf("%w: alias %q does not match %q", ErrUnresolved, e.Word, p.Word)
		}
	}
	return nil
}
