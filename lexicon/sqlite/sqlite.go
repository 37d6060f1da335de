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

// Package sqlite loads a dictionary from a dictionary.com offline database.
//
// The database has the following tables:
//
//	entries(id, entry, entry_rich, pronunciation_ipa, pronunciation_spell, audio_file)
//	headword_entries(entry_id, headword_id)
//	headwords(id, headword)
//	content_blocks(entry_id, pos, position, content)
//
// Each row of entries is a meaning. headwords linked through
// headword_entries are its alternate words and content_blocks are its
// definitions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/ianlewis/go-stardict-export/internal/htmlfix"
	"github.com/ianlewis/go-stardict-export/internal/logging"
	"github.com/ianlewis/go-stardict-export/lexicon"
)

// progressInterval is the number of meanings between progress log messages.
const progressInterval = 100

const (
	queryEntries = `SELECT id, entry, entry_rich, pronunciation_ipa, pronunciation_spell, audio_file
		FROM entries ORDER BY rowid LIMIT ?`

	queryHeadwords = `SELECT h.headword FROM entries e
		INNER JOIN headword_entries he ON he.entry_id = e.id
		INNER JOIN headwords h ON h.id = he.headword_id
		WHERE e.id = ? ORDER BY he.rowid`

	queryContent = `SELECT pos, position, content FROM content_blocks
		WHERE entry_id = ? ORDER BY position`
)

// Options are options for loading a database.
type Options struct {
	// Limit is the maximum number of entries to read. Zero or a negative
	// value reads all entries.
	Limit int

	// Workers is the number of meanings loaded concurrently. The default is
	// the number of CPUs.
	Workers int

	// Logger receives warnings and progress messages.
	Logger *logrus.Logger

	// Name, FullName, Version, Description and Website describe the loaded
	// dictionary. Empty values are replaced by the values in
	// [DefaultOptions].
	Name        string
	FullName    string
	Version     string
	Description string
	Website     string
}

// DefaultOptions are the default options. The metadata describes the
// dictionary.com unabridged database.
var DefaultOptions = &Options{
	Limit:       -1,
	Name:        "dictionary.com",
	FullName:    "Dictionary.com Unabridged",
	Version:     "5.5.2_08-08",
	Description: "Dictionary.com Unabridged. Based on the Random House Dictionary, © Random House, Inc. 2016",
	Website:     "http://www.dictionary.com",
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// loaded is the result of loading one meaning.
type loaded struct {
	meaning *lexicon.Meaning
	defs    []lexicon.Definition
}

// Load reads the database at path. Meanings keep the order of the entries
// table. Meanings without definitions are skipped.
func Load(ctx context.Context, path string, options *Options) (*lexicon.Dictionary, error) {
	if options == nil {
		options = DefaultOptions
	}
	logger := logging.OrDiscard(options.Logger)
	workers := options.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Opening a missing file would create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(workers + 1)

	limit := options.Limit
	if limit <= 0 {
		limit = -1
	}
	meanings, err := readEntries(ctx, db, limit)
	if err != nil {
		return nil, err
	}
	logger.Infof("loading %d entries from %s", len(meanings), path)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]loaded, len(meanings))
	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	var loadedCount atomic.Int64
	var errOnce sync.Once
	var loadErr error

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				m := meanings[i]
				defs, err := loadMeaning(ctx, db, m, logger)
				if err != nil {
					errOnce.Do(func() {
						loadErr = fmt.Errorf("loading %v: %w", m, err)
						cancel()
					})
					continue
				}
				results[i] = loaded{meaning: m, defs: defs}

				if n := loadedCount.Add(1); n%progressInterval == 0 {
					logger.Infof("loading %03d%% (%d/%d entries)", n*100/int64(len(meanings)), n, len(meanings))
				}
			}
		}()
	}

submit:
	for i := range meanings {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break submit
		}
	}
	close(jobs)
	wg.Wait()

	if loadErr != nil {
		return nil, loadErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors are returned as-is.
	}

	d := &lexicon.Dictionary{
		Name:        orDefault(options.Name, DefaultOptions.Name),
		FullName:    orDefault(options.FullName, DefaultOptions.FullName),
		Version:     orDefault(options.Version, DefaultOptions.Version),
		Description: orDefault(options.Description, DefaultOptions.Description),
		Website:     orDefault(options.Website, DefaultOptions.Website),
	}
	for _, r := range results {
		if len(r.defs) == 0 {
			logger.Warnf("meaning %v has no definition", r.meaning)
			continue
		}
		if err := d.Add(r.meaning, r.defs); err != nil {
			logger.Errorf("could not add meaning: %v", err)
		}
	}
	logger.Infof("loaded %v", d)
	return d, nil
}

func readEntries(ctx context.Context, db *sql.DB, limit int) ([]*lexicon.Meaning, error) {
	rows, err := db.QueryContext(ctx, queryEntries, limit)
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	defer rows.Close()

	var meanings []*lexicon.Meaning
	for rows.Next() {
		var id int
		var entry, entryRich, ipa, spell, audio sql.NullString
		if err := rows.Scan(&id, &entry, &entryRich, &ipa, &spell, &audio); err != nil {
			return nil, fmt.Errorf("reading entries: %w", err)
		}
		meanings = append(meanings, &lexicon.Meaning{
			ID:                 id,
			Word:               htmlfix.PlainText(entry.String),
			Syllable:           htmlfix.PlainText(entryRich.String),
			PronunciationIPA:   htmlfix.PlainText(ipa.String),
			PronunciationSpell: htmlfix.PlainText(spell.String),
			AudioFile:          audio.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return meanings, nil
}

// loadMeaning sets the alternate words of m and returns its definitions.
func loadMeaning(ctx context.Context, db *sql.DB, m *lexicon.Meaning, logger *logrus.Logger) ([]lexicon.Definition, error) {
	alternates, err := readHeadwords(ctx, db, m)
	if err != nil {
		return nil, err
	}
	m.AlternateWords = alternates

	rows, err := db.QueryContext(ctx, queryContent, m.ID)
	if err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}
	defer rows.Close()

	var defs []lexicon.Definition
	for rows.Next() {
		var (
			pos, content sql.NullString
			position     int
		)
		if err := rows.Scan(&pos, &position, &content); err != nil {
			return nil, fmt.Errorf("reading definitions: %w", err)
		}
		body, err := htmlfix.Fix(content.String)
		if err != nil {
			logger.Warnf("meaning %v: keeping definition %d as is: %v", m, position, err)
			body = content.String
		}
		defs = append(defs, lexicon.Definition{
			Headword:  m.Word,
			MeaningID: m.ID,
			Position:  position,
			WordType:  pos.String,
			HTML:      body,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}
	return defs, nil
}

func readHeadwords(ctx context.Context, db *sql.DB, m *lexicon.Meaning) ([]string, error) {
	rows, err := db.QueryContext(ctx, queryHeadwords, m.ID)
	if err != nil {
		return nil, fmt.Errorf("reading headwords: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var headword sql.NullString
		if err := rows.Scan(&headword); err != nil {
			return nil, fmt.Errorf("reading headwords: %w", err)
		}
		word := htmlfix.PlainText(headword.String)
		if word == "" || strings.EqualFold(word, m.Word) {
			continue
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading headwords: %w", err)
	}
	return words, nil
}
