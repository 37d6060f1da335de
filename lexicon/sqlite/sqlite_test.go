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

package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ianlewis/go-stardict-export/lexicon"
	"github.com/ianlewis/go-stardict-export/lexicon/sqlite"
)

var schema = []string{
	`CREATE TABLE entries (
		id INTEGER NOT NULL,
		entry TEXT,
		entry_rich TEXT,
		pronunciation_ipa TEXT,
		pronunciation_spell TEXT,
		audio_file TEXT
	)`,
	`CREATE TABLE headwords (id INTEGER PRIMARY KEY, headword TEXT)`,
	`CREATE TABLE headword_entries (entry_id INTEGER, headword_id INTEGER)`,
	`CREATE TABLE content_blocks (entry_id INTEGER, pos TEXT, position INTEGER, content TEXT)`,
}

var rows = []string{
	`INSERT INTO entries VALUES (2, 'fan', 'fan', '<i>fæn</i>', 'fan', 'fan.mp3')`,
	`INSERT INTO entries VALUES (1, 'Fan', NULL, NULL, NULL, NULL)`,
	`INSERT INTO entries VALUES (3, 'ghost', NULL, NULL, NULL, NULL)`,
	`INSERT INTO headwords VALUES (10, 'fan')`,
	`INSERT INTO headwords VALUES (11, 'blower')`,
	`INSERT INTO headwords VALUES (12, '  ventilator ')`,
	`INSERT INTO headword_entries VALUES (2, 10)`,
	`INSERT INTO headword_entries VALUES (2, 11)`,
	`INSERT INTO headword_entries VALUES (2, 12)`,
	`INSERT INTO content_blocks VALUES (2, 'noun', 2, 'an admirer')`,
	`INSERT INTO content_blocks VALUES (2, 'noun', 1, '<b>a device')`,
	`INSERT INTO content_blocks VALUES (1, 'noun', 1, 'a region')`,
}

func makeDB(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "dictionary.sqlite")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	for _, stmt := range append(schema, rows...) {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := makeDB(t)
	d, err := sqlite.Load(context.Background(), path, &sqlite.Options{
		Workers: 2,
		Name:    "test",
		Version: "1.0",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if want, got := "test-1.0", d.BaseName(); want != got {
		t.Errorf("BaseName: want %q, got %q", want, got)
	}
	if want, got := sqlite.DefaultOptions.Website, d.Website; want != got {
		t.Errorf("Website: want %q, got %q", want, got)
	}

	var got []lexicon.Entry
	for _, e := range d.Entries() {
		got = append(got, *e)
	}
	expected := []lexicon.Entry{
		{
			Meaning: &lexicon.Meaning{
				ID:                 2,
				Word:               "fan",
				AlternateWords:     []string{"blower", "ventilator"},
				Syllable:           "fan",
				PronunciationIPA:   "fæn",
				PronunciationSpell: "fan",
				AudioFile:          "fan.mp3",
			},
			Definitions: []lexicon.Definition{
				{Headword: "fan", MeaningID: 2, Position: 1, WordType: "noun", HTML: "<b><span>a device</span></b>"},
				{Headword: "fan", MeaningID: 2, Position: 2, WordType: "noun", HTML: "<span>an admirer</span>"},
			},
		},
		{
			Meaning: &lexicon.Meaning{
				ID:   1,
				Word: "Fan",
			},
			Definitions: []lexicon.Definition{
				{Headword: "Fan", MeaningID: 1, Position: 1, WordType: "noun", HTML: "<span>a region</span>"},
			},
		},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Entries (-want, +got):\n%s", diff)
	}
}

func TestLoad_limit(t *testing.T) {
	t.Parallel()

	path := makeDB(t)
	d, err := sqlite.Load(context.Background(), path, &sqlite.Options{Limit: 1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want, got := 1, d.Len(); want != got {
		t.Fatalf("Len: want %d, got %d", want, got)
	}
	if _, ok := d.Lookup(2); !ok {
		t.Errorf("Lookup(2): not found")
	}
	if want, got := sqlite.DefaultOptions.Name, d.Name; want != got {
		t.Errorf("Name: want %q, got %q", want, got)
	}
}

func TestLoad_missing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.sqlite")
	if _, err := sqlite.Load(context.Background(), path, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load: want %v, got %v", os.ErrNotExist, err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database was created: %v", err)
	}
}

func TestLoad_canceled(t *testing.T) {
	t.Parallel()

	path := makeDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sqlite.Load(ctx, path, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load: want %v, got %v", context.Canceled, err)
	}
}
