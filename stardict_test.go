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

package stardict_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ianlewis/go-stardict-export"
	"github.com/ianlewis/go-stardict-export/dict"
	"github.com/ianlewis/go-stardict-export/idx"
	"github.com/ianlewis/go-stardict-export/internal/testutil"
)

type testDict struct {
	ifo  string
	dict []*dict.Word
	idx  []*idx.Word
}

// writeDict writes out a test dictionary set of files.
func writeDict(t *testing.T, dir string, d testDict) string {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, "dictionary.ifo"), []byte(d.ifo), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dictionary.idx"), testutil.MakeIndex(t, d.idx, 32), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "dictionary.dict"), testutil.MakeDict(t, d.dict, nil), 0o600); err != nil {
		t.Fatal(err)
	}

	return filepath.Join(dir, "dictionary.ifo")
}

var hoge = testDict{
	ifo: `StarDict's dict ifo file
version=3.0.0
bookname=hoge
wordcount=1
idxfilesize=15
description=a test`,
	idx: []*idx.Word{
		{
			Word:   "hoge",
			Offset: 0,
			Size:   6,
		},
	},
	dict: []*dict.Word{
		{
			Data: []*dict.Data{
				{
					Type: dict.UTFTextType,
					Data: []byte{'h', 'o', 'g', 'e'},
				},
			},
		},
	},
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ifoPath := writeDict(t, t.TempDir(), hoge)

	s, err := stardict.Open(ifoPath, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if want, got := "hoge", s.Bookname(); want != got {
		t.Errorf("Bookname: want %q, got %q", want, got)
	}
	if want, got := "a test", s.Description(); want != got {
		t.Errorf("Description: want %q, got %q", want, got)
	}
	if want, got := int64(1), s.WordCount(); want != got {
		t.Errorf("WordCount: want %d, got %d", want, got)
	}

	entries, err := s.Search("HOGE")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Search: want 1 entry, got %d", len(entries))
	}
	if diff := cmp.Diff("hoge\nhoge\n", entries[0].String()); diff != "" {
		t.Errorf("String (-want, +got):\n%s", diff)
	}
}

func TestOpen_errors(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		name string
		ifo  string
	}{
		"bad extension": {
			name: "dictionary.txt",
			ifo:  "StarDict's dict ifo file\nversion=2.4.2\nbookname=a\nwordcount=1\nidxfilesize=1\n",
		},
		"bad magic": {
			name: "dictionary.ifo",
			ifo:  "not a dictionary\nversion=2.4.2\nbookname=a\nwordcount=1\nidxfilesize=1\n",
		},
		"bad version": {
			name: "dictionary.ifo",
			ifo:  "StarDict's dict ifo file\nversion=1.0\nbookname=a\nwordcount=1\nidxfilesize=1\n",
		},
		"missing bookname": {
			name: "dictionary.ifo",
			ifo:  "StarDict's dict ifo file\nversion=2.4.2\nwordcount=1\nidxfilesize=1\n",
		},
		"bad wordcount": {
			name: "dictionary.ifo",
			ifo:  "StarDict's dict ifo file\nversion=2.4.2\nbookname=a\nwordcount=many\nidxfilesize=1\n",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tc.name)
			if err := os.WriteFile(path, []byte(tc.ifo), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := stardict.Open(path, nil); err == nil {
				t.Fatal("Open: expected error")
			}
		})
	}
}

func TestOpenAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, sub := range []string{"a", "b"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o700); err != nil {
			t.Fatal(err)
		}
		writeDict(t, filepath.Join(dir, sub), hoge)
	}
	bad := filepath.Join(dir, "bad.ifo")
	if err := os.WriteFile(bad, []byte("bad\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	dicts, errs := stardict.OpenAll(dir, nil)
	if want, got := 2, len(dicts); want != got {
		t.Errorf("dicts: want %d, got %d", want, got)
	}
	if want, got := 1, len(errs); want != got {
		t.Errorf("errs: want %d, got %d: %v", want, got, errors.Join(errs...))
	}
	for _, d := range dicts {
		d.Close()
	}
}
