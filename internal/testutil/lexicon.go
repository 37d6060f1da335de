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

package testutil

import (
	"testing"

	"github.com/ianlewis/go-stardict-export/lexicon"
)

// Meaning is a test meaning with its definitions.
type Meaning struct {
	ID             int
	Word           string
	AlternateWords []string
	IPA            string
	Spell          string
	Syllable       string

	// Definitions are definition bodies. Positions are assigned in order.
	Definitions []string
}

// MakeDictionary creates a test dictionary from the given meanings.
func MakeDictionary(t *testing.T, meanings ...Meaning) *lexicon.Dictionary {
	t.Helper()

	d := &lexicon.Dictionary{
		Name:        "test",
		FullName:    "Test Dictionary",
		Version:     "1.0",
		Description: "A test dictionary.",
		Website:     "https://example.com",
	}
	for _, m := range meanings {
		meaning := &lexicon.Meaning{
			ID:                 m.ID,
			Word:               m.Word,
			AlternateWords:     m.AlternateWords,
			PronunciationIPA:   m.IPA,
			PronunciationSpell: m.Spell,
			Syllable:           m.Syllable,
		}
		var defs []lexicon.Definition
		for i, html := range m.Definitions {
			defs = append(defs, lexicon.Definition{
				Headword:  m.Word,
				MeaningID: m.ID,
				Position:  i,
				HTML:      html,
			})
		}
		if err := d.Add(meaning, defs); err != nil {
			t.Fatalf("adding meaning %v: %v", meaning, err)
		}
	}
	return d
}
