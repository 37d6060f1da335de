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

// Package lexicon implements the in-memory dictionary model shared by all
// exporters.
//
// A Dictionary is a list of meanings in the order their source produced
// them. Each meaning carries a headword, pronunciation hints and a list of
// alternate words that should lead to the same article. Definitions belong to
// exactly one meaning and hold an HTML fragment.
package lexicon
