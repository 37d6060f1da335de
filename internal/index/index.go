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

package index

import (
	"fmt"
	"slices"
)

// Index is a sorted slice of values searched by their string form.
type Index[V fmt.Stringer] struct {
	// index is sorted by cmp.
	index []V

	cmp func(string, string) int
}

// NewIndex creates an index from the given slice and comparison function.
// cmp(a, b) should return a negative number when a < b, a positive number when
// a > b and zero when a == b or a and b are incomparable in the sense of a
// strict weak ordering. Values that compare equal keep their relative order.
func NewIndex[V fmt.Stringer](index []V, cmp func(string, string) int) *Index[V] {
	sorted := make([]V, len(index))
	copy(sorted, index)
	slices.SortStableFunc(sorted, func(a, b V) int {
		return cmp(a.String(), b.String())
	})

	return &Index[V]{
		index: sorted,
		cmp:   cmp,
	}
}

// Search returns the run of values that compare equal to query. The
// returned slice aliases the index and must not be modified.
func (idx *Index[V]) Search(query string) []V {
	i, found := slices.BinarySearchFunc(idx.index, query, func(v V, q string) int {
		return idx.cmp(v.String(), q)
	})
	if !found {
		return nil
	}

	n := i + 1
	for n < len(idx.index) && idx.cmp(idx.index[n].String(), query) == 0 {
		n++
	}
	return idx.index[i:n:n]
}

// Len returns the number of values in the index.
func (idx *Index[V]) Len() int {
	return len(idx.index)
}

// All returns all values in index order.
func (idx *Index[V]) All() []V {
	return idx.index
}
