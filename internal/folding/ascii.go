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

// isUpper reports whether c is an ASCII upper case letter.
func isUpper(c byte) bool {
	return 'A' <= c && c <= 'Z'
}

// toLower folds ASCII upper case letters. All other bytes, including the
// bytes of multi-byte UTF-8 sequences, are returned as-is.
func toLower(c byte) byte {
	if isUpper(c) {
		return c - 'A' + 'a'
	}
	return c
}

// ASCIICompare compares s1 and s2 byte-wise ignoring ASCII case, the same
// way as glib's g_ascii_strcasecmp which StarDict readers use to order and
// search .idx files.
//
// It returns the difference of the first mismatching folded bytes. When one
// string is a prefix of the other the result is the negated byte of s2 that
// follows the prefix (s1 is shorter) or the byte of s1 that follows it (s1 is
// longer). If either string is empty the strings are considered equal and 0
// is returned.
func ASCIICompare(s1, s2 string) int {
	if s1 == "" || s2 == "" {
		return 0
	}

	i := 0
	for ; i < len(s1) && i < len(s2); i++ {
		c1 := int(toLower(s1[i]))
		c2 := int(toLower(s2[i]))
		if c1 != c2 {
			return c1 - c2
		}
	}

	switch {
	case i >= len(s1) && i < len(s2):
		return -int(s2[i])
	case i >= len(s2) && i < len(s1):
		return int(s1[i])
	}
	return 0
}

// ASCIIEqualFold reports whether s1 and s2 are equal ignoring ASCII case.
// Unlike ASCIICompare, two empty strings are equal but an empty and a
// non-empty string are not.
func ASCIIEqualFold(s1, s2 string) bool {
	if len(s1) != len(s2) {
		return false
	}
	for i := 0; i < len(s1); i++ {
		if toLower(s1[i]) != toLower(s2[i]) {
			return false
		}
	}
	return true
}

// ASCIIFold returns s with ASCII upper case letters folded to lower case.
// Strings that compare equal with ASCIICompare have the same fold.
func ASCIIFold(s string) string {
	i := 0
	for ; i < len(s) && !isUpper(s[i]); i++ {
	}
	if i == len(s) {
		return s
	}

	b := []byte(s)
	for ; i < len(b); i++ {
		b[i] = toLower(b[i])
	}
	return string(b)
}
