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

// Package ifo implements reading and writing .ifo files.
//
// An .ifo file starts with a magic line followed by key=value lines. The
// first key must be "version".
package ifo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Magic is the magic first line of a Stardict .ifo file.
const Magic = "StarDict's dict ifo file"

var (
	errMissingVersion = errors.New("missing version")
	errInvalidKey     = errors.New("invalid key")
	errInvalidValue   = errors.New("invalid value")
	errInvalidLine    = errors.New("invalid line")
)

var keyRegex = regexp.MustCompile("^[a-zA-Z0-9-_]+$")

// Ifo is a dictionary info file. Keys keep the order they were read or set
// in.
type Ifo struct {
	magic    string
	keys     []string
	metadata map[string]string
}

// NewEmpty returns an Ifo with the given magic line and no keys.
func NewEmpty(magic string) *Ifo {
	return &Ifo{
		magic:    magic,
		metadata: map[string]string{},
	}
}

// New returns a new dictionary info object read from r.
func New(r io.Reader) (*Ifo, error) {
	i := NewEmpty("")

	s := bufio.NewScanner(bufio.NewReader(r))
	if s.Scan() {
		i.magic = strings.TrimPrefix(strings.TrimRight(s.Text(), "\r"), "\ufeff")
	}

	for s.Scan() {
		line := strings.TrimRight(s.Text(), "\r")
		if strings.Trim(line, " ") == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil, fmt.Errorf("%w: %q", errInvalidLine, line)
		}
		key = strings.TrimRight(key, " ")
		value = strings.TrimLeft(value, " ")
		if !keyRegex.MatchString(key) {
			return nil, fmt.Errorf("%w: %v", errInvalidKey, key)
		}
		if len(i.keys) == 0 && key != "version" {
			return nil, errMissingVersion
		}
		i.set(key, value)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading .ifo: %w", err)
	}
	if len(i.keys) == 0 {
		return nil, errMissingVersion
	}

	return i, nil
}

// Magic returns the magic first line.
func (i *Ifo) Magic() string {
	return i.magic
}

// Value returns the value for key or an empty string.
func (i *Ifo) Value(key string) string {
	return i.metadata[key]
}

// Keys returns the keys in order.
func (i *Ifo) Keys() []string {
	return i.keys
}

// Set sets the value for key. New keys are appended. Values cannot span
// multiple lines.
func (i *Ifo) Set(key, value string) error {
	if !keyRegex.MatchString(key) {
		return fmt.Errorf("%w: %v", errInvalidKey, key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s contains a line break", errInvalidValue, key)
	}
	if len(i.keys) == 0 && key != "version" {
		return errMissingVersion
	}
	i.set(key, value)
	return nil
}

func (i *Ifo) set(key, value string) {
	if _, ok := i.metadata[key]; !ok {
		i.keys = append(i.keys, key)
	}
	i.metadata[key] = value
}

// WriteTo writes the .ifo file to w as UTF-8 text with Unix line endings.
func (i *Ifo) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64

	c, err := bw.WriteString(i.magic + "\n")
	n += int64(c)
	if err != nil {
		return n, fmt.Errorf("writing .ifo: %w", err)
	}
	for _, key := range i.keys {
		c, err := bw.WriteString(key + "=" + i.metadata[key] + "\n")
		n += int64(c)
		if err != nil {
			return n, fmt.Errorf("writing .ifo: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("writing .ifo: %w", err)
	}
	return n, nil
}
