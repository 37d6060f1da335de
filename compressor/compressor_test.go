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

package compressor_test

import (
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ianlewis/go-dictzip"

	"github.com/ianlewis/go-stardict-export/compressor"
)

const content = "<b>fan</b><br>\na device for moving air"

func writeFile(t *testing.T, path, s string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(s), 0o600); err != nil {
		t.Fatal(err)
	}
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatal(err)
	}
	return err == nil
}

func TestGzipFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "test-1.0.idx")
	dst := src + ".gz"
	writeFile(t, src, content)

	if err := compressor.GzipFile(src, dst); err != nil {
		t.Fatalf("GzipFile: %v", err)
	}
	if exists(t, src) {
		t.Errorf("%s was not removed", src)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	z, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip.NewReader: %v", err)
	}
	b, err := io.ReadAll(z)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if diff := cmp.Diff(content, string(b)); diff != "" {
		t.Errorf("content (-want, +got):\n%s", diff)
	}
	if want, got := "test-1.0.idx", z.Name; want != got {
		t.Errorf("Name: want %q, got %q", want, got)
	}
}

func TestGzipFile_missing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dst := filepath.Join(dir, "missing.idx.gz")
	err := compressor.GzipFile(filepath.Join(dir, "missing.idx"), dst)
	if !errors.Is(err, compressor.ErrCompressionFailed) {
		t.Fatalf("GzipFile: want %v, got %v", compressor.ErrCompressionFailed, err)
	}
	if exists(t, dst) {
		t.Errorf("%s was created", dst)
	}
}

func TestLibrary(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		keep bool
	}{
		"remove source": {keep: false},
		"keep source":   {keep: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "test-1.0.dict")
			writeFile(t, path, content)

			c := &compressor.Library{Keep: tc.keep}
			if err := c.Compress(context.Background(), path); err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if want, got := tc.keep, exists(t, path); want != got {
				t.Errorf("source exists: want %v, got %v", want, got)
			}

			f, err := os.Open(path + compressor.DictzipExt)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			z, err := dictzip.NewReader(f)
			if err != nil {
				t.Fatalf("dictzip.NewReader: %v", err)
			}
			defer z.Close()

			// Read from the middle of the file.
			b := make([]byte, 8)
			if _, err := z.ReadAt(b, 15); err != nil && !errors.Is(err, io.EOF) {
				t.Fatalf("ReadAt: %v", err)
			}
			if diff := cmp.Diff(content[15:23], string(b)); diff != "" {
				t.Errorf("ReadAt (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestLibrary_canceled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test-1.0.dict")
	writeFile(t, path, content)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &compressor.Library{}
	if err := c.Compress(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("Compress: want %v, got %v", context.Canceled, err)
	}
	if !exists(t, path) {
		t.Errorf("%s was removed", path)
	}
}

func TestExec_Args(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		keep     bool
		expected []string
	}{
		"remove source": {
			expected: []string{"--force", "test-1.0.dict"},
		},
		"keep source": {
			keep:     true,
			expected: []string{"--force", "--keep", "test-1.0.dict"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			e := &compressor.Exec{Path: "dictzip", Keep: tc.keep}
			got := e.Args(filepath.Join("out", "test-1.0.dict"))
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("Args (-want, +got):\n%s", diff)
			}
		})
	}
}

// fakeDictzip writes a shell script that behaves like dictzip --force,
// exiting with the given code.
func fakeDictzip(t *testing.T, code string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "dictzip")
	script := "#!/bin/sh\n" +
		"for last; do :; done\n" +
		"cp \"$last\" \"$last.dz\" || exit 1\n" +
		"[ \"$2\" = \"--keep\" ] || rm \"$last\"\n" +
		"exit " + code + "\n"
	//nolint:gosec // test script must be executable.
	if err := os.WriteFile(path, []byte(script), 0o700); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExec(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		code       string
		keep       bool
		keepSource bool
		err        error
	}{
		"success": {
			code: "0",
		},
		"success keep": {
			code:       "0",
			keep:       true,
			keepSource: true,
		},
		"non-zero exit": {
			code: "3",
			err:  compressor.ErrCompressionFailed,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bin := fakeDictzip(t, tc.code)
			path := filepath.Join(t.TempDir(), "test-1.0.dict")
			writeFile(t, path, content)

			c := &compressor.Exec{Path: bin, Keep: tc.keep}
			err := c.Compress(context.Background(), path)
			if !errors.Is(err, tc.err) {
				t.Fatalf("Compress: want %v, got %v", tc.err, err)
			}
			if err != nil {
				return
			}
			if want, got := tc.keepSource, exists(t, path); want != got {
				t.Errorf("source exists: want %v, got %v", want, got)
			}
			if !exists(t, path+compressor.DictzipExt) {
				t.Errorf("%s was not created", path+compressor.DictzipExt)
			}
		})
	}
}

func TestExec_notFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test-1.0.dict")
	writeFile(t, path, content)

	c := &compressor.Exec{Path: filepath.Join(dir, "no-such-dictzip")}
	if err := c.Compress(context.Background(), path); !errors.Is(err, compressor.ErrCompressionFailed) {
		t.Fatalf("Compress: want %v, got %v", compressor.ErrCompressionFailed, err)
	}
}

func TestExec_missingFile(t *testing.T) {
	t.Parallel()

	c := &compressor.Exec{Path: "dictzip"}
	err := c.Compress(context.Background(), filepath.Join(t.TempDir(), "missing.dict"))
	if !errors.Is(err, compressor.ErrCompressionFailed) {
		t.Fatalf("Compress: want %v, got %v", compressor.ErrCompressionFailed, err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Compress: want %v, got %v", os.ErrNotExist, err)
	}
}
