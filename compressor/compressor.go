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

// Package compressor compresses StarDict output files. The .idx file is
// gzip compressed and the .dict file is compressed with dictzip so that
// readers can seek into it.
package compressor

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ianlewis/go-dictzip"
)

// ErrCompressionFailed indicates that a file could not be compressed.
var ErrCompressionFailed = errors.New("compression failed")

// DictzipExt is the extension appended to dictzip compressed files.
const DictzipExt = ".dz"

// GzipFile compresses src to dst and removes src.
func GzipFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	z := gzip.NewWriter(out)
	z.Name = filepath.Base(src)
	if _, err := io.Copy(z, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: gzip %s: %w", ErrCompressionFailed, src, err)
	}
	if err := z.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: gzip %s: %w", ErrCompressionFailed, src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrCompressionFailed, dst, err)
	}
	_ = in.Close()

	if err := os.Remove(src); err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	return nil
}

// Dictzip compresses a .dict file in place. On success the file at path is
// replaced by path + [DictzipExt].
type Dictzip interface {
	Compress(ctx context.Context, path string) error
}

// Exec runs an external dictzip compatible executable.
type Exec struct {
	// Path is the path to the executable.
	Path string

	// Keep keeps the uncompressed file.
	Keep bool
}

// Args returns the arguments passed to the executable for path.
func (e *Exec) Args(path string) []string {
	args := []string{"--force"}
	if e.Keep {
		args = append(args, "--keep")
	}
	return append(args, filepath.Base(path))
}

// Compress implements [Dictzip]. The context is only checked before the
// process is started.
func (e *Exec) Compress(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors are returned as-is.
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}

	//nolint:gosec // the executable is configured by the user.
	cmd := exec.Command(e.Path, e.Args(path)...)
	cmd.Dir = filepath.Dir(path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%w: %s %s: %w: %s", ErrCompressionFailed, e.Path, strings.Join(cmd.Args[1:], " "), err, msg)
		}
		return fmt.Errorf("%w: %s %s: %w", ErrCompressionFailed, e.Path, strings.Join(cmd.Args[1:], " "), err)
	}
	return nil
}

// Library compresses in-process with go-dictzip.
type Library struct {
	// Keep keeps the uncompressed file.
	Keep bool
}

// Compress implements [Dictzip].
func (l *Library) Compress(ctx context.Context, path string) (err error) {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck // context errors are returned as-is.
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	defer in.Close()

	dst := path + DictzipExt
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	z, err := dictzip.NewWriter(out)
	if err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: dictzip %s: %w", ErrCompressionFailed, path, err)
	}
	if _, err := io.Copy(z, in); err != nil {
		_ = z.Close()
		_ = out.Close()
		return fmt.Errorf("%w: dictzip %s: %w", ErrCompressionFailed, path, err)
	}
	if err := z.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: dictzip %s: %w", ErrCompressionFailed, path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrCompressionFailed, dst, err)
	}
	_ = in.Close()

	if l.Keep {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("%w: %w", ErrCompressionFailed, err)
	}
	return nil
}
