// Copyright 2025 Ian Lewis
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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"sigs.k8s.io/release-utils/version"

	"github.com/ianlewis/go-stardict-export"
	"github.com/ianlewis/go-stardict-export/internal/logging"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrSdutil is a parent error for all command errors.
var ErrSdutil = errors.New("sdutil")

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = fmt.Errorf("%w: parsing flags", ErrSdutil)

// ErrUnsupported indicates a feature is unsupported.
var ErrUnsupported = fmt.Errorf("%w: unsupported", ErrSdutil)

var copyrightNames = []string{
	"2021 Google LLC",
	"2024 Ian Lewis",
}

//nolint:gochecknoinits // init needed needed for global variable.
func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli` handles
	// the flag with the root command such that it takes a command name argument
	// but we don't use commands.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		// NOTE: Use a random name no one would guess.
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

// check checks the error and panics if not nil.
func check(err error) {
	if err != nil {
		panic(err)
	}
}

// dictLocations returns the directories that commonly hold dictionaries.
func dictLocations() []string {
	var loc []string

	if runtime.GOOS == "windows" {
		if execPath, err := os.Executable(); err == nil {
			loc = append(loc, filepath.Dir(execPath))
		}
	} else {
		loc = append(loc, "/usr/share/stardict/dic")
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			loc = append(loc, filepath.Join(xdgDataHome, "stardict", "dic"))
		}
	}

	if stardictDataDir := os.Getenv("STARDICT_DATA_DIR"); stardictDataDir != "" {
		loc = append(loc, filepath.Join(stardictDataDir, "dic"))
	}

	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != "" {
		loc = append(loc, filepath.Join(homeDir, ".stardict", "dic"))
	}

	return loc
}

// dictDirs returns the dictionary directories that exist.
func dictDirs() []string {
	var dirs []string
	for _, dir := range dictLocations() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// newLogger returns the logger configured by the --log-level flag. Logs are
// written to the app's error writer.
func newLogger(c *cli.Context) (*logrus.Logger, error) {
	logger, err := logging.New(c.App.ErrWriter, c.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("%w: --log-level: %w", ErrFlagParse, err)
	}
	return logger, nil
}

func openStardicts(dirs []string, logger *logrus.Logger) ([]*stardict.Stardict, []error) {
	var dicts []*stardict.Stardict
	var errs []error

	for _, path := range dirs {
		openDicts, openErrs := stardict.OpenAll(path, &stardict.Options{
			Logger: logger,
		})

		dicts = append(dicts, openDicts...)
		errs = append(errs, openErrs...)
	}

	return dicts, errs
}

func printVersion(c *cli.Context) error {
	versionInfo := version.GetVersionInfo()

	out := c.App.Writer
	if _, err := fmt.Fprintf(out, "%s %s\n", c.App.Name, versionInfo.GitVersion); err != nil {
		return fmt.Errorf("%w: %w", ErrSdutil, err)
	}
	for _, name := range copyrightNames {
		if _, err := fmt.Fprintf(out, "Copyright (c) %s\n", name); err != nil {
			return fmt.Errorf("%w: %w", ErrSdutil, err)
		}
	}
	if _, err := fmt.Fprintln(out, versionInfo.String()); err != nil {
		return fmt.Errorf("%w: %w", ErrSdutil, err)
	}
	return nil
}

func newStardictApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Export, list and search Stardict dictionaries.",
		Description: strings.Join([]string{
			"Stardict utility written in Go.",
			"http://github.com/ianlewis/go-stardict-export",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "data-dir",
				Usage:   "include dictionaries in `DIR`",
				Aliases: []string{"d"},
				EnvVars: []string{"SDUTIL_DATA_DIR"},
				Value:   cli.NewStringSlice(dictDirs()...),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log `LEVEL` (debug, info, warn, error)",
				EnvVars: []string{"SDUTIL_LOG_LEVEL"},
				Value:   "warn",
			},

			// Special flags are shown at the end.
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"V"},
				DisableDefaultText: true,
			},
		},
		Copyright:       strings.Join(copyrightNames, "\n"),
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("version") {
				return printVersion(c)
			}

			check(cli.ShowAppHelp(c))
			return nil
		},
		Commands: []*cli.Command{
			exportCommand,
			listCommand,
			queryCommand,
		},
	}
}
