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
	"fmt"
	"slices"

	"github.com/c2h5oh/datasize"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ianlewis/go-stardict-export"
	"github.com/ianlewis/go-stardict-export/compressor"
	"github.com/ianlewis/go-stardict-export/jsondump"
	"github.com/ianlewis/go-stardict-export/lexicon"
	"github.com/ianlewis/go-stardict-export/lexicon/sqlite"
	"github.com/ianlewis/go-stardict-export/xdxf"
)

const (
	formatStardict = "stardict"
	formatXDXF     = "xdxf"
	formatJSON     = "json"
)

var formats = []string{formatStardict, formatXDXF, formatJSON}

var exportCommand = &cli.Command{
	Name:  "export",
	Usage: "Export a dictionary",
	Description: "Load a dictionary from a dictionary.com database or a JSON dump " +
		"and write it in one or more formats.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "sqlite",
			Usage: "load the dictionary.com database at `PATH`",
		},
		&cli.StringFlag{
			Name:  "json-dump",
			Usage: "load the JSON dump at `PATH`",
		},
		&cli.StringSliceFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output `FORMAT` (stardict, xdxf, json)",
			Value:   cli.NewStringSlice(formatStardict),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write files to `DIR`",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "dictzip",
			Usage:   "compress .dict files with the executable at `PATH` instead of in-process",
			EnvVars: []string{"SDUTIL_DICTZIP"},
		},
		&cli.BoolFlag{
			Name:  "keep-dict",
			Usage: "keep the uncompressed .dict file",
		},
		&cli.StringFlag{
			Name:  "xdxf-encoding",
			Usage: "XDXF file `ENCODING` (utf-8, utf-16)",
			Value: "utf-8",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "load at most `N` database entries (0 loads all)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "load database entries with `N` workers (0 uses all CPUs)",
		},
	},
	Action: runExport,
}

func runExport(c *cli.Context) error {
	logger, err := newLogger(c)
	if err != nil {
		return err
	}

	exporters, err := newExporters(c, logger)
	if err != nil {
		return err
	}

	d, err := loadDictionary(c, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "loaded %v\n", d)

	output := c.String("output")
	for _, format := range c.StringSlice("format") {
		e := exporters[format]
		if se, ok := e.(*stardict.Exporter); ok {
			res, err := se.Write(c.Context, d, output)
			if err != nil {
				return fmt.Errorf("%w: exporting %s: %w", ErrSdutil, format, err)
			}
			fmt.Fprintf(c.App.Writer, "%s: %d words, .idx %s, .dict %s\n", format, res.WordCount,
				datasize.ByteSize(res.IdxFileSize).HR(), datasize.ByteSize(res.DictSize).HR())
			for _, f := range res.Files {
				fmt.Fprintf(c.App.Writer, "  %s\n", f)
			}
			continue
		}
		if err := e.Export(c.Context, d, output); err != nil {
			return fmt.Errorf("%w: exporting %s: %w", ErrSdutil, format, err)
		}
		fmt.Fprintf(c.App.Writer, "%s: done\n", format)
	}
	return nil
}

// newExporters returns an exporter for each requested format.
func newExporters(c *cli.Context, logger *logrus.Logger) (map[string]lexicon.Exporter, error) {
	exporters := map[string]lexicon.Exporter{}
	for _, format := range c.StringSlice("format") {
		switch format {
		case formatStardict:
			var dz compressor.Dictzip = &compressor.Library{Keep: c.Bool("keep-dict")}
			if path := c.String("dictzip"); path != "" {
				dz = &compressor.Exec{Path: path, Keep: c.Bool("keep-dict")}
			}
			exporters[format] = stardict.NewExporter(&stardict.ExportOptions{
				Logger:  logger,
				Dictzip: dz,
			})
		case formatXDXF:
			enc, err := xdxf.ParseEncoding(c.String("xdxf-encoding"))
			if err != nil {
				return nil, fmt.Errorf("%w: --xdxf-encoding: %w", ErrFlagParse, err)
			}
			exporters[format] = xdxf.NewExporter(&xdxf.ExportOptions{
				Logger:   logger,
				Encoding: enc,
			})
		case formatJSON:
			exporters[format] = jsondump.NewExporter(&jsondump.ExportOptions{
				Logger: logger,
			})
		default:
			return nil, fmt.Errorf("%w: format %q, must be one of %v", ErrUnsupported, format, formats)
		}
	}
	if len(exporters) == 0 {
		return nil, fmt.Errorf("%w: no --format given", ErrFlagParse)
	}
	return exporters, nil
}

func loadDictionary(c *cli.Context, logger *logrus.Logger) (*lexicon.Dictionary, error) {
	var sources []string
	for _, name := range []string{"sqlite", "json-dump"} {
		if c.String(name) != "" {
			sources = append(sources, name)
		}
	}
	if len(sources) != 1 {
		return nil, fmt.Errorf("%w: exactly one of --sqlite or --json-dump is required", ErrFlagParse)
	}

	if slices.Contains(sources, "json-dump") {
		d, err := jsondump.Load(c.String("json-dump"))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSdutil, err)
		}
		return d, nil
	}

	options := *sqlite.DefaultOptions
	options.Limit = c.Int("limit")
	options.Workers = c.Int("workers")
	options.Logger = logger
	d, err := sqlite.Load(c.Context, c.String("sqlite"), &options)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSdutil, err)
	}
	return d, nil
}
