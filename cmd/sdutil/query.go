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
	"strings"

	"github.com/urfave/cli/v2"
)

var queryCommand = &cli.Command{
	Name:        "query",
	Usage:       "Query dictionaries",
	ArgsUsage:   "WORD",
	Description: "Look up a word in the --data-dir dictionaries and print the articles as text.",
	Action: func(c *cli.Context) error {
		if c.Args().Len() != 1 {
			return fmt.Errorf("%w: expected one WORD argument, got %d", ErrFlagParse, c.Args().Len())
		}
		query := c.Args().First()

		logger, err := newLogger(c)
		if err != nil {
			return err
		}

		dicts, errs := openStardicts(c.StringSlice("data-dir"), logger)
		for _, err := range errs {
			logger.Error(err)
		}
		defer func() {
			for _, d := range dicts {
				d.Close()
			}
		}()

		var failed int
		for _, d := range dicts {
			entries, err := d.Search(query)
			if err != nil {
				logger.Error(err)
				failed++
				continue
			}
			if len(entries) == 0 {
				continue
			}

			fmt.Fprintln(c.App.Writer, d.Bookname())
			fmt.Fprintln(c.App.Writer, strings.Repeat("=", len(d.Bookname())))
			for _, e := range entries {
				fmt.Fprintln(c.App.Writer, e)
			}
		}

		if failed+len(errs) > 0 {
			return fmt.Errorf("%w: %d dictionaries could not be searched", ErrSdutil, failed+len(errs))
		}
		return nil
	},
}
