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

	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var listCommand = &cli.Command{
	Name:      "list",
	Usage:     "List dictionaries",
	ArgsUsage: "[DIR]...",
	Description: "List all dictionaries in the given directories or, with no " +
		"arguments, in the --data-dir directories.",
	Action: func(c *cli.Context) error {
		logger, err := newLogger(c)
		if err != nil {
			return err
		}

		dirs := c.Args().Slice()
		if len(dirs) == 0 {
			dirs = c.StringSlice("data-dir")
		}

		dicts, errs := openStardicts(dirs, logger)
		for _, err := range errs {
			logger.Error(err)
		}
		defer func() {
			for _, d := range dicts {
				d.Close()
			}
		}()

		tbl := table.New("Name", "Version", "Words", "Date", "Path").WithWriter(c.App.Writer)
		for _, d := range dicts {
			tbl.AddRow(d.Bookname(), d.Version(), d.WordCount(), d.Date(), d.Path())
		}
		tbl.Print()

		if len(errs) > 0 {
			return fmt.Errorf("%w: %d dictionaries could not be opened", ErrSdutil, len(errs))
		}
		return nil
	},
}
