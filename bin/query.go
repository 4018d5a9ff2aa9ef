/*
   Velociraptor - Hunting Evil
   Copyright (C) 2019 Velocidex Innovations.

   This program is free software: you can redistribute it and/or modify
   it under the terms of the GNU Affero General Public License as published
   by the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   This program is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Affero General Public License for more details.

   You should have received a copy of the GNU Affero General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/logging"
	"www.velocidex.com/golang/pstotal/vql"
)

var (
	// Command line interface for VQL commands.
	query   = app.Command("query", "Run a VQL query over the pstotal() plugin.")
	queries = query.Arg("queries", "The VQL Query to run.").
		Required().Strings()

	query_output_file = query.Flag("output", "A file to store the output.").
				Default("").String()
)

func doQuery() error {
	config_obj, err := loadConfig(makeDefaultConfigLoader())
	if err != nil {
		return err
	}

	ctx, cancel := install_sig_handler()
	defer cancel()

	logger := logging.GetLogger(config_obj, &logging.VQLComponent)
	scope := vql.MakeScope(logger.StdLogger(),
		vql.NewPstotalPlugin(config_obj, nil))
	defer scope.Close()

	var out io.Writer = os.Stdout
	if *query_output_file != "" {
		fd, err := os.OpenFile(*query_output_file,
			os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return errors.Wrap(err, "Opening output file")
		}
		defer fd.Close()
		out = fd
	}

	for _, vql_query := range *queries {
		err := vql.RunQuery(ctx, scope, vql_query, out)
		if err != nil {
			return err
		}
	}

	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		if command == query.FullCommand() {
			kingpin.FatalIfError(doQuery(), "query")
			return true
		}
		return false
	})
}
