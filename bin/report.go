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
	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/logging"
	"www.velocidex.com/golang/pstotal/pstotal"
	"www.velocidex.com/golang/pstotal/renderers"
	"www.velocidex.com/golang/pstotal/sources"
)

// Flags shared by every command that reads framework exports.
type sourceFlags struct {
	scan_file        *string
	list_file        *string
	database         *string
	scan_table       *string
	list_table       *string
	translation_file *string
	identity         *bool
	address_bits     *int
}

func addSourceFlags(command *kingpin.CmdClause) *sourceFlags {
	return &sourceFlags{
		scan_file: command.Flag("scan",
			"psscan output saved as JSON.").String(),
		list_file: command.Flag("list",
			"pslist output saved as JSON.").String(),
		database: command.Flag("db",
			"SQLite database with the psscan and pslist tables.").String(),
		scan_table: command.Flag("scan_table",
			"Table holding the psscan output.").String(),
		list_table: command.Flag("list_table",
			"Table holding the pslist output.").String(),
		translation_file: command.Flag("vtop",
			"YAML file mapping virtual to physical offsets.").String(),
		identity: command.Flag("identity",
			"List offsets are already physical.").Bool(),
		address_bits: command.Flag("address_bits",
			"Pointer size of the profile (32 or 64).").Int(),
	}
}

func (self *sourceFlags) apply(config_obj *config.Config) error {
	sources := config_obj.Sources

	// Files on the command line replace whatever the config
	// selected.
	if *self.database != "" || *self.scan_file != "" || *self.list_file != "" {
		sources.Database = *self.database
		sources.ScanFile = *self.scan_file
		sources.ListFile = *self.list_file
	}

	if *self.scan_table != "" {
		sources.ScanTable = *self.scan_table
	}
	if *self.list_table != "" {
		sources.ListTable = *self.list_table
	}

	if *self.translation_file != "" {
		sources.TranslationFile = *self.translation_file
		sources.IdentityTranslation = false
	}
	if *self.identity {
		sources.IdentityTranslation = true
		sources.TranslationFile = ""
	}

	if *self.address_bits != 0 {
		config_obj.Report.AddressBits = *self.address_bits
	}
	return nil
}

var (
	report_command = app.Command("report",
		"Report process blocks found by the pool scan and flag hidden ones.")

	report_source_flags = addSourceFlags(report_command)

	report_short = report_command.Flag("short",
		"Only show processes missing from the process list.").
		Short('S').Bool()

	report_cmd = report_command.Flag("cmd",
		"Add command lines to the graph.").Short('C').Bool()

	report_path = report_command.Flag("path",
		"Add image paths to the graph.").Short('P').Bool()

	report_format = report_command.Flag("output",
		"Output format.").Enum(renderers.FormatNames()...)

	report_output_file = report_command.Flag("output_file",
		"Write the report here instead of stdout.").String()

	report_metrics_file = report_command.Flag("metrics_file",
		"Also write totals as a Prometheus textfile.").String()

	summary_command = app.Command("summary",
		"Print totals of hidden, exited and prior boot processes.")

	summary_source_flags = addSourceFlags(summary_command)
)

func reportConfigLoader() *config.Loader {
	return makeDefaultConfigLoader().
		WithConfigMutator("Sources", report_source_flags.apply).
		WithConfigMutator("Report", func(config_obj *config.Config) error {
			report := config_obj.Report
			if *report_short {
				report.Short = true
			}
			if *report_cmd {
				report.Cmd = true
			}
			if *report_path {
				report.Path = true
			}
			if *report_format != "" {
				report.Format = *report_format
			}
			if *report_output_file != "" {
				report.OutputFile = *report_output_file
			}
			if *report_metrics_file != "" {
				report.MetricsFile = *report_metrics_file
			}
			return nil
		})
}

func summaryConfigLoader() *config.Loader {
	return makeDefaultConfigLoader().
		WithConfigMutator("Sources", summary_source_flags.apply).
		WithConfigMutator("Report", func(config_obj *config.Config) error {
			config_obj.Report.Format = renderers.FormatSummary.String()
			config_obj.Report.OutputFile = ""
			return nil
		})
}

func doReport(loader *config.Loader) error {
	config_obj, err := loadConfig(loader)
	if err != nil {
		return err
	}

	ctx, cancel := install_sig_handler()
	defer cancel()

	logger := logging.GetLogger(config_obj, &logging.ToolComponent)

	format, err := renderers.ParseFormat(config_obj.Report.Format)
	if err != nil {
		return err
	}

	source, err := sources.NewSourceFromConfig(config_obj)
	if err != nil {
		return err
	}

	result, err := pstotal.Collect(ctx, config_obj, source,
		pstotal.OptionsFromConfig(config_obj))
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if config_obj.Report.OutputFile != "" {
		fd, err := os.OpenFile(config_obj.Report.OutputFile,
			os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return errors.Wrap(err, "Opening output file")
		}
		defer fd.Close()
		out = fd
	}

	err = renderers.Render(out, result, format,
		renderers.OptionsFromConfig(config_obj))
	if err != nil {
		return err
	}

	if config_obj.Report.MetricsFile != "" {
		err = renderers.WriteMetricsFile(config_obj.Report.MetricsFile, result)
		if err != nil {
			return err
		}
		logger.Info("Wrote metrics to %v", config_obj.Report.MetricsFile)
	}

	return nil
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case report_command.FullCommand():
			kingpin.FatalIfError(doReport(reportConfigLoader()), "report")

		case summary_command.FullCommand():
			kingpin.FatalIfError(doReport(summaryConfigLoader()), "summary")

		default:
			return false
		}
		return true
	})
}
