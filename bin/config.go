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
	"context"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"
	"www.velocidex.com/golang/pstotal/config"
	"www.velocidex.com/golang/pstotal/constants"
	"www.velocidex.com/golang/pstotal/logging"
)

var (
	config_command = app.Command("config", "Manage the configuration file.")

	config_show_command = config_command.Command(
		"show", "Show the effective configuration.")

	config_generate_command = config_command.Command(
		"generate", "Write a default configuration file.")

	config_generate_output = config_generate_command.Arg(
		"output", "Where to write the config. Stdout if not given.").
		String()
)

func makeDefaultConfigLoader() *config.Loader {
	return (&config.Loader{}).
		WithFileLoader(*config_path).
		WithEnvLoader(constants.PSTOTAL_CONFIG)
}

// Load the config and start logging with it.
func loadConfig(loader *config.Loader) (*config.Config, error) {
	config_obj, err := loader.LoadAndValidate()
	if err != nil {
		return nil, err
	}

	err = logging.InitLogging(config_obj)
	if err != nil {
		return nil, err
	}

	return config_obj, nil
}

func doShowConfig() error {
	config_obj, err := loadConfig(makeDefaultConfigLoader())
	if err != nil {
		return err
	}

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(res)
	return err
}

func doGenerateConfig() error {
	config_obj := config.GetDefaultConfig()
	if *config_generate_output != "" {
		return config.WriteConfigToFile(*config_generate_output, config_obj)
	}

	res, err := config.Encode(config_obj)
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(res)
	return err
}

func install_sig_handler() (context.Context, context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		select {
		case <-quit:
			cancel()

		case <-ctx.Done():
			return
		}
	}()

	return ctx, cancel
}

func init() {
	command_handlers = append(command_handlers, func(command string) bool {
		switch command {
		case config_show_command.FullCommand():
			kingpin.FatalIfError(doShowConfig(), "config show")

		case config_generate_command.FullCommand():
			kingpin.FatalIfError(doGenerateConfig(), "config generate")

		default:
			return false
		}
		return true
	})
}
