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
package config

import (
	"io/ioutil"

	"github.com/Velocidex/yaml/v2"
	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/constants"
)

// Embed build time constants into here for reporting the version.
var (
	build_time  string
	commit_hash string
)

const (
	DefaultScanTable   = "PSScan"
	DefaultListTable   = "PSList"
	DefaultAddressBits = 64
	DefaultFormat      = "text"
)

type LoggingConfig struct {
	// One of debug, info, warn, error
	Level string `yaml:"level,omitempty"`

	// Emit logs as JSON objects instead of text.
	Json bool `yaml:"json,omitempty"`

	// Write logs to this file instead of stderr.
	Filename string `yaml:"filename,omitempty"`
}

// Where the framework exported its results.
type SourcesConfig struct {
	ScanFile string `yaml:"scan_file,omitempty"`
	ListFile string `yaml:"list_file,omitempty"`

	// A sqlite database with both the scan and the list tables.
	Database  string `yaml:"database,omitempty"`
	ScanTable string `yaml:"scan_table,omitempty"`
	ListTable string `yaml:"list_table,omitempty"`

	// A virtual to physical translation table (YAML or JSON).
	TranslationFile string `yaml:"translation_file,omitempty"`

	// List offsets are already physical.
	IdentityTranslation bool `yaml:"identity_translation,omitempty"`
}

type ReportConfig struct {
	Format string `yaml:"format,omitempty"`

	Short bool `yaml:"short,omitempty"`
	Cmd   bool `yaml:"cmd,omitempty"`
	Path  bool `yaml:"path,omitempty"`

	// 32 for x86 profiles, 64 for x64.
	AddressBits int `yaml:"address_bits,omitempty"`

	OutputFile  string `yaml:"output_file,omitempty"`
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

type Version struct {
	Name      string `yaml:"name,omitempty"`
	Version   string `yaml:"version,omitempty"`
	Commit    string `yaml:"commit,omitempty"`
	BuildTime string `yaml:"build_time,omitempty"`
}

type Config struct {
	Version *Version       `yaml:"version,omitempty"`
	Logging *LoggingConfig `yaml:"logging,omitempty"`
	Sources *SourcesConfig `yaml:"sources,omitempty"`
	Report  *ReportConfig  `yaml:"report,omitempty"`
}

func GetVersion() *Version {
	return &Version{
		Name:      "pstotal",
		Version:   constants.VERSION,
		Commit:    commit_hash,
		BuildTime: build_time,
	}
}

func GetDefaultConfig() *Config {
	return &Config{
		Version: GetVersion(),
		Logging: &LoggingConfig{
			Level: "info",
		},
		Sources: &SourcesConfig{
			ScanTable: DefaultScanTable,
			ListTable: DefaultListTable,
		},
		Report: &ReportConfig{
			Format:      DefaultFormat,
			AddressBits: DefaultAddressBits,
		},
	}
}

// Load the config stored in the YAML file on top of the defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "LoadConfig")
	}

	return ParseConfigFromString(data)
}

func ParseConfigFromString(config_string []byte) (*Config, error) {
	config_obj := GetDefaultConfig()
	err := yaml.Unmarshal(config_string, config_obj)
	if err != nil {
		return nil, errors.Wrap(err, "ParseConfigFromString")
	}

	normalize(config_obj)
	return config_obj, nil
}

// Sections missing from the file come back nil after unmarshal.
func normalize(config_obj *Config) {
	defaults := GetDefaultConfig()

	if config_obj.Version == nil {
		config_obj.Version = defaults.Version
	}

	if config_obj.Logging == nil {
		config_obj.Logging = defaults.Logging
	}

	if config_obj.Sources == nil {
		config_obj.Sources = defaults.Sources
	}
	if config_obj.Sources.ScanTable == "" {
		config_obj.Sources.ScanTable = DefaultScanTable
	}
	if config_obj.Sources.ListTable == "" {
		config_obj.Sources.ListTable = DefaultListTable
	}

	if config_obj.Report == nil {
		config_obj.Report = defaults.Report
	}
	if config_obj.Report.Format == "" {
		config_obj.Report.Format = DefaultFormat
	}
	if config_obj.Report.AddressBits == 0 {
		config_obj.Report.AddressBits = DefaultAddressBits
	}
}

func Encode(config_obj *Config) ([]byte, error) {
	return yaml.Marshal(config_obj)
}

func WriteConfigToFile(filename string, config_obj *Config) error {
	bytes, err := Encode(config_obj)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(filename, bytes, 0600)
}
