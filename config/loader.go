package config

import (
	"os"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/utils"
)

var (
	validFormats = []string{"text", "dot", "jsonl", "summary"}
)

type loaderFunction struct {
	name        string
	loader_func func(self *Loader) (*Config, error)
}

type validatorFunction struct {
	name      string
	validator func(self *Loader, config_obj *Config) error
}

// Loader tries each loader in turn and uses the first config it
// finds. With no loader succeeding the default config is used.
type Loader struct {
	loaders    []loaderFunction
	validators []validatorFunction
}

func (self *Loader) Copy() *Loader {
	return &Loader{
		loaders:    append([]loaderFunction{}, self.loaders...),
		validators: append([]validatorFunction{}, self.validators...),
	}
}

func (self *Loader) WithFileLoader(filename string) *Loader {
	if filename == "" {
		return self
	}

	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "FileLoader",
		loader_func: func(self *Loader) (*Config, error) {
			return LoadConfig(filename)
		},
	})
	return self
}

// Read the config path from an environment variable.
func (self *Loader) WithEnvLoader(env_var string) *Loader {
	self = self.Copy()
	self.loaders = append(self.loaders, loaderFunction{
		name: "EnvLoader",
		loader_func: func(self *Loader) (*Config, error) {
			filename, pres := os.LookupEnv(env_var)
			if !pres || filename == "" {
				return nil, utils.Wrap(utils.NotFoundError,
					"Environment variable %v not set", env_var)
			}
			return LoadConfig(filename)
		},
	})
	return self
}

// Apply a callback on the config before validation. Used to apply
// command line overrides.
func (self *Loader) WithConfigMutator(
	name string, mutator func(config_obj *Config) error) *Loader {
	self = self.Copy()
	self.validators = append(self.validators, validatorFunction{
		name: name,
		validator: func(self *Loader, config_obj *Config) error {
			return mutator(config_obj)
		},
	})
	return self
}

func (self *Loader) LoadAndValidate() (*Config, error) {
	config_obj, err := self.load()
	if err != nil {
		return nil, err
	}

	for _, v := range self.validators {
		err := v.validator(self, config_obj)
		if err != nil {
			return nil, errors.Wrapf(err, "%v", v.name)
		}
	}

	return config_obj, Validate(config_obj)
}

func (self *Loader) load() (*Config, error) {
	for _, l := range self.loaders {
		config_obj, err := l.loader_func(self)
		if err == nil {
			return config_obj, nil
		}

		// A config file that exists but does not parse is a hard
		// error. A missing environment variable just means we try
		// the next loader.
		if !errors.Is(err, utils.NotFoundError) {
			return nil, errors.Wrapf(err, "%v", l.name)
		}
	}

	return GetDefaultConfig(), nil
}

func Validate(config_obj *Config) error {
	normalize(config_obj)

	if !utils.InString(validFormats, config_obj.Report.Format) {
		return utils.Wrap(utils.InvalidArgError,
			"Unknown report format %v", config_obj.Report.Format)
	}

	switch config_obj.Report.AddressBits {
	case 32, 64:
	default:
		return utils.Wrap(utils.InvalidArgError,
			"address_bits must be 32 or 64, not %v",
			config_obj.Report.AddressBits)
	}

	sources := config_obj.Sources
	if sources.Database != "" &&
		(sources.ScanFile != "" || sources.ListFile != "") {
		return utils.Wrap(utils.InvalidArgError,
			"Specify either a database or scan/list files, not both")
	}

	if sources.IdentityTranslation && sources.TranslationFile != "" {
		return utils.Wrap(utils.InvalidArgError,
			"identity_translation and translation_file are exclusive")
	}

	return nil
}
