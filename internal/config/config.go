package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gotrash/gotrash/internal/env"
	"github.com/muesli/reflow/indent"
	"github.com/samber/lo"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Core    Core          `yaml:"core"`
	Logging LoggingConfig `yaml:"logging"`
}

type Core struct {
	// HomeFallback sends files to the home trash when their mount cannot hold a trash
	HomeFallback bool `yaml:"home_fallback"`

	// CreateTrashDirs creates missing trash directories
	CreateTrashDirs bool `yaml:"create_trash_dirs"`

	// Verbose prints one line per trashed path
	Verbose bool `yaml:"verbose"`

	// Protected lists glob patterns of paths that are never trashed
	Protected []string `yaml:"protected" validate:"dive,validGlob"`
}

type LoggingConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Level    string         `yaml:"level" validate:"validLevel"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize  string `yaml:"max_size" validate:"validSize"`
	MaxFiles int    `yaml:"max_files" validate:"gte=1"`
}

type configError struct {
	configPath string
	err        error
}

func (e configError) Error() string {
	return heredoc.Docf(`
		Couldn't read the "%s" config file.
		Please try again after creating it or specifying a valid config path.
		The recommended config path is %s (default).
		Example YAML file contents:
		---
		%s
		---
		Original error:
		%s
		`,
		e.configPath,
		env.ConfigPath(),
		DefaultContents(),
		indent.String(e.err.Error(), 2),
	)
}

func (e configError) Unwrap() error {
	return e.err
}

type parsingError struct {
	err error
}

func (e parsingError) Error() string {
	return fmt.Sprintf("failed to parse config: %v", e.err)
}

func (e parsingError) Unwrap() error {
	return e.err
}

type validationError struct {
	errs validator.ValidationErrors
}

func (e validationError) Error() string {
	lines := lo.Map(e.errs, func(err validator.FieldError, _ int) string {
		return fmt.Sprintf("%s: %q is invalid (%s)", strings.TrimPrefix(err.Namespace(), "Config."), err.Value(), err.Tag())
	})
	return "validation error:\n" + indent.String(strings.Join(lines, "\n"), 2)
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.Split(fld.Tag.Get("yaml"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("validSize", validateSize)
	_ = validate.RegisterValidation("validLevel", validateLevel)
	_ = validate.RegisterValidation("validGlob", validateGlob)

	return validate
}

func readConfigFile(path string) (Config, error) {
	cfg := *NewDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, configError{configPath: path, err: err}
	}

	// keys missing from the file keep their defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if err := newValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return cfg, validationError{errs: verrs}
		}
		return cfg, err
	}
	return cfg, nil
}

// Parse loads the config file at path, or at the default location when
// path is empty. A missing default file yields the defaults; a missing
// explicit file is an error.
func Parse(path string) (Config, error) {
	configPath := path
	if configPath == "" {
		configPath = env.ConfigPath()
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			slog.Debug("config file not found, using defaults", "config-file", configPath)
			return *NewDefaultConfig(), nil
		}
	}
	slog.Debug("config file found", "config-file", configPath)

	cfg, err := readConfigFile(configPath)
	if err != nil {
		return cfg, parsingError{err: err}
	}

	cfg.Core.Protected, err = expandPaths(cfg.Core.Protected)
	if err != nil {
		return cfg, parsingError{err: err}
	}
	return cfg, nil
}
