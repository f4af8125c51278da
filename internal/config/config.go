package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/babarot/saferm/internal/env"
	"github.com/go-playground/validator/v10"
	"github.com/muesli/reflow/indent"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Core Core `yaml:"core"`
	List List `yaml:"list"`
}

type Core struct {
	TrashDir string        `yaml:"trash_dir" validate:"validDirPath"`
	Verbose  bool          `yaml:"verbose"`
	Purge    PurgeConfig   `yaml:"purge"`
	Restore  RestoreConfig `yaml:"restore"`
	Logging  LoggingConfig `yaml:"logging"`
}

type PurgeConfig struct {
	// Confirm is the default for -p when neither -y nor -f is given
	Confirm bool `yaml:"confirm"`
}

type RestoreConfig struct {
	Verbose bool `yaml:"verbose"`
}

type LoggingConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Level    string         `yaml:"level" validate:"oneof=debug info warn error"`
	Rotation RotationConfig `yaml:"rotation"`
}

type RotationConfig struct {
	MaxSize  string `yaml:"max_size" validate:"validSize"`
	MaxFiles int    `yaml:"max_files" validate:"gte=0"`
}

type List struct {
	Within  string        `yaml:"within" validate:"validDuration"`
	Exclude ExcludeConfig `yaml:"exclude"`
}

type ExcludeConfig struct {
	Files    []string   `yaml:"files"`
	Patterns []string   `yaml:"patterns" validate:"dive,validRegexp"`
	Globs    []string   `yaml:"globs" validate:"dive,validGlob"`
	Size     SizeConfig `yaml:"size"`
}

type SizeConfig struct {
	Min string `yaml:"min" validate:"validSize"`
	Max string `yaml:"max" validate:"validSize"`
}

// Default returns the configuration used when a key is absent from the file
func Default() Config {
	var cfg Config
	cfg.Core.TrashDir = "~/.saferm"
	cfg.Core.Purge.Confirm = true
	cfg.Core.Restore.Verbose = true
	cfg.Core.Logging.Level = "info"
	cfg.Core.Logging.Rotation = RotationConfig{MaxSize: "10MB", MaxFiles: 3}
	return cfg
}

// template is written to the default config path on first run
var template = heredoc.Doc(`
	# saferm configuration
	core:
	  trash_dir: ~/.saferm
	  verbose: false
	  purge:
	    confirm: true    # ask before -p; -y or -f skips the prompt
	  restore:
	    verbose: true
	  logging:
	    enabled: false
	    level: info
	    rotation:
	      max_size: 10MB
	      max_files: 3
	list:
	  within: ""         # e.g. "30 days"
	  exclude:
	    files: []
	    patterns: []
	    globs: []
	    size:
	      min: ""
	      max: ""
`)

// LoadError reports a config file that could not be created, read or
// validated
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("config %s: %v", e.Path, e.Err)
	if !errors.Is(e.Err, fs.ErrNotExist) {
		return msg
	}
	return heredoc.Docf(`
		%s
		Create it or pass --config. The default location is %s
		and a minimal file looks like:

		%s`,
		msg,
		env.SAFERM_CONFIG_PATH,
		indent.String(template, 2),
	)
}

func (e *LoadError) Unwrap() error { return e.Err }

var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New()
	// report yaml keys instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, fn := range map[string]validator.Func{
		"validSize":     validateSize,
		"validDuration": validateDuration,
		"validDirPath":  validateDirPath,
		"validRegexp":   validateRegexp,
		"validGlob":     validateGlob,
	} {
		_ = v.RegisterValidation(tag, fn)
	}
	return v
})

// writeTemplate creates path with the commented defaults unless it exists
func writeTemplate(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	slog.Warn("created default config", "path", path)
	_, err = f.WriteString(template)
	return err
}

func load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if err := validate().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return cfg, fmt.Errorf("%s: %q is invalid", verrs[0].Namespace(), verrs[0].Value())
		}
		return cfg, err
	}

	dir, err := expandPath(cfg.Core.TrashDir)
	if err != nil {
		return cfg, fmt.Errorf("trash_dir: %w", err)
	}
	cfg.Core.TrashDir = dir
	return cfg, nil
}

// Parse loads the config at path. An empty path means the default location,
// which is created from the template when missing.
func Parse(path string) (Config, error) {
	if path == "" {
		path = env.SAFERM_CONFIG_PATH
		if err := writeTemplate(path); err != nil {
			return Default(), &LoadError{Path: path, Err: err}
		}
	}
	slog.Debug("loading config", "path", path)

	cfg, err := load(path)
	if err != nil {
		return cfg, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}
