package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

// File holds the bulkimport CLI configuration, read from a TOML file.
type File struct {
	Import  FileImport  `toml:"import"`
	Output  FileOutput  `toml:"output"`
	Logging FileLogging `toml:"logging"`
}

type FileImport struct {
	DefaultOwner string `toml:"default_owner"`
	MaxFileSize  int64  `toml:"max_file_size"`
}

type FileOutput struct {
	// Format is json or yaml.
	Format string `toml:"format"`
	// FailOnError makes parse exit non-zero when any error-level finding exists.
	FailOnError bool `toml:"fail_on_error"`
}

type FileLogging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultFile returns the built-in CLI defaults.
func DefaultFile() *File {
	return &File{
		Import:  FileImport{DefaultOwner: core.DefaultOwner, MaxFileSize: 20 << 20},
		Output:  FileOutput{Format: "json"},
		Logging: FileLogging{Level: "warn", Format: "text"},
	}
}

// LoadFile reads a TOML config file over the defaults. A missing file is
// not an error.
func LoadFile(path string) (*File, error) {
	f := DefaultFile()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}

	if _, err := toml.DecodeFile(path, f); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return f, nil
}

// Validate checks the values a file may override.
func (f *File) Validate() error {
	var errs []string

	switch f.Output.Format {
	case "json", "yaml":
	default:
		errs = append(errs, fmt.Sprintf("output.format (%q) must be one of: json, yaml", f.Output.Format))
	}
	if f.Import.MaxFileSize <= 0 {
		errs = append(errs, "import.max_file_size must be positive")
	}
	if msg := validateLogging(LoggingConfig{Level: f.Logging.Level, Format: f.Logging.Format}); msg != "" {
		errs = append(errs, msg)
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
