package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/config"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/logging"
)

var (
	errHasErrors    = errors.New("import has error-level findings")
	errFileTooLarge = errors.New("file too large")
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.File
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bulkimport",
		Short:         "Parse and validate bulk-import workbooks and bracket CSV files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(a.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.cfg = cfg

			level := cfg.Logging.Level
			if a.verbose {
				level = "debug"
			}
			a.logger = logging.New(cmd.ErrOrStderr(), level, cfg.Logging.Format)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "bulkimport.toml", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newParseCmd(a), newDetectCmd(a), newReportCmd(a))
	return root
}

// readInput reads a file, refusing anything above the configured size.
func (a *app) readInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > a.cfg.Import.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", errFileTooLarge, path, info.Size(), a.cfg.Import.MaxFileSize)
	}
	return os.ReadFile(path)
}

func (a *app) parser() *core.Parser {
	return core.NewParser(core.Options{
		DefaultOwner: a.cfg.Import.DefaultOwner,
		Logger:       a.logger,
	})
}

// parseFile reads and parses one input file.
func (a *app) parseFile(path string) (*core.ParseResult, error) {
	data, err := a.readInput(path)
	if err != nil {
		return nil, err
	}
	result := a.parser().Parse(path, data)

	errs, warnings := result.Counts()
	a.logger.Info("parsed",
		"file", path,
		"grammar", result.Grammar,
		"segments", len(result.Segments),
		"locations", len(result.Locations),
		"errors", errs,
		"warnings", warnings,
	)
	return result, nil
}
