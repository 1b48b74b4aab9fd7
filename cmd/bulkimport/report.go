package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

func newReportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Write the findings of a file to a CSV or xlsx error report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".csv" && ext != ".xlsx" {
				return fmt.Errorf("--out must end in .csv or .xlsx, got %q", out)
			}

			result, err := a.parseFile(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if ext == ".xlsx" {
				err = core.WriteReportWorkbook(f, result.Errors)
			} else {
				err = core.WriteReportCSV(f, result.Errors)
			}
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			errs, warnings := result.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d errors, %d warnings -> %s\n", args[0], errs, warnings, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "errors.csv", "Report path (.csv or .xlsx)")
	return cmd
}
