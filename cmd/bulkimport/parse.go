package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		output      string
		failOnError bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a file and print the project, segments, locations and findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				output = a.cfg.Output.Format
			}
			if !cmd.Flags().Changed("fail-on-error") {
				failOnError = a.cfg.Output.FailOnError
			}

			result, err := a.parseFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				if err := enc.Close(); err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
			default:
				return fmt.Errorf("unknown output format %q (want json or yaml)", output)
			}

			if failOnError && result.HasErrors() {
				return errHasErrors
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit with status 2 when any error-level finding exists")
	return cmd
}
