package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rikuxxer/demo-GEO-admin-automation-ver1.0-sub002/internal/core"
)

func newDetectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Print the layout a file would be parsed with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.readInput(args[0])
			if err != nil {
				return err
			}
			grammar, err := core.DetectGrammar(args[0], data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), grammar)
			return nil
		},
	}
}
