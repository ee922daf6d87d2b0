// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/clearrecordproj/clearrecord/internal/report"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <case-file>",
	Short: "Screen a case file for record relief",
	Long: `Reads a YAML, JSON or Markdown case file ("-" for stdin) and prints the
verdict for every relief type of the jurisdiction with the reasons behind it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := asOfOption(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd, opts...)
		if err != nil {
			return err
		}

		d, err := readCaseFile(cmd, args[0])
		if err != nil {
			return err
		}
		d = a.resolveJurisdiction(cmd, d)

		c, err := d.Case()
		if err != nil {
			return err
		}
		result, err := a.service.Evaluate(cmd.Context(), d.Jurisdiction, c)
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		j, err := a.service.Jurisdiction(result.Jurisdiction)
		if err != nil {
			return err
		}
		return printMarkdown(cmd, report.Result(j, result))
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().String("jurisdiction", "", "Jurisdiction id, overriding the case file")
	evaluateCmd.Flags().String("as-of", "", "Screen as of this date (YYYY-MM-DD) instead of today")
	evaluateCmd.Flags().Bool("json", false, "Print the result as JSON")
	evaluateCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}
