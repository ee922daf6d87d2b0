// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/report"
)

var generateCmd = &cobra.Command{
	Use:   "generate <case-file>",
	Short: "Fill in the court forms for a case file",
	Long: `Screens the case file and writes the filled-in forms for each selected relief
type to <out>/<relief-type>/. Without --relief every eligible relief type is
prepared. Forms that cannot be completed are listed and the rest are still written.`,
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

		relief, _ := cmd.Flags().GetStringSlice("relief")
		feeWaiver, _ := cmd.Flags().GetBool("fee-waiver")
		pkg, genErr := a.service.Generate(cmd.Context(), documents.Request{
			Result:      result,
			Case:        c,
			Person:      d.DocumentsPerson(),
			Statement:   d.Statement,
			ReliefTypes: relief,
			FeeWaiver:   feeWaiver,
		})
		if pkg == nil {
			return genErr
		}

		out, _ := cmd.Flags().GetString("out")
		if err := writePackage(out, pkg); err != nil {
			return err
		}
		if err := printMarkdown(cmd, report.Package(pkg)); err != nil {
			return err
		}
		if genErr != nil {
			return errors.New("some forms could not be generated; see \"Not generated\" above")
		}
		return nil
	},
}

func writePackage(dir string, pkg *documents.Package) error {
	for _, f := range pkg.Filings {
		filingDir := filepath.Join(dir, f.ReliefType)
		if err := os.MkdirAll(filingDir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filingDir, err)
		}
		for _, doc := range f.Documents {
			path := filepath.Join(filingDir, doc.Filename)
			if err := os.WriteFile(path, []byte(doc.Content), 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("jurisdiction", "", "Jurisdiction id, overriding the case file")
	generateCmd.Flags().String("as-of", "", "Screen as of this date (YYYY-MM-DD) instead of today")
	generateCmd.Flags().StringSlice("relief", nil, "Relief type ids to prepare (default: every eligible relief type)")
	generateCmd.Flags().Bool("fee-waiver", false, "Request a waiver of filing fees")
	generateCmd.Flags().StringP("out", "o", ".", "Directory to write the forms to")
	generateCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}
