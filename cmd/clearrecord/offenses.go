// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var offensesCmd = &cobra.Command{
	Use:   "offenses",
	Short: "List the offense catalog of a jurisdiction",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetString("jurisdiction")
		if id == "" {
			id = a.cfg.Rules.DefaultJurisdiction
		}
		j, err := a.service.Jurisdiction(id)
		if err != nil {
			return err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "# %s offenses (rules %s)\n\n", j.Name, j.Version)
		b.WriteString("| ID | Offense | Severity | Excluded from |\n|---|---|---|---|\n")
		for _, o := range j.Offenses {
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", o.ID, o.Name, o.Severity, strings.Join(o.ExcludedFrom, ", "))
		}
		b.WriteString("\n## Excluded categories\n\n")
		for _, ex := range j.ExcludedOffenses {
			fmt.Fprintf(&b, "- **%s** (`%s`): excluded from %s\n", ex.Name, ex.ID, strings.Join(ex.ExcludedFrom, ", "))
		}
		return printMarkdown(cmd, b.String())
	},
}

func init() {
	rootCmd.AddCommand(offensesCmd)
	offensesCmd.Flags().String("jurisdiction", "", "Jurisdiction id (default from config)")
	offensesCmd.Flags().Bool("raw", false, "Print Markdown without terminal styling")
}
