// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearrecordproj/clearrecord/internal/rules"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of clearrecord and its built-in rule tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "clearrecord version %s\n", version)
		tables, err := rules.Embedded()
		if err != nil {
			return err
		}
		for _, j := range tables {
			fmt.Fprintf(cmd.OutOrStdout(), "rules %s %s (effective %s)\n", j.ID, j.Version, j.Effective().Format(time.DateOnly))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
