// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clearrecord",
	Short: "Screen criminal records for sealing and expungement relief",
	Long: `clearrecord checks a criminal case against a jurisdiction's record relief
rules, explains which kinds of sealing or expungement the person may qualify for,
and fills in the court forms. Results are a preliminary screening, not legal advice.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file")
}
