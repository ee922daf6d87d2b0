// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clearrecordproj/clearrecord/internal/config"
	"github.com/clearrecordproj/clearrecord/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with rule tables",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [rule-table.yaml...]",
	Short: "Check rule tables against the schema and their invariants",
	Long: `Validates each named rule table file. Without arguments, validates the
embedded tables together with the configured rules directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			reg, err := rules.DefaultRegistry(cfg.Rules.Dir)
			if err != nil {
				return err
			}
			for _, j := range reg.List() {
				fmt.Fprintf(out, "ok    %s (version %s, effective %s)\n", j.ID, j.Version, j.Effective().Format(time.DateOnly))
			}
			return nil
		}

		failed := 0
		for _, path := range args {
			j, err := rules.LoadFile(path)
			if err != nil {
				failed++
				var verr *rules.ValidationError
				if errors.As(err, &verr) {
					fmt.Fprintf(out, "FAIL  %s\n", path)
					for _, p := range verr.Problems {
						fmt.Fprintf(out, "      - %s\n", p)
					}
					continue
				}
				fmt.Fprintf(out, "FAIL  %s: %v\n", path, err)
				continue
			}
			fmt.Fprintf(out, "ok    %s: %s (version %s, effective %s)\n", path, j.ID, j.Version, j.Effective().Format(time.DateOnly))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d rule table(s) invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
}
