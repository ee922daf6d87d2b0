// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const caseFile = `jurisdiction: dc
caseInfo:
  caseNumber: 2019 CMD 001234
  offenseId: shoplifting
  offenseDate: "2019-03-15"
  outcome: convicted
conviction:
  probationMonths: 6
  allCompleted: true
  completionDate: "2020-03-15"
person:
  fullName: Jordan Rivera
  dateOfBirth: "1990-07-04"
`

// run executes the root command with every flag back at its default.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "clearrecord version dev")
	assert.Contains(t, out, "(effective 2025-01-01)")
	assert.Contains(t, out, "rules dc 2025.1")
}

func TestEvaluate_JSON(t *testing.T) {
	path := writeFile(t, "case.yaml", caseFile)

	out, err := run(t, "evaluate", path, "--as-of", "2026-03-15", "--json")
	require.NoError(t, err)

	var result struct {
		Jurisdiction string `json:"jurisdiction"`
		Relief       []struct {
			ReliefType string `json:"reliefType"`
			Verdict    string `json:"verdict"`
		} `json:"relief"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "dc", result.Jurisdiction)
	require.NotEmpty(t, result.Relief)

	verdicts := map[string]string{}
	for _, r := range result.Relief {
		verdicts[r.ReliefType] = r.Verdict
	}
	assert.Equal(t, "eligible", verdicts["automatic_sealing"])
}

func TestEvaluate_Markdown(t *testing.T) {
	path := writeFile(t, "case.yaml", caseFile)

	out, err := run(t, "evaluate", path, "--as-of", "2026-03-15", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "## Automatic Sealing: Eligible")
}

func TestEvaluate_Errors(t *testing.T) {
	path := writeFile(t, "case.yaml", caseFile)

	_, err := run(t, "evaluate", path, "--as-of", "15/03/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--as-of")

	_, err = run(t, "evaluate", path, "--jurisdiction", "md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown jurisdiction")

	_, err = run(t, "evaluate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read case file")
}

func TestGenerate_WritesForms(t *testing.T) {
	path := writeFile(t, "case.yaml", caseFile)
	outDir := t.TempDir()

	out, err := run(t, "generate", path, "--as-of", "2026-03-15", "--raw", "--out", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, "# Filing package")

	content, err := os.ReadFile(filepath.Join(outDir, "automatic_sealing", "automatic_relief_request.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Jordan Rivera")
}

func TestGenerate_PartialFailure(t *testing.T) {
	path := writeFile(t, "case.yaml", caseFile)
	outDir := t.TempDir()

	out, err := run(t, "generate", path, "--as-of", "2026-03-15", "--raw", "--out", outDir,
		"--relief", "automatic_sealing,motion_sealing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "some forms could not be generated")
	assert.Contains(t, out, "## Not generated")

	_, statErr := os.Stat(filepath.Join(outDir, "automatic_sealing", "automatic_relief_request.txt"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(filepath.Join(outDir, "motion_sealing"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOffenses(t *testing.T) {
	out, err := run(t, "offenses", "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, "`shoplifting`")
	assert.Contains(t, out, "## Excluded categories")
}

func TestRulesValidate(t *testing.T) {
	out, err := run(t, "rules", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "ok    dc")

	bad := writeFile(t, "bad.yaml", "id: xx\nname: Broken\n")
	out, err = run(t, "rules", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 rule table(s) invalid")
	assert.Contains(t, out, "FAIL")
}
