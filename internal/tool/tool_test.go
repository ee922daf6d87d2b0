// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearrecordproj/clearrecord/internal/rules"
	"github.com/clearrecordproj/clearrecord/internal/screening"
)

var asOf = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func newTools(t *testing.T) *Tools {
	t.Helper()
	reg, err := rules.DefaultRegistry("")
	require.NoError(t, err)
	svc, err := screening.New(reg, screening.WithClock(func() time.Time { return asOf }))
	require.NoError(t, err)
	return New(svc, "dc")
}

func shopliftingInput() *CaseInput {
	return &CaseInput{
		OffenseID:       "shoplifting",
		OffenseDate:     "2019-03-15",
		Outcome:         "convicted",
		CaseNumber:      "2019 CMD 001234",
		ProbationMonths: 6,
		AllCompleted:    true,
		CompletionDate:  "2020-03-15",
		DateOfBirth:     "1990-07-04",
	}
}

const markdownCaseFile = `# Case info
- Offense: shoplifting
- Offense date: 2019-03-15
- Outcome: convicted
- Case number: 2019 CMD 001234

# Conviction details
- All completed: yes
- Completion date: 2020-03-15

# Personal info
- Full name: Jordan Rivera
- DOB: 1990-07-04
- Street: 1200 First Street NE
- City: Washington
- State: DC
- Zip: 20002
`

func verdicts(out OutputEvaluateEligibility) map[string]string {
	m := make(map[string]string, len(out.Relief))
	for _, r := range out.Relief {
		m[r.ReliefType] = r.Verdict
	}
	return m
}

// ---------------------------------------------------------------------------
// evaluate_eligibility
// ---------------------------------------------------------------------------

func TestEvaluateEligibility(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	tools := newTools(t)

	tests := []struct {
		name           string
		input          InputEvaluateEligibility
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputEvaluateEligibility)
	}{
		{
			name:        "no case returns error",
			input:       InputEvaluateEligibility{},
			wantErr:     true,
			errContains: "case or case_file is required",
		},
		{
			name: "case and case file together returns error",
			input: InputEvaluateEligibility{CaseSource{
				Case:     shopliftingInput(),
				CaseFile: markdownCaseFile,
			}},
			wantErr:     true,
			errContains: "not both",
		},
		{
			name: "missing outcome is an invalid case",
			input: InputEvaluateEligibility{CaseSource{
				Case: &CaseInput{OffenseID: "shoplifting", OffenseDate: "2019-03-15"},
			}},
			wantErr:     true,
			errContains: "invalid case: outcome is required",
		},
		{
			name: "unknown jurisdiction",
			input: InputEvaluateEligibility{CaseSource{
				Jurisdiction: "md",
				Case:         shopliftingInput(),
			}},
			wantErr:     true,
			errContains: "unknown jurisdiction",
		},
		{
			name:  "structured case defaults to dc",
			input: InputEvaluateEligibility{CaseSource{Case: shopliftingInput()}},
			validateOutput: func(t *testing.T, output OutputEvaluateEligibility) {
				assert.Equal(t, "dc", output.Jurisdiction)
				assert.Equal(t, "2026-03-15", output.AsOf)
				assert.Equal(t, "catalog_id", output.Classification.Kind)
				assert.Equal(t, "eligible", verdicts(output)["automatic_sealing"])
				assert.Equal(t, "ineligible", verdicts(output)["automatic_expungement"])
				for _, r := range output.Relief {
					if r.ReliefType == "automatic_sealing" {
						assert.Equal(t, "2025-03-15", r.WaitingPeriodEnds)
					}
					assert.NotNil(t, r.Reasons)
				}
				assert.Contains(t, output.Summary, "Automatic Sealing: Eligible")
				assert.NotEmpty(t, output.Disclaimer)
			},
		},
		{
			name:  "markdown case file",
			input: InputEvaluateEligibility{CaseSource{CaseFile: markdownCaseFile}},
			validateOutput: func(t *testing.T, output OutputEvaluateEligibility) {
				assert.Equal(t, "keyword", output.Classification.Kind)
				assert.Equal(t, "shoplifting", output.Classification.OffenseID)
				assert.Equal(t, "eligible", verdicts(output)["automatic_sealing"])
			},
		},
		{
			name: "dui description is excluded from sealing",
			input: InputEvaluateEligibility{CaseSource{Case: &CaseInput{
				OffenseDescription: "DUI",
				OffenseDate:        "2015-01-01",
				Outcome:            "convicted",
				AllCompleted:       true,
				CompletionDate:     "2015-06-01",
			}}},
			validateOutput: func(t *testing.T, output OutputEvaluateEligibility) {
				assert.Equal(t, "ineligible", verdicts(output)["automatic_sealing"])
				assert.Equal(t, "ineligible", verdicts(output)["motion_sealing"])
				assert.Contains(t, output.Classification.Exclusions, "dui_dwi")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := tools.EvaluateEligibility(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, result, "structured output only")
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// generate_filing_package
// ---------------------------------------------------------------------------

func TestGenerateFilingPackage(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	tools := newTools(t)

	t.Run("case file supplies the petitioner", func(t *testing.T) {
		_, out, err := tools.GenerateFilingPackage(ctx, req, InputGenerateFilingPackage{
			CaseSource: CaseSource{CaseFile: markdownCaseFile, Format: "markdown"},
		})
		require.NoError(t, err)

		require.Len(t, out.Filings, 1)
		assert.Equal(t, "automatic_sealing", out.Filings[0].ReliefType)
		require.NotEmpty(t, out.Filings[0].Documents)
		assert.Contains(t, out.Filings[0].Documents[0].Content, "Jordan Rivera")
		assert.Equal(t, int64(0), out.TotalFeeCents)
		assert.Empty(t, out.Failures)
		assert.NotEmpty(t, out.PackageID)
		assert.Contains(t, out.Summary, "# Filing package "+out.PackageID)
	})

	t.Run("partial failure is reported in the output", func(t *testing.T) {
		_, out, err := tools.GenerateFilingPackage(ctx, req, InputGenerateFilingPackage{
			CaseSource:  CaseSource{Case: shopliftingInput()},
			Person:      &PersonInput{FullName: "Jordan Rivera"},
			ReliefTypes: []string{"automatic_sealing", "motion_sealing"},
		})
		require.NoError(t, err)

		require.Len(t, out.Filings, 1)
		require.Len(t, out.Failures, 1)
		assert.Equal(t, "motion_sealing", out.Failures[0].ReliefType)
		assert.Equal(t, "PetitionerAddress", out.Failures[0].Field)
	})

	t.Run("ineligible relief type fails", func(t *testing.T) {
		_, _, err := tools.GenerateFilingPackage(ctx, req, InputGenerateFilingPackage{
			CaseSource:  CaseSource{Case: shopliftingInput()},
			Person:      &PersonInput{FullName: "Jordan Rivera"},
			ReliefTypes: []string{"automatic_expungement"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "automatic_expungement")
	})
}

// ---------------------------------------------------------------------------
// list_offenses
// ---------------------------------------------------------------------------

func TestListOffenses(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	tools := newTools(t)

	t.Run("full catalog", func(t *testing.T) {
		_, out, err := tools.ListOffenses(ctx, req, InputListOffenses{})
		require.NoError(t, err)
		assert.Equal(t, "dc", out.Jurisdiction)
		assert.NotEmpty(t, out.RulesVersion)
		assert.Greater(t, len(out.Offenses), 10)
		assert.Len(t, out.Exclusions, 4)
	})

	t.Run("query filters offenses and exclusions", func(t *testing.T) {
		_, out, err := tools.ListOffenses(ctx, req, InputListOffenses{Jurisdiction: "dc", Query: "Theft"})
		require.NoError(t, err)
		ids := make([]string, len(out.Offenses))
		for i, o := range out.Offenses {
			ids[i] = o.ID
		}
		assert.ElementsMatch(t, []string{"theft_second_degree", "theft_first_degree"}, ids)
		assert.Empty(t, out.Exclusions)
	})

	t.Run("unknown jurisdiction", func(t *testing.T) {
		_, _, err := tools.ListOffenses(ctx, req, InputListOffenses{Jurisdiction: "zz"})
		require.ErrorIs(t, err, rules.ErrUnknownJurisdiction)
	})
}

// ---------------------------------------------------------------------------
// parse_case_file
// ---------------------------------------------------------------------------

func TestParseCaseFile(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	tools := newTools(t)

	tests := []struct {
		name           string
		input          InputParseCaseFile
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputParseCaseFile)
	}{
		{
			name:        "empty content returns error",
			input:       InputParseCaseFile{Content: ""},
			wantErr:     true,
			errContains: "content is required",
		},
		{
			name:        "unsupported content returns error",
			input:       InputParseCaseFile{Content: "plain words", SourceID: "notes.txt"},
			wantErr:     true,
			errContains: "notes.txt",
		},
		{
			name:  "complete markdown case",
			input: InputParseCaseFile{Content: markdownCaseFile},
			validateOutput: func(t *testing.T, output OutputParseCaseFile) {
				assert.Equal(t, "markdown", output.ParserUsed)
				assert.Equal(t, "dc", output.Draft.Jurisdiction)
				assert.True(t, output.Complete)
				assert.Empty(t, output.Problems)
			},
		},
		{
			name:  "incomplete yaml case lists problems",
			input: InputParseCaseFile{Content: "caseInfo:\n  offenseId: dui\n  offenseDate: \"not a date\"\n", Format: "yaml"},
			validateOutput: func(t *testing.T, output OutputParseCaseFile) {
				assert.Equal(t, "yaml", output.ParserUsed)
				assert.False(t, output.Complete)
				fields := make([]string, len(output.Problems))
				for i, p := range output.Problems {
					fields[i] = p.Field
				}
				assert.Equal(t, []string{"offenseDate", "outcome"}, fields)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := tools.ParseCaseFile(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

func TestServer_ListsTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer(newTools(t), "test")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	require.NoError(t, err)

	names := make([]string, len(res.Tools))
	for i, tl := range res.Tools {
		names[i] = tl.Name
	}
	assert.ElementsMatch(t, []string{"evaluate_eligibility", "generate_filing_package", "list_offenses", "parse_case_file"}, names)
}
