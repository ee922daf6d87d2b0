// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearrecordproj/clearrecord/internal/intake"
)

// MetadataParseCaseFile describes the parse_case_file tool.
var MetadataParseCaseFile = &mcp.Tool{
	Name: "parse_case_file",
	Description: "Read a case file and report what the screening wizard would see: the filled-in " +
		"answers per step and any field that is missing or malformed. " +
		"Supported formats: markdown (one heading per wizard section with \"key: value\" lines), " +
		"yaml and json (keys mirror the wizard fields). Fix the reported problems before calling " +
		"evaluate_eligibility with the same case_file.",
}

type InputParseCaseFile struct {
	Content  string `json:"content" jsonschema:"raw content of the case file"`
	Format   string `json:"format,omitempty" jsonschema:"format hint: markdown, yaml or json; auto-detected when omitted"`
	SourceID string `json:"source_id,omitempty" jsonschema:"optional identifier for the file, used in error messages"`
}

type OutputParseCaseFile struct {
	// Draft is the wizard state read from the file.
	Draft intake.Draft `json:"draft"`
	// ParserUsed is the name of the parser that was selected.
	ParserUsed string `json:"parser_used"`
	// Problems lists every field error across all wizard steps.
	Problems []intake.FieldError `json:"problems"`
	// Complete is true when the draft can be evaluated as is.
	Complete bool `json:"complete"`
}

func (t *Tools) ParseCaseFile(ctx context.Context, _ *mcp.CallToolRequest, input InputParseCaseFile) (*mcp.CallToolResult, OutputParseCaseFile, error) {
	if input.Content == "" {
		return nil, OutputParseCaseFile{}, fmt.Errorf("content is required")
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	result, err := t.pipeline.Run(ctx, intake.Source{
		Content: []byte(input.Content),
		Format:  input.Format,
		ID:      sourceID,
	})
	if err != nil {
		return nil, OutputParseCaseFile{}, err
	}

	draft := result.Draft
	if draft.Jurisdiction == "" {
		draft = draft.WithJurisdiction(t.defaultJurisdiction)
	}
	problems := intake.ValidateStep(intake.StepResults, draft)
	if problems == nil {
		problems = []intake.FieldError{}
	}

	return nil, OutputParseCaseFile{
		Draft:      draft,
		ParserUsed: result.ParserUsed,
		Problems:   problems,
		Complete:   len(problems) == 0,
	}, nil
}
