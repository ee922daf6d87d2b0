// SPDX-License-Identifier: Apache-2.0

// Package tool exposes the screener as MCP tools. Inputs and outputs are
// flat JSON with YYYY-MM-DD date strings so clients can fill them in from
// a conversation.
package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/intake"
	"github.com/clearrecordproj/clearrecord/internal/intake/parsers"
	"github.com/clearrecordproj/clearrecord/internal/screening"
)

// Tools holds the state shared by the tool handlers.
type Tools struct {
	service             *screening.Service
	pipeline            *intake.Pipeline
	defaultJurisdiction string
}

func New(service *screening.Service, defaultJurisdiction string) *Tools {
	return &Tools{
		service:             service,
		pipeline:            parsers.Default(),
		defaultJurisdiction: defaultJurisdiction,
	}
}

// CaseInput is the case as an MCP client supplies it.
type CaseInput struct {
	OffenseID              string `json:"offense_id,omitempty" jsonschema:"catalog offense id from list_offenses; preferred over a description"`
	OffenseDescription     string `json:"offense_description,omitempty" jsonschema:"free-text description of the offense, used when no offense id is known"`
	OffenseDate            string `json:"offense_date" jsonschema:"date of the offense, YYYY-MM-DD"`
	Outcome                string `json:"outcome" jsonschema:"one of convicted, dismissed, acquitted, nolle_prosequi, deferred, pending"`
	CaseNumber             string `json:"case_number,omitempty" jsonschema:"court case number"`
	JailMonths             int    `json:"jail_months,omitempty" jsonschema:"months of jail imposed"`
	ProbationMonths        int    `json:"probation_months,omitempty" jsonschema:"months of probation imposed"`
	FineCents              int64  `json:"fine_cents,omitempty" jsonschema:"fine imposed, in cents"`
	CommunityServiceHours  int    `json:"community_service_hours,omitempty" jsonschema:"community service hours imposed"`
	AllCompleted           bool   `json:"all_completed,omitempty" jsonschema:"whether every part of the sentence has been completed"`
	CompletionDate         string `json:"completion_date,omitempty" jsonschema:"date the sentence was completed, YYYY-MM-DD"`
	DateOfBirth            string `json:"date_of_birth,omitempty" jsonschema:"date of birth, YYYY-MM-DD; enables age-based programs"`
	HasOpenCases           bool   `json:"has_open_cases,omitempty" jsonschema:"whether any other criminal case is still open"`
	IsTraffickingVictim    bool   `json:"is_trafficking_victim,omitempty" jsonschema:"whether the offense is connected to being trafficked"`
	SeekingActualInnocence bool   `json:"seeking_actual_innocence,omitempty" jsonschema:"whether the person claims actual innocence"`
}

func (in CaseInput) draft(jurisdiction string) intake.Draft {
	return intake.Draft{}.
		WithJurisdiction(jurisdiction).
		WithCaseInfo(intake.CaseInfo{
			CaseNumber:         in.CaseNumber,
			OffenseID:          in.OffenseID,
			OffenseDescription: in.OffenseDescription,
			OffenseDate:        in.OffenseDate,
			Outcome:            in.Outcome,
		}).
		WithConviction(intake.ConvictionDetails{
			JailMonths:            in.JailMonths,
			ProbationMonths:       in.ProbationMonths,
			FineCents:             in.FineCents,
			CommunityServiceHours: in.CommunityServiceHours,
			AllCompleted:          in.AllCompleted,
			CompletionDate:        in.CompletionDate,
		}).
		WithFactors(intake.Factors{
			HasOpenCases:           in.HasOpenCases,
			IsTraffickingVictim:    in.IsTraffickingVictim,
			SeekingActualInnocence: in.SeekingActualInnocence,
		}).
		WithPerson(intake.PersonalInfo{DateOfBirth: in.DateOfBirth})
}

// CaseSource is embedded by tools that accept a case either as structured
// fields or as a case file.
type CaseSource struct {
	Jurisdiction string     `json:"jurisdiction,omitempty" jsonschema:"jurisdiction id; defaults to the server's default jurisdiction"`
	Case         *CaseInput `json:"case,omitempty" jsonschema:"the case as structured fields"`
	CaseFile     string     `json:"case_file,omitempty" jsonschema:"a YAML, JSON or Markdown case file, used instead of case"`
	Format       string     `json:"format,omitempty" jsonschema:"format hint for case_file: markdown, yaml or json; auto-detected when omitted"`
}

// resolve turns the source into a draft and the jurisdiction it names.
func (t *Tools) resolve(ctx context.Context, src CaseSource) (intake.Draft, error) {
	var d intake.Draft
	switch {
	case src.Case != nil && src.CaseFile != "":
		return intake.Draft{}, errors.New("provide either case or case_file, not both")
	case src.Case != nil:
		d = src.Case.draft(src.Jurisdiction)
	case src.CaseFile != "":
		res, err := t.pipeline.Run(ctx, intake.Source{Content: []byte(src.CaseFile), Format: src.Format, ID: "case_file"})
		if err != nil {
			return intake.Draft{}, err
		}
		d = res.Draft
		if src.Jurisdiction != "" {
			d = d.WithJurisdiction(src.Jurisdiction)
		}
	default:
		return intake.Draft{}, errors.New("case or case_file is required")
	}

	if strings.TrimSpace(d.Jurisdiction) == "" {
		d = d.WithJurisdiction(t.defaultJurisdiction)
	}
	return d, nil
}

// evaluate resolves the source and screens it.
func (t *Tools) evaluate(ctx context.Context, src CaseSource) (intake.Draft, eligibility.Case, *eligibility.Result, error) {
	d, err := t.resolve(ctx, src)
	if err != nil {
		return intake.Draft{}, eligibility.Case{}, nil, err
	}
	c, err := d.Case()
	if err != nil {
		return intake.Draft{}, eligibility.Case{}, nil, err
	}
	res, err := t.service.Evaluate(ctx, d.Jurisdiction, c)
	if err != nil {
		return intake.Draft{}, eligibility.Case{}, nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return d, c, res, nil
}

// nonNil keeps required list fields from encoding as null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
