// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/report"
)

var MetadataEvaluateEligibility = &mcp.Tool{
	Name: "evaluate_eligibility",
	Description: "Screen one criminal case for record sealing and expungement eligibility. " +
		"Returns a verdict (eligible, ineligible or needs-more-info) with reasons for every relief " +
		"type of the jurisdiction, the date any waiting period ends, and advisory special programs. " +
		"Supply the case as structured fields or as a case file. Use list_offenses to find offense ids. " +
		"The result is a preliminary screening, not legal advice.",
}

type InputEvaluateEligibility struct {
	CaseSource
}

type RequirementOutput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
}

type ReliefOutput struct {
	ReliefType        string              `json:"relief_type"`
	Name              string              `json:"name"`
	Standard          string              `json:"standard"`
	Verdict           string              `json:"verdict"`
	Reasons           []string            `json:"reasons"`
	WaitingPeriodEnds string              `json:"waiting_period_ends,omitempty"`
	Requirements      []RequirementOutput `json:"requirements,omitempty"`
}

type ProgramOutput struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Reason             string   `json:"reason"`
	Benefits           []string `json:"benefits,omitempty"`
	ApplicationProcess []string `json:"application_process,omitempty"`
}

type ClassificationOutput struct {
	Kind           string   `json:"kind"`
	OffenseID      string   `json:"offense_id,omitempty"`
	OffenseName    string   `json:"offense_name,omitempty"`
	Severity       string   `json:"severity,omitempty"`
	MatchedKeyword string   `json:"matched_keyword,omitempty"`
	Exclusions     []string `json:"exclusions,omitempty"`
}

type OutputEvaluateEligibility struct {
	Jurisdiction    string               `json:"jurisdiction"`
	RulesVersion    string               `json:"rules_version"`
	AsOf            string               `json:"as_of"`
	Classification  ClassificationOutput `json:"classification"`
	Relief          []ReliefOutput       `json:"relief"`
	SpecialPrograms []ProgramOutput      `json:"special_programs,omitempty"`
	// Summary is the result as Markdown, ready to show to the user.
	Summary    string `json:"summary"`
	Disclaimer string `json:"disclaimer"`
}

func (t *Tools) EvaluateEligibility(ctx context.Context, _ *mcp.CallToolRequest, input InputEvaluateEligibility) (*mcp.CallToolResult, OutputEvaluateEligibility, error) {
	_, _, res, err := t.evaluate(ctx, input.CaseSource)
	if err != nil {
		return nil, OutputEvaluateEligibility{}, err
	}
	j, err := t.service.Jurisdiction(res.Jurisdiction)
	if err != nil {
		return nil, OutputEvaluateEligibility{}, err
	}

	out := toEvaluateOutput(res)
	out.Summary = report.Result(j, res)
	return nil, out, nil
}

func toEvaluateOutput(res *eligibility.Result) OutputEvaluateEligibility {
	cls := res.Classification
	out := OutputEvaluateEligibility{
		Jurisdiction: res.Jurisdiction,
		RulesVersion: res.RulesVersion,
		AsOf:         res.AsOf.Format(time.DateOnly),
		Classification: ClassificationOutput{
			Kind:           string(cls.Kind),
			OffenseID:      cls.OffenseID,
			OffenseName:    cls.OffenseName,
			Severity:       string(cls.Severity),
			MatchedKeyword: cls.MatchedKeyword,
			Exclusions:     cls.Exclusions,
		},
		Relief:     make([]ReliefOutput, 0, len(res.Relief)),
		Disclaimer: res.Disclaimer,
	}

	for _, rr := range res.Relief {
		ro := ReliefOutput{
			ReliefType: rr.ReliefType,
			Name:       rr.Name,
			Standard:   string(rr.Standard),
			Verdict:    string(rr.Verdict),
			Reasons:    nonNil(rr.Reasons),
		}
		if rr.WaitingPeriodEnds != nil {
			ro.WaitingPeriodEnds = rr.WaitingPeriodEnds.Format(time.DateOnly)
		}
		for _, req := range rr.Requirements {
			ro.Requirements = append(ro.Requirements, RequirementOutput{
				ID:          req.ID,
				Description: req.Description,
				Type:        string(req.Type),
				Required:    req.Required,
				Status:      string(req.Status),
				Reason:      req.Reason,
			})
		}
		out.Relief = append(out.Relief, ro)
	}

	for _, p := range res.SpecialPrograms {
		out.SpecialPrograms = append(out.SpecialPrograms, ProgramOutput{
			ID:                 p.ID,
			Name:               p.Name,
			Reason:             p.Reason,
			Benefits:           p.Benefits,
			ApplicationProcess: p.ApplicationProcess,
		})
	}
	return out
}
