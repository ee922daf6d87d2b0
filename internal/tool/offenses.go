// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var MetadataListOffenses = &mcp.Tool{
	Name: "list_offenses",
	Description: "List the offense catalog and the excluded offense categories of a jurisdiction. " +
		"Use the returned offense ids in evaluate_eligibility. An optional query filters by name, " +
		"keyword or statute.",
}

type InputListOffenses struct {
	Jurisdiction string `json:"jurisdiction,omitempty" jsonschema:"jurisdiction id; defaults to the server's default jurisdiction"`
	Query        string `json:"query,omitempty" jsonschema:"case-insensitive filter on name, keywords and statutes"`
}

type OffenseOutput struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Severity              string   `json:"severity"`
	Category              string   `json:"category"`
	Statutes              []string `json:"statutes,omitempty"`
	ExcludedFrom          []string `json:"excluded_from,omitempty"`
	SpecialConsiderations string   `json:"special_considerations,omitempty"`
}

type ExclusionOutput struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ExcludedFrom []string `json:"excluded_from"`
}

type OutputListOffenses struct {
	Jurisdiction string            `json:"jurisdiction"`
	RulesVersion string            `json:"rules_version"`
	Offenses     []OffenseOutput   `json:"offenses"`
	Exclusions   []ExclusionOutput `json:"exclusions"`
}

func (t *Tools) ListOffenses(_ context.Context, _ *mcp.CallToolRequest, input InputListOffenses) (*mcp.CallToolResult, OutputListOffenses, error) {
	id := input.Jurisdiction
	if id == "" {
		id = t.defaultJurisdiction
	}
	j, err := t.service.Jurisdiction(id)
	if err != nil {
		return nil, OutputListOffenses{}, err
	}

	query := strings.ToLower(strings.TrimSpace(input.Query))
	out := OutputListOffenses{
		Jurisdiction: j.ID,
		RulesVersion: j.Version,
		Offenses:     []OffenseOutput{},
		Exclusions:   []ExclusionOutput{},
	}
	for _, o := range j.Offenses {
		if !matches(query, o.Name, o.Keywords, o.Statutes) {
			continue
		}
		out.Offenses = append(out.Offenses, OffenseOutput{
			ID:                    o.ID,
			Name:                  o.Name,
			Severity:              string(o.Severity),
			Category:              o.Category,
			Statutes:              o.Statutes,
			ExcludedFrom:          o.ExcludedFrom,
			SpecialConsiderations: o.SpecialConsiderations,
		})
	}
	for _, ex := range j.ExcludedOffenses {
		if !matches(query, ex.Name, ex.Keywords, ex.Statutes) {
			continue
		}
		out.Exclusions = append(out.Exclusions, ExclusionOutput{
			ID:           ex.ID,
			Name:         ex.Name,
			ExcludedFrom: nonNil(ex.ExcludedFrom),
		})
	}
	return nil, out, nil
}

func matches(query, name string, lists ...[]string) bool {
	if query == "" || strings.Contains(strings.ToLower(name), query) {
		return true
	}
	for _, list := range lists {
		for _, s := range list {
			if strings.Contains(strings.ToLower(s), query) {
				return true
			}
		}
	}
	return false
}
