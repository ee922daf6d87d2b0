// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/report"
)

var MetadataGenerateFilingPackage = &mcp.Tool{
	Name: "generate_filing_package",
	Description: "Screen a case and fill in the court forms for the chosen relief types. " +
		"When relief_types is empty every eligible relief type is prepared; a relief type the case is " +
		"ineligible for is rejected. Forms that are missing required details are reported in failures " +
		"while the remaining forms are still returned. Motions need the petitioner's address and " +
		"an actual innocence motion needs a statement.",
}

type PersonInput struct {
	FullName   string `json:"full_name" jsonschema:"the petitioner's full legal name"`
	Street     string `json:"street,omitempty" jsonschema:"street address"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

type InputGenerateFilingPackage struct {
	CaseSource
	Person      *PersonInput `json:"person,omitempty" jsonschema:"the petitioner; may instead come from the case file"`
	Statement   string       `json:"statement,omitempty" jsonschema:"the petitioner's statement in support of a motion"`
	ReliefTypes []string     `json:"relief_types,omitempty" jsonschema:"relief type ids to prepare; defaults to every eligible relief type"`
	FeeWaiver   bool         `json:"fee_waiver,omitempty" jsonschema:"request a filing fee waiver"`
}

type FilingOutput struct {
	ReliefType   string               `json:"relief_type"`
	ReliefName   string               `json:"relief_name"`
	Verdict      string               `json:"verdict"`
	Documents    []documents.Document `json:"documents"`
	FeeCents     int64                `json:"fee_cents"`
	Instructions []string             `json:"instructions"`
}

type FailureOutput struct {
	ReliefType string `json:"relief_type"`
	Document   string `json:"document,omitempty"`
	Field      string `json:"field,omitempty"`
	Reason     string `json:"reason"`
}

type OutputGenerateFilingPackage struct {
	PackageID     string          `json:"package_id"`
	Jurisdiction  string          `json:"jurisdiction"`
	Court         string          `json:"court"`
	GeneratedAt   string          `json:"generated_at"`
	Filings       []FilingOutput  `json:"filings"`
	Failures      []FailureOutput `json:"failures,omitempty"`
	TotalFeeCents int64           `json:"total_fee_cents"`
	Instructions  []string        `json:"instructions"`
	// Summary is the package cover sheet as Markdown.
	Summary    string `json:"summary"`
	Disclaimer string `json:"disclaimer"`
}

func (t *Tools) GenerateFilingPackage(ctx context.Context, _ *mcp.CallToolRequest, input InputGenerateFilingPackage) (*mcp.CallToolResult, OutputGenerateFilingPackage, error) {
	d, c, res, err := t.evaluate(ctx, input.CaseSource)
	if err != nil {
		return nil, OutputGenerateFilingPackage{}, err
	}

	person := d.DocumentsPerson()
	if p := input.Person; p != nil {
		person.FullName = p.FullName
		person.Street = p.Street
		person.City = p.City
		person.State = p.State
		person.PostalCode = p.PostalCode
		person.Phone = p.Phone
		person.Email = p.Email
	}
	statement := input.Statement
	if statement == "" {
		statement = d.Statement
	}

	pkg, err := t.service.Generate(ctx, documents.Request{
		Result:      res,
		Case:        c,
		Person:      person,
		Statement:   statement,
		ReliefTypes: input.ReliefTypes,
		FeeWaiver:   input.FeeWaiver,
	})
	if pkg == nil {
		return nil, OutputGenerateFilingPackage{}, err
	}
	// Partial failures are carried in the package.
	return nil, toGenerateOutput(pkg), nil
}

func toGenerateOutput(pkg *documents.Package) OutputGenerateFilingPackage {
	out := OutputGenerateFilingPackage{
		PackageID:     pkg.ID,
		Jurisdiction:  pkg.Jurisdiction,
		Court:         pkg.Court,
		GeneratedAt:   pkg.GeneratedAt.Format(time.RFC3339),
		Filings:       make([]FilingOutput, 0, len(pkg.Filings)),
		TotalFeeCents: pkg.TotalFeeCents,
		Instructions:  nonNil(pkg.Instructions),
		Summary:       report.Package(pkg),
		Disclaimer:    pkg.Disclaimer,
	}
	for _, f := range pkg.Filings {
		out.Filings = append(out.Filings, FilingOutput{
			ReliefType:   f.ReliefType,
			ReliefName:   f.ReliefName,
			Verdict:      string(f.Verdict),
			Documents:    append([]documents.Document{}, f.Documents...),
			FeeCents:     f.FeeCents,
			Instructions: nonNil(f.Instructions),
		})
	}
	for _, ge := range pkg.Failures {
		out.Failures = append(out.Failures, FailureOutput{
			ReliefType: ge.ReliefType,
			Document:   ge.Document,
			Field:      ge.Field,
			Reason:     ge.Reason,
		})
	}
	return out
}
