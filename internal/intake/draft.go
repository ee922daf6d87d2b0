// SPDX-License-Identifier: Apache-2.0

// Package intake models the multi-step screening wizard on the server side.
// A Draft is the form state as the user has filled it in so far; it is a
// plain value and every change produces a new Draft.
package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/eligibility"
)

type CaseInfo struct {
	CaseNumber         string `json:"caseNumber" yaml:"caseNumber"`
	OffenseID          string `json:"offenseId" yaml:"offenseId"`
	OffenseDescription string `json:"offenseDescription" yaml:"offenseDescription"`
	OffenseDate        string `json:"offenseDate" yaml:"offenseDate"`
	Outcome            string `json:"outcome" yaml:"outcome"`
}

type ConvictionDetails struct {
	JailMonths            int    `json:"jailMonths" yaml:"jailMonths"`
	ProbationMonths       int    `json:"probationMonths" yaml:"probationMonths"`
	FineCents             int64  `json:"fineCents" yaml:"fineCents"`
	CommunityServiceHours int    `json:"communityServiceHours" yaml:"communityServiceHours"`
	AllCompleted          bool   `json:"allCompleted" yaml:"allCompleted"`
	CompletionDate        string `json:"completionDate" yaml:"completionDate"`
}

type Factors struct {
	HasOpenCases           bool `json:"hasOpenCases" yaml:"hasOpenCases"`
	IsTraffickingVictim    bool `json:"isTraffickingVictim" yaml:"isTraffickingVictim"`
	SeekingActualInnocence bool `json:"seekingActualInnocence" yaml:"seekingActualInnocence"`
}

type PersonalInfo struct {
	FullName    string `json:"fullName" yaml:"fullName"`
	DateOfBirth string `json:"dateOfBirth" yaml:"dateOfBirth"`
	Street      string `json:"street" yaml:"street"`
	City        string `json:"city" yaml:"city"`
	State       string `json:"state" yaml:"state"`
	PostalCode  string `json:"postalCode" yaml:"postalCode"`
	Phone       string `json:"phone" yaml:"phone"`
	Email       string `json:"email" yaml:"email"`
}

// Draft is the wizard state. Dates are kept as the user typed them
// (YYYY-MM-DD) and only parsed when a Case is built.
type Draft struct {
	Jurisdiction string            `json:"jurisdiction" yaml:"jurisdiction"`
	CaseInfo     CaseInfo          `json:"caseInfo" yaml:"caseInfo"`
	Conviction   ConvictionDetails `json:"conviction" yaml:"conviction"`
	Factors      Factors           `json:"factors" yaml:"factors"`
	Person       PersonalInfo      `json:"person" yaml:"person"`
	Statement    string            `json:"statement" yaml:"statement"`
}

func (d Draft) WithJurisdiction(id string) Draft {
	d.Jurisdiction = id
	return d
}

func (d Draft) WithCaseInfo(ci CaseInfo) Draft {
	d.CaseInfo = ci
	return d
}

func (d Draft) WithConviction(cd ConvictionDetails) Draft {
	d.Conviction = cd
	return d
}

func (d Draft) WithFactors(f Factors) Draft {
	d.Factors = f
	return d
}

func (d Draft) WithPerson(p PersonalInfo) Draft {
	d.Person = p
	return d
}

// Case converts the draft into an evaluator input. Unparseable dates and
// outcomes are reported as *eligibility.InvalidCaseError, as are the
// evaluator's own completeness checks.
func (d Draft) Case() (eligibility.Case, error) {
	c := eligibility.Case{
		OffenseID:          strings.TrimSpace(d.CaseInfo.OffenseID),
		OffenseDescription: strings.TrimSpace(d.CaseInfo.OffenseDescription),
		CaseNumber:         strings.TrimSpace(d.CaseInfo.CaseNumber),
		Sentence: eligibility.Sentence{
			JailMonths:            d.Conviction.JailMonths,
			ProbationMonths:       d.Conviction.ProbationMonths,
			FineCents:             d.Conviction.FineCents,
			CommunityServiceHours: d.Conviction.CommunityServiceHours,
			AllCompleted:          d.Conviction.AllCompleted,
		},
		Factors: eligibility.AdditionalFactors{
			HasOpenCases:           d.Factors.HasOpenCases,
			IsTraffickingVictim:    d.Factors.IsTraffickingVictim,
			SeekingActualInnocence: d.Factors.SeekingActualInnocence,
		},
	}

	offenseDate, err := parseDate("offenseDate", d.CaseInfo.OffenseDate)
	if err != nil {
		return eligibility.Case{}, err
	}
	if offenseDate != nil {
		c.OffenseDate = *offenseDate
	}
	if c.CompletionDate, err = parseDate("completionDate", d.Conviction.CompletionDate); err != nil {
		return eligibility.Case{}, err
	}
	if c.BirthDate, err = parseDate("dateOfBirth", d.Person.DateOfBirth); err != nil {
		return eligibility.Case{}, err
	}

	if strings.TrimSpace(d.CaseInfo.Outcome) != "" {
		outcome, ok := eligibility.ParseOutcome(d.CaseInfo.Outcome)
		if !ok {
			return eligibility.Case{}, &eligibility.InvalidCaseError{Field: "outcome", Reason: fmt.Sprintf("%q is not a recognized outcome", d.CaseInfo.Outcome)}
		}
		c.Outcome = outcome
	}

	if err := c.Validate(); err != nil {
		return eligibility.Case{}, err
	}
	return c, nil
}

// DocumentsPerson returns the filer details for the document generator.
// Dates that do not parse are dropped; Case reports them.
func (d Draft) DocumentsPerson() documents.Person {
	dob, _ := parseDate("dateOfBirth", d.Person.DateOfBirth)
	return documents.Person{
		FullName:    d.Person.FullName,
		DateOfBirth: dob,
		Street:      d.Person.Street,
		City:        d.Person.City,
		State:       d.Person.State,
		PostalCode:  d.Person.PostalCode,
		Phone:       d.Person.Phone,
		Email:       d.Person.Email,
	}
}

func parseDate(field, s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, &eligibility.InvalidCaseError{Field: field, Reason: fmt.Sprintf("%q is not a date (YYYY-MM-DD)", s)}
	}
	return &t, nil
}
