// SPDX-License-Identifier: Apache-2.0

package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
)

type Step string

const (
	StepJurisdiction      Step = "jurisdiction"
	StepCaseInfo          Step = "case_info"
	StepConvictionDetails Step = "conviction_details"
	StepAdditionalFactors Step = "additional_factors"
	StepResults           Step = "results"
)

// Steps is the wizard order.
var Steps = []Step{
	StepJurisdiction,
	StepCaseInfo,
	StepConvictionDetails,
	StepAdditionalFactors,
	StepResults,
}

func ParseStep(s string) (Step, bool) {
	for _, st := range Steps {
		if string(st) == strings.TrimSpace(s) {
			return st, true
		}
	}
	return "", false
}

// Next returns the step after s. The results step has no successor.
func (s Step) Next() (Step, bool) {
	for i, st := range Steps {
		if st == s && i+1 < len(Steps) {
			return Steps[i+1], true
		}
	}
	return "", false
}

// FieldError is one problem with a form field.
type FieldError struct {
	Step    Step   `json:"step"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s %s", e.Step, e.Field, e.Message)
}

// ValidateStep checks the fields collected by one step. The results step
// re-checks every earlier step. A nil slice means the user may move on.
func ValidateStep(step Step, d Draft) []FieldError {
	switch step {
	case StepJurisdiction:
		return validateJurisdiction(d)
	case StepCaseInfo:
		return validateCaseInfo(d)
	case StepConvictionDetails:
		return validateConviction(d)
	case StepAdditionalFactors:
		return validateFactors(d)
	case StepResults:
		var errs []FieldError
		for _, st := range Steps[:len(Steps)-1] {
			errs = append(errs, ValidateStep(st, d)...)
		}
		return errs
	}
	return []FieldError{{Step: step, Field: "step", Message: "is not a wizard step"}}
}

func validateJurisdiction(d Draft) []FieldError {
	if strings.TrimSpace(d.Jurisdiction) == "" {
		return []FieldError{{Step: StepJurisdiction, Field: "jurisdiction", Message: "is required"}}
	}
	return nil
}

func validateCaseInfo(d Draft) []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Step: StepCaseInfo, Field: field, Message: msg})
	}

	ci := d.CaseInfo
	if strings.TrimSpace(ci.OffenseID) == "" && strings.TrimSpace(ci.OffenseDescription) == "" {
		add("offense", "select an offense or describe it")
	}
	if strings.TrimSpace(ci.OffenseDate) == "" {
		add("offenseDate", "is required")
	} else if _, err := time.Parse(time.DateOnly, strings.TrimSpace(ci.OffenseDate)); err != nil {
		add("offenseDate", "must be a date (YYYY-MM-DD)")
	}
	if strings.TrimSpace(ci.Outcome) == "" {
		add("outcome", "is required")
	} else if _, ok := eligibility.ParseOutcome(ci.Outcome); !ok {
		add("outcome", "is not a recognized outcome")
	}
	return errs
}

func validateConviction(d Draft) []FieldError {
	var errs []FieldError
	add := func(field, msg string) {
		errs = append(errs, FieldError{Step: StepConvictionDetails, Field: field, Message: msg})
	}

	cd := d.Conviction
	if cd.JailMonths < 0 {
		add("jailMonths", "must not be negative")
	}
	if cd.ProbationMonths < 0 {
		add("probationMonths", "must not be negative")
	}
	if cd.FineCents < 0 {
		add("fineCents", "must not be negative")
	}
	if cd.CommunityServiceHours < 0 {
		add("communityServiceHours", "must not be negative")
	}

	completion := strings.TrimSpace(cd.CompletionDate)
	switch {
	case completion == "" && cd.AllCompleted:
		add("completionDate", "is required when the sentence is completed")
	case completion != "":
		done, err := time.Parse(time.DateOnly, completion)
		if err != nil {
			add("completionDate", "must be a date (YYYY-MM-DD)")
			break
		}
		if offense, err := time.Parse(time.DateOnly, strings.TrimSpace(d.CaseInfo.OffenseDate)); err == nil && done.Before(offense) {
			add("completionDate", "is before the offense date")
		}
	}
	return errs
}

func validateFactors(d Draft) []FieldError {
	dob := strings.TrimSpace(d.Person.DateOfBirth)
	if dob == "" {
		return nil
	}
	birth, err := time.Parse(time.DateOnly, dob)
	if err != nil {
		return []FieldError{{Step: StepAdditionalFactors, Field: "dateOfBirth", Message: "must be a date (YYYY-MM-DD)"}}
	}
	if offense, err := time.Parse(time.DateOnly, strings.TrimSpace(d.CaseInfo.OffenseDate)); err == nil && birth.After(offense) {
		return []FieldError{{Step: StepAdditionalFactors, Field: "dateOfBirth", Message: "is after the offense date"}}
	}
	return nil
}
