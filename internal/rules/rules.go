// SPDX-License-Identifier: Apache-2.0

// Package rules holds the static per-jurisdiction rule tables: the offense
// catalog, category exclusions, relief types, waiting periods and special
// programs. Tables are loaded once at startup and never mutated afterwards.
package rules

import "time"

type Severity string

const (
	SeverityInfraction  Severity = "infraction"
	SeverityMisdemeanor Severity = "misdemeanor"
	SeverityFelony      Severity = "felony"
)

type RequirementType string

const (
	RequirementDocumentation RequirementType = "documentation"
	RequirementWaitingPeriod RequirementType = "waiting_period"
	RequirementCompletion    RequirementType = "completion"
	RequirementCourtFiling   RequirementType = "court_filing"
)

type Standard string

const (
	StandardAutomatic          Standard = "automatic"
	StandardActualInnocence    Standard = "actual_innocence"
	StandardInterestsOfJustice Standard = "interests_of_justice"
)

// StartCompletionDate is the only waiting-period anchor currently in use.
const StartCompletionDate = "completion_date"

type GateKind string

const (
	GateTraffickingVictim GateKind = "trafficking_victim"
	GateMaxAgeAtOffense   GateKind = "max_age_at_offense"
)

// Offense is one catalog entry. Excluded marks an offense barred from every
// relief type except those decided on actual innocence; ExcludedFrom must
// then list all of them.
type Offense struct {
	ID                    string   `json:"id" yaml:"id"`
	Name                  string   `json:"name" yaml:"name"`
	Keywords              []string `json:"keywords,omitempty" yaml:"keywords"`
	Statutes              []string `json:"statutes,omitempty" yaml:"statutes"`
	Severity              Severity `json:"severity" yaml:"severity"`
	Category              string   `json:"category" yaml:"category"`
	Excluded              bool     `json:"excluded" yaml:"excluded"`
	ExcludedFrom          []string `json:"excludedFrom,omitempty" yaml:"excludedFrom"`
	SpecialConsiderations string   `json:"specialConsiderations,omitempty" yaml:"specialConsiderations"`
}

// ExcludedOffense is a category-level exclusion such as "all DUI offenses".
// Its ID doubles as the exclusion category id referenced by Offense.Category
// and ReliefType.ExclusionCategories.
type ExcludedOffense struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	ExcludedFrom []string `json:"excludedFrom,omitempty" yaml:"excludedFrom"`
	Keywords     []string `json:"keywords,omitempty" yaml:"keywords"`
	Statutes     []string `json:"statutes,omitempty" yaml:"statutes"`
}

type Requirement struct {
	ID          string          `json:"id" yaml:"id"`
	Description string          `json:"description" yaml:"description"`
	Type        RequirementType `json:"type" yaml:"type"`
	Required    bool            `json:"required" yaml:"required"`
}

type ReliefType struct {
	ID                  string        `json:"id" yaml:"id"`
	Name                string        `json:"name" yaml:"name"`
	Description         string        `json:"description,omitempty" yaml:"description"`
	Requirements        []Requirement `json:"requirements,omitempty" yaml:"requirements"`
	ExclusionCategories []string      `json:"exclusionCategories,omitempty" yaml:"exclusionCategories"`
	// WaitingPeriodYears is the fallback when no WaitingPeriod row matches
	// the offense severity.
	WaitingPeriodYears *int     `json:"waitingPeriodYears,omitempty" yaml:"waitingPeriodYears"`
	Standard           Standard `json:"standard" yaml:"standard"`
	FilingFeeCents     int64    `json:"filingFeeCents" yaml:"filingFeeCents"`
	FilingInstructions []string `json:"filingInstructions,omitempty" yaml:"filingInstructions"`
	Forms              []string `json:"forms,omitempty" yaml:"forms"`
}

type Gate struct {
	Kind   GateKind `json:"kind" yaml:"kind"`
	MaxAge int      `json:"maxAge,omitempty" yaml:"maxAge"`
}

// SpecialProgram is advisory. Only its Gate is evaluated.
type SpecialProgram struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Eligibility        []string `json:"eligibility,omitempty" yaml:"eligibility"`
	Benefits           []string `json:"benefits,omitempty" yaml:"benefits"`
	ApplicationProcess []string `json:"applicationProcess,omitempty" yaml:"applicationProcess"`
	Gate               Gate     `json:"gate" yaml:"gate"`
}

type WaitingPeriod struct {
	ReliefType string   `json:"reliefType" yaml:"reliefType"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Years      int      `json:"years" yaml:"years"`
	StartEvent string   `json:"startEvent" yaml:"startEvent"`
}

type Court struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address,omitempty" yaml:"address"`
	Clerk   string `json:"clerk,omitempty" yaml:"clerk"`
}

// Jurisdiction is the aggregate root of one rule table.
type Jurisdiction struct {
	ID               string            `json:"id" yaml:"id"`
	Name             string            `json:"name" yaml:"name"`
	Version          string            `json:"version" yaml:"version"`
	EffectiveDate    string            `json:"effectiveDate" yaml:"effectiveDate"`
	Court            Court             `json:"court" yaml:"court"`
	ReliefTypes      []ReliefType      `json:"reliefTypes,omitempty" yaml:"reliefTypes"`
	Offenses         []Offense         `json:"offenses,omitempty" yaml:"offenses"`
	ExcludedOffenses []ExcludedOffense `json:"excludedOffenses,omitempty" yaml:"excludedOffenses"`
	SpecialPrograms  []SpecialProgram  `json:"specialPrograms,omitempty" yaml:"specialPrograms"`
	WaitingPeriods   []WaitingPeriod   `json:"waitingPeriods,omitempty" yaml:"waitingPeriods"`
}

// Effective parses EffectiveDate. Validate guarantees it parses for loaded tables.
func (j *Jurisdiction) Effective() time.Time {
	t, _ := time.Parse(time.DateOnly, j.EffectiveDate)
	return t
}

func (j *Jurisdiction) ReliefType(id string) (*ReliefType, bool) {
	for i := range j.ReliefTypes {
		if j.ReliefTypes[i].ID == id {
			return &j.ReliefTypes[i], true
		}
	}
	return nil, false
}

func (j *Jurisdiction) Offense(id string) (*Offense, bool) {
	for i := range j.Offenses {
		if j.Offenses[i].ID == id {
			return &j.Offenses[i], true
		}
	}
	return nil, false
}

func (j *Jurisdiction) Exclusion(id string) (*ExcludedOffense, bool) {
	for i := range j.ExcludedOffenses {
		if j.ExcludedOffenses[i].ID == id {
			return &j.ExcludedOffenses[i], true
		}
	}
	return nil, false
}

// WaitingYears returns the waiting period for a relief type and offense
// severity. A WaitingPeriod row takes precedence over the relief type's
// default.
func (j *Jurisdiction) WaitingYears(reliefType string, severity Severity) (int, bool) {
	for _, wp := range j.WaitingPeriods {
		if wp.ReliefType == reliefType && wp.Severity == severity {
			return wp.Years, true
		}
	}
	if rt, ok := j.ReliefType(reliefType); ok && rt.WaitingPeriodYears != nil {
		return *rt.WaitingPeriodYears, true
	}
	return 0, false
}
