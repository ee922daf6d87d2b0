// SPDX-License-Identifier: Apache-2.0

package eligibility

import (
	"time"

	"github.com/clearrecordproj/clearrecord/internal/rules"
)

type Verdict string

const (
	VerdictEligible      Verdict = "eligible"
	VerdictIneligible    Verdict = "ineligible"
	VerdictNeedsMoreInfo Verdict = "needs-more-info"
)

type RequirementStatus string

const (
	RequirementSatisfied     RequirementStatus = "satisfied"
	RequirementFailed        RequirementStatus = "failed"
	RequirementNeedsMoreInfo RequirementStatus = "needs-more-info"
)

// Disclaimer is attached to every result.
const Disclaimer = "This is a preliminary, informational screening and not legal advice. " +
	"Only a court can seal or expunge a record."

type RequirementResult struct {
	ID          string                `json:"id"`
	Description string                `json:"description"`
	Type        rules.RequirementType `json:"type"`
	Required    bool                  `json:"required"`
	Status      RequirementStatus     `json:"status"`
	Reason      string                `json:"reason"`
}

type ReliefResult struct {
	ReliefType   string              `json:"reliefType"`
	Name         string              `json:"name"`
	Standard     rules.Standard      `json:"standard"`
	Verdict      Verdict             `json:"verdict"`
	Reasons      []string            `json:"reasons"`
	Requirements []RequirementResult `json:"requirements,omitempty"`
	// WaitingPeriodEnds is set whenever a waiting period could be computed.
	WaitingPeriodEnds *time.Time `json:"waitingPeriodEnds,omitempty"`
}

// ProgramMatch is an advisory special program. It never changes a verdict.
type ProgramMatch struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Reason             string   `json:"reason"`
	Eligibility        []string `json:"eligibility,omitempty"`
	Benefits           []string `json:"benefits,omitempty"`
	ApplicationProcess []string `json:"applicationProcess,omitempty"`
}

type Result struct {
	Jurisdiction    string         `json:"jurisdiction"`
	RulesVersion    string         `json:"rulesVersion"`
	AsOf            time.Time      `json:"asOf"`
	Classification  Classification `json:"classification"`
	Relief          []ReliefResult `json:"relief"`
	SpecialPrograms []ProgramMatch `json:"specialPrograms,omitempty"`
	Disclaimer      string         `json:"disclaimer"`
}

func (r *Result) ReliefFor(reliefType string) (ReliefResult, bool) {
	for _, rr := range r.Relief {
		if rr.ReliefType == reliefType {
			return rr, true
		}
	}
	return ReliefResult{}, false
}

// Counts tallies verdicts across relief types.
func (r *Result) Counts() map[Verdict]int {
	counts := make(map[Verdict]int, 3)
	for _, rr := range r.Relief {
		counts[rr.Verdict]++
	}
	return counts
}
