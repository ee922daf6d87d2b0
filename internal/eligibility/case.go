// SPDX-License-Identifier: Apache-2.0

package eligibility

import (
	"strings"
	"time"
)

type Outcome string

const (
	OutcomeConvicted     Outcome = "convicted"
	OutcomeDismissed     Outcome = "dismissed"
	OutcomeAcquitted     Outcome = "acquitted"
	OutcomeNolleProsequi Outcome = "nolle_prosequi"
	OutcomeDeferred      Outcome = "deferred"
	OutcomePending       Outcome = "pending"
)

var knownOutcomes = map[Outcome]bool{
	OutcomeConvicted:     true,
	OutcomeDismissed:     true,
	OutcomeAcquitted:     true,
	OutcomeNolleProsequi: true,
	OutcomeDeferred:      true,
	OutcomePending:       true,
}

// ParseOutcome accepts the canonical values case-insensitively.
func ParseOutcome(s string) (Outcome, bool) {
	o := Outcome(strings.ToLower(strings.TrimSpace(s)))
	return o, knownOutcomes[o]
}

type Sentence struct {
	JailMonths            int   `json:"jailMonths"`
	ProbationMonths       int   `json:"probationMonths"`
	FineCents             int64 `json:"fineCents"`
	CommunityServiceHours int   `json:"communityServiceHours"`
	AllCompleted          bool  `json:"allCompleted"`
}

type AdditionalFactors struct {
	HasOpenCases           bool `json:"hasOpenCases"`
	IsTraffickingVictim    bool `json:"isTraffickingVictim"`
	SeekingActualInnocence bool `json:"seekingActualInnocence"`
}

// Case is a snapshot of the facts a user entered. It is passed by value and
// never modified by the evaluator.
type Case struct {
	// OffenseID is a catalog id. When empty or unknown, OffenseDescription
	// is matched against offense and exclusion keywords.
	OffenseID          string            `json:"offenseId,omitempty"`
	OffenseDescription string            `json:"offenseDescription,omitempty"`
	OffenseDate        time.Time         `json:"offenseDate"`
	Outcome            Outcome           `json:"outcome"`
	Sentence           Sentence          `json:"sentence"`
	CompletionDate     *time.Time        `json:"completionDate,omitempty"`
	BirthDate          *time.Time        `json:"birthDate,omitempty"`
	CaseNumber         string            `json:"caseNumber,omitempty"`
	Factors            AdditionalFactors `json:"factors"`
}

// Validate reports the first missing or inconsistent field.
func (c Case) Validate() error {
	switch {
	case c.OffenseID == "" && strings.TrimSpace(c.OffenseDescription) == "":
		return invalid("offense", "is required")
	case c.OffenseDate.IsZero():
		return invalid("offenseDate", "is required")
	case c.Outcome == "":
		return invalid("outcome", "is required")
	case !knownOutcomes[c.Outcome]:
		return invalid("outcome", "is not a recognized outcome")
	case c.Sentence.AllCompleted && c.CompletionDate == nil:
		return invalid("completionDate", "is required when the sentence is completed")
	case c.CompletionDate != nil && c.CompletionDate.Before(c.OffenseDate):
		return invalid("completionDate", "is before the offense date")
	case c.Sentence.JailMonths < 0 || c.Sentence.ProbationMonths < 0 ||
		c.Sentence.FineCents < 0 || c.Sentence.CommunityServiceHours < 0:
		return invalid("sentence", "must not be negative")
	}
	return nil
}

// unresolved reports whether the case itself or another case is still open.
func (c Case) unresolved() bool {
	return c.Factors.HasOpenCases || c.Outcome == OutcomePending
}
