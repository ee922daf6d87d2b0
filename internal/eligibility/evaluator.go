// SPDX-License-Identifier: Apache-2.0

package eligibility

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/clearrecordproj/clearrecord/internal/rules"
)

const (
	reasonOpenCase     = "pending case must resolve first"
	reasonUnclassified = "offense could not be classified"
	reasonInnocence    = "actual innocence claim requires court review"
	reasonAllMet       = "all required conditions are met"
)

// Evaluate screens one case against one rule table as of the given date.
// It has no side effects and returns identical results for identical input.
func Evaluate(j *rules.Jurisdiction, c Case, asOf time.Time) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	asOf = dateOnly(asOf)
	cls := Classify(j, c.OffenseID, c.OffenseDescription)

	res := &Result{
		Jurisdiction:   j.ID,
		RulesVersion:   j.Version,
		AsOf:           asOf,
		Classification: cls,
		Relief:         make([]ReliefResult, 0, len(j.ReliefTypes)),
		Disclaimer:     Disclaimer,
	}
	for i := range j.ReliefTypes {
		res.Relief = append(res.Relief, evaluateRelief(j, &j.ReliefTypes[i], c, cls, asOf))
	}

	// An actual innocence claim bypasses exclusions and waiting periods but
	// always needs a court to weigh the evidence.
	if c.Factors.SeekingActualInnocence {
		for i := range res.Relief {
			if res.Relief[i].Standard == rules.StandardActualInnocence {
				res.Relief[i].Verdict = VerdictNeedsMoreInfo
				res.Relief[i].Reasons = []string{reasonInnocence}
				res.Relief[i].WaitingPeriodEnds = nil
			}
		}
	}

	res.SpecialPrograms = matchPrograms(j, c)
	return res, nil
}

// Evaluator binds Evaluate to a clock for callers that screen "as of today".
type Evaluator struct {
	now func() time.Time
}

type Option func(*Evaluator)

func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Evaluator) Evaluate(j *rules.Jurisdiction, c Case) (*Result, error) {
	return Evaluate(j, c, e.now())
}

func evaluateRelief(j *rules.Jurisdiction, rt *rules.ReliefType, c Case, cls Classification, asOf time.Time) ReliefResult {
	rr := ReliefResult{
		ReliefType: rt.ID,
		Name:       rt.Name,
		Standard:   rt.Standard,
	}

	if reason, blocked := exclusionReason(j, rt, cls); blocked {
		rr.Verdict = VerdictIneligible
		rr.Reasons = []string{reason}
		return rr
	}
	if c.unresolved() {
		rr.Verdict = VerdictNeedsMoreInfo
		rr.Reasons = []string{reasonOpenCase}
		return rr
	}
	if cls.offense == nil {
		rr.Verdict = VerdictNeedsMoreInfo
		rr.Reasons = []string{reasonUnclassified}
		return rr
	}

	var failed, manual bool
	for _, req := range rt.Requirements {
		r := evaluateRequirement(j, rt, req, c, cls.offense, asOf, &rr)
		rr.Requirements = append(rr.Requirements, r)
		if !req.Required {
			continue
		}
		switch r.Status {
		case RequirementFailed:
			failed = true
			rr.Reasons = append(rr.Reasons, r.Reason)
		case RequirementNeedsMoreInfo:
			manual = true
			rr.Reasons = append(rr.Reasons, r.Reason)
		}
	}

	if rt.Standard == rules.StandardActualInnocence && !c.Factors.SeekingActualInnocence {
		failed = true
		rr.Reasons = append(rr.Reasons, "requires a claim of actual innocence")
	}

	switch {
	case failed:
		rr.Verdict = VerdictIneligible
	case manual:
		rr.Verdict = VerdictNeedsMoreInfo
	default:
		rr.Verdict = VerdictEligible
		rr.Reasons = []string{reasonAllMet}
	}
	return rr
}

func exclusionReason(j *rules.Jurisdiction, rt *rules.ReliefType, cls Classification) (string, bool) {
	if o := cls.offense; o != nil {
		if slices.Contains(o.ExcludedFrom, rt.ID) {
			if ex, ok := j.Exclusion(o.Category); ok {
				return ex.Name, true
			}
			return o.Name, true
		}
	}
	for _, ex := range cls.exclusions {
		if slices.Contains(ex.ExcludedFrom, rt.ID) || slices.Contains(rt.ExclusionCategories, ex.ID) {
			return ex.Name, true
		}
	}
	if o := cls.offense; o != nil && slices.Contains(rt.ExclusionCategories, o.Category) {
		return o.Category, true
	}
	return "", false
}

func evaluateRequirement(j *rules.Jurisdiction, rt *rules.ReliefType, req rules.Requirement, c Case, o *rules.Offense, asOf time.Time, rr *ReliefResult) RequirementResult {
	r := RequirementResult{
		ID:          req.ID,
		Description: req.Description,
		Type:        req.Type,
		Required:    req.Required,
	}

	switch req.Type {
	case rules.RequirementWaitingPeriod:
		years, ok := j.WaitingYears(rt.ID, o.Severity)
		if !ok {
			r.Status = RequirementNeedsMoreInfo
			r.Reason = fmt.Sprintf("no waiting period is defined for %s offenses", o.Severity)
			break
		}
		if c.CompletionDate == nil {
			r.Status = RequirementNeedsMoreInfo
			r.Reason = "the sentence completion date is needed to compute the waiting period"
			break
		}
		ends := dateOnly(*c.CompletionDate).AddDate(years, 0, 0)
		rr.WaitingPeriodEnds = &ends
		if asOf.Before(ends) {
			r.Status = RequirementFailed
			r.Reason = fmt.Sprintf("waiting period of %s ends %s (%s remaining)",
				plural(years, "year"), ends.Format(time.DateOnly), remaining(asOf, ends))
		} else {
			r.Status = RequirementSatisfied
			r.Reason = fmt.Sprintf("waiting period of %s ended %s", plural(years, "year"), ends.Format(time.DateOnly))
		}

	case rules.RequirementCompletion:
		if c.Sentence.AllCompleted {
			r.Status = RequirementSatisfied
			r.Reason = "sentence completed"
		} else {
			r.Status = RequirementFailed
			r.Reason = "sentence has not been fully completed"
		}

	case rules.RequirementDocumentation:
		r.Status = RequirementNeedsMoreInfo
		r.Reason = "needs supporting documents: " + lowerFirst(req.Description)

	case rules.RequirementCourtFiling:
		r.Status = RequirementNeedsMoreInfo
		r.Reason = "needs a court filing: " + lowerFirst(req.Description)

	default:
		r.Status = RequirementNeedsMoreInfo
		r.Reason = fmt.Sprintf("requirement type %q cannot be evaluated", req.Type)
	}
	return r
}

func matchPrograms(j *rules.Jurisdiction, c Case) []ProgramMatch {
	var out []ProgramMatch
	for _, sp := range j.SpecialPrograms {
		var reason string
		switch sp.Gate.Kind {
		case rules.GateTraffickingVictim:
			if c.Factors.IsTraffickingVictim {
				reason = "reported as a survivor of human trafficking"
			}
		case rules.GateMaxAgeAtOffense:
			if c.BirthDate != nil {
				if age := ageOn(*c.BirthDate, c.OffenseDate); age <= sp.Gate.MaxAge {
					reason = fmt.Sprintf("%d years old at the time of the offense", age)
				}
			}
		}
		if reason == "" {
			continue
		}
		out = append(out, ProgramMatch{
			ID:                 sp.ID,
			Name:               sp.Name,
			Reason:             reason,
			Eligibility:        sp.Eligibility,
			Benefits:           sp.Benefits,
			ApplicationProcess: sp.ApplicationProcess,
		})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ageOn(birth, on time.Time) int {
	birth, on = dateOnly(birth), dateOnly(on)
	age := on.Year() - birth.Year()
	if on.Before(birth.AddDate(age, 0, 0)) {
		age--
	}
	return age
}

// remaining renders the calendar distance from..to, e.g. "1 year, 2 months".
func remaining(from, to time.Time) string {
	years := 0
	for !from.AddDate(years+1, 0, 0).After(to) {
		years++
	}
	cur := from.AddDate(years, 0, 0)
	months := 0
	for !cur.AddDate(0, months+1, 0).After(to) {
		months++
	}
	cur = cur.AddDate(0, months, 0)
	days := int(to.Sub(cur).Hours() / 24)

	var parts []string
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if days > 0 || len(parts) == 0 {
		parts = append(parts, plural(days, "day"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
