// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationError lists every invariant violation found in a rule table.
type ValidationError struct {
	Jurisdiction string
	Problems     []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rule table %q is invalid: %s", e.Jurisdiction, strings.Join(e.Problems, "; "))
}

// Validate checks the cross-reference invariants of a rule table: unique ids,
// exclusion sets that only name defined relief types, waiting periods that
// reference existing relief types, and a parseable effective date.
func Validate(j *Jurisdiction) error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := time.Parse(time.DateOnly, j.EffectiveDate); err != nil {
		addf("effectiveDate %q is not a date", j.EffectiveDate)
	}

	relief := map[string]bool{}
	for _, rt := range j.ReliefTypes {
		if relief[rt.ID] {
			addf("duplicate relief type %q", rt.ID)
		}
		relief[rt.ID] = true
	}

	exclusions := map[string]bool{}
	for _, ex := range j.ExcludedOffenses {
		if exclusions[ex.ID] {
			addf("duplicate excluded offense %q", ex.ID)
		}
		exclusions[ex.ID] = true
		for _, id := range ex.ExcludedFrom {
			if !relief[id] {
				addf("excluded offense %q is excluded from unknown relief type %q", ex.ID, id)
			}
		}
		if len(ex.Keywords) == 0 {
			addf("excluded offense %q has no keywords", ex.ID)
		}
	}

	offenses := map[string]bool{}
	for _, o := range j.Offenses {
		if offenses[o.ID] {
			addf("duplicate offense %q", o.ID)
		}
		offenses[o.ID] = true
		for _, id := range o.ExcludedFrom {
			if !relief[id] {
				addf("offense %q is excluded from unknown relief type %q", o.ID, id)
			}
		}
		// Only a claim of actual innocence reaches an excluded offense.
		if o.Excluded {
			for _, rt := range j.ReliefTypes {
				if rt.Standard != StandardActualInnocence && !slices.Contains(o.ExcludedFrom, rt.ID) {
					addf("offense %q is marked excluded but not excluded from relief type %q", o.ID, rt.ID)
				}
			}
		}
	}

	for _, rt := range j.ReliefTypes {
		for _, cat := range rt.ExclusionCategories {
			if !exclusions[cat] {
				addf("relief type %q names unknown exclusion category %q", rt.ID, cat)
			}
		}
		seen := map[string]bool{}
		for _, req := range rt.Requirements {
			if seen[req.ID] {
				addf("relief type %q has duplicate requirement %q", rt.ID, req.ID)
			}
			seen[req.ID] = true
		}
	}

	for _, wp := range j.WaitingPeriods {
		if !relief[wp.ReliefType] {
			addf("waiting period references unknown relief type %q", wp.ReliefType)
		}
		if wp.StartEvent != StartCompletionDate {
			addf("waiting period for %q has unsupported start event %q", wp.ReliefType, wp.StartEvent)
		}
	}

	programs := map[string]bool{}
	for _, sp := range j.SpecialPrograms {
		if programs[sp.ID] {
			addf("duplicate special program %q", sp.ID)
		}
		programs[sp.ID] = true
	}

	if len(problems) > 0 {
		return &ValidationError{Jurisdiction: j.ID, Problems: problems}
	}
	return nil
}
