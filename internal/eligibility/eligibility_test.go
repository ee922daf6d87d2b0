// SPDX-License-Identifier: Apache-2.0

package eligibility_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/rules"
)

var asOf = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

func dcTable(t *testing.T) *rules.Jurisdiction {
	t.Helper()
	reg, err := rules.DefaultRegistry("")
	require.NoError(t, err)
	j, err := reg.Get("dc")
	require.NoError(t, err)
	return j
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// completedCase returns a convicted case whose sentence finished on completed.
func completedCase(offenseID string, completed time.Time) eligibility.Case {
	return eligibility.Case{
		OffenseID:      offenseID,
		OffenseDate:    completed.AddDate(-1, 0, 0),
		Outcome:        eligibility.OutcomeConvicted,
		Sentence:       eligibility.Sentence{ProbationMonths: 12, AllCompleted: true},
		CompletionDate: &completed,
	}
}

func mustEvaluate(t *testing.T, j *rules.Jurisdiction, c eligibility.Case) *eligibility.Result {
	t.Helper()
	res, err := eligibility.Evaluate(j, c, asOf)
	require.NoError(t, err)
	return res
}

func relief(t *testing.T, res *eligibility.Result, id string) eligibility.ReliefResult {
	t.Helper()
	rr, ok := res.ReliefFor(id)
	require.True(t, ok, "no result for relief type %s", id)
	return rr
}

func requirement(t *testing.T, rr eligibility.ReliefResult, typ rules.RequirementType) eligibility.RequirementResult {
	t.Helper()
	for _, r := range rr.Requirements {
		if r.Type == typ {
			return r
		}
	}
	t.Fatalf("relief type %s has no %s requirement", rr.ReliefType, typ)
	return eligibility.RequirementResult{}
}

// ---------------------------------------------------------------------------
// Classify
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	j := dcTable(t)

	tests := []struct {
		name           string
		offenseID      string
		description    string
		wantKind       eligibility.ClassificationKind
		wantOffense    string
		wantExclusions []string
	}{
		{
			name:        "exact catalog id",
			offenseID:   "marijuana_simple_possession",
			wantKind:    eligibility.ClassifiedByID,
			wantOffense: "marijuana_simple_possession",
		},
		{
			name:           "catalog id pulls in its category exclusion",
			offenseID:      "dui",
			wantKind:       eligibility.ClassifiedByID,
			wantOffense:    "dui",
			wantExclusions: []string{"dui_dwi"},
		},
		{
			name:        "unknown id falls through to free text",
			offenseID:   "no_such_offense",
			description: "Possession of MARIJUANA",
			wantKind:    eligibility.ClassifiedByKeyword,
			wantOffense: "marijuana_simple_possession",
		},
		{
			name:           "free text matching only an exclusion",
			description:    "I got a DWI last year",
			wantKind:       eligibility.ClassifiedByExclusion,
			wantExclusions: []string{"dui_dwi"},
		},
		{
			name:        "longest keyword wins over a shorter earlier one",
			description: "charged with assault on a police officer",
			wantKind:    eligibility.ClassifiedByKeyword,
			wantOffense: "assault_on_police_officer",
		},
		{
			name:        "longest keyword wins within overlapping theft keywords",
			description: "first degree theft",
			wantKind:    eligibility.ClassifiedByKeyword,
			wantOffense: "theft_first_degree",
		},
		{
			name:           "domestic assault resolves to the intrafamily offense and exclusion",
			description:    "domestic assault",
			wantKind:       eligibility.ClassifiedByKeyword,
			wantOffense:    "domestic_simple_assault",
			wantExclusions: []string{"domestic_violence"},
		},
		{
			name:        "nothing matches",
			description: "jaywalking on the moon",
			wantKind:    eligibility.Unclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls := eligibility.Classify(j, tt.offenseID, tt.description)
			assert.Equal(t, tt.wantKind, cls.Kind)
			assert.Equal(t, tt.wantOffense, cls.OffenseID)
			assert.Equal(t, tt.wantExclusions, cls.Exclusions)
			if tt.wantOffense == "" {
				assert.Nil(t, cls.Offense())
			}
		})
	}
}

func TestClassify_TiesBreakByDeclarationOrder(t *testing.T) {
	j := &rules.Jurisdiction{
		ID: "ties",
		Offenses: []rules.Offense{
			{ID: "first", Keywords: []string{"abcd"}},
			{ID: "second", Keywords: []string{"wxyz"}},
		},
	}

	cls := eligibility.Classify(j, "", "wxyz and abcd")
	assert.Equal(t, "first", cls.OffenseID, "equal-length matches go to the earlier offense")

	cls = eligibility.Classify(j, "", "wxyz")
	assert.Equal(t, "second", cls.OffenseID)
}

// ---------------------------------------------------------------------------
// Evaluate: worked examples
// ---------------------------------------------------------------------------

func TestEvaluate_MarijuanaTenYearsAfterCompletion(t *testing.T) {
	j := dcTable(t)
	res := mustEvaluate(t, j, completedCase("marijuana_simple_possession", asOf.AddDate(-10, 0, 0)))

	sealing := relief(t, res, "automatic_sealing")
	wait := requirement(t, sealing, rules.RequirementWaitingPeriod)
	assert.Equal(t, eligibility.RequirementSatisfied, wait.Status)
	assert.Equal(t, eligibility.VerdictEligible, sealing.Verdict)
	require.NotNil(t, sealing.WaitingPeriodEnds)
	assert.Equal(t, asOf.AddDate(-5, 0, 0), *sealing.WaitingPeriodEnds)

	assert.Equal(t, eligibility.VerdictEligible, relief(t, res, "automatic_expungement").Verdict)
	assert.Equal(t, eligibility.Disclaimer, res.Disclaimer)
}

func TestEvaluate_DUIIsExcludedFromSealing(t *testing.T) {
	j := dcTable(t)

	cases := map[string]eligibility.Case{
		"long completed": completedCase("dui", asOf.AddDate(-20, 0, 0)),
		"recently completed": completedCase("dui", asOf.AddDate(0, -1, 0)),
		"not completed": {
			OffenseID:   "dui",
			OffenseDate: asOf.AddDate(-2, 0, 0),
			Outcome:     eligibility.OutcomeConvicted,
			Sentence:    eligibility.Sentence{JailMonths: 3},
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			res := mustEvaluate(t, j, c)
			for _, id := range []string{"automatic_sealing", "motion_sealing"} {
				rr := relief(t, res, id)
				assert.Equal(t, eligibility.VerdictIneligible, rr.Verdict, id)
				assert.Equal(t, []string{"Driving under the influence or while intoxicated"}, rr.Reasons)
			}
		})
	}
}

func TestEvaluate_DWIFreeText(t *testing.T) {
	j := dcTable(t)
	c := completedCase("", asOf.AddDate(-8, 0, 0))
	c.OffenseDescription = "I got a DWI last year"

	res := mustEvaluate(t, j, c)
	assert.Equal(t, eligibility.ClassifiedByExclusion, res.Classification.Kind)
	assert.Equal(t, eligibility.VerdictIneligible, relief(t, res, "automatic_sealing").Verdict)
	assert.Equal(t, eligibility.VerdictIneligible, relief(t, res, "motion_sealing").Verdict)

	// Relief types the exclusion does not block cannot be judged without the offense.
	expunge := relief(t, res, "automatic_expungement")
	assert.Equal(t, eligibility.VerdictNeedsMoreInfo, expunge.Verdict)
	assert.Equal(t, []string{"offense could not be classified"}, expunge.Reasons)
}

func TestEvaluate_ActualInnocence(t *testing.T) {
	j := dcTable(t)

	c := completedCase("simple_assault", asOf.AddDate(0, -2, 0))
	res := mustEvaluate(t, j, c)
	assert.Equal(t, eligibility.VerdictIneligible, relief(t, res, "motion_expungement").Verdict,
		"actual innocence relief requires the claim")

	c.Factors.SeekingActualInnocence = true
	res = mustEvaluate(t, j, c)
	rr := relief(t, res, "motion_expungement")
	assert.Equal(t, eligibility.VerdictNeedsMoreInfo, rr.Verdict)
	assert.Equal(t, []string{"actual innocence claim requires court review"}, rr.Reasons)
	assert.Nil(t, rr.WaitingPeriodEnds)

	// Other relief types are untouched by the claim.
	assert.Equal(t, eligibility.VerdictIneligible, relief(t, res, "automatic_sealing").Verdict)
}

func TestEvaluate_InvalidCase(t *testing.T) {
	j := dcTable(t)
	complete := completedCase("simple_assault", asOf.AddDate(-6, 0, 0))

	tests := []struct {
		name      string
		mutate    func(c *eligibility.Case)
		wantField string
	}{
		{name: "missing offense date", mutate: func(c *eligibility.Case) { c.OffenseDate = time.Time{} }, wantField: "offenseDate"},
		{name: "missing outcome", mutate: func(c *eligibility.Case) { c.Outcome = "" }, wantField: "outcome"},
		{name: "unknown outcome", mutate: func(c *eligibility.Case) { c.Outcome = "pardoned" }, wantField: "outcome"},
		{name: "no offense reference", mutate: func(c *eligibility.Case) { c.OffenseID = "" }, wantField: "offense"},
		{name: "completed without completion date", mutate: func(c *eligibility.Case) { c.CompletionDate = nil }, wantField: "completionDate"},
		{name: "completion before offense", mutate: func(c *eligibility.Case) { c.CompletionDate = date(1990, 1, 1) }, wantField: "completionDate"},
		{name: "negative sentence", mutate: func(c *eligibility.Case) { c.Sentence.JailMonths = -1 }, wantField: "sentence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := complete
			tt.mutate(&c)

			res, err := eligibility.Evaluate(j, c, asOf)
			require.Error(t, err)
			assert.Nil(t, res)
			require.ErrorIs(t, err, eligibility.ErrInvalidCase)

			var ice *eligibility.InvalidCaseError
			require.ErrorAs(t, err, &ice)
			assert.Equal(t, tt.wantField, ice.Field)
		})
	}
}

// ---------------------------------------------------------------------------
// Evaluate: properties
// ---------------------------------------------------------------------------

func TestEvaluate_ExcludedReliefIsAlwaysIneligible(t *testing.T) {
	j := dcTable(t)

	variants := []func(c *eligibility.Case){
		func(c *eligibility.Case) {},
		func(c *eligibility.Case) { c.Factors.HasOpenCases = true },
		func(c *eligibility.Case) { c.Sentence.AllCompleted = false },
	}

	for _, o := range j.Offenses {
		for i, vary := range variants {
			c := completedCase(o.ID, asOf.AddDate(-30, 0, 0))
			vary(&c)
			res := mustEvaluate(t, j, c)
			for _, id := range o.ExcludedFrom {
				assert.Equal(t, eligibility.VerdictIneligible, relief(t, res, id).Verdict,
					"offense %s variant %d relief %s", o.ID, i, id)
			}
		}
	}
}

func TestEvaluate_OpenCasesNeedMoreInfo(t *testing.T) {
	j := dcTable(t)

	for _, id := range []string{"marijuana_simple_possession", "theft_first_degree", "fare_evasion"} {
		c := completedCase(id, asOf.AddDate(-15, 0, 0))
		c.Factors.HasOpenCases = true
		res := mustEvaluate(t, j, c)

		for _, rr := range res.Relief {
			if rr.Verdict == eligibility.VerdictIneligible {
				// Only offense exclusions may outrank an open case.
				o, _ := j.Offense(id)
				assert.Contains(t, o.ExcludedFrom, rr.ReliefType)
				continue
			}
			assert.Equal(t, eligibility.VerdictNeedsMoreInfo, rr.Verdict, "%s / %s", id, rr.ReliefType)
			assert.Equal(t, []string{"pending case must resolve first"}, rr.Reasons)
		}
	}

	c := completedCase("marijuana_simple_possession", asOf.AddDate(-15, 0, 0))
	c.Factors.HasOpenCases = true
	res := mustEvaluate(t, j, c)
	assert.Equal(t, map[eligibility.Verdict]int{eligibility.VerdictNeedsMoreInfo: 4}, res.Counts())
}

func TestEvaluate_PendingOutcomeIsTreatedAsOpen(t *testing.T) {
	j := dcTable(t)
	c := eligibility.Case{
		OffenseID:   "shoplifting",
		OffenseDate: asOf.AddDate(0, -3, 0),
		Outcome:     eligibility.OutcomePending,
	}
	res := mustEvaluate(t, j, c)
	assert.Equal(t, []string{"pending case must resolve first"}, relief(t, res, "motion_sealing").Reasons)
}

func TestEvaluate_WaitingPeriodBoundary(t *testing.T) {
	j := dcTable(t)

	tests := []struct {
		name       string
		completed  time.Time
		wantStatus eligibility.RequirementStatus
	}{
		{name: "exactly five years", completed: asOf.AddDate(-5, 0, 0), wantStatus: eligibility.RequirementSatisfied},
		{name: "one day short", completed: asOf.AddDate(-5, 0, 1), wantStatus: eligibility.RequirementFailed},
		{name: "well past", completed: asOf.AddDate(-9, 0, 0), wantStatus: eligibility.RequirementSatisfied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustEvaluate(t, j, completedCase("shoplifting", tt.completed))
			wait := requirement(t, relief(t, res, "automatic_sealing"), rules.RequirementWaitingPeriod)
			assert.Equal(t, tt.wantStatus, wait.Status, wait.Reason)
		})
	}
}

// A waiting period from Feb 29 runs to Mar 1 in non-leap years, never a day early.
func TestEvaluate_WaitingPeriodFromLeapDay(t *testing.T) {
	j := dcTable(t)
	c := completedCase("shoplifting", *date(2020, time.February, 29))

	res, err := eligibility.Evaluate(j, c, *date(2025, time.February, 28))
	require.NoError(t, err)
	rr := relief(t, res, "automatic_sealing")
	require.NotNil(t, rr.WaitingPeriodEnds)
	assert.Equal(t, "2025-03-01", rr.WaitingPeriodEnds.Format(time.DateOnly))
	wait := requirement(t, rr, rules.RequirementWaitingPeriod)
	assert.Equal(t, eligibility.RequirementFailed, wait.Status)
	assert.Contains(t, wait.Reason, "1 day remaining")

	res, err = eligibility.Evaluate(j, c, *date(2025, time.March, 1))
	require.NoError(t, err)
	wait = requirement(t, relief(t, res, "automatic_sealing"), rules.RequirementWaitingPeriod)
	assert.Equal(t, eligibility.RequirementSatisfied, wait.Status, wait.Reason)
}

func TestEvaluate_WaitingPeriodReportsRemainingTime(t *testing.T) {
	j := dcTable(t)
	res := mustEvaluate(t, j, completedCase("theft_first_degree", asOf.AddDate(-8, -10, 0)))

	rr := relief(t, res, "automatic_sealing")
	assert.Equal(t, eligibility.VerdictIneligible, rr.Verdict)
	require.NotNil(t, rr.WaitingPeriodEnds)
	assert.Equal(t, "2027-05-15", rr.WaitingPeriodEnds.Format(time.DateOnly))
	assert.Contains(t, rr.Reasons[0], "1 year, 2 months remaining")
}

func TestEvaluate_WaitingPeriodIsMonotonic(t *testing.T) {
	j := dcTable(t)
	rank := map[eligibility.RequirementStatus]int{
		eligibility.RequirementFailed:    0,
		eligibility.RequirementSatisfied: 1,
	}

	prev := -1
	// Walk from the latest completion date to the earliest.
	for months := 0; months <= 12*12; months += 5 {
		res := mustEvaluate(t, j, completedCase("theft_first_degree", asOf.AddDate(0, -months, 0)))
		wait := requirement(t, relief(t, res, "automatic_sealing"), rules.RequirementWaitingPeriod)
		r := rank[wait.Status]
		assert.GreaterOrEqual(t, r, prev, "earlier completion must not be less satisfied (%d months)", months)
		prev = r
	}
	assert.Equal(t, 1, prev)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	j := dcTable(t)
	c := completedCase("", asOf.AddDate(-3, 0, 0))
	c.OffenseDescription = "shoplifting at a grocery store"
	c.Factors.IsTraffickingVictim = true

	first := mustEvaluate(t, j, c)
	second := mustEvaluate(t, j, c)
	assert.Equal(t, first, second)
}

func TestEvaluate_UnclassifiedOffense(t *testing.T) {
	j := dcTable(t)
	c := completedCase("", asOf.AddDate(-12, 0, 0))
	c.OffenseDescription = "jaywalking on the moon"

	res := mustEvaluate(t, j, c)
	assert.Equal(t, eligibility.Unclassified, res.Classification.Kind)
	for _, rr := range res.Relief {
		assert.Equal(t, eligibility.VerdictNeedsMoreInfo, rr.Verdict, rr.ReliefType)
		assert.Equal(t, []string{"offense could not be classified"}, rr.Reasons)
	}
}

func TestEvaluate_MotionSealingNeedsCourtFiling(t *testing.T) {
	j := dcTable(t)
	res := mustEvaluate(t, j, completedCase("disorderly_conduct", asOf.AddDate(-6, 0, 0)))

	rr := relief(t, res, "motion_sealing")
	assert.Equal(t, eligibility.VerdictNeedsMoreInfo, rr.Verdict)
	assert.Equal(t, eligibility.RequirementNeedsMoreInfo, requirement(t, rr, rules.RequirementCourtFiling).Status)
	require.Len(t, rr.Reasons, 1)
	assert.Contains(t, rr.Reasons[0], "needs a court filing")
}

func TestEvaluate_OptionalRequirementsDoNotBlock(t *testing.T) {
	j := dcTable(t)
	res := mustEvaluate(t, j, completedCase("disorderly_conduct", asOf.AddDate(-6, 0, 0)))

	rr := relief(t, res, "automatic_sealing")
	doc := requirement(t, rr, rules.RequirementDocumentation)
	assert.False(t, doc.Required)
	assert.Equal(t, eligibility.RequirementNeedsMoreInfo, doc.Status)
	assert.Equal(t, eligibility.VerdictEligible, rr.Verdict)
}

// ---------------------------------------------------------------------------
// Special programs
// ---------------------------------------------------------------------------

func TestEvaluate_SpecialPrograms(t *testing.T) {
	j := dcTable(t)
	base := completedCase("prostitution", asOf.AddDate(-2, 0, 0))
	without := mustEvaluate(t, j, base)
	assert.Empty(t, without.SpecialPrograms)

	withFlag := base
	withFlag.Factors.IsTraffickingVictim = true
	with := mustEvaluate(t, j, withFlag)
	require.Len(t, with.SpecialPrograms, 1)
	assert.Equal(t, "trafficking_survivor_relief", with.SpecialPrograms[0].ID)
	assert.Equal(t, without.Relief, with.Relief, "programs are advisory and never change verdicts")

	young := base
	young.BirthDate = date(2000, time.June, 1)
	young.OffenseDate = *date(2023, time.May, 31)
	res := mustEvaluate(t, j, young)
	require.Len(t, res.SpecialPrograms, 1)
	assert.Equal(t, "youth_rehabilitation_act", res.SpecialPrograms[0].ID)
	assert.Equal(t, "22 years old at the time of the offense", res.SpecialPrograms[0].Reason)

	older := base
	older.BirthDate = date(1980, time.January, 1)
	assert.Empty(t, mustEvaluate(t, j, older).SpecialPrograms)
}

// ---------------------------------------------------------------------------
// Evaluator
// ---------------------------------------------------------------------------

func TestEvaluator_UsesClock(t *testing.T) {
	j := dcTable(t)
	ev := eligibility.NewEvaluator(eligibility.WithClock(func() time.Time {
		return asOf.Add(15 * time.Hour)
	}))

	res, err := ev.Evaluate(j, completedCase("shoplifting", asOf.AddDate(-5, 0, 0)))
	require.NoError(t, err)
	assert.Equal(t, asOf, res.AsOf, "as-of is truncated to the day")
	assert.Equal(t, eligibility.VerdictEligible, relief(t, res, "automatic_sealing").Verdict)
}
