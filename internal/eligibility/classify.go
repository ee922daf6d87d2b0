// SPDX-License-Identifier: Apache-2.0

package eligibility

import (
	"strings"

	"github.com/clearrecordproj/clearrecord/internal/rules"
)

type ClassificationKind string

const (
	// ClassifiedByID means the case named a catalog offense id.
	ClassifiedByID ClassificationKind = "catalog_id"
	// ClassifiedByKeyword means the free text matched a catalog offense keyword.
	ClassifiedByKeyword ClassificationKind = "keyword"
	// ClassifiedByExclusion means only an exclusion category matched; the
	// offense itself, and so its severity, is unknown.
	ClassifiedByExclusion ClassificationKind = "exclusion_only"
	Unclassified          ClassificationKind = "unclassified"
)

// Classification is how a case's offense was resolved against a rule table.
type Classification struct {
	Kind           ClassificationKind `json:"kind"`
	OffenseID      string             `json:"offenseId,omitempty"`
	OffenseName    string             `json:"offenseName,omitempty"`
	Severity       rules.Severity     `json:"severity,omitempty"`
	MatchedKeyword string             `json:"matchedKeyword,omitempty"`
	Exclusions     []string           `json:"exclusions,omitempty"`

	offense    *rules.Offense
	exclusions []*rules.ExcludedOffense
}

// Offense returns the resolved catalog entry, or nil.
func (c Classification) Offense() *rules.Offense {
	return c.offense
}

// Classify resolves an offense reference against the catalog.
//
// An exact, known offenseID wins. Otherwise the description is matched
// case-insensitively against every offense keyword: the longest matching
// keyword wins, and keywords of equal length are ranked by declaration order
// (offense order first, then keyword order within the offense).
//
// Exclusions are the category exclusion whose id equals the offense category
// plus every exclusion with a keyword contained in the description, in
// declaration order.
func Classify(j *rules.Jurisdiction, offenseID, description string) Classification {
	var cls Classification
	text := strings.ToLower(description)

	if o, ok := j.Offense(offenseID); ok {
		cls.Kind = ClassifiedByID
		cls.offense = o
	} else if o, kw := matchOffense(j.Offenses, text); o != nil {
		cls.Kind = ClassifiedByKeyword
		cls.offense = o
		cls.MatchedKeyword = kw
	}

	seen := map[string]bool{}
	addExclusion := func(ex *rules.ExcludedOffense) {
		if seen[ex.ID] {
			return
		}
		seen[ex.ID] = true
		cls.exclusions = append(cls.exclusions, ex)
		cls.Exclusions = append(cls.Exclusions, ex.ID)
	}

	if cls.offense != nil {
		if ex, ok := j.Exclusion(cls.offense.Category); ok {
			addExclusion(ex)
		}
	}
	if text != "" {
		for i := range j.ExcludedOffenses {
			ex := &j.ExcludedOffenses[i]
			if _, ok := firstKeyword(ex.Keywords, text); ok {
				addExclusion(ex)
			}
		}
	}

	switch {
	case cls.offense != nil:
		cls.OffenseID = cls.offense.ID
		cls.OffenseName = cls.offense.Name
		cls.Severity = cls.offense.Severity
	case len(cls.exclusions) > 0:
		cls.Kind = ClassifiedByExclusion
	default:
		cls.Kind = Unclassified
	}
	return cls
}

func matchOffense(offenses []rules.Offense, text string) (*rules.Offense, string) {
	if text == "" {
		return nil, ""
	}
	var best *rules.Offense
	var bestKeyword string
	for i := range offenses {
		for _, kw := range offenses[i].Keywords {
			kw = normalizeKeyword(kw)
			// Strictly longer only, so earlier declarations win ties.
			if kw != "" && len(kw) > len(bestKeyword) && strings.Contains(text, kw) {
				best = &offenses[i]
				bestKeyword = kw
			}
		}
	}
	return best, bestKeyword
}

func firstKeyword(keywords []string, text string) (string, bool) {
	for _, kw := range keywords {
		kw = normalizeKeyword(kw)
		if kw != "" && strings.Contains(text, kw) {
			return kw, true
		}
	}
	return "", false
}

func normalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}
