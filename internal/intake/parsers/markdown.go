// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/clearrecordproj/clearrecord/internal/intake"
)

// MarkdownParser reads case files written as Markdown notes. Each heading
// names a wizard section and the section body holds "key: value" lines,
// optionally as list items:
//
//	# Case info
//	- Offense: shoplifting
//	- Offense date: 2019-03-15
//
// The Jurisdiction section may hold a bare id and the Statement section is
// free text. Headings that do not name a section are ignored.
type MarkdownParser struct{}

func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

func (p *MarkdownParser) Name() string {
	return "markdown"
}

// CanHandle accepts the "markdown" format hint or content with at least one
// heading that names a known section.
func (p *MarkdownParser) CanHandle(source intake.Source) bool {
	if strings.EqualFold(source.Format, "markdown") || strings.EqualFold(source.Format, "md") {
		return true
	}
	for _, line := range strings.Split(string(source.Content), "\n") {
		if heading, ok := headingOf(line); ok {
			if _, known := sections[heading]; known {
				return true
			}
		}
	}
	return false
}

func (p *MarkdownParser) Parse(ctx context.Context, source intake.Source) (intake.Draft, error) {
	if err := ctx.Err(); err != nil {
		return intake.Draft{}, err
	}

	var (
		d         intake.Draft
		section   string
		statement []string
	)
	for n, raw := range strings.Split(string(source.Content), "\n") {
		if heading, ok := headingOf(raw); ok {
			section = sections[heading]
			continue
		}
		line := strings.TrimSpace(raw)
		if section == "" {
			continue
		}
		if section == sectionStatement {
			statement = append(statement, line)
			continue
		}
		if line == "" {
			continue
		}

		line = strings.TrimSpace(strings.TrimLeft(line, "-*"))
		key, value, found := strings.Cut(line, ":")
		if !found {
			if section == sectionJurisdiction {
				d.Jurisdiction = strings.ToLower(line)
				continue
			}
			return intake.Draft{}, fmt.Errorf("line %d: expected \"key: value\" in section %q", n+1, section)
		}

		set, ok := fields[section][normalize(key)]
		if !ok {
			return intake.Draft{}, fmt.Errorf("line %d: unknown field %q in section %q", n+1, strings.TrimSpace(key), section)
		}
		if err := set(&d, strings.TrimSpace(value)); err != nil {
			return intake.Draft{}, fmt.Errorf("line %d: %s: %w", n+1, strings.TrimSpace(key), err)
		}
	}
	d.Statement = strings.TrimSpace(strings.Join(statement, "\n"))
	return d, nil
}

const (
	sectionJurisdiction = "jurisdiction"
	sectionCaseInfo     = "case info"
	sectionConviction   = "conviction details"
	sectionFactors      = "additional factors"
	sectionPerson       = "personal info"
	sectionStatement    = "statement"
)

// sections maps normalized heading text to a section.
var sections = map[string]string{
	"jurisdiction":      sectionJurisdiction,
	"caseinfo":          sectionCaseInfo,
	"case":              sectionCaseInfo,
	"convictiondetails": sectionConviction,
	"conviction":        sectionConviction,
	"sentence":          sectionConviction,
	"additionalfactors": sectionFactors,
	"factors":           sectionFactors,
	"personalinfo":      sectionPerson,
	"petitioner":        sectionPerson,
	"statement":         sectionStatement,
}

type setter func(d *intake.Draft, v string) error

var fields = map[string]map[string]setter{
	sectionJurisdiction: {
		"id":           text(func(d *intake.Draft) *string { return &d.Jurisdiction }),
		"jurisdiction": text(func(d *intake.Draft) *string { return &d.Jurisdiction }),
	},
	sectionCaseInfo: {
		"casenumber":         text(func(d *intake.Draft) *string { return &d.CaseInfo.CaseNumber }),
		"offenseid":          text(func(d *intake.Draft) *string { return &d.CaseInfo.OffenseID }),
		"offense":            text(func(d *intake.Draft) *string { return &d.CaseInfo.OffenseDescription }),
		"offensedescription": text(func(d *intake.Draft) *string { return &d.CaseInfo.OffenseDescription }),
		"offensedate":        text(func(d *intake.Draft) *string { return &d.CaseInfo.OffenseDate }),
		"outcome":            outcome,
	},
	sectionConviction: {
		"jailmonths":            number(func(d *intake.Draft) *int { return &d.Conviction.JailMonths }),
		"probationmonths":       number(func(d *intake.Draft) *int { return &d.Conviction.ProbationMonths }),
		"communityservicehours": number(func(d *intake.Draft) *int { return &d.Conviction.CommunityServiceHours }),
		"fine":                  dollars,
		"allcompleted":          flag(func(d *intake.Draft) *bool { return &d.Conviction.AllCompleted }),
		"completed":             flag(func(d *intake.Draft) *bool { return &d.Conviction.AllCompleted }),
		"completiondate":        text(func(d *intake.Draft) *string { return &d.Conviction.CompletionDate }),
	},
	sectionFactors: {
		"opencases":              flag(func(d *intake.Draft) *bool { return &d.Factors.HasOpenCases }),
		"hasopencases":           flag(func(d *intake.Draft) *bool { return &d.Factors.HasOpenCases }),
		"traffickingvictim":      flag(func(d *intake.Draft) *bool { return &d.Factors.IsTraffickingVictim }),
		"istraffickingvictim":    flag(func(d *intake.Draft) *bool { return &d.Factors.IsTraffickingVictim }),
		"actualinnocence":        flag(func(d *intake.Draft) *bool { return &d.Factors.SeekingActualInnocence }),
		"seekingactualinnocence": flag(func(d *intake.Draft) *bool { return &d.Factors.SeekingActualInnocence }),
	},
	sectionPerson: {
		"fullname":    text(func(d *intake.Draft) *string { return &d.Person.FullName }),
		"name":        text(func(d *intake.Draft) *string { return &d.Person.FullName }),
		"dateofbirth": text(func(d *intake.Draft) *string { return &d.Person.DateOfBirth }),
		"dob":         text(func(d *intake.Draft) *string { return &d.Person.DateOfBirth }),
		"street":      text(func(d *intake.Draft) *string { return &d.Person.Street }),
		"address":     text(func(d *intake.Draft) *string { return &d.Person.Street }),
		"city":        text(func(d *intake.Draft) *string { return &d.Person.City }),
		"state":       text(func(d *intake.Draft) *string { return &d.Person.State }),
		"postalcode":  text(func(d *intake.Draft) *string { return &d.Person.PostalCode }),
		"zip":         text(func(d *intake.Draft) *string { return &d.Person.PostalCode }),
		"phone":       text(func(d *intake.Draft) *string { return &d.Person.Phone }),
		"email":       text(func(d *intake.Draft) *string { return &d.Person.Email }),
	},
}

func text(field func(*intake.Draft) *string) setter {
	return func(d *intake.Draft, v string) error {
		*field(d) = v
		return nil
	}
}

func number(field func(*intake.Draft) *int) setter {
	return func(d *intake.Draft, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%q is not a whole number", v)
		}
		*field(d) = n
		return nil
	}
}

func flag(field func(*intake.Draft) *bool) setter {
	return func(d *intake.Draft, v string) error {
		switch strings.ToLower(v) {
		case "yes", "y", "true", "x", "[x]":
			*field(d) = true
		case "no", "n", "false", "", "[ ]":
			*field(d) = false
		default:
			return fmt.Errorf("%q is not yes or no", v)
		}
		return nil
	}
}

func outcome(d *intake.Draft, v string) error {
	d.CaseInfo.Outcome = strings.ReplaceAll(strings.ToLower(v), " ", "_")
	return nil
}

// dollars parses "$1,250.50" style amounts into cents.
func dollars(d *intake.Draft, v string) error {
	s := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(v))
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return fmt.Errorf("%q must not carry a sign", v)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return fmt.Errorf("%q has more than two decimal places", v)
	}
	frac = (frac + "00")[:2]
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return fmt.Errorf("%q is not an amount", v)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return fmt.Errorf("%q is not an amount", v)
	}
	d.Conviction.FineCents = w*100 + f
	return nil
}

// headingOf reports the normalized text of a Markdown heading line.
func headingOf(line string) (string, bool) {
	if !strings.HasPrefix(line, "#") {
		return "", false
	}
	return normalize(strings.TrimLeft(line, "#")), true
}

// normalize lowercases s and drops everything but letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
