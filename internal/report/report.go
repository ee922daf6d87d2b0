// SPDX-License-Identifier: Apache-2.0

// Package report formats screening results and filing packages as Markdown
// for the CLI and the MCP tools.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/clearrecordproj/clearrecord/internal/documents"
	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/rules"
)

var verdictLabels = map[eligibility.Verdict]string{
	eligibility.VerdictEligible:      "Eligible",
	eligibility.VerdictIneligible:    "Not eligible",
	eligibility.VerdictNeedsMoreInfo: "Needs more information",
}

var classificationLabels = map[eligibility.ClassificationKind]string{
	eligibility.ClassifiedByID:        "selected from the offense list",
	eligibility.ClassifiedByKeyword:   "matched from the description",
	eligibility.ClassifiedByExclusion: "only an excluded category matched",
	eligibility.Unclassified:          "not recognized",
}

// Result renders a screening result. j supplies display names and must be
// the table the result was evaluated against.
func Result(j *rules.Jurisdiction, r *eligibility.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Record relief screening: %s\n\n", j.Name)
	fmt.Fprintf(&b, "Rules version %s (effective %s), screened as of %s.\n\n", r.RulesVersion, date(j.Effective()), date(r.AsOf))

	cls := r.Classification
	switch {
	case cls.OffenseName != "":
		fmt.Fprintf(&b, "**Offense:** %s (%s), %s", cls.OffenseName, cls.Severity, classificationLabels[cls.Kind])
		if cls.MatchedKeyword != "" {
			fmt.Fprintf(&b, " via %q", cls.MatchedKeyword)
		}
		b.WriteString(".\n\n")
	default:
		fmt.Fprintf(&b, "**Offense:** %s.\n\n", classificationLabels[cls.Kind])
	}
	if len(cls.Exclusions) > 0 {
		names := make([]string, 0, len(cls.Exclusions))
		for _, id := range cls.Exclusions {
			if ex, ok := j.Exclusion(id); ok {
				names = append(names, ex.Name)
			} else {
				names = append(names, id)
			}
		}
		fmt.Fprintf(&b, "**Excluded categories:** %s.\n\n", strings.Join(names, ", "))
	}

	for _, rr := range r.Relief {
		fmt.Fprintf(&b, "## %s: %s\n\n", rr.Name, verdictLabels[rr.Verdict])
		for _, reason := range rr.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
		if len(rr.Reasons) > 0 {
			b.WriteString("\n")
		}
		if rr.WaitingPeriodEnds != nil {
			fmt.Fprintf(&b, "Waiting period ends %s.\n\n", date(*rr.WaitingPeriodEnds))
		}
		if len(rr.Requirements) > 0 {
			b.WriteString("| Requirement | Status | Detail |\n|---|---|---|\n")
			for _, req := range rr.Requirements {
				desc := req.Description
				if !req.Required {
					desc += " (optional)"
				}
				fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(desc), req.Status, cell(req.Reason))
			}
			b.WriteString("\n")
		}
	}

	if len(r.SpecialPrograms) > 0 {
		b.WriteString("## Special programs\n\n")
		for _, p := range r.SpecialPrograms {
			fmt.Fprintf(&b, "- **%s**: %s\n", p.Name, p.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "> %s\n", r.Disclaimer)
	return b.String()
}

// Package renders the cover sheet of a filing package: what to file, what
// it costs and how. Document bodies are not included.
func Package(pkg *documents.Package) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Filing package %s\n\n", pkg.ID)
	fmt.Fprintf(&b, "Prepared %s for filing with the %s.\n\n", date(pkg.GeneratedAt), pkg.Court)

	for _, f := range pkg.Filings {
		fmt.Fprintf(&b, "## %s\n\n", f.ReliefName)
		for _, d := range f.Documents {
			fmt.Fprintf(&b, "- %s (`%s`)\n", d.Name, d.Filename)
		}
		fmt.Fprintf(&b, "\nFiling fee: %s\n\n", dollars(f.FeeCents))
		for i, step := range f.Instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		if len(f.Instructions) > 0 {
			b.WriteString("\n")
		}
	}

	if len(pkg.Failures) > 0 {
		b.WriteString("## Not generated\n\n")
		for _, ge := range pkg.Failures {
			fmt.Fprintf(&b, "- %s\n", ge.Error())
		}
		b.WriteString("\n")
	}

	b.WriteString("## Next steps\n\n")
	for _, step := range pkg.Instructions {
		fmt.Fprintf(&b, "- %s\n", step)
	}
	fmt.Fprintf(&b, "\n> %s\n", pkg.Disclaimer)
	return b.String()
}

// NewRenderer returns a function that renders Markdown for the terminal.
// Width 0 keeps glamour's default word wrap.
func NewRenderer(width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

func date(t time.Time) string {
	return t.Format("January 2, 2006")
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
