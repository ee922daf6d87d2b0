// SPDX-License-Identifier: Apache-2.0

// Package documents turns an eligibility result into a filing package: the
// filled-in forms for each selected relief type, the filing fees and the
// steps to file them.
package documents

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"github.com/clearrecordproj/clearrecord/internal/eligibility"
	"github.com/clearrecordproj/clearrecord/internal/rules"
)

// Person is the filer's contact information. It only ever reaches the
// rendered documents.
type Person struct {
	FullName    string     `json:"fullName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Street      string     `json:"street"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	PostalCode  string     `json:"postalCode"`
	Phone       string     `json:"phone,omitempty"`
	Email       string     `json:"email,omitempty"`
}

func (p Person) address() string {
	line2 := strings.TrimSpace(strings.Join(nonBlank(p.City, p.State), ", ") + " " + p.PostalCode)
	return strings.Join(nonBlank(p.Street, line2), "\n")
}

type Request struct {
	Result *eligibility.Result
	Case   eligibility.Case
	Person Person
	// Statement is the filer's own account, used by motions.
	Statement string
	// ReliefTypes are the relief types the filer chose. When empty, every
	// eligible relief type is generated.
	ReliefTypes []string
	FeeWaiver   bool
}

type Document struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type Filing struct {
	ReliefType   string              `json:"reliefType"`
	ReliefName   string              `json:"reliefName"`
	Verdict      eligibility.Verdict `json:"verdict"`
	Documents    []Document          `json:"documents"`
	FeeCents     int64               `json:"feeCents"`
	Instructions []string            `json:"instructions"`
}

type Package struct {
	ID            string             `json:"id"`
	Jurisdiction  string             `json:"jurisdiction"`
	Court         string             `json:"court"`
	GeneratedAt   time.Time          `json:"generatedAt"`
	Filings       []Filing           `json:"filings"`
	Failures      []*GenerationError `json:"failures,omitempty"`
	TotalFeeCents int64              `json:"totalFeeCents"`
	Instructions  []string           `json:"instructions"`
	Disclaimer    string             `json:"disclaimer"`
}

type Generator struct {
	registry  *rules.Registry
	forms     map[string]*form
	sanitizer *bluemonday.Policy
	now       func() time.Time
	newID     func() string
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator parses the templates and checks that every form named by a
// rule table exists.
func NewGenerator(registry *rules.Registry, opts ...Option) (*Generator, error) {
	forms, err := loadForms()
	if err != nil {
		return nil, err
	}
	for _, j := range registry.List() {
		for _, rt := range j.ReliefTypes {
			for _, id := range rt.Forms {
				if _, ok := forms[id]; !ok {
					return nil, fmt.Errorf("jurisdiction %q relief type %q uses unknown form %q", j.ID, rt.ID, id)
				}
			}
		}
	}

	g := &Generator{
		registry:  registry,
		forms:     forms,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate builds one filing per selected relief type. Relief types fail
// independently: the returned package holds every filing that succeeded and
// the error joins every *GenerationError. The package is nil only when no
// filing could be generated.
func (g *Generator) Generate(ctx context.Context, req Request) (*Package, error) {
	if req.Result == nil {
		return nil, errors.New("an eligibility result is required")
	}
	j, err := g.registry.Get(req.Result.Jurisdiction)
	if err != nil {
		return nil, err
	}

	selected := uniqueReliefTypes(req.ReliefTypes)
	if len(selected) == 0 {
		for _, rr := range req.Result.Relief {
			if rr.Verdict == eligibility.VerdictEligible {
				selected = append(selected, rr.ReliefType)
			}
		}
	}
	if len(selected) == 0 {
		return nil, &GenerationError{Reason: "no eligible relief types were found and none were chosen"}
	}

	filings := make([]*Filing, len(selected))
	failures := make([]error, len(selected))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, id := range selected {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			filings[i], failures[i] = g.generateFiling(j, req, id)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	pkg := &Package{
		ID:           g.newID(),
		Jurisdiction: j.ID,
		Court:        j.Court.Name,
		GeneratedAt:  g.now(),
		Disclaimer:   eligibility.Disclaimer,
	}
	var errs []error
	for i := range selected {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			var gerr *GenerationError
			if errors.As(failures[i], &gerr) {
				pkg.Failures = append(pkg.Failures, gerr)
			}
			continue
		}
		pkg.Filings = append(pkg.Filings, *filings[i])
		pkg.TotalFeeCents += filings[i].FeeCents
	}
	if len(pkg.Filings) == 0 {
		return nil, errors.Join(errs...)
	}
	pkg.Instructions = packageInstructions(j, pkg)
	return pkg, errors.Join(errs...)
}

// uniqueReliefTypes drops repeated relief type ids, keeping the first
// occurrence of each in order.
func uniqueReliefTypes(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (g *Generator) generateFiling(j *rules.Jurisdiction, req Request, reliefType string) (*Filing, error) {
	rt, ok := j.ReliefType(reliefType)
	if !ok {
		return nil, &GenerationError{ReliefType: reliefType, Reason: fmt.Sprintf("unknown relief type for %s", j.Name)}
	}
	rr, ok := req.Result.ReliefFor(reliefType)
	if !ok {
		return nil, &GenerationError{ReliefType: reliefType, Reason: "relief type was not evaluated"}
	}
	if rr.Verdict == eligibility.VerdictIneligible {
		return nil, &GenerationError{ReliefType: reliefType, Reason: "the case is ineligible for " + rt.Name}
	}
	if len(rt.Forms) == 0 {
		return nil, &GenerationError{ReliefType: reliefType, Reason: "no forms are defined"}
	}

	fee := rt.FilingFeeCents
	if rt.Standard == rules.StandardActualInnocence {
		fee = 0
	}
	forms := rt.Forms
	if req.FeeWaiver && fee > 0 {
		fee = 0
		forms = append(forms[:len(forms):len(forms)], feeWaiverForm)
	}

	fields := g.fields(j, rt, rr, req)
	filing := &Filing{
		ReliefType:   rt.ID,
		ReliefName:   rt.Name,
		Verdict:      rr.Verdict,
		FeeCents:     fee,
		Instructions: rt.FilingInstructions,
	}
	for _, id := range forms {
		doc, err := g.forms[id].render(rt.ID, fields)
		if err != nil {
			return nil, err
		}
		filing.Documents = append(filing.Documents, doc)
	}
	return filing, nil
}

// fields flattens the request into template fields. Free text from the user
// is stripped of markup first.
func (g *Generator) fields(j *rules.Jurisdiction, rt *rules.ReliefType, rr eligibility.ReliefResult, req Request) map[string]string {
	c := req.Case
	cls := req.Result.Classification

	offense := cls.OffenseName
	var statutes []string
	if o := cls.Offense(); o != nil {
		statutes = o.Statutes
	}
	if offense == "" {
		offense = c.OffenseDescription
	}

	return map[string]string{
		"CourtName":         j.Court.Name,
		"CourtAddress":      j.Court.Address,
		"CourtClerk":        j.Court.Clerk,
		"ReliefName":        rt.Name,
		"ReliefNameUpper":   strings.ToUpper(rt.Name),
		"CaseNumber":        g.clean(c.CaseNumber),
		"OffenseName":       g.clean(offense),
		"Statutes":          strings.Join(statutes, "; "),
		"OffenseDate":       formatDate(&c.OffenseDate),
		"Outcome":           strings.ReplaceAll(string(c.Outcome), "_", " "),
		"CompletionDate":    formatDate(c.CompletionDate),
		"WaitingPeriodEnds": formatDate(rr.WaitingPeriodEnds),
		"PetitionerName":    g.clean(req.Person.FullName),
		"PetitionerAddress": g.clean(req.Person.address()),
		"PetitionerPhone":   g.clean(req.Person.Phone),
		"PetitionerEmail":   g.clean(req.Person.Email),
		"DateOfBirth":       formatDate(req.Person.DateOfBirth),
		"Statement":         g.clean(req.Statement),
		"Date":              req.Result.AsOf.Format("January 2, 2006"),
	}
}

func (g *Generator) clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(g.sanitizer.Sanitize(s)))
}

func packageInstructions(j *rules.Jurisdiction, pkg *Package) []string {
	out := []string{
		"Read every document and correct anything that does not match your court records.",
		"Sign and date each document where indicated.",
	}
	if pkg.TotalFeeCents > 0 {
		out = append(out, fmt.Sprintf("Bring %s for filing fees, or ask the clerk about a fee waiver.", formatCents(pkg.TotalFeeCents)))
	} else {
		out = append(out, "No filing fee is due for these documents.")
	}
	where := j.Court.Name
	if j.Court.Address != "" {
		where += ", " + j.Court.Address
	}
	out = append(out, "File the documents with "+where+".")
	return out
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func formatCents(c int64) string {
	return fmt.Sprintf("$%d.%02d", c/100, c%100)
}

func nonBlank(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}
