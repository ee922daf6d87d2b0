// SPDX-License-Identifier: Apache-2.0

package documents

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const feeWaiverForm = "fee_waiver_application"

// form is a parsed document template plus the fields that must be non-blank
// before it may be rendered.
type form struct {
	id       string
	title    string
	required []string
	tmpl     *template.Template
}

var formDefs = []struct {
	id       string
	title    string
	required []string
}{
	{
		id:       "automatic_relief_request",
		title:    "Request for Confirmation of Automatic Relief",
		required: []string{"PetitionerName", "DateOfBirth", "CaseNumber", "OffenseName", "OffenseDate", "CompletionDate", "CourtName"},
	},
	{
		id:       "motion_to_seal",
		title:    "Motion to Seal Criminal Records",
		required: []string{"PetitionerName", "PetitionerAddress", "CaseNumber", "OffenseName", "OffenseDate", "Outcome", "CompletionDate", "WaitingPeriodEnds", "CourtName"},
	},
	{
		id:       "motion_to_expunge",
		title:    "Motion to Expunge (Actual Innocence)",
		required: []string{"PetitionerName", "PetitionerAddress", "CaseNumber", "OffenseName", "OffenseDate", "Outcome", "Statement", "CourtName"},
	},
	{
		id:       feeWaiverForm,
		title:    "Application to Proceed Without Prepayment of Fees",
		required: []string{"PetitionerName", "PetitionerAddress", "ReliefName", "CourtName"},
	},
}

func loadForms() (map[string]*form, error) {
	forms := make(map[string]*form, len(formDefs))
	for _, def := range formDefs {
		body, err := templateFS.ReadFile("templates/" + def.id + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", def.id, err)
		}
		tmpl, err := template.New(def.id).Option("missingkey=error").Parse(string(body))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", def.id, err)
		}
		forms[def.id] = &form{id: def.id, title: def.title, required: def.required, tmpl: tmpl}
	}
	return forms, nil
}

// render fills the form, refusing to emit a document with a blank required field.
func (f *form) render(reliefType string, fields map[string]string) (Document, error) {
	for _, name := range f.required {
		if strings.TrimSpace(fields[name]) == "" {
			return Document{}, &GenerationError{ReliefType: reliefType, Document: f.id, Field: name}
		}
	}

	var b strings.Builder
	if err := f.tmpl.Execute(&b, fields); err != nil {
		return Document{}, &GenerationError{ReliefType: reliefType, Document: f.id, Reason: err.Error()}
	}
	return Document{
		Name:     f.title,
		Filename: f.id + ".txt",
		Content:  b.String(),
	}, nil
}
