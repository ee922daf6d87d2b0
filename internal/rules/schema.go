// SPDX-License-Identifier: Apache-2.0

package rules

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema/jurisdiction.cue
var schemaSource string

// checkSchema unifies the table with the #Jurisdiction definition and
// requires the result to be concrete. Enum values, id syntax and required
// fields are enforced here; cross references are left to Validate.
func checkSchema(j *Jurisdiction) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("jurisdiction.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling rule table schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Jurisdiction"))
	value := def.Unify(ctx.Encode(j))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("rule table %q does not match schema: %w", j.ID, err)
	}
	return nil
}
