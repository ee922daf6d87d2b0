// SPDX-License-Identifier: Apache-2.0

package eligibility

import (
	"errors"
	"fmt"
)

// ErrInvalidCase is the sentinel every InvalidCaseError unwraps to.
var ErrInvalidCase = errors.New("invalid case")

// InvalidCaseError is returned when mandatory case fields are missing. The
// caller must fix the input; evaluating again without changes is pointless.
type InvalidCaseError struct {
	Field  string
	Reason string
}

func (e *InvalidCaseError) Error() string {
	return fmt.Sprintf("invalid case: %s %s", e.Field, e.Reason)
}

func (e *InvalidCaseError) Unwrap() error {
	return ErrInvalidCase
}

func invalid(field, reason string) error {
	return &InvalidCaseError{Field: field, Reason: reason}
}
