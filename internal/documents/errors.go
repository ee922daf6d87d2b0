// SPDX-License-Identifier: Apache-2.0

package documents

import (
	"errors"
	"fmt"
)

var ErrGeneration = errors.New("document generation failed")

// GenerationError reports why one relief type's filing could not be built.
// Other relief types in the same request are unaffected.
type GenerationError struct {
	ReliefType string `json:"reliefType"`
	Document   string `json:"document,omitempty"`
	Field      string `json:"field,omitempty"`
	Reason     string `json:"reason"`
}

func (e *GenerationError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("generating %s for %s: required field %s is missing", e.Document, e.ReliefType, e.Field)
	case e.Document != "":
		return fmt.Sprintf("generating %s for %s: %s", e.Document, e.ReliefType, e.Reason)
	default:
		return fmt.Sprintf("generating documents for %s: %s", e.ReliefType, e.Reason)
	}
}

func (e *GenerationError) Unwrap() error {
	return ErrGeneration
}
