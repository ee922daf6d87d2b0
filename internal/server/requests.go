// SPDX-License-Identifier: Apache-2.0

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/clearrecordproj/clearrecord/internal/intake"
)

const maxBodyBytes = 1 << 20

// DocumentsRequest is the body of POST /v1/jurisdictions/{id}/documents.
type DocumentsRequest struct {
	Draft intake.Draft `json:"draft"`
	// ReliefTypes defaults to every eligible relief type.
	ReliefTypes []string `json:"reliefTypes,omitempty"`
	FeeWaiver   bool     `json:"feeWaiver,omitempty"`
}

// StepResponse is returned by the intake step endpoint.
type StepResponse struct {
	Step   intake.Step         `json:"step"`
	Valid  bool                `json:"valid"`
	Errors []intake.FieldError `json:"errors"`
	Next   intake.Step         `json:"next,omitempty"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
